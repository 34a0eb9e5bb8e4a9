package queue_tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"facemark.io/application/repository"
	"facemark.io/infrastructure/logger"
	mq_types "facemark.io/infrastructure/message_queue/types"
	"facemark.io/infrastructure/messaging/emails"
	"github.com/hibiken/asynq"
)

var HandleAttendanceNotificationTaskName mq_types.Queues = "attendance_notification"

type AttendanceNotificationPayload struct {
	SubjectID string
	Day       string
	Timestamp time.Time
}

// HandleAttendanceNotificationTask emails the subject a receipt after an
// accepted attendance event. Subjects without an email address are skipped.
func HandleAttendanceNotificationTask(ctx context.Context, t *asynq.Task) error {
	var payload AttendanceNotificationPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logger.Error("an error occured while unmarshalling attendance notification payload", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return err
	}

	subject, err := repository.SubjectRepo().FindByID(ctx, payload.SubjectID)
	if err != nil {
		return err
	}
	if subject == nil {
		logger.Warning("attendance notification for a missing subject", logger.LoggerOptions{
			Key:  "subjectID",
			Data: payload.SubjectID,
		})
		return nil
	}
	if subject.Email == nil {
		return nil
	}

	success := emails.EmailService.SendEmail(*subject.Email, "Attendance recorded", "attendance_marked", map[string]any{
		"Name": subject.Name,
		"Day":  payload.Day,
		"Time": payload.Timestamp.Format("15:04"),
	})
	if !success {
		return fmt.Errorf("failed to send attendance notification to %s", *subject.Email)
	}
	return nil
}
