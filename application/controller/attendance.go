package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	apperrors "facemark.io/application/appErrors"
	"facemark.io/application/controller/dto"
	"facemark.io/application/interfaces"
	attendance_usecases "facemark.io/application/usecases/attendance"
	"facemark.io/infrastructure/liveness"
	messagequeue "facemark.io/infrastructure/message_queue"
	queue_tasks "facemark.io/infrastructure/message_queue/tasks"
	mq_types "facemark.io/infrastructure/message_queue/types"
	server_response "facemark.io/infrastructure/serverResponse"
	"facemark.io/infrastructure/validator"
)

// VerifyAttendance runs the full verification pipeline on one flash
// challenge and marks attendance when every stage passes.
func VerifyAttendance(ctx *interfaces.ApplicationContext[dto.VerifyAttendanceDTO]) {
	validationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body)
	if validationErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, validationErr)
		return
	}

	before, after, err := ctx.Body.DecodeFrames()
	if err != nil {
		apperrors.ClientError(ctx.Ctx, err.Error(), nil)
		return
	}

	outcome, err := attendance_usecases.Default().Run(context.TODO(), before, after)
	if err != nil {
		if errors.Is(err, liveness.ErrBadInput) {
			apperrors.ClientError(ctx.Ctx, err.Error(), nil)
			return
		}
		apperrors.FatalServerError(ctx.Ctx, err)
		return
	}

	if !outcome.Accepted {
		apperrors.CustomError(ctx.Ctx, rejectionStatusCode(outcome.Reason), outcome.Reason, outcome)
		return
	}

	queueAttendanceNotification(outcome)
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "attendance marked", outcome, nil, nil)
}

// rejectionStatusCode maps a pipeline rejection to its HTTP status.
func rejectionStatusCode(reason string) int {
	switch reason {
	case attendance_usecases.ReasonNotRecognized:
		return http.StatusUnauthorized
	case attendance_usecases.ReasonAlreadyMarked:
		return http.StatusConflict
	case attendance_usecases.ReasonSubjectMissing:
		return http.StatusInternalServerError
	default:
		// spoof rejections and undetected faces
		return http.StatusBadRequest
	}
}

func queueAttendanceNotification(outcome *attendance_usecases.Outcome) {
	if outcome.Event == nil {
		return
	}
	payload, err := json.Marshal(queue_tasks.AttendanceNotificationPayload{
		SubjectID: outcome.Event.SubjectID,
		Day:       outcome.Event.Day,
		Timestamp: outcome.Event.Timestamp,
	})
	if err != nil {
		return
	}
	messagequeue.TaskQueue.Enqueue(mq_types.QueueTask{
		Name:      queue_tasks.HandleAttendanceNotificationTaskName,
		Payload:   payload,
		Priority:  mq_types.Low,
		ProcessIn: 1,
	})
}

// AttendanceRecords lists a subject's accepted events, newest first.
func AttendanceRecords(ctx *interfaces.ApplicationContext[any]) {
	subjectKey, ok := ctx.Param["subjectKey"].(string)
	if !ok || subjectKey == "" {
		apperrors.ClientError(ctx.Ctx, "subjectKey is required", nil)
		return
	}

	events, err := attendance_usecases.DefaultLedger().EventsForSubject(context.TODO(), subjectKey)
	if err != nil {
		apperrors.FatalServerError(ctx.Ctx, err)
		return
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "attendance records retrieved", dto.AttendanceRecordsResponse{
		SubjectKey: subjectKey,
		Events:     events,
	}, nil, nil)
}
