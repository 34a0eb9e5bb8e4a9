// Package enrollment_usecases registers subjects: validate the reference
// image, persist the subject record, add its embedding to the identity
// index, and queue the welcome notification.
package enrollment_usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	apperrors "facemark.io/application/appErrors"
	"facemark.io/application/controller/dto"
	"facemark.io/application/repository"
	"facemark.io/application/utils"
	"facemark.io/entities"
	"facemark.io/infrastructure/embedding"
	"facemark.io/infrastructure/faceindex"
	fileupload "facemark.io/infrastructure/file_upload"
	"facemark.io/infrastructure/logger"
	messagequeue "facemark.io/infrastructure/message_queue"
	queue_tasks "facemark.io/infrastructure/message_queue/tasks"
	mq_types "facemark.io/infrastructure/message_queue/types"
)

var extractor embedding.Extractor

// Initialise binds the inference sidecar client. Called once from startup.
func Initialise() {
	extractor = embedding.NewHTTPExtractor()
}

// EnrollSubjectUseCase registers a subject. Responses are written through
// the responder on every path; the error return only signals failure to the
// caller.
func EnrollSubjectUseCase(ctx any, payload *dto.EnrollSubjectDTO) error {
	image, err := utils.DecodeBase64Image(payload.Image)
	if err != nil {
		apperrors.ClientError(ctx, "image is not valid base64 image data", nil)
		return err
	}

	subjectRepo := repository.SubjectRepo()
	exists, err := subjectRepo.CountDocs(context.TODO(), map[string]interface{}{
		"rollNo": payload.RollNo,
	})
	if err != nil {
		apperrors.FatalServerError(ctx, err)
		return err
	}
	if exists != 0 {
		apperrors.EntityAlreadyExistsError(ctx, fmt.Sprintf("a subject with roll number %s already exists", payload.RollNo))
		return fmt.Errorf("roll number %s already enrolled", payload.RollNo)
	}

	faces, err := extractor.Extract(context.TODO(), image)
	if err != nil {
		logger.Error("embedding extraction failed during enrollment", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		apperrors.FatalServerError(ctx, err)
		return err
	}
	if len(faces) == 0 {
		apperrors.ClientError(ctx, "no face detected in enrollment image", nil)
		return fmt.Errorf("no face in enrollment image for %s", payload.RollNo)
	}
	face := largestFace(faces)

	subjectID := utils.GenerateULIDString()
	imagePath := fmt.Sprintf("subjects/%s.jpg", subjectID)
	subject, err := subjectRepo.CreateOne(context.TODO(), entities.Subject{
		ID:        subjectID,
		Name:      payload.Name,
		RollNo:    payload.RollNo,
		ClassName: payload.ClassName,
		Email:     payload.Email,
		ImagePath: imagePath,
	})
	if err != nil {
		apperrors.FatalServerError(ctx, err)
		return err
	}

	if err := faceindex.Index.Insert(face.Vector, subjectID); err != nil {
		// undo the subject record so the store and the index stay aligned
		subjectRepo.DeleteMany(context.TODO(), map[string]interface{}{"_id": subjectID})
		apperrors.FatalServerError(ctx, err)
		return err
	}

	uploadURL, err := fileupload.FileUploader.GenerateUploadURL(imagePath)
	if err != nil {
		logger.Warning("could not generate reference image upload url", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
	}

	if payload.Email != nil {
		queueWelcomeEmail(subject)
	}

	responsePayload := map[string]interface{}{
		"subject": subject,
	}
	if uploadURL != nil {
		responsePayload["image_upload_url"] = *uploadURL
	}
	apperrors.CustomError(ctx, http.StatusCreated, "subject enrolled", responsePayload)
	return nil
}

func queueWelcomeEmail(subject *entities.Subject) {
	emailPayload, err := json.Marshal(queue_tasks.EmailPayload{
		To:       *subject.Email,
		Subject:  "You have been enrolled",
		Template: "enrollment_welcome",
		Opts: map[string]any{
			"Name":   subject.Name,
			"RollNo": subject.RollNo,
		},
	})
	if err != nil {
		return
	}
	messagequeue.TaskQueue.Enqueue(mq_types.QueueTask{
		Name:      queue_tasks.HandleEmailDeliveryTaskName,
		Payload:   emailPayload,
		Priority:  mq_types.Low,
		ProcessIn: 1,
		TimeOut:   60,
	})
}

func largestFace(faces []embedding.Face) embedding.Face {
	best := faces[0]
	bestArea := best.Width * best.Height
	for _, face := range faces[1:] {
		if area := face.Width * face.Height; area > bestArea {
			best = face
			bestArea = area
		}
	}
	return best
}
