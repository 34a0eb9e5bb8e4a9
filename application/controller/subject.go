package controller

import (
	"context"
	"net/http"

	apperrors "facemark.io/application/appErrors"
	"facemark.io/application/controller/dto"
	"facemark.io/application/interfaces"
	"facemark.io/application/repository"
	attendance_usecases "facemark.io/application/usecases/attendance"
	enrollment_usecases "facemark.io/application/usecases/enrollment"
	"facemark.io/infrastructure/faceindex"
	"facemark.io/infrastructure/logger"
	server_response "facemark.io/infrastructure/serverResponse"
	"facemark.io/infrastructure/validator"
)

// EnrollSubject registers a subject from one reference image.
func EnrollSubject(ctx *interfaces.ApplicationContext[dto.EnrollSubjectDTO]) {
	validationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body)
	if validationErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, validationErr)
		return
	}
	enrollment_usecases.EnrollSubjectUseCase(ctx.Ctx, ctx.Body)
}

// ListSubjects returns every enrolled subject.
func ListSubjects(ctx *interfaces.ApplicationContext[any]) {
	subjects, err := repository.SubjectRepo().FindMany(context.TODO(), map[string]interface{}{})
	if err != nil {
		apperrors.FatalServerError(ctx.Ctx, err)
		return
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "subjects retrieved", map[string]interface{}{
		"subjects":   subjects,
		"index_size": faceindex.Index.Size(),
	}, nil, nil)
}

// ResetSystem wipes the identity index, the subject roster and the
// attendance record. Admin-only; intended for start-of-term resets.
func ResetSystem(ctx *interfaces.ApplicationContext[any]) {
	if err := faceindex.Index.Reset(); err != nil {
		apperrors.FatalServerError(ctx.Ctx, err)
		return
	}
	deletedEvents, err := attendance_usecases.DefaultLedger().Reset(context.TODO())
	if err != nil {
		apperrors.FatalServerError(ctx.Ctx, err)
		return
	}
	deletedSubjects, err := repository.SubjectRepo().DeleteMany(context.TODO(), map[string]interface{}{})
	if err != nil {
		apperrors.FatalServerError(ctx.Ctx, err)
		return
	}
	logger.Warning("system reset executed", logger.LoggerOptions{
		Key:  "operator",
		Data: ctx.GetContextData("operator"),
	}, logger.LoggerOptions{
		Key:  "deletedSubjects",
		Data: deletedSubjects,
	}, logger.LoggerOptions{
		Key:  "deletedEvents",
		Data: deletedEvents,
	})
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "system reset complete", map[string]interface{}{
		"deleted_subjects": deletedSubjects,
		"deleted_events":   deletedEvents,
	}, nil, nil)
}
