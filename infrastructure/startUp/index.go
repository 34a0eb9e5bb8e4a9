package startup

import (
	attendance_usecases "facemark.io/application/usecases/attendance"
	enrollment_usecases "facemark.io/application/usecases/enrollment"
	"facemark.io/infrastructure/database"
	"facemark.io/infrastructure/database/connection/datastore"
	"facemark.io/infrastructure/faceindex"
	fileupload "facemark.io/infrastructure/file_upload"
	"facemark.io/infrastructure/logger"
)

// Used to start services such as loggers, databases, queues, etc.
func StartServices() {
	logger.InitializeLogger()
	database.SetUpDatabase()
	faceindex.InitialiseFaceIndex()
	fileupload.InitialiseFileUploader()
	attendance_usecases.Initialise()
	enrollment_usecases.Initialise()
}

// Used to clean up after services that have been shutdown.
func CleanUpServices() {
	datastore.CleanUp()
}
