package fileupload

import (
	"os"

	"facemark.io/infrastructure/file_upload/azure"
	"facemark.io/infrastructure/file_upload/types"
)

var FileUploader types.FileUploaderType

// InitialiseFileUploader binds the azure blob store used for subject
// reference images.
func InitialiseFileUploader() {
	FileUploader = &azure.AzureBlobSignedURLService{
		AccountName:   os.Getenv("AZURE_STORAGE_ACCOUNT_NAME"),
		AccountKey:    os.Getenv("AZURE_STORAGE_ACCOUNT_KEY"),
		ContainerName: os.Getenv("AZURE_CONTAINER_NAME"),
	}
}
