package azure

import (
	"context"
	"fmt"
	"time"

	"facemark.io/infrastructure/logger"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	azblob_sas "github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/sas"
)

// AzureBlobSignedURLService hands out short-lived SAS URLs so clients talk
// to blob storage directly; image bytes never pass through this service.
type AzureBlobSignedURLService struct {
	AccountName   string
	ContainerName string
	AccountKey    string
}

func (azurlservice *AzureBlobSignedURLService) GenerateUploadURL(fileName string) (*string, error) {
	return azurlservice.generateSignedURL(fileName, azblob_sas.BlobPermissions{Write: true, Create: true}, 5*time.Minute)
}

func (azurlservice *AzureBlobSignedURLService) GenerateDownloadURL(fileName string) (*string, error) {
	return azurlservice.generateSignedURL(fileName, azblob_sas.BlobPermissions{Read: true}, 50*time.Minute)
}

func (azurlservice *AzureBlobSignedURLService) generateSignedURL(fileName string, permissions azblob_sas.BlobPermissions, validity time.Duration) (*string, error) {
	credential, err := azblob.NewSharedKeyCredential(azurlservice.AccountName, azurlservice.AccountKey)
	if err != nil {
		logger.Error("error generating azblob shared key credential", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil, err
	}

	sasQueryParams, err := azblob_sas.BlobSignatureValues{
		Protocol:      azblob_sas.ProtocolHTTPS,
		StartTime:     time.Now().UTC(),
		ExpiryTime:    time.Now().UTC().Add(validity),
		Permissions:   permissions.String(),
		ContainerName: azurlservice.ContainerName,
		BlobName:      fileName,
	}.SignWithSharedKey(credential)
	if err != nil {
		logger.Error("error signing blob signature values", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil, err
	}
	sasURL := fmt.Sprintf("https://%s.blob.core.windows.net/%s/%s?%s",
		azurlservice.AccountName, azurlservice.ContainerName, fileName, sasQueryParams.Encode())
	return &sasURL, nil
}

func (azurlservice *AzureBlobSignedURLService) CheckFileExists(fileName string) (bool, error) {
	client, err := azurlservice.client()
	if err != nil {
		return false, err
	}
	blobClient := client.ServiceClient().NewContainerClient(azurlservice.ContainerName).NewBlobClient(fileName)
	_, err = blobClient.GetProperties(context.TODO(), nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (azurlservice *AzureBlobSignedURLService) DeleteFile(fileName string) error {
	client, err := azurlservice.client()
	if err != nil {
		return err
	}
	_, err = client.DeleteBlob(context.TODO(), azurlservice.ContainerName, fileName, nil)
	if err != nil {
		logger.Error("error deleting blob", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "fileName",
			Data: fileName,
		})
		return err
	}
	return nil
}

func (azurlservice *AzureBlobSignedURLService) client() (*azblob.Client, error) {
	credential, err := azblob.NewSharedKeyCredential(azurlservice.AccountName, azurlservice.AccountKey)
	if err != nil {
		return nil, err
	}
	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net/", azurlservice.AccountName)
	return azblob.NewClientWithSharedKeyCredential(serviceURL, credential, nil)
}
