package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// AzureProvider Azure Blob Storage provider implementation
type AzureProvider struct {
	client    *azblob.Client
	container string
	prefix    string // path prefix
}

// NewAzureProvider creates a new Azure Blob Storage provider. Credentials are
// resolved in order: shared account key, SAS token, default Azure credential
// chain.
func NewAzureProvider(providerConfig *ProviderConfig) (*AzureProvider, error) {
	if providerConfig.Type != ProviderTypeAzure {
		return nil, fmt.Errorf("invalid provider type: %s, expected: %s", providerConfig.Type, ProviderTypeAzure)
	}
	if providerConfig.Bucket == "" {
		return nil, fmt.Errorf("container name is required for Azure provider")
	}

	serviceURL, err := azureServiceURL(providerConfig)
	if err != nil {
		return nil, err
	}

	client, err := newAzureClient(serviceURL, providerConfig.Azure)
	if err != nil {
		return nil, err
	}

	return &AzureProvider{
		client:    client,
		container: providerConfig.Bucket,
		prefix:    providerConfig.Prefix,
	}, nil
}

// azureServiceURL resolves the blob endpoint: an explicit endpoint wins,
// otherwise it is derived from the account name.
func azureServiceURL(providerConfig *ProviderConfig) (string, error) {
	if providerConfig.Endpoint != "" {
		return strings.TrimSuffix(providerConfig.Endpoint, "/"), nil
	}

	if providerConfig.Azure == nil || providerConfig.Azure.AccountName == "" {
		return "", fmt.Errorf("azure account name or endpoint is required")
	}
	return fmt.Sprintf("https://%s.blob.core.windows.net", providerConfig.Azure.AccountName), nil
}

func newAzureClient(serviceURL string, azureConfig *AzureConfig) (*azblob.Client, error) {
	if azureConfig != nil && azureConfig.AccountKey != "" {
		if azureConfig.AccountName == "" {
			return nil, fmt.Errorf("azure account name is required when account key is set")
		}
		cred, err := azblob.NewSharedKeyCredential(azureConfig.AccountName, azureConfig.AccountKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure shared key credential: %w", err)
		}
		return azblob.NewClientWithSharedKeyCredential(serviceURL, cred, nil)
	}

	if azureConfig != nil && azureConfig.SASToken != "" {
		sasURL, err := attachSASToken(serviceURL, azureConfig.SASToken)
		if err != nil {
			return nil, err
		}
		return azblob.NewClientWithNoCredential(sasURL, nil)
	}

	credential, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create default Azure credential: %w", err)
	}
	return azblob.NewClient(serviceURL, credential, nil)
}

func attachSASToken(serviceURL, sasToken string) (string, error) {
	parsed, err := url.Parse(serviceURL)
	if err != nil {
		return "", fmt.Errorf("invalid Azure service URL: %w", err)
	}
	sasToken = strings.TrimPrefix(sasToken, "?")
	if sasToken == "" {
		return serviceURL, nil
	}

	if parsed.RawQuery == "" {
		parsed.RawQuery = sasToken
	} else {
		parsed.RawQuery = parsed.RawQuery + "&" + sasToken
	}
	return parsed.String(), nil
}

// buildPath builds the complete path with prefix
func (a *AzureProvider) buildPath(path string) string {
	if a.prefix == "" {
		return path
	}
	prefix := strings.TrimSuffix(a.prefix, "/")
	path = strings.TrimPrefix(path, "/")
	return prefix + "/" + path
}

// Upload implements ObjectStorageProvider interface. An existing blob at the
// same path is replaced, which is how snapshot documents get refreshed.
func (a *AzureProvider) Upload(ctx context.Context, path string, data io.Reader) error {
	fullPath := a.buildPath(path)
	if _, err := a.client.UploadStream(ctx, a.container, fullPath, data, nil); err != nil {
		return fmt.Errorf("failed to upload blob %s: %w", fullPath, err)
	}
	return nil
}

// Download implements ObjectStorageProvider interface
func (a *AzureProvider) Download(ctx context.Context, path string) (io.ReadCloser, error) {
	fullPath := a.buildPath(path)
	result, err := a.client.DownloadStream(ctx, a.container, fullPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to download blob %s: %w", fullPath, err)
	}
	return result.Body, nil
}

// Delete implements ObjectStorageProvider interface. Deleting a missing blob
// is a no-op.
func (a *AzureProvider) Delete(ctx context.Context, path string) error {
	fullPath := a.buildPath(path)
	_, err := a.client.DeleteBlob(ctx, a.container, fullPath, nil)
	if err != nil && !isAzureNotFound(err) {
		return fmt.Errorf("failed to delete blob %s: %w", fullPath, err)
	}
	return nil
}

// Exists implements ObjectStorageProvider interface
func (a *AzureProvider) Exists(ctx context.Context, path string) (bool, error) {
	fullPath := a.buildPath(path)
	_, err := a.client.ServiceClient().
		NewContainerClient(a.container).
		NewBlobClient(fullPath).
		GetProperties(ctx, nil)
	if err != nil {
		if isAzureNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// List implements ObjectStorageProvider interface
func (a *AzureProvider) List(ctx context.Context, prefix string) ([]string, error) {
	fullPrefix := a.buildPath(prefix)
	pager := a.client.NewListBlobsFlatPager(a.container, &azblob.ListBlobsFlatOptions{
		Prefix: &fullPrefix,
	})

	var objects []string
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, blob := range page.Segment.BlobItems {
			if blob.Name != nil {
				objects = append(objects, *blob.Name)
			}
		}
	}
	return objects, nil
}

func isAzureNotFound(err error) bool {
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		if respErr.StatusCode == http.StatusNotFound {
			return true
		}
		switch respErr.ErrorCode {
		case "BlobNotFound", "ResourceNotFound", "ContainerNotFound":
			return true
		}
	}
	return false
}
