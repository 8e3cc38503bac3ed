package snapshot

import (
	"bytes"
	"context"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/streaming"
	azStorageBlob "github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"go.uber.org/zap"
)

// AzureStore keeps snapshot objects as block blobs in one container.
type AzureStore struct {
	container *azStorageBlob.ContainerClient
	log       *zap.SugaredLogger
}

// NewAzureStore connects to a storage account with a connection string. The
// container must already exist; this package never creates containers.
func NewAzureStore(connectionString, container string, opts ...StoreOption) (*AzureStore, error) {
	options := newStoreOptions(opts...)
	service, err := azStorageBlob.NewServiceClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, err
	}
	cc, err := service.NewContainerClient(container)
	if err != nil {
		return nil, err
	}
	return &AzureStore{container: cc, log: options.log}, nil
}

func (s *AzureStore) Put(ctx context.Context, name string, data []byte) error {
	bb, err := s.container.NewBlockBlobClient(name)
	if err != nil {
		return err
	}
	_, err = bb.Upload(ctx, streaming.NopCloser(bytes.NewReader(data)), nil)
	if err != nil {
		return err
	}
	s.log.Debugf("azurestore: put %s (%d bytes)", name, len(data))
	return nil
}

func (s *AzureStore) Reader(ctx context.Context, name string) (io.ReadCloser, error) {
	bc, err := s.container.NewBlobClient(name)
	if err != nil {
		return nil, err
	}
	resp, err := bc.Download(ctx, nil)
	if err != nil {
		return nil, wrapBlobNotFound(name, err)
	}
	return resp.Body(&azStorageBlob.RetryReaderOptions{}), nil
}

func (s *AzureStore) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	pager := s.container.ListBlobsFlat(&azStorageBlob.ContainerListBlobsFlatOptions{
		Prefix: &prefix,
	})
	for pager.NextPage(ctx) {
		resp := pager.PageResponse()
		for _, item := range resp.Segment.BlobItems {
			if item.Name != nil {
				names = append(names, *item.Name)
			}
		}
	}
	if err := pager.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

func (s *AzureStore) Delete(ctx context.Context, name string) error {
	bc, err := s.container.NewBlobClient(name)
	if err != nil {
		return err
	}
	if _, err = bc.Delete(ctx, nil); err != nil {
		return wrapBlobNotFound(name, err)
	}
	return nil
}
