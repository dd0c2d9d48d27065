package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"servibid/pkg/errors"
	"servibid/pkg/logger"
)

const publicURLPrefix = "https://storage.googleapis.com/"

type CloudStorageClient struct {
	client     *storage.Client
	bucketName string
	timeout    time.Duration
}

func NewCloudStorageClient(ctx context.Context, bucketName string, timeout time.Duration, opts ...option.ClientOption) (*CloudStorageClient, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %v", err)
	}

	storageClient := &CloudStorageClient{
		client:     client,
		bucketName: bucketName,
		timeout:    timeout,
	}

	if err := storageClient.setBucketCORS(ctx); err != nil {
		logger.Warn("Failed to set bucket CORS configuration: %v", err)
	}

	return storageClient, nil
}

func (c *CloudStorageClient) setBucketCORS(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	bucket := c.client.Bucket(c.bucketName)
	attrs, err := bucket.Attrs(ctx)
	if err != nil {
		return fmt.Errorf("failed to get bucket attributes: %v", err)
	}
	if len(attrs.CORS) > 0 {
		return nil
	}

	_, err = bucket.Update(ctx, storage.BucketAttrsToUpdate{
		CORS: []storage.CORS{{
			MaxAge:          time.Hour,
			Methods:         []string{"GET", "HEAD"},
			Origins:         []string{"*"},
			ResponseHeaders: []string{"Content-Type"},
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to update bucket CORS: %v", err)
	}
	return nil
}

// ObjectName builds a unique object path under folder.
func ObjectName(folder, extension string, now time.Time) string {
	return fmt.Sprintf("%s/%s-%s%s", strings.Trim(folder, "/"), now.UTC().Format("20060102150405"), uuid.NewString(), extension)
}

func (c *CloudStorageClient) UploadFile(ctx context.Context, file io.Reader, contentType, extension, folder string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	name := ObjectName(folder, extension, time.Now())
	obj := c.client.Bucket(c.bucketName).Object(name)

	wc := obj.NewWriter(ctx)
	wc.ContentType = contentType
	wc.CacheControl = "public, max-age=86400"

	if _, err := io.Copy(wc, file); err != nil {
		wc.Close()
		return "", errors.FromUpstream("Failed to upload file", err)
	}
	if err := wc.Close(); err != nil {
		return "", errors.FromUpstream("Failed to upload file", err)
	}

	return publicURLPrefix + c.bucketName + "/" + name, nil
}

func (c *CloudStorageClient) DeleteFile(ctx context.Context, fileURL string) error {
	if !strings.HasPrefix(fileURL, publicURLPrefix) {
		return errors.BadRequest("Invalid file URL", nil)
	}

	parts := strings.SplitN(strings.TrimPrefix(fileURL, publicURLPrefix), "/", 2)
	if len(parts) != 2 || parts[0] != c.bucketName {
		return errors.BadRequest("File URL does not belong to this bucket", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.client.Bucket(c.bucketName).Object(parts[1]).Delete(ctx); err != nil {
		if err == storage.ErrObjectNotExist {
			return errors.NotFound("File", err)
		}
		return errors.FromUpstream("Failed to delete file", err)
	}
	return nil
}

func (c *CloudStorageClient) Close() error {
	return c.client.Close()
}
