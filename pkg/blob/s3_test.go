package blob_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidtube/backend/pkg/blob"
)

type fakeS3Client struct {
	lastInput *s3.PutObjectInput
	err       error
}

func (f *fakeS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.lastInput = params
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func newTestFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))
	return path
}

func TestS3Upload(t *testing.T) {
	t.Parallel()

	client := &fakeS3Client{}
	storage, err := blob.NewS3Storage(context.Background(), blob.S3Config{
		Bucket:    "vidtube-media",
		Region:    "us-east-1",
		BaseURL:   "https://cdn.vidtube.example",
		KeyPrefix: "media",
	}, blob.WithS3Client(client))
	require.NoError(t, err)

	url, err := storage.Upload(context.Background(), newTestFile(t, "avatar.jpg"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "https://cdn.vidtube.example/media/"))
	assert.True(t, strings.HasSuffix(url, ".jpg"))

	require.NotNil(t, client.lastInput)
	assert.Equal(t, "vidtube-media", *client.lastInput.Bucket)
	assert.Equal(t, "image/jpeg", *client.lastInput.ContentType)
}

func TestS3UploadEmptyPath(t *testing.T) {
	t.Parallel()

	client := &fakeS3Client{}
	storage, err := blob.NewS3Storage(context.Background(), blob.S3Config{
		Bucket: "b", Region: "r",
	}, blob.WithS3Client(client))
	require.NoError(t, err)

	url, err := storage.Upload(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, url)
	assert.Nil(t, client.lastInput)
}

func TestS3UploadFailure(t *testing.T) {
	t.Parallel()

	client := &fakeS3Client{err: errors.New("access denied")}
	storage, err := blob.NewS3Storage(context.Background(), blob.S3Config{
		Bucket: "b", Region: "r",
	}, blob.WithS3Client(client))
	require.NoError(t, err)

	_, err = storage.Upload(context.Background(), newTestFile(t, "cover.png"))
	assert.ErrorIs(t, err, blob.ErrUploadFailed)
}

func TestS3DefaultBaseURL(t *testing.T) {
	t.Parallel()

	client := &fakeS3Client{}
	storage, err := blob.NewS3Storage(context.Background(), blob.S3Config{
		Bucket: "vidtube-media", Region: "eu-west-1",
	}, blob.WithS3Client(client))
	require.NoError(t, err)

	url, err := storage.Upload(context.Background(), newTestFile(t, "a.png"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://vidtube-media.s3.eu-west-1.amazonaws.com/"))
}

func TestS3MissingConfig(t *testing.T) {
	t.Parallel()

	_, err := blob.NewS3Storage(context.Background(), blob.S3Config{})
	assert.Error(t, err)
}
