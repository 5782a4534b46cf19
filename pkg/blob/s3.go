package blob

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3Config contains configuration for S3-compatible media storage.
type S3Config struct {
	Bucket      string `env:"S3_BUCKET,required"`
	Region      string `env:"S3_REGION,required"`
	AccessKeyID string `env:"S3_ACCESS_KEY_ID"`
	SecretKey   string `env:"S3_SECRET_KEY"`
	Endpoint    string `env:"S3_ENDPOINT"`             // optional, for S3-compatible services
	BaseURL     string `env:"S3_BASE_URL"`             // public URL base for serving files
	KeyPrefix   string `env:"S3_KEY_PREFIX" envDefault:"media"`
}

// S3Client is the subset of the AWS S3 client used by S3Storage.
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Storage implements Uploader on top of Amazon S3 or an S3-compatible
// service. Safe for concurrent use.
type S3Storage struct {
	client    S3Client
	bucket    string
	baseURL   string
	keyPrefix string
}

// S3Option configures optional S3Storage behavior.
type S3Option func(*S3Storage)

// WithS3Client sets a pre-configured client. Useful for tests.
func WithS3Client(client S3Client) S3Option {
	return func(s *S3Storage) { s.client = client }
}

// NewS3Storage creates S3-backed media storage.
func NewS3Storage(ctx context.Context, cfg S3Config, opts ...S3Option) (*S3Storage, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, errors.New("blob: bucket and region are required")
	}

	storage := &S3Storage{
		bucket:    cfg.Bucket,
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		keyPrefix: strings.Trim(cfg.KeyPrefix, "/"),
	}
	if storage.baseURL == "" {
		storage.baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}

	for _, opt := range opts {
		opt(storage)
	}

	if storage.client == nil {
		awsOptions := []func(*awsconfig.LoadOptions) error{
			awsconfig.WithRegion(cfg.Region),
		}
		if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
			awsOptions = append(awsOptions, awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, ""),
			))
		}

		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsOptions...)
		if err != nil {
			return nil, fmt.Errorf("blob: load aws config: %w", err)
		}

		storage.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
				o.UsePathStyle = true
			}
		})
	}

	return storage, nil
}

// Upload stores the file under a random key and returns its public URL.
// An empty path returns an empty URL with no error.
func (s *S3Storage) Upload(ctx context.Context, localPath string) (string, error) {
	if localPath == "" {
		return "", nil
	}

	f, err := os.Open(localPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrFileNotFound, localPath)
		}
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	defer f.Close()

	key := uuid.New().String() + strings.ToLower(filepath.Ext(localPath))
	if s.keyPrefix != "" {
		key = s.keyPrefix + "/" + key
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType(localPath)),
	})
	if err != nil {
		return "", errors.Join(ErrUploadFailed, err)
	}

	return s.baseURL + "/" + key, nil
}
