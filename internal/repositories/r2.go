package repositories

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/rohits-web03/cloudvault/internal/config"
	"github.com/rohits-web03/cloudvault/internal/domain"
	"github.com/rohits-web03/cloudvault/internal/models"
)

// S3Client is the subset of *s3.Client the R2 store needs.
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Presigner is the subset of *s3.PresignClient the R2 store needs.
type Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// R2Store keeps file content in a Cloudflare R2 bucket.
type R2Store struct {
	client    S3Client
	presigner Presigner
	bucket    string
	baseURL   string
}

type R2Option func(*R2Store)

// WithS3Client replaces the SDK client, mostly for tests.
func WithS3Client(client S3Client, presigner Presigner) R2Option {
	return func(s *R2Store) {
		s.client = client
		s.presigner = presigner
	}
}

// NewR2Store builds the R2 client using static credentials and the account endpoint.
func NewR2Store(cfg config.R2Config, opts ...R2Option) (*R2Store, error) {
	if cfg.BucketName == "" {
		return nil, errors.New("r2: bucket name is required")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)
	}
	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("%s/%s", strings.TrimSuffix(endpoint, "/"), cfg.BucketName)
	}

	store := &R2Store{
		bucket:  cfg.BucketName,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(store)
	}

	if store.client == nil {
		awsCfg := aws.Config{
			Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
			Region:      cfg.Region,
		}
		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
		store.client = client
		store.presigner = s3.NewPresignClient(client)
	}

	return store, nil
}

// Put uploads body under key.
func (s *R2Store) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (models.BlobRef, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return models.BlobRef{}, classifyS3Error(err, "upload")
	}
	return models.BlobRef{ID: key, Location: s.baseURL + "/" + key}, nil
}

// Delete removes the object. A key that is already gone counts as deleted.
func (s *R2Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err == nil || isMissingKey(err) {
		return nil
	}
	return classifyS3Error(err, "delete")
}

// PresignGet creates a presigned URL for downloading the object.
func (s *R2Store) PresignGet(ctx context.Context, key string, expires time.Duration) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", classifyS3Error(err, "presign")
	}
	return req.URL, nil
}

func isMissingKey(err error) bool {
	var nsk *s3types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *s3types.NotFound
	return errors.As(err, &nf)
}

// classifyS3Error wraps err in domain.ErrBlobStore with a short reason.
func classifyS3Error(err error, op string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s timed out", domain.ErrBlobStore, op)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %s canceled", domain.ErrBlobStore, op)
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %s failed (code: %s): %v", domain.ErrBlobStore, op, apiErr.ErrorCode(), err)
	}
	return fmt.Errorf("%w: %s failed: %v", domain.ErrBlobStore, op, err)
}
