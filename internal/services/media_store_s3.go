package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"axion/interview-evaluator/internal/config"
)

// objectPutter is the part of *s3.Client the media store needs.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type s3MediaStore struct {
	client        objectPutter
	bucket        string
	prefix        string
	publicBaseURL string
}

// NewS3MediaStore builds a store for S3 or any S3 compatible endpoint such as
// Cloudflare R2.
func NewS3MediaStore(ctx context.Context, cfg config.S3Config) (MediaStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3MediaStore(client, cfg), nil
}

func newS3MediaStore(client objectPutter, cfg config.S3Config) *s3MediaStore {
	return &s3MediaStore{
		client:        client,
		bucket:        cfg.Bucket,
		prefix:        normalizePrefix(cfg.Prefix),
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}
}

// Upload implements MediaStore.
func (s *s3MediaStore) Upload(ctx context.Context, r io.Reader, folder, publicID, contentType string) (*UploadResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, uploadError("s3", err)
	}

	key := mediaKey(folder, publicID, contentType)
	objectKey := applyPrefix(s.prefix, key)

	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, uploadError(fmt.Sprintf("s3 put object bucket=%s key=%s", s.bucket, objectKey), err)
	}

	return &UploadResult{
		SecureURL: s.publicBaseURL + "/" + objectKey,
		Key:       objectKey,
	}, nil
}

func normalizePrefix(prefix string) string {
	return strings.Trim(strings.TrimSpace(prefix), "/")
}

func applyPrefix(prefix, key string) string {
	cleanPrefix := strings.Trim(prefix, "/")
	cleanKey := strings.TrimLeft(key, "/")
	if cleanPrefix == "" {
		return cleanKey
	}
	if cleanKey == "" {
		return cleanPrefix
	}
	return cleanPrefix + "/" + cleanKey
}
