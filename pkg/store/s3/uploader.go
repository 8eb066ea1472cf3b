package s3

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	s3sdk "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/de-tools/report-atlas/pkg/models/store"
	"github.com/rs/zerolog"
)

// PutObjectAPI is the part of the S3 client the uploader needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3sdk.PutObjectInput, optFns ...func(*s3sdk.Options)) (*s3sdk.PutObjectOutput, error)
}

type Uploader struct {
	api    PutObjectAPI
	bucket string
	prefix string
}

func NewUploader(api PutObjectAPI, bucket, prefix string) (*Uploader, error) {
	if api == nil {
		return nil, fmt.Errorf("s3 client is nil")
	}
	if bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}
	return &Uploader{api: api, bucket: bucket, prefix: strings.Trim(prefix, "/")}, nil
}

// NewUploaderFromEnv builds the S3 client from the default AWS credential chain.
func NewUploaderFromEnv(ctx context.Context, bucket, prefix string) (*Uploader, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return NewUploader(s3sdk.NewFromConfig(cfg), bucket, prefix)
}

func (u *Uploader) Key(name string) string {
	if u.prefix == "" {
		return name
	}
	return path.Join(u.prefix, name)
}

// Upload stores the file and returns its s3:// URI.
func (u *Uploader) Upload(ctx context.Context, file *store.File, metadata map[string]string) (string, error) {
	logger := zerolog.Ctx(ctx)
	if file == nil || file.Name == "" {
		return "", fmt.Errorf("file name is required")
	}

	key := u.Key(file.Name)
	input := &s3sdk.PutObjectInput{
		Bucket:   aws.String(u.bucket),
		Key:      aws.String(key),
		Body:     bytes.NewReader(file.Content),
		Metadata: metadata,
	}
	if file.ContentType != "" {
		input.ContentType = aws.String(file.ContentType)
	}

	if _, err := u.api.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload %s to bucket %s: %w", file.Name, u.bucket, err)
	}

	uri := fmt.Sprintf("s3://%s/%s", u.bucket, key)
	logger.Info().Str("uri", uri).Int("bytes", len(file.Content)).Msg("artifact uploaded")
	return uri, nil
}
