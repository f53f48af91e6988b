package services

import (
	"context"
	"path"
	"strings"
	"time"

	"socialnet_server/apperr"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const presignExpiry = 5 * time.Minute

// Media upload scopes and the key prefix each one writes under.
var mediaPrefixes = map[string]string{
	"comment": "comments/",
	"post":    "posts/",
}

// MediaService hands out presigned S3 URLs for media attached to posts and comments.
type MediaService struct {
	Bucket    string
	Presigner *s3.PresignClient
	Now       func() time.Time
}

// NewS3Client builds an S3 client from the default AWS credential chain.
func NewS3Client(ctx context.Context, region string) (*s3.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(cfg), nil
}

func NewMediaService(client *s3.Client, bucket string) *MediaService {
	return &MediaService{Bucket: bucket, Presigner: s3.NewPresignClient(client), Now: time.Now}
}

// GenerateUploadURL generates a presigned PUT URL and the object key it writes.
func (m *MediaService) GenerateUploadURL(ctx context.Context, scope, fileName, fileType string) (string, string, error) {
	prefix, ok := mediaPrefixes[scope]
	if !ok {
		return "", "", apperr.Invalid("invalid media scope %q", scope)
	}
	if fileName == "" || fileType == "" {
		return "", "", apperr.Invalid("fileName and fileType are required")
	}
	if m.Bucket == "" {
		return "", "", apperr.New(apperr.CodeInternal, "media bucket is not configured")
	}

	name := strings.ReplaceAll(path.Base(fileName), " ", "_")
	key := prefix + utcNow(m.Now).Format("20060102150405") + "-" + uuid.NewString()[:8] + "-" + name
	params := &s3.PutObjectInput{
		Bucket:      aws.String(m.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(fileType),
	}
	presignedURL, err := m.Presigner.PresignPutObject(ctx, params, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", "", err
	}
	return presignedURL.URL, key, nil
}

// GenerateReadURL generates a presigned GET URL for key.
func (m *MediaService) GenerateReadURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", apperr.Invalid("key is required")
	}
	params := &s3.GetObjectInput{
		Bucket: aws.String(m.Bucket),
		Key:    aws.String(key),
	}
	presignedURL, err := m.Presigner.PresignGetObject(ctx, params, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", err
	}
	return presignedURL.URL, nil
}
