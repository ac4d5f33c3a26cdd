// Package storage uploads gallery photos to an S3-compatible bucket (AWS
// S3 or Cloudflare R2) and returns their public URLs.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/VyasaPraveen/Pragathi-CRM/internal/config"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/timeutil"
)

// MaxUploadBytes caps a single photo.
const MaxUploadBytes = 10 << 20

// KeyPrefix is where every uploaded photo lives in the bucket.
const KeyPrefix = "gallery/"

var (
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrTooLarge        = errors.New("image too large")
	ErrForeignKey      = errors.New("key outside gallery")
)

// IsGalleryKey reports whether key names an uploaded photo.
func IsGalleryKey(key string) bool {
	return strings.HasPrefix(key, KeyPrefix) && path.Clean(key) == key && !strings.Contains(key, "..")
}

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Object is an uploaded photo.
type Object struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// Gallery stores photos in one bucket.
type Gallery struct {
	client     *s3.Client
	bucket     string
	publicBase string
	now        func() time.Time
}

// New builds a gallery store from config. The endpoint is optional; R2
// and MinIO need it, AWS does not.
func New(ctx context.Context, cfg config.Storage) (*Gallery, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("storage bucket and keys required")
	}
	region := cfg.Region
	if region == "" {
		region = "auto"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load storage config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newGallery(client, cfg.Bucket, publicBase(cfg)), nil
}

func newGallery(client *s3.Client, bucket, base string) *Gallery {
	return &Gallery{client: client, bucket: bucket, publicBase: strings.TrimRight(base, "/"), now: timeutil.Now}
}

// publicBase is where uploaded keys are served from: the configured public
// URL, or the bucket under the endpoint.
func publicBase(cfg config.Storage) string {
	if cfg.PublicBaseURL != "" {
		return cfg.PublicBaseURL
	}
	if cfg.Endpoint != "" {
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}
	return "https://" + cfg.Bucket + ".s3." + cfg.Region + ".amazonaws.com"
}

// Upload stores body under gallery/<yyyy>/<mm>/<uuid><ext>.
func (g *Gallery) Upload(ctx context.Context, contentType string, body io.Reader) (Object, error) {
	contentType = strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	ext, ok := extensions[contentType]
	if !ok {
		return Object{}, fmt.Errorf("%w: %q", ErrUnsupportedType, contentType)
	}

	data, err := io.ReadAll(io.LimitReader(body, MaxUploadBytes+1))
	if err != nil {
		return Object{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) > MaxUploadBytes {
		return Object{}, ErrTooLarge
	}

	key := path.Join(KeyPrefix, g.now().Format("2006/01"), uuid.NewString()+ext)
	_, err = g.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(g.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return Object{}, fmt.Errorf("put %s: %w", key, err)
	}
	return Object{Key: key, URL: g.publicBase + "/" + key}, nil
}

// Delete removes an uploaded photo. Keys outside the gallery prefix are
// refused so a stored row can never reach other objects in the bucket.
func (g *Gallery) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	if !IsGalleryKey(key) {
		return fmt.Errorf("%w: %q", ErrForeignKey, key)
	}
	_, err := g.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(g.bucket),
		Key:    aws.String(key),
	})
	return err
}

// Ping checks the bucket is reachable.
func (g *Gallery) Ping(ctx context.Context) error {
	_, err := g.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(g.bucket)})
	return err
}
