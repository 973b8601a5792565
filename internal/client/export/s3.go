// Package export uploads dashboard snapshots to S3-compatible object storage.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/userdash/internal/client/models"
	"github.com/google/uuid"
)

// ErrDisabled is returned by New when no bucket is configured.
var ErrDisabled = errors.New("export disabled")

type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Config struct {
	Region    string
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, endpoint string) PutObjectAPI {
		return s3.NewFromConfig(cfg, func(o *s3.Options) {
			if endpoint != "" {
				o.BaseEndpoint = aws.String(endpoint)
				o.UsePathStyle = true
			}
		})
	}
)

type Exporter struct {
	api    PutObjectAPI
	bucket string
	now    func() time.Time
	newID  func() string
}

// New builds an S3 client from cfg. Static credentials are used when an
// access key is set; otherwise the default AWS credential chain applies.
func New(ctx context.Context, cfg Config) (*Exporter, error) {
	if cfg.Bucket == "" {
		return nil, ErrDisabled
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return NewWithClient(newS3ClientFromConfig(awsCfg, cfg.Endpoint), cfg.Bucket), nil
}

func NewWithClient(api PutObjectAPI, bucket string) *Exporter {
	return &Exporter{
		api:    api,
		bucket: bucket,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

func (e *Exporter) storageKey() string {
	d := e.now().UTC()
	return fmt.Sprintf("dashboards/%04d/%02d/%02d/%s.json", d.Year(), d.Month(), d.Day(), e.newID())
}

// Export writes snap as JSON and returns the object key.
func (e *Exporter) Export(ctx context.Context, snap *models.DashboardSnapshot) (string, error) {
	body, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}

	key := e.storageKey()
	_, err = e.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return key, nil
}
