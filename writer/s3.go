package writer

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconfig "priceflow/config"
	"priceflow/logger"
)

// Uploader ships pipeline outputs (parquet tables, model artifacts) to
// an S3 bucket when storage.s3 is enabled.
type Uploader struct {
	client *s3.Client
	bucket string
	prefix string
	log    *logger.Log
}

// NewUploader configures the AWS SDK and validates credentials. Returns
// nil without error when S3 storage is disabled.
func NewUploader(ctx context.Context, cfg *appconfig.Config) (*Uploader, error) {
	if !cfg.Storage.S3.Enabled {
		return nil, nil
	}
	log := logger.GetLogger()

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Storage.S3.Region),
	}
	if cfg.Storage.S3.AccessKeyID != "" && cfg.Storage.S3.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.Storage.S3.AccessKeyID,
				cfg.Storage.S3.SecretAccessKey,
				"",
			),
		))
	}

	awsConfig, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		log.WithComponent("s3_uploader").WithError(err).Warn("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	if _, err := awsConfig.Credentials.Retrieve(ctx); err != nil {
		return nil, fmt.Errorf("failed to retrieve AWS credentials: %w", err)
	}

	return &Uploader{
		client: s3.NewFromConfig(awsConfig),
		bucket: cfg.Storage.S3.Bucket,
		prefix: cfg.Storage.S3.Prefix,
		log:    log,
	}, nil
}

// Upload puts a single object under the configured prefix.
func (u *Uploader) Upload(ctx context.Context, key string, body []byte, contentType string) error {
	fullKey := path.Join(u.prefix, key)
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(fullKey),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("upload s3://%s/%s: %w", u.bucket, fullKey, err)
	}
	u.log.WithComponent("s3_uploader").WithFields(logger.Fields{
		"bucket": u.bucket,
		"key":    fullKey,
		"bytes":  len(body),
	}).Info("uploaded object")
	return nil
}
