// Copyright (c) 2026 Vidora. All rights reserved.

/*
Package blob provides object storage for user-uploaded media assets.

Avatars and cover images are uploaded to an S3-compatible bucket (MinIO,
Cloudflare R2, AWS S3) and served from a public base URL. The rest of the
application treats the resulting URLs as opaque strings.
*/
package blob

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Store is the contract for publishing a local file as a public asset.
type Store interface {
	/*
		Upload publishes the file at localPath and returns its public URL.

		Parameters:
		  - context: context.Context
		  - localPath: string (Path to a readable local file)

		Returns:
		  - string: Publicly reachable URL of the stored object
		  - error: Upload or connectivity failures
	*/
	Upload(context context.Context, localPath string) (string, error)
}

// S3Config holds the connection settings for an S3-compatible bucket.
type S3Config struct {
	Bucket        string
	Region        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
}

// S3Store implements [Store] on top of the AWS SDK v2 S3 client.
type S3Store struct {
	client *s3.Client
	config S3Config
}

// NewS3Store builds an S3 client for the configured bucket.
//
// A custom endpoint switches the client to path-style addressing, which is
// what MinIO and most self-hosted S3 gateways expect.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	loadOptions := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		loadOptions = append(loadOptions, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOptions...)
	if err != nil {
		return nil, fmt.Errorf("blob: failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(options *s3.Options) {
		if cfg.Endpoint != "" {
			options.BaseEndpoint = aws.String(cfg.Endpoint)
			options.UsePathStyle = true
		}
	})

	return &S3Store{client: client, config: cfg}, nil
}

// Upload publishes a local file under a time-partitioned, collision-free key.
func (store *S3Store) Upload(ctx context.Context, localPath string) (string, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("blob: failed to open %s: %w", localPath, err)
	}
	defer func() { _ = file.Close() }()

	key := storageKey(filepath.Ext(localPath))

	contentType := mime.TypeByExtension(filepath.Ext(localPath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = store.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(store.config.Bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("blob: failed to upload object: %w", err)
	}

	return store.config.PublicBaseURL + "/" + key, nil
}

// storageKey produces a time-partitioned object key, e.g.
// "media/2026/08/30/<uuid>.png". Partitioning keeps bucket listings usable.
func storageKey(extension string) string {
	now := time.Now().UTC()
	return fmt.Sprintf("media/%04d/%02d/%02d/%s%s",
		now.Year(), now.Month(), now.Day(), uuid.New(), extension)
}
