package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	aws_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/SnehitGunjikar/RFP-Management-System/internal/config"
)

// IEmailArchive stores raw inbound emails.
type IEmailArchive interface {
	// Put stores raw and returns its object key.
	Put(ctx context.Context, rfpID, vendorID string, raw []byte) (string, error)
}

// PutObjectAPI is the part of the S3 client the archive needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// s3Archive implements IEmailArchive on an S3 bucket.
type s3Archive struct {
	client PutObjectAPI
	bucket string
	prefix string
	now    func() time.Time
}

// NewS3Archive creates the archive from config, using static credentials when given.
func NewS3Archive(ctx context.Context, cfg *config.Config) (IEmailArchive, error) {
	opts := []func(*aws_config.LoadOptions) error{}
	if cfg.AwsRegion != "" {
		opts = append(opts, aws_config.WithRegion(cfg.AwsRegion))
	}
	if cfg.AwsAccessKeyID != "" {
		opts = append(opts, aws_config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AwsAccessKeyID,
			cfg.AwsSecretAccessKey,
			"",
		)))
	}
	awsCfg, err := aws_config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewArchive(s3.NewFromConfig(awsCfg), cfg.EmailArchiveBucket, cfg.EmailArchivePrefix), nil
}

// NewArchive wraps an existing S3 client.
func NewArchive(client PutObjectAPI, bucket, prefix string) IEmailArchive {
	return &s3Archive{client: client, bucket: bucket, prefix: prefix, now: time.Now}
}

// ObjectKey is {prefix}{rfpID}/{yyyy-mm-dd}/{vendorID}-{uuid}.eml
func (a *s3Archive) objectKey(rfpID, vendorID string) string {
	day := a.now().UTC().Format("2006-01-02")
	name := fmt.Sprintf("%s-%s.eml", vendorID, uuid.NewString())
	return strings.TrimPrefix(a.prefix+path.Join(rfpID, day, name), "/")
}

func (a *s3Archive) Put(ctx context.Context, rfpID, vendorID string, raw []byte) (string, error) {
	key := a.objectKey(rfpID, vendorID)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(raw),
		ContentType: aws.String("message/rfc822"),
		Metadata: map[string]string{
			"rfp-id":    rfpID,
			"vendor-id": vendorID,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to archive email to s3://%s/%s: %w", a.bucket, key, err)
	}
	return key, nil
}
