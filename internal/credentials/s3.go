package credentials

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"alcyxob/tiktok-uploader/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config" // Alias config to avoid clash
	awsCreds "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// s3Store reads cookie objects from an S3-compatible bucket. Useful when the
// cookie capture job runs elsewhere and publishes into object storage instead
// of a shared volume.
type s3Store struct {
	client     *s3.Client
	bucketName string
	prefix     string
	ext        string
}

// NewS3Store creates a Store backed by an S3-compatible bucket.
func NewS3Store(cfg config.S3Config, cookies config.CookiesConfig) (Store, error) {
	// Custom resolver for S3-compatible endpoints (like MinIO, DigitalOcean Spaces)
	customResolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		if cfg.Endpoint != "" {
			return aws.Endpoint{
				PartitionID:   "aws",
				URL:           cfg.Endpoint,
				SigningRegion: cfg.Region,
			}, nil
		}
		// Fallback to default AWS endpoint resolution if no custom endpoint is set
		return aws.Endpoint{}, &aws.EndpointNotFoundError{}
	})

	awsSDKConfig, err := awsCfg.LoadDefaultConfig(context.TODO(),
		awsCfg.WithRegion(cfg.Region),
		awsCfg.WithCredentialsProvider(awsCreds.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		awsCfg.WithEndpointResolverWithOptions(customResolver),
	)
	if err != nil {
		return nil, fmt.Errorf("load AWS SDK config: %w", err)
	}

	// Force path-style addressing required by most S3-compatible services (like MinIO)
	s3Client := s3.NewFromConfig(awsSDKConfig, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	return &s3Store{
		client:     s3Client,
		bucketName: cfg.BucketName,
		prefix:     cookies.Prefix,
		ext:        cookies.Ext,
	}, nil
}

func (s *s3Store) key(accountName string) string {
	return FileName(s.prefix, accountName, s.ext)
}

func (s *s3Store) Exists(ctx context.Context, accountName string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(s.key(accountName)),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("head cookie object: %w", err)
	}
	return true, nil
}

func (s *s3Store) Stage(ctx context.Context, accountName string, destPath string) error {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(s.key(accountName)),
	})
	if err != nil {
		if isNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("get cookie object: %w", err)
	}
	defer out.Body.Close()

	dst, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create staged cookie file: %w", err)
	}

	if _, err := io.Copy(dst, out.Body); err != nil {
		dst.Close()
		os.Remove(destPath)
		return fmt.Errorf("copy cookie object: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(destPath)
		return fmt.Errorf("close staged cookie file: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	return errors.As(err, &notFound) || errors.As(err, &noSuchKey)
}
