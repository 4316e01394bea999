package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectStore persists encoded files under a slash-separated key
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte) (string, error)
}

// LocalStore writes objects below a directory
type LocalStore struct {
	dir string
}

// NewLocalStore creates a store rooted at dir
func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{dir: dir}
}

// Put writes data to dir/key and returns the file path
func (s *LocalStore) Put(_ context.Context, key string, data []byte) (string, error) {
	path := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write export file: %w", err)
	}
	return path, nil
}

// S3API is the part of the s3 client the store uses
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store uploads objects to a bucket
type S3Store struct {
	client      S3API
	bucket      string
	compression string
}

// NewS3Store creates a store on an existing client
func NewS3Store(client S3API, bucket, compression string) *S3Store {
	return &S3Store{client: client, bucket: bucket, compression: compression}
}

// NewS3StoreFromEnv loads the default AWS credential chain for region
func NewS3StoreFromEnv(ctx context.Context, bucket, region, compression string) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewS3Store(s3.NewFromConfig(awsCfg), bucket, compression), nil
}

// Put uploads data and returns its s3:// location
func (s *S3Store) Put(ctx context.Context, key string, data []byte) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/octet-stream"),
		Metadata: map[string]string{
			"content-type": "parquet",
			"compression":  s.compression,
		},
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}
