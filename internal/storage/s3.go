// Package storage writes profile documents to S3-compatible object storage and
// hands out presigned retrieval URLs.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/dmitrijs2005/profilevault/internal/common"
)

// S3API is the subset of *s3.Client used by S3Store.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	CreateBucket(ctx context.Context, in *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

// PresignAPI is the subset of *s3.PresignClient used by S3Store.
type PresignAPI interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

var (
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}
)

// S3Store is an object store bound to a single bucket.
type S3Store struct {
	client      S3API
	presign     PresignAPI
	bucket      string
	region      string
	contentType string
}

// NewS3Store builds an S3Store from cfg. Path-style addressing is used so
// LocalStack and MinIO endpoints resolve without virtual-host DNS.
func NewS3Store(cfg aws.Config, bucket string) *S3Store {
	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})
	return NewS3StoreWithClients(client, newS3PresignClient(client), bucket, cfg.Region)
}

func NewS3StoreWithClients(client S3API, presign PresignAPI, bucket, region string) *S3Store {
	return &S3Store{
		client:      client,
		presign:     presign,
		bucket:      bucket,
		region:      region,
		contentType: common.PDFContentType,
	}
}

func (s *S3Store) Bucket() string { return s.bucket }

// Put writes body under key, replacing any existing object.
func (s *S3Store) Put(ctx context.Context, key string, body []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(s.contentType),
	})
	if err != nil {
		return fmt.Errorf("put object %q: %w: %w", key, common.ErrStoreUnavailable, err)
	}
	return nil
}

// Get reads the object at key. A missing object yields common.ErrorNotFound.
func (s *S3Store) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("get object %q: %w: %w", key, common.ErrStoreUnavailable, err)
	}
	defer out.Body.Close()

	b, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read object %q: %w", key, err)
	}
	return b, nil
}

// PresignGet returns a GET URL for key valid for ttl. The object need not
// exist yet.
func (s *S3Store) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("presign get %q: %w", key, err)
	}
	return req.URL, nil
}

// EnsureBucket creates the bucket, treating "already exists" as success.
// Any other failure wraps common.ErrProvisioning.
func (s *S3Store) EnsureBucket(ctx context.Context) error {
	in := &s3.CreateBucketInput{Bucket: aws.String(s.bucket)}
	if s.region != "" && s.region != "us-east-1" {
		in.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(s.region),
		}
	}

	_, err := s.client.CreateBucket(ctx, in)
	if err == nil || isBucketExists(err) {
		return nil
	}
	return fmt.Errorf("create bucket %q: %w: %w", s.bucket, common.ErrProvisioning, err)
}

func isBucketExists(err error) bool {
	var owned *types.BucketAlreadyOwnedByYou
	var exists *types.BucketAlreadyExists
	if errors.As(err, &owned) || errors.As(err, &exists) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "BucketAlreadyOwnedByYou", "BucketAlreadyExists":
			return true
		}
	}
	return false
}
