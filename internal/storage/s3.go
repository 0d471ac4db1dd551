package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// S3Client abstracts the S3 API operations used by S3Store.
// The *s3.Client type satisfies this interface.
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Options configures NewS3Client.
type S3Options struct {
	Region       string
	UsePathStyle bool
}

// NewS3Client builds an S3 client from the default AWS credential chain.
func NewS3Client(ctx context.Context, opts S3Options) (*s3.Client, error) {
	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = opts.UsePathStyle
	}), nil
}

// S3Store keeps media in an S3 bucket (or any S3-compatible store) under an
// optional key prefix.
type S3Store struct {
	client S3Client
	bucket string
	prefix string
}

// NewS3Store creates an S3-backed media store. Prefix may be empty.
func NewS3Store(client S3Client, bucket, prefix string) (*S3Store, error) {
	if client == nil {
		return nil, errors.New("storage: s3 client is required")
	}
	if bucket == "" {
		return nil, errors.New("storage: bucket is required")
	}
	return &S3Store{client: client, bucket: bucket, prefix: prefix}, nil
}

func (s *S3Store) key(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + "/" + key
}

// Put uploads the contents of r. The body is buffered so the request carries a
// content length and can be signed.
func (s *S3Store) Put(ctx context.Context, key, mimeType string, r io.Reader) (int64, error) {
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return 0, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("storage: read upload: %w", err)
	}
	in := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key(cleanKey)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if mimeType != "" {
		in.ContentType = aws.String(mimeType)
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return 0, fmt.Errorf("storage: put %s: %w", cleanKey, err)
	}
	return int64(len(data)), nil
}

// Open streams the object stored under key.
func (s *S3Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(cleanKey)),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, fmt.Errorf("storage: open %s: %w", cleanKey, ErrNotFound)
		}
		return nil, fmt.Errorf("storage: open %s: %w", cleanKey, err)
	}
	return out.Body, nil
}

func isS3NotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}
