package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	aterrors "github.com/vango-dev/autotrack/internal/errors"
)

// PutObjectAPI is the part of *s3.Client S3Store uses.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store writes snapshots to an S3 bucket.
//
// Example usage:
//
//	client := snapshot.NewS3Client(snapshot.S3Options{Region: "eu-west-1"})
//	store := snapshot.NewS3Store(client, "my-bucket", "graphs/")
type S3Store struct {
	client PutObjectAPI
	bucket string
	prefix string
}

// NewS3Store creates a store writing to bucket under prefix.
func NewS3Store(client PutObjectAPI, bucket, prefix string) *S3Store {
	return &S3Store{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

// Put uploads data as prefix+name.
func (s *S3Store) Put(ctx context.Context, name string, data []byte) error {
	if s.bucket == "" {
		return ErrNoBucket
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.prefix + name),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(ContentType),
		Metadata: map[string]string{
			"written-at": time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return fmt.Errorf("s3 put %s/%s%s: %w", s.bucket, s.prefix, name, err)
	}
	return nil
}

// S3Options configures NewS3Client.
type S3Options struct {
	Region string
	// Endpoint overrides the S3 endpoint, for MinIO and similar servers.
	Endpoint  string
	PathStyle bool
}

// NewS3Client creates an S3 client. Credentials are read from
// AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN when the
// request is signed.
func NewS3Client(opts S3Options) *s3.Client {
	region := opts.Region
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	if region == "" {
		region = "us-east-1"
	}

	o := s3.Options{
		Region:       region,
		Credentials:  aws.NewCredentialsCache(envCredentials),
		UsePathStyle: opts.PathStyle,
	}
	if opts.Endpoint != "" {
		o.BaseEndpoint = aws.String(opts.Endpoint)
	}
	return s3.New(o)
}

var envCredentials = aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
	creds := aws.Credentials{
		AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		Source:          "environment",
	}
	if !creds.HasKeys() {
		return aws.Credentials{}, fmt.Errorf("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set")
	}
	return creds, nil
})

// Options selects a store. Bucket takes precedence over DB, and DB over
// Dir.
type Options struct {
	Dir       string
	DB        string
	Bucket    string
	Prefix    string
	Region    string
	Endpoint  string
	PathStyle bool
}

// Open returns the store described by opts.
func Open(opts Options) (Store, error) {
	switch {
	case opts.Bucket != "":
		client := NewS3Client(S3Options{
			Region:    opts.Region,
			Endpoint:  opts.Endpoint,
			PathStyle: opts.PathStyle,
		})
		return NewS3Store(client, opts.Bucket, opts.Prefix), nil
	case opts.DB != "":
		store, err := OpenBolt(opts.DB)
		if err != nil {
			return nil, aterrors.New("E201").WithDetailf("opening %s", opts.DB).Wrap(err)
		}
		return store, nil
	case opts.Dir != "":
		store, err := NewFileStore(opts.Dir)
		if err != nil {
			return nil, aterrors.New("E201").WithDetailf("creating %s", opts.Dir).Wrap(err)
		}
		return store, nil
	default:
		return nil, aterrors.New("E202").
			WithSuggestion(`Set "snapshot.dir", "snapshot.db" or "snapshot.bucket" in autotrack.json`)
	}
}
