package mirror

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const (
	// DefaultKey is the object key used when none is configured.
	DefaultKey = "events.json"

	// DefaultCacheControl keeps downstream caches fresh for five minutes.
	DefaultCacheControl = "public, max-age=300"
)

// ErrNoBucket is returned by NewS3 when no bucket is configured.
var ErrNoBucket = errors.New("s3 mirror has no bucket")

// putObjectAPI is the part of the S3 client the mirror uses.
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Options configures an S3 mirror.
type S3Options struct {
	Bucket       string
	Key          string
	Region       string
	Profile      string
	CacheControl string
}

// S3 uploads the feed as a single object.
type S3 struct {
	client       putObjectAPI
	bucket       string
	key          string
	cacheControl string
}

// NewS3 creates an S3 mirror using the default AWS credential chain, optionally
// pinned to a shared config profile and region.
func NewS3(ctx context.Context, opts S3Options) (*S3, error) {
	if opts.Bucket == "" {
		return nil, ErrNoBucket
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(opts.Profile))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	if opts.Region != "" {
		cfg.Region = opts.Region
	}

	return newS3WithClient(s3.NewFromConfig(cfg), opts), nil
}

func newS3WithClient(client putObjectAPI, opts S3Options) *S3 {
	key := strings.TrimPrefix(opts.Key, "/")
	if key == "" {
		key = DefaultKey
	}
	cacheControl := opts.CacheControl
	if cacheControl == "" {
		cacheControl = DefaultCacheControl
	}
	return &S3{
		client:       client,
		bucket:       opts.Bucket,
		key:          key,
		cacheControl: cacheControl,
	}
}

// Name returns the object URL.
func (m *S3) Name() string {
	return fmt.Sprintf("s3://%s/%s", m.bucket, m.key)
}

// Publish uploads data as application/json.
func (m *S3) Publish(ctx context.Context, data []byte) error {
	_, err := m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(m.bucket),
		Key:          aws.String(m.key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String("application/json"),
		CacheControl: aws.String(m.cacheControl),
		Metadata: map[string]string{
			"uploaded-by": "svb-events",
			"upload-time": time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	return nil
}
