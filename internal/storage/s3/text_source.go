package s3

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"registrum/internal/config"
	"registrum/internal/domain"
)

const defaultMaxTextMB = 10

// TextSource reads OCR'd document texts stored as UTF-8 objects.
type TextSource struct {
	client        *s3.Client
	defaultBucket string
	maxBytes      int64
}

// NewTextSource creates an S3-backed port.TextSource.
func NewTextSource(ctx context.Context, cfg *config.S3Config) (*TextSource, error) {
	var opts []func(*awsconfig.LoadOptions) error
	opts = append(opts, awsconfig.WithRegion(cfg.Region))

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	maxMB := cfg.MaxTextMB
	if maxMB <= 0 {
		maxMB = defaultMaxTextMB
	}
	return &TextSource{
		client:        s3.NewFromConfig(awsCfg, s3Opts...),
		defaultBucket: cfg.Bucket,
		maxBytes:      maxMB << 20,
	}, nil
}

// FetchText downloads one text object. An empty bucket uses the configured default.
// The filename of the result is the base name of key.
func (s *TextSource) FetchText(ctx context.Context, bucket, key string) (*domain.TextInput, error) {
	if bucket == "" {
		bucket = s.defaultBucket
	}
	key = strings.TrimPrefix(key, "/")
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("%w: bucket and key are required", domain.ErrInvalidInput)
	}

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: s3 download %s: %v", domain.ErrTextSourceUnavailable, key, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(io.LimitReader(result.Body, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: s3 download read %s: %v", domain.ErrTextSourceUnavailable, key, err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", domain.ErrInvalidInput, key, s.maxBytes)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: %s is not UTF-8 text", domain.ErrInvalidInput, key)
	}

	return &domain.TextInput{
		Filename: path.Base(key),
		Text:     string(data),
	}, nil
}
