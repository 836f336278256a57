package seed

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// fileLoader reads a seed menu from the local file system.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based seed loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "seed-loader").Logger(),
	}
}

// Load reads a JSON seed file, gzipped when its name ends in .gz.
func (l *fileLoader) Load(ctx context.Context, path string) (*Menu, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.logger.Info().Str("file", path).Msg("loading seed file")

	file, err := os.Open(path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to open seed file")
		return nil, fmt.Errorf("failed to open seed file %s: %w", path, err)
	}
	defer file.Close()

	return decode(file, path)
}

// ObjectGetter is the subset of the S3 client used by the S3 loader.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// s3Loader reads a seed menu from an S3 bucket.
type s3Loader struct {
	client ObjectGetter
	bucket string
	logger zerolog.Logger
}

// NewS3Loader creates a seed loader backed by the default AWS credential chain.
func NewS3Loader(ctx context.Context, bucket, region string, logger zerolog.Logger) (Loader, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return NewS3LoaderWithClient(s3.NewFromConfig(cfg), bucket, logger), nil
}

// NewS3LoaderWithClient creates a seed loader using client.
func NewS3LoaderWithClient(client ObjectGetter, bucket string, logger zerolog.Logger) Loader {
	return &s3Loader{
		client: client,
		bucket: bucket,
		logger: logger.With().Str("component", "s3-seed-loader").Logger(),
	}
}

// Load fetches the object at key and decodes it.
func (l *s3Loader) Load(ctx context.Context, key string) (*Menu, error) {
	l.logger.Info().Str("bucket", l.bucket).Str("key", key).Msg("loading seed from S3")

	result, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object from S3 (bucket=%s, key=%s): %w", l.bucket, key, err)
	}
	defer result.Body.Close()

	return decode(result.Body, key)
}

// fallbackLoader tries S3 first, then the local file system.
type fallbackLoader struct {
	s3Loader   Loader
	fileLoader Loader
	s3Prefix   string
	logger     zerolog.Logger
}

// NewFallbackLoader creates a loader that tries S3 first, then falls back to local file system.
// A nil s3Loader means only the file loader is used.
func NewFallbackLoader(s3Loader, fileLoader Loader, s3Prefix string, logger zerolog.Logger) Loader {
	return &fallbackLoader{
		s3Loader:   s3Loader,
		fileLoader: fileLoader,
		s3Prefix:   s3Prefix,
		logger:     logger.With().Str("component", "fallback-seed-loader").Logger(),
	}
}

// Load resolves the base name of path against S3 (with the prefix prepended)
// and then the full path locally.
func (l *fallbackLoader) Load(ctx context.Context, path string) (*Menu, error) {
	if l.s3Loader != nil {
		key := l.s3Prefix + filepath.Base(path)
		menu, err := l.s3Loader.Load(ctx, key)
		if err == nil {
			return menu, nil
		}
		l.logger.Warn().Err(err).Str("s3_key", key).Msg("failed to load from S3, falling back to local file system")
	}

	return l.fileLoader.Load(ctx, path)
}
