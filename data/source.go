package data

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"taxi-fare-model/config"
)

// Source yields a table of trips truncated to nrows (all rows when nrows <= 0).
type Source interface {
	Load(ctx context.Context, nrows int) (*Table, error)
}

// NewSource picks the source named by cfg.Source. db is only used by the
// postgres source and may be nil otherwise.
func NewSource(ctx context.Context, cfg config.DataConfig, db *sql.DB) (Source, error) {
	switch cfg.Source {
	case "", "local":
		return &LocalSource{Path: cfg.LocalPath}, nil
	case "s3":
		client, err := NewS3Client(ctx, cfg.S3.Region)
		if err != nil {
			return nil, err
		}
		return &S3Source{Client: client, Bucket: cfg.S3.Bucket, Key: cfg.S3.Key}, nil
	case "postgres":
		if db == nil {
			return nil, fmt.Errorf("postgres source: no database connection")
		}
		return &PostgresSource{DB: db, GeohashPrefix: cfg.GeohashPrefix, Area: cfg.GeohashArea}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, cfg.Source)
	}
}

// GetData loads nrows trips from src.
func GetData(ctx context.Context, src Source, nrows int) (*Table, error) {
	table, err := src.Load(ctx, nrows)
	if err != nil {
		return nil, err
	}
	log.Printf("Loaded %d rows from %s", table.Len(), src)
	return table, nil
}

// LocalSource reads a CSV file from disk.
type LocalSource struct {
	Path string
}

func (s *LocalSource) Load(_ context.Context, nrows int) (*Table, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	table, err := ReadCSV(f, nrows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	return table, nil
}

func (s *LocalSource) String() string {
	return s.Path
}

// S3API is the subset of the S3 client used to fetch a CSV object.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// NewS3Client builds an S3 client from the default credential chain. When no
// credentials are configured requests go out unsigned, which is enough for
// public dataset buckets.
func NewS3Client(ctx context.Context, region string) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	if cfg.Credentials == nil {
		cfg.Credentials = aws.AnonymousCredentials{}
	} else if _, err := cfg.Credentials.Retrieve(ctx); err != nil {
		cfg.Credentials = aws.AnonymousCredentials{}
	}
	return s3.NewFromConfig(cfg), nil
}

// S3Source streams a CSV object from a bucket.
type S3Source struct {
	Client S3API
	Bucket string
	Key    string
}

func (s *S3Source) Load(ctx context.Context, nrows int) (*Table, error) {
	out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", s, err)
	}
	defer out.Body.Close()

	table, err := ReadCSV(out.Body, nrows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s, err)
	}
	return table, nil
}

func (s *S3Source) String() string {
	return fmt.Sprintf("s3://%s/%s", s.Bucket, s.Key)
}
