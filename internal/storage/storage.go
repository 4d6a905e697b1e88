// Package storage saves uploaded article images.
package storage

import (
	"context"        // Context for uploads
	"errors"         // Error values
	"fmt"            // Error wrapping
	"io"             // Copying uploads
	"io/fs"          // Missing file detection
	"mime/multipart" // Uploaded files
	"net/url"        // URL path escaping
	"os"             // Local files
	"path/filepath"  // Upload paths
	"strings"        // URL trimming

	"blog_system/internal/config" // Custom package for configuration

	"github.com/aws/aws-sdk-go-v2/aws"              // AWS value helpers
	awsconfig "github.com/aws/aws-sdk-go-v2/config" // AWS config loading
	"github.com/aws/aws-sdk-go-v2/credentials"      // Static S3 credentials
	"github.com/aws/aws-sdk-go-v2/service/s3"       // S3 client
	"github.com/google/uuid"                        // Fallback file names
)

// Backend names
const (
	BackendLocal = "local"
	BackendS3    = "s3"
)

// ErrInvalidFilename is returned when nothing usable is left of the upload's name
var ErrInvalidFilename = errors.New("invalid file name")

// Uploader stores an uploaded file and reports where it can be fetched.
// Files with the same sanitised name overwrite each other.
type Uploader interface {
	Save(ctx context.Context, fh *multipart.FileHeader) (string, error)
	Remove(ctx context.Context, name string) error
	URL(name string) string
}

// New builds the uploader selected by cfg.UploadBackend
func New(ctx context.Context, cfg *config.Config) (Uploader, error) {
	switch cfg.UploadBackend {
	case BackendLocal, "":
		return NewLocalStorage(cfg.UploadDir, "/static/uploads"), nil
	case BackendS3:
		return NewS3Storage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported UPLOAD_BACKEND %q", cfg.UploadBackend)
	}
}

// LocalStorage writes uploads into a directory
type LocalStorage struct {
	dir       string
	urlPrefix string
}

// NewLocalStorage creates a LocalStorage rooted at dir, served under urlPrefix
func NewLocalStorage(dir, urlPrefix string) *LocalStorage {
	return &LocalStorage{dir: dir, urlPrefix: strings.TrimSuffix(urlPrefix, "/")}
}

// Dir returns the upload directory
func (s *LocalStorage) Dir() string { return s.dir }

func (s *LocalStorage) Save(_ context.Context, fh *multipart.FileHeader) (string, error) {
	name, err := storedName(fh.Filename, uuid.NewString)
	if err != nil {
		return "", err
	}
	// Create the upload directory on first use
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close() // Close the multipart file

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	return name, nil
}

// Remove deletes a stored upload; a missing file is not an error
func (s *LocalStorage) Remove(_ context.Context, name string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}

func (s *LocalStorage) URL(name string) string {
	return s.urlPrefix + "/" + url.PathEscape(name)
}

// objectAPI is the part of *s3.Client S3Storage uses
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Storage puts uploads into an S3 (or S3 compatible) bucket
type S3Storage struct {
	client    objectAPI
	bucket    string
	prefix    string
	publicURL string
}

// NewS3Storage configures an S3 client from cfg. Static credentials and a
// custom endpoint (e.g. MinIO) are optional.
func NewS3Storage(ctx context.Context, cfg *config.Config) (*S3Storage, error) {
	if cfg.S3Bucket == "" {
		return nil, errors.New("S3_BUCKET is required for the s3 upload backend")
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.S3Region)}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	publicURL := cfg.S3PublicURL
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.S3Region)
	}
	return newS3Storage(client, cfg.S3Bucket, cfg.S3Prefix, publicURL), nil
}

func newS3Storage(client objectAPI, bucket, prefix, publicURL string) *S3Storage {
	return &S3Storage{
		client:    client,
		bucket:    bucket,
		prefix:    prefix,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}
}

func (s *S3Storage) Save(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	name, err := storedName(fh.Filename, uuid.NewString)
	if err != nil {
		return "", err
	}
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	in := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.prefix + name),
		Body:          src,
		ContentLength: aws.Int64(fh.Size),
	}
	if ct := fh.Header.Get("Content-Type"); ct != "" {
		in.ContentType = aws.String(ct)
	}
	// Upload the object
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return "", fmt.Errorf("put %s: %w", name, err)
	}
	return name, nil
}

// Remove deletes the object stored under name
func (s *S3Storage) Remove(ctx context.Context, name string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.prefix + name),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	return nil
}

func (s *S3Storage) URL(name string) string {
	return s.publicURL + "/" + s.prefix + url.PathEscape(name)
}
