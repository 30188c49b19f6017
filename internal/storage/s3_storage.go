package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	aws_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"github.com/hasanRafi2002/asgn-12-server/internal/config"
)

// PresignExpiry is how long an upload URL stays valid.
const PresignExpiry = 15 * time.Minute

var (
	// ErrObjectNotFound is returned when the key does not exist in the bucket.
	ErrObjectNotFound = errors.New("storage: object not found")
	// ErrObjectTooLarge is returned by GetObject when the object exceeds maxBytes.
	ErrObjectTooLarge = errors.New("storage: object too large")
)

// IS3Storage defines the object storage used for property images.
type IS3Storage interface {
	// GeneratePresignedPutURL returns an upload URL and the object key it writes to.
	GeneratePresignedPutURL(ctx context.Context, owner, filename, contentType string) (string, string, error)
	GetObject(ctx context.Context, key string, maxBytes int64) ([]byte, string, error)
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
	// PublicURL is the browser-facing URL of key.
	PublicURL(key string) string
	// KeyFromURL reverses PublicURL; ok is false for URLs outside the bucket.
	KeyFromURL(rawURL string) (key string, ok bool)
}

type s3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type presignAPI interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// s3Storage implements IS3Storage.
type s3Storage struct {
	bucket        string
	baseURL       string
	s3Client      s3API
	presignClient presignAPI
}

// NewS3Storage creates a new S3 storage service from static credentials in cfg.
func NewS3Storage(ctx context.Context, cfg *config.Config) (IS3Storage, error) {
	awsCfg, err := aws_config.LoadDefaultConfig(ctx,
		aws_config.WithRegion(cfg.AwsRegion),
		aws_config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AwsAccessKeyID,
			cfg.AwsSecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg)
	baseURL := cfg.ImageBaseS3URL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.AwsS3Bucket, cfg.AwsRegion)
	}
	return newS3Storage(cfg.AwsS3Bucket, baseURL, s3Client, s3.NewPresignClient(s3Client)), nil
}

func newS3Storage(bucket, baseURL string, client s3API, presigner presignAPI) *s3Storage {
	return &s3Storage{
		bucket:        bucket,
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		s3Client:      client,
		presignClient: presigner,
	}
}

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// sanitizeSegment keeps a single safe path segment out of user input.
func sanitizeSegment(s string) string {
	s = path.Base(strings.ReplaceAll(s, "\\", "/"))
	s = unsafeKeyChars.ReplaceAllString(s, "_")
	s = strings.Trim(s, "._")
	if s == "" {
		return "file"
	}
	return s
}

func (s *s3Storage) GeneratePresignedPutURL(ctx context.Context, owner, filename, contentType string) (string, string, error) {
	objectKey := fmt.Sprintf("uploads/properties/%s/%s_%s", sanitizeSegment(owner), uuid.NewString(), sanitizeSegment(filename))

	presignedReq, err := s.presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(PresignExpiry))
	if err != nil {
		return "", "", fmt.Errorf("failed to generate presigned PUT URL for key %s: %w", objectKey, err)
	}
	return presignedReq.URL, objectKey, nil
}

func (s *s3Storage) GetObject(ctx context.Context, key string, maxBytes int64) ([]byte, string, error) {
	out, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, "", ErrObjectNotFound
		}
		return nil, "", fmt.Errorf("failed to get object %s: %w", key, err)
	}
	defer out.Body.Close()

	// Read one byte past the limit to detect oversized objects without buffering them whole.
	data, err := io.ReadAll(io.LimitReader(out.Body, maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read object %s: %w", key, err)
	}
	if int64(len(data)) > maxBytes {
		return nil, "", ErrObjectTooLarge
	}
	return data, aws.ToString(out.ContentType), nil
}

func (s *s3Storage) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", key, err)
	}
	return nil
}

func (s *s3Storage) PublicURL(key string) string {
	return s.baseURL + "/" + key
}

func (s *s3Storage) KeyFromURL(rawURL string) (string, bool) {
	if s.baseURL == "" || !strings.HasPrefix(rawURL, s.baseURL+"/") {
		return "", false
	}
	key := strings.TrimPrefix(rawURL, s.baseURL+"/")
	if i := strings.IndexAny(key, "?#"); i >= 0 {
		key = key[:i]
	}
	return key, key != ""
}
