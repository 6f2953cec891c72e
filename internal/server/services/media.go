package services

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/postplanner/internal/common"
	sc "github.com/dmitrijs2005/postplanner/internal/server/config"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}

	newGCSClient = func(ctx context.Context, opts ...option.ClientOption) (*storage.Client, error) {
		return storage.NewClient(ctx, opts...)
	}

	signGCSURL = func(b *storage.BucketHandle, key string, opts *storage.SignedURLOptions) (string, error) {
		return b.SignedURL(key, opts)
	}
)

// UploadTicket tells the client where to PUT a video and which durable URL
// to record once the upload succeeded.
type UploadTicket struct {
	Key       string
	UploadURL string
	Method    string
	Headers   map[string]string
	MediaURL  string
}

// Presigner issues time-limited upload URLs for object keys.
type Presigner interface {
	PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (url string, headers map[string]string, err error)
}

// S3Presigner signs uploads for S3-compatible storage such as MinIO.
type S3Presigner struct {
	config *sc.Config
}

func NewS3Presigner(cfg *sc.Config) *S3Presigner {
	return &S3Presigner{config: cfg}
}

func (p *S3Presigner) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(p.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			p.config.S3RootUser,
			p.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(p.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

func (p *S3Presigner) PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (string, map[string]string, error) {
	presignClient, err := p.getPresignClient(ctx)
	if err != nil {
		return "", nil, err
	}

	bucket := p.config.S3Bucket
	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		ContentType: &contentType,
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", nil, err
	}

	return req.URL, flattenHeader(req.SignedHeader), nil
}

// GCSPresigner signs V4 uploads for a Google Cloud Storage bucket.
type GCSPresigner struct {
	bucket          string
	credentialsFile string
}

func NewGCSPresigner(cfg *sc.Config) *GCSPresigner {
	return &GCSPresigner{bucket: cfg.GCSBucket, credentialsFile: cfg.GCSCredentialsFile}
}

func (p *GCSPresigner) PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (string, map[string]string, error) {
	var opts []option.ClientOption
	if p.credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(p.credentialsFile))
	}
	client, err := newGCSClient(ctx, opts...)
	if err != nil {
		return "", nil, fmt.Errorf("gcs client: %w", err)
	}
	defer client.Close()

	url, err := signGCSURL(client.Bucket(p.bucket), key, &storage.SignedURLOptions{
		Scheme:      storage.SigningSchemeV4,
		Method:      http.MethodPut,
		ContentType: contentType,
		Expires:     time.Now().Add(expires),
	})
	if err != nil {
		return "", nil, err
	}
	return url, map[string]string{"Content-Type": contentType}, nil
}

type uploadRequest struct {
	Filename    string `validate:"required,max=255"`
	ContentType string `validate:"required,startswith=video/"`
}

// MediaService hands out upload tickets for video files.
type MediaService struct {
	presigner Presigner
	baseURL   string
	expires   time.Duration
	validate  *validator.Validate
	now       func() time.Time
}

// NewMediaService selects the storage backend named by cfg.MediaBackend.
func NewMediaService(cfg *sc.Config) (*MediaService, error) {
	var (
		p    Presigner
		base = cfg.MediaBaseURL
	)
	switch cfg.MediaBackend {
	case sc.MediaBackendS3, "":
		p = NewS3Presigner(cfg)
		if base == "" {
			base = strings.TrimSuffix(cfg.S3BaseEndpoint, "/") + "/" + cfg.S3Bucket
		}
	case sc.MediaBackendGCS:
		if cfg.GCSBucket == "" {
			return nil, fmt.Errorf("gcs backend requires a bucket")
		}
		p = NewGCSPresigner(cfg)
		if base == "" {
			base = "https://storage.googleapis.com/" + cfg.GCSBucket
		}
	default:
		return nil, fmt.Errorf("unknown media backend %q", cfg.MediaBackend)
	}
	return newMediaService(p, base, cfg.UploadURLValidity), nil
}

func newMediaService(p Presigner, baseURL string, expires time.Duration) *MediaService {
	if expires <= 0 {
		expires = 15 * time.Minute
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &MediaService{presigner: p, baseURL: baseURL, expires: expires, validate: validator.New(), now: time.Now}
}

// StorageKey returns a fresh object key under the user's prefix, keeping
// the lower-cased extension of filename.
func StorageKey(userID, filename string, now time.Time) string {
	d := now.UTC()
	return fmt.Sprintf("videos/%s/%04d/%02d/%02d/%v%s", userID, d.Year(), d.Month(), d.Day(), uuid.New(), cleanExt(filename))
}

func cleanExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) < 2 || len(ext) > 8 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}

// CreateUploadTicket reserves a storage key and presigns a PUT for it.
// No record is created; the client inserts one after the upload succeeds.
func (s *MediaService) CreateUploadTicket(ctx context.Context, userID, filename, contentType string) (*UploadTicket, error) {
	req := uploadRequest{Filename: filename, ContentType: strings.ToLower(contentType)}
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}

	key := StorageKey(userID, filename, s.now())
	url, headers, err := s.presigner.PresignPut(ctx, key, req.ContentType, s.expires)
	if err != nil {
		return nil, fmt.Errorf("error presigning upload: %w", err)
	}

	return &UploadTicket{
		Key:       key,
		UploadURL: url,
		Method:    http.MethodPut,
		Headers:   headers,
		MediaURL:  s.baseURL + key,
	}, nil
}

func flattenHeader(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 && !strings.EqualFold(k, "Host") {
			out[k] = v[0]
		}
	}
	return out
}
