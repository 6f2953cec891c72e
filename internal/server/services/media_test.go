package services

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/postplanner/internal/common"
	sc "github.com/dmitrijs2005/postplanner/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

type fakePresigner struct {
	key, contentType string
	expires          time.Duration
	err              error
}

func (p *fakePresigner) PresignPut(_ context.Context, key, contentType string, expires time.Duration) (string, map[string]string, error) {
	if p.err != nil {
		return "", nil, p.err
	}
	p.key, p.contentType, p.expires = key, contentType, expires
	return "http://signed/" + key, map[string]string{"Content-Type": contentType}, nil
}

func TestStorageKey(t *testing.T) {
	now := time.Date(2024, 3, 7, 23, 30, 0, 0, time.FixedZone("X", -2*3600))
	key := StorageKey("u1", "My Clip.MP4", now)
	assert.Regexp(t, regexp.MustCompile(`^videos/u1/2024/03/08/[0-9a-f-]{36}\.mp4$`), key)

	assert.NotEqual(t, key, StorageKey("u1", "My Clip.MP4", now))
	assert.Regexp(t, regexp.MustCompile(`^videos/u1/2024/03/08/[0-9a-f-]{36}$`), StorageKey("u1", "noext", now))
}

func TestCleanExt(t *testing.T) {
	assert.Equal(t, ".mov", cleanExt("a.MOV"))
	assert.Equal(t, "", cleanExt("a"))
	assert.Equal(t, "", cleanExt("a."))
	assert.Equal(t, "", cleanExt("a.m$v"))
	assert.Equal(t, "", cleanExt("a.waytoolongext"))
}

func TestMediaService_CreateUploadTicket(t *testing.T) {
	p := &fakePresigner{}
	s := newMediaService(p, "http://127.0.0.1:9000/videos", 0)
	s.now = func() time.Time { return time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC) }

	ticket, err := s.CreateUploadTicket(context.Background(), "u1", "clip.mp4", "Video/MP4")
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, ticket.Method)
	assert.Equal(t, "video/mp4", p.contentType)
	assert.Equal(t, 15*time.Minute, p.expires)
	assert.Equal(t, "http://signed/"+ticket.Key, ticket.UploadURL)
	assert.Equal(t, "http://127.0.0.1:9000/videos/"+ticket.Key, ticket.MediaURL)
	assert.True(t, strings.HasPrefix(ticket.Key, "videos/u1/2024/01/10/"))

	_, err = s.CreateUploadTicket(context.Background(), "u1", "notes.txt", "text/plain")
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = s.CreateUploadTicket(context.Background(), "u1", "", "video/mp4")
	assert.ErrorIs(t, err, common.ErrorValidation)

	p.err = errBoom{}
	_, err = s.CreateUploadTicket(context.Background(), "u1", "clip.mp4", "video/mp4")
	assert.ErrorContains(t, err, "error presigning upload: boom")
}

func TestNewMediaService_Backends(t *testing.T) {
	s, err := NewMediaService(&sc.Config{MediaBackend: sc.MediaBackendS3, S3BaseEndpoint: "http://minio:9000/", S3Bucket: "videos"})
	require.NoError(t, err)
	assert.IsType(t, &S3Presigner{}, s.presigner)
	assert.Equal(t, "http://minio:9000/videos/", s.baseURL)

	s, err = NewMediaService(&sc.Config{MediaBackend: sc.MediaBackendGCS, GCSBucket: "b"})
	require.NoError(t, err)
	assert.IsType(t, &GCSPresigner{}, s.presigner)
	assert.Equal(t, "https://storage.googleapis.com/b/", s.baseURL)

	s, err = NewMediaService(&sc.Config{MediaBackend: sc.MediaBackendGCS, GCSBucket: "b", MediaBaseURL: "https://cdn.example/"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/", s.baseURL)

	_, err = NewMediaService(&sc.Config{MediaBackend: sc.MediaBackendGCS})
	assert.Error(t, err)

	_, err = NewMediaService(&sc.Config{MediaBackend: "ftp"})
	assert.Error(t, err)
}

func stubS3(t *testing.T) {
	t.Helper()
	origLoad := loadDefaultAWSConfig
	origNewS3 := newS3ClientFromConfig
	origNewPre := newS3PresignClient
	origPut := presignPutObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
		newS3PresignClient = origNewPre
		presignPutObject = origPut
	})
}

func TestS3Presigner_PresignPut(t *testing.T) {
	stubS3(t)
	cfg := &sc.Config{
		S3Region:       "us-east-1",
		S3RootUser:     "minioadmin",
		S3RootPassword: "minioadmin",
		S3BaseEndpoint: "http://127.0.0.1:9000",
		S3Bucket:       "videos",
	}

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "us-east-1", lo.Region)
		return aws.Config{}, nil
	}

	var captured s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&captured)
		}
		return &s3.Client{}
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		require.NotNil(t, c)
		return &s3.PresignClient{}
	}

	var in *s3.PutObjectInput
	var opts s3.PresignOptions
	presignPutObject = func(_ *s3.PresignClient, _ context.Context, i *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		in = i
		for _, fn := range optFns {
			fn(&opts)
		}
		return &v4.PresignedHTTPRequest{
			URL:          "http://127.0.0.1:9000/videos/k?X-Amz-Signature=x",
			Method:       http.MethodPut,
			SignedHeader: http.Header{"Content-Type": {"video/mp4"}, "Host": {"127.0.0.1:9000"}},
		}, nil
	}

	url, headers, err := NewS3Presigner(cfg).PresignPut(context.Background(), "k", "video/mp4", 5*time.Minute)
	require.NoError(t, err)
	assert.Contains(t, url, "X-Amz-Signature")
	assert.Equal(t, map[string]string{"Content-Type": "video/mp4"}, headers)
	assert.Equal(t, "http://127.0.0.1:9000", aws.ToString(captured.BaseEndpoint))
	assert.True(t, captured.UsePathStyle)
	assert.Equal(t, "videos", aws.ToString(in.Bucket))
	assert.Equal(t, "k", aws.ToString(in.Key))
	assert.Equal(t, "video/mp4", aws.ToString(in.ContentType))
	assert.Equal(t, 5*time.Minute, opts.Expires)
}

func TestS3Presigner_Errors(t *testing.T) {
	stubS3(t)

	loadDefaultAWSConfig = func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load failed")
	}
	_, _, err := NewS3Presigner(&sc.Config{}).PresignPut(context.Background(), "k", "video/mp4", time.Minute)
	assert.EqualError(t, err, "load failed")

	loadDefaultAWSConfig = func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(aws.Config, ...func(*s3.Options)) *s3.Client { return &s3.Client{} }
	newS3PresignClient = func(*s3.Client) *s3.PresignClient { return &s3.PresignClient{} }
	presignPutObject = func(*s3.PresignClient, context.Context, *s3.PutObjectInput, ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("presign failed")
	}
	_, _, err = NewS3Presigner(&sc.Config{}).PresignPut(context.Background(), "k", "video/mp4", time.Minute)
	assert.EqualError(t, err, "presign failed")
}

func TestGCSPresigner_PresignPut(t *testing.T) {
	origClient, origSign := newGCSClient, signGCSURL
	t.Cleanup(func() { newGCSClient, signGCSURL = origClient, origSign })

	newGCSClient = func(ctx context.Context, opts ...option.ClientOption) (*storage.Client, error) {
		assert.Len(t, opts, 1, "credentials file option expected")
		return storage.NewClient(ctx, option.WithoutAuthentication())
	}

	var gotKey string
	var gotOpts *storage.SignedURLOptions
	signGCSURL = func(_ *storage.BucketHandle, key string, opts *storage.SignedURLOptions) (string, error) {
		gotKey, gotOpts = key, opts
		return "https://storage.googleapis.com/b/" + key + "?X-Goog-Signature=x", nil
	}

	p := NewGCSPresigner(&sc.Config{GCSBucket: "b", GCSCredentialsFile: "/tmp/creds.json"})
	url, headers, err := p.PresignPut(context.Background(), "videos/k.mp4", "video/mp4", time.Minute)
	require.NoError(t, err)
	assert.Contains(t, url, "X-Goog-Signature")
	assert.Equal(t, "videos/k.mp4", gotKey)
	assert.Equal(t, http.MethodPut, gotOpts.Method)
	assert.Equal(t, storage.SigningSchemeV4, gotOpts.Scheme)
	assert.Equal(t, "video/mp4", gotOpts.ContentType)
	assert.Equal(t, "video/mp4", headers["Content-Type"])

	newGCSClient = func(context.Context, ...option.ClientOption) (*storage.Client, error) {
		return nil, errors.New("no creds")
	}
	_, _, err = p.PresignPut(context.Background(), "k", "video/mp4", time.Minute)
	assert.ErrorContains(t, err, "gcs client: no creds")
}
