package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubAWSConfig(t *testing.T, err error) {
	t.Helper()
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
		if err != nil {
			return aws.Config{}, err
		}
		return aws.Config{
			Region:      "us-east-1",
			Credentials: credentials.NewStaticCredentialsProvider("ak", "sk", ""),
		}, nil
	}
}

func TestNewS3Presigner_RequiresBucket(t *testing.T) {
	_, err := NewS3Presigner(context.Background(), Options{Region: "us-east-1"})
	assert.Error(t, err)
}

func TestNewS3Presigner_ConfigError(t *testing.T) {
	stubAWSConfig(t, errors.New("no creds"))

	_, err := NewS3Presigner(context.Background(), Options{Bucket: "b"})
	assert.ErrorContains(t, err, "no creds")
}

func TestPresignGet(t *testing.T) {
	stubAWSConfig(t, nil)

	p, err := NewS3Presigner(context.Background(), Options{Bucket: "docs", BaseEndpoint: "http://minio:9000"})
	require.NoError(t, err)
	assert.Equal(t, DefaultURLTTL, p.ttl)

	orig := presignGetObject
	t.Cleanup(func() { presignGetObject = orig })

	var gotBucket, gotKey string
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		gotBucket, gotKey = *in.Bucket, *in.Key
		return &v4.PresignedHTTPRequest{URL: "http://minio:9000/docs/" + *in.Key}, nil
	}

	url, err := p.PresignGet(context.Background(), TemplateKey("evidence-log"))
	require.NoError(t, err)
	assert.Equal(t, "docs", gotBucket)
	assert.Equal(t, "templates/evidence-log.pdf", gotKey)
	assert.Equal(t, "http://minio:9000/docs/templates/evidence-log.pdf", url)
}

func TestPresignGet_Error(t *testing.T) {
	stubAWSConfig(t, nil)

	p, err := NewS3Presigner(context.Background(), Options{Bucket: "docs", URLTTL: time.Minute})
	require.NoError(t, err)

	orig := presignGetObject
	t.Cleanup(func() { presignGetObject = orig })
	presignGetObject = func(*s3.PresignClient, context.Context, *s3.GetObjectInput, ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("sign failed")
	}

	_, err = p.PresignGet(context.Background(), "k")
	assert.ErrorContains(t, err, "sign failed")
}

func TestPresignGet_RealSigner(t *testing.T) {
	stubAWSConfig(t, nil)

	p, err := NewS3Presigner(context.Background(), Options{Bucket: "docs", BaseEndpoint: "http://minio:9000"})
	require.NoError(t, err)

	url, err := p.PresignGet(context.Background(), "templates/a.pdf")
	require.NoError(t, err)
	assert.Contains(t, url, "http://minio:9000/docs/templates/a.pdf")
	assert.Contains(t, url, "X-Amz-Expires=900")
}
