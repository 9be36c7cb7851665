// Package minio implements streamgate.Fetcher for S3-compatible endpoints
// using the MinIO Go client.
package minio

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/sagarc03/streamgate"
)

// Config represents MinIO client configuration
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

// DefaultRegion is used when no region is configured. Setting a region up
// front keeps the client from issuing a bucket location lookup before the
// first GET.
const DefaultRegion = "us-east-1"

// NewClient creates a MinIO client with retries disabled.
// Without static keys, credentials are read from the AWS environment variables.
func NewClient(cfg Config) (*minio.Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("new minio client: endpoint is required")
	}

	region := cfg.Region
	if region == "" {
		region = DefaultRegion
	}

	creds := credentials.NewEnvAWS()
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		creds = credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, "")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:      creds,
		Secure:     cfg.UseSSL,
		Region:     region,
		MaxRetries: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("new minio client: %w", err)
	}

	return client, nil
}

// Fetcher retrieves objects through a shared MinIO client.
type Fetcher struct {
	core minio.Core
}

var _ streamgate.Fetcher = (*Fetcher)(nil)

func NewFetcher(client *minio.Client) *Fetcher {
	return &Fetcher{core: minio.Core{Client: client}}
}

// Fetch issues a single GET. Missing keys and permission failures are known
// before the body is handed to the caller.
func (f *Fetcher) Fetch(ctx context.Context, bucket, key string) (streamgate.Object, error) {
	body, _, header, err := f.core.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return streamgate.Object{}, streamgate.NewFetchError("get object", bucket, key, classify(err), err)
	}

	// ObjectInfo.ContentType is defaulted by the client; read the raw headers instead.
	return streamgate.Object{
		Body: body,
		Metadata: streamgate.ObjectMetadata{
			ContentType:        header.Get("Content-Type"),
			ContentDisposition: header.Get("Content-Disposition"),
			AcceptRanges:       header.Get("Accept-Ranges"),
		},
	}, nil
}

func classify(err error) error {
	resp := minio.ToErrorResponse(err)

	switch resp.Code {
	case "NoSuchKey", "NotFound":
		return streamgate.ErrNotFound
	case "AccessDenied", "AllAccessDisabled", "InvalidAccessKeyId",
		"SignatureDoesNotMatch", "ExpiredToken", "InvalidToken", "AccountProblem":
		return streamgate.ErrUnauthorized
	case "NoSuchBucket", "InvalidBucketName":
		return streamgate.ErrConfiguration
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return streamgate.ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return streamgate.ErrUnauthorized
	}

	return streamgate.ErrUpstream
}
