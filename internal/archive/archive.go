// Package archive optionally uploads a completed run's rendered output to an
// S3-compatible object store, so a batch run can leave an audit trail beyond
// the terminal. It is exercised only when the CLI's --archive-bucket flag is
// set; the query execution pipeline itself never depends on it.
package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Credentials describes how to reach an S3-compatible endpoint.
type Credentials struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	UseSSL          bool
}

// NewMinioClient creates a Minio client from a Credentials struct. The
// endpoint can be either a hostname (e.g. "s3.amazonaws.com") or a full URL
// (e.g. "https://storage.googleapis.com"); a URL's scheme is stripped and
// used to infer the SSL setting.
func (creds *Credentials) NewMinioClient() (*minio.Client, error) {
	if creds.Endpoint == "" {
		return nil, errors.New("archive: endpoint is required")
	}
	if creds.AccessKeyID == "" {
		return nil, errors.New("archive: access key ID is required")
	}
	if creds.SecretAccessKey == "" {
		return nil, errors.New("archive: secret access key is required")
	}

	endpoint, secure := parseEndpoint(creds.Endpoint, creds.UseSSL)

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(creds.AccessKeyID, creds.SecretAccessKey, creds.SessionToken),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("creating S3 client for endpoint %s: %w", endpoint, err)
	}
	return client, nil
}

// parseEndpoint extracts the host from an endpoint that may be a full URL or
// just a hostname, returning the cleaned endpoint and whether to use SSL.
func parseEndpoint(endpoint string, useSSL bool) (string, bool) {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		parsed, err := url.Parse(endpoint)
		if err == nil && parsed.Host != "" {
			return parsed.Host, parsed.Scheme == "https"
		}
	}
	return endpoint, useSSL
}

// Uploader uploads a run's rendered output under a timestamped key.
type Uploader struct {
	creds  *Credentials
	bucket string
}

// NewUploader builds an Uploader for the given bucket.
func NewUploader(creds *Credentials, bucket string) *Uploader {
	return &Uploader{creds: creds, bucket: bucket}
}

// UploadRun uploads data under "<prefix>/<startedAt-unix>-<name>" and returns
// the object key it wrote to.
func (u *Uploader) UploadRun(ctx context.Context, prefix, name string, startedAt time.Time, data []byte) (string, error) {
	client, err := u.creds.NewMinioClient()
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s/%d-%s", strings.Trim(prefix, "/"), startedAt.Unix(), name)
	if _, err := client.PutObject(ctx, u.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/x-ndjson",
	}); err != nil {
		return "", fmt.Errorf("uploading %s to bucket %s: %w", key, u.bucket, err)
	}
	return key, nil
}
