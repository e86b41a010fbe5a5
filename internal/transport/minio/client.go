// Package minio stores ingest assets in an S3-compatible object store.
package minio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/rahelarnold98/xreco-nmr/internal/domain"
	doming "github.com/rahelarnold98/xreco-nmr/internal/domain/ingest"
)

// Asset tag names.
const (
	TagFilename  = "filename"
	TagMediaType = "media_type"
	TagMimeType  = "mime_type"
	TagTimestamp = "timestamp"
)

// maxTagValue is the S3 limit on tag value length.
const maxTagValue = 256

// Config holds object store connection settings.
type Config struct {
	Endpoint     string
	AccessKey    string
	SecretKey    string
	Region       string
	UseSSL       bool
	AssetsBucket string
}

// Client implements usecase/ingest.AssetStore over minio-go.
type Client struct {
	client *minio.Client
	cfg    Config
}

// New creates a client. It does not contact the server.
func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("object store endpoint is required")
	}
	if cfg.AssetsBucket == "" {
		return nil, fmt.Errorf("assets bucket is required")
	}

	endpoint := cfg.Endpoint
	if u, err := url.Parse(cfg.Endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		if u.Scheme == "https" {
			cfg.UseSSL = true
		}
	}

	c, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &Client{client: c, cfg: cfg}, nil
}

// PutAsset uploads body to the assets bucket under the asset id, tagged with
// its filename, media type, MIME type and upload time in unix millis.
func (c *Client) PutAsset(ctx context.Context, a doming.Asset, body io.Reader) error {
	_, err := c.client.PutObject(ctx, c.cfg.AssetsBucket, a.ID, body, a.Size, minio.PutObjectOptions{
		ContentType: a.MimeType,
		UserTags:    assetTags(a),
	})
	if err != nil {
		return classify("put "+a.ID, err)
	}
	return nil
}

// EnsureBucket creates the assets bucket when missing.
func (c *Client) EnsureBucket(ctx context.Context) error {
	b := c.cfg.AssetsBucket
	ok, err := c.client.BucketExists(ctx, b)
	if err != nil {
		return classify("check bucket "+b, err)
	}
	if ok {
		return nil
	}
	if err := c.client.MakeBucket(ctx, b, minio.MakeBucketOptions{Region: c.cfg.Region}); err != nil {
		if code := minio.ToErrorResponse(err).Code; code == "BucketAlreadyOwnedByYou" || code == "BucketAlreadyExists" {
			return nil
		}
		return classify("create bucket "+b, err)
	}
	return nil
}

// Check reports whether the assets bucket is reachable.
func (c *Client) Check(ctx context.Context) error {
	ok, err := c.client.BucketExists(ctx, c.cfg.AssetsBucket)
	if err != nil {
		return classify("check bucket "+c.cfg.AssetsBucket, err)
	}
	if !ok {
		return fmt.Errorf("bucket %s does not exist", c.cfg.AssetsBucket)
	}
	return nil
}

func assetTags(a doming.Asset) map[string]string {
	return map[string]string{
		TagFilename:  tagValue(a.Filename),
		TagMediaType: string(a.MediaType),
		TagMimeType:  tagValue(a.MimeType),
		TagTimestamp: strconv.FormatInt(a.UploadedAt.UnixMilli(), 10),
	}
}

// tagValue keeps the characters S3 allows in tag values and truncates to the limit.
func tagValue(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case strings.ContainsRune(" +-=._:/@", r):
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
		if b.Len() >= maxTagValue {
			break
		}
	}
	out := b.String()
	if len(out) > maxTagValue {
		out = out[:maxTagValue]
	}
	return out
}

// classify marks connection failures as unavailable. Everything else keeps the
// server's error code in the message.
func classify(op string, err error) error {
	var ne net.Error
	switch {
	case errors.As(err, &ne),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return domain.Unavailable("object store is unavailable", fmt.Errorf("%s: %w", op, err))
	}
	if resp := minio.ToErrorResponse(err); resp.Code != "" {
		return fmt.Errorf("%s: %s: %w", op, resp.Code, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
