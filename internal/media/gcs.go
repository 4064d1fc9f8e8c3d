// Package media stores uploaded post media on a Google Cloud Storage bucket
// (or a GCS emulator) and hands back public URLs.
package media

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"regexp"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/localnerve/agrilearn/internal/logger"
	"google.golang.org/api/option"
)

const defaultPublicBaseURL = "https://storage.googleapis.com"

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// Config selects the bucket and how it is reached
type Config struct {
	Bucket        string
	PublicBaseURL string
	// Endpoint points the client at an emulator; authentication is skipped when set.
	Endpoint string
}

// GCSUploader writes objects to one bucket
type GCSUploader struct {
	log           *logger.Logger
	client        *storage.Client
	bucket        string
	publicBaseURL string
}

// NewGCSUploader creates the storage client
func NewGCSUploader(ctx context.Context, cfg Config, log *logger.Logger) (*GCSUploader, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("missing media bucket")
	}

	opts := []option.ClientOption{option.WithScopes(storage.ScopeReadWrite)}
	if endpoint := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/"); endpoint != "" {
		opts = []option.ClientOption{
			option.WithEndpoint(endpoint + "/storage/v1/"),
			option.WithoutAuthentication(),
		}
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	base, err := publicBase(cfg)
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	u := &GCSUploader{
		log:           log.With("service", "GCSUploader"),
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: base,
	}
	u.log.Info("media storage initialized", "bucket", cfg.Bucket, "endpoint", cfg.Endpoint, "public_base_url", base)
	return u, nil
}

// Upload streams r into folder under a unique key and returns the public URL
func (u *GCSUploader) Upload(ctx context.Context, folder, filename, contentType string, r io.Reader) (string, error) {
	key := ObjectKey(folder, filename)

	w := u.client.Bucket(u.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize %s: %w", key, err)
	}

	u.log.Debug("media uploaded", "key", key, "content_type", contentType)
	return PublicURL(u.publicBaseURL, u.bucket, key), nil
}

// Close releases the storage client
func (u *GCSUploader) Close() error {
	return u.client.Close()
}

// ObjectKey builds "<folder>/<uuid>-<sanitized name>"
func ObjectKey(folder, filename string) string {
	name := unsafeChars.ReplaceAllString(path.Base(strings.TrimSpace(filename)), "-")
	name = strings.Trim(name, "-.")
	if name == "" {
		name = "file"
	}
	return path.Join(strings.Trim(folder, "/"), uuid.NewString()+"-"+name)
}

// PublicURL joins the public base, bucket and key
func PublicURL(base, bucket, key string) string {
	return strings.TrimRight(base, "/") + "/" + bucket + "/" + key
}

func publicBase(cfg Config) (string, error) {
	raw := strings.TrimSpace(cfg.PublicBaseURL)
	if raw == "" {
		if cfg.Endpoint != "" {
			raw = cfg.Endpoint
		} else {
			raw = defaultPublicBaseURL
		}
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("invalid media public base URL %q; expected absolute URL like http://localhost:4443", raw)
	}
	return strings.TrimRight(raw, "/"), nil
}
