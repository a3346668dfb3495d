package gcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

const gcsScheme = "gs://"

// GetEnv is a helper to read an environment variable or return a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// NewStorageClient creates a Cloud Storage client with application default credentials.
func NewStorageClient(ctx context.Context) (*storage.Client, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Storage client: %w", err)
	}
	return client, nil
}

// ParseURI splits gs://bucket/object. ok is false for any other location.
func ParseURI(uri string) (bucket, object string, ok bool) {
	rest, found := strings.CutPrefix(uri, gcsScheme)
	if !found {
		return "", "", false
	}
	bucket, object, found = strings.Cut(rest, "/")
	if !found || bucket == "" || object == "" {
		return "", "", false
	}
	return bucket, object, true
}

// URI formats a gs:// location.
func URI(bucket, object string) string {
	return gcsScheme + bucket + "/" + object
}

// SaveToGCSAtomically writes content to a GCS object only if it doesn't already exist.
// An existing object is not a failure; the first write wins.
func SaveToGCSAtomically(ctx context.Context, bucket *storage.BucketHandle, objectName, contentType string, content []byte) error {
	writer := bucket.Object(objectName).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := io.Copy(writer, bytes.NewReader(content)); err != nil {
		_ = writer.Close()
		return handleWriteError(objectName, "failed to write to GCS", err)
	}
	if err := writer.Close(); err != nil {
		return handleWriteError(objectName, "failed to finalize GCS write", err)
	}
	return nil
}

func handleWriteError(objectName, msg string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed {
		slog.Info("Object already exists, skipping write.", "gcsObject", objectName)
		return nil
	}
	slog.Error("Failed to write GCS object.", "gcsObject", objectName, "error", err)
	return fmt.Errorf("%s: %w", msg, err)
}

// ObjectReader opens objects of one client and reads the rest of the locations
// from the local filesystem.
type ObjectReader struct {
	client *storage.Client
}

// NewObjectReader returns a reader backed by client. A nil client reads local
// files only.
func NewObjectReader(client *storage.Client) *ObjectReader {
	return &ObjectReader{client: client}
}

// Fetch reads a gs:// object into memory, or a local file for any other location.
// Missing objects wrap fs.ErrNotExist.
func (r *ObjectReader) Fetch(ctx context.Context, location string) ([]byte, error) {
	bucket, object, ok := ParseURI(location)
	if !ok {
		if strings.HasPrefix(location, gcsScheme) {
			return nil, fmt.Errorf("invalid storage location %q, want gs://bucket/object", location)
		}
		return os.ReadFile(location)
	}
	if r.client == nil {
		return nil, fmt.Errorf("no storage client configured to read %s", location)
	}

	reader, err := r.client.Bucket(bucket).Object(object).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return nil, fmt.Errorf("failed to open %s: %w", location, errors.Join(err, fs.ErrNotExist))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get GCS object reader for %s: %w", location, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", location, err)
	}
	return data, nil
}
