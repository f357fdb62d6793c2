package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

var ErrNotConfigured = errors.New("media storage is not configured")

// allowed content types for message and comment attachments.
var contentTypeExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"video/mp4":  ".mp4",
	"audio/mpeg": ".mp3",
	"audio/ogg":  ".ogg",
}

// Uploader writes attachments to a GCS bucket and returns a
// Firebase-tokenized public URL, the same scheme the mobile clients
// already consume for profile photos.
type Uploader struct {
	client *storage.Client
	bucket string
}

func NewUploader(client *storage.Client, bucket string) *Uploader {
	return &Uploader{client: client, bucket: bucket}
}

func (u *Uploader) Upload(ctx context.Context, prefix, contentType string, body io.Reader) (string, error) {
	if u == nil || u.client == nil || u.bucket == "" {
		return "", ErrNotConfigured
	}
	ext, ok := contentTypeExt[contentType]
	if !ok {
		return "", fmt.Errorf("unsupported content type %q", contentType)
	}

	token := uuid.NewString()
	objectPath := path.Join(prefix, time.Now().UTC().Format("2006/01"), uuid.NewString()+ext)

	obj := u.client.Bucket(u.bucket).Object(objectPath)
	w := obj.NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{
		"firebaseStorageDownloadTokens": token,
	}
	if _, err := io.Copy(w, body); err != nil {
		_ = w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	publicURL := fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		u.bucket, url.PathEscape(objectPath), token)
	return publicURL, nil
}
