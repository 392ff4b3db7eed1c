package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image/jpeg"
	"image/png"
	"io"
	"log"
	"mime"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/startuphub/backend/internal/config"
	"github.com/startuphub/backend/internal/model"
)

var (
	// ErrInvalidMedia is returned on extension or size policy violations.
	ErrInvalidMedia = errors.New("invalid media")
	// ErrUploadFailed is returned when the object store rejects the blob.
	ErrUploadFailed = errors.New("upload failed")
)

const jpegQuality = 85

// ObjectStore is the capability the gateway needs from a blob store. The
// MinIO adapter in pkg/storage implements it; tests use a fake.
type ObjectStore interface {
	Put(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, objectName string) error
	PublicURL(objectName string) string
}

// UploadResult is what an upload hands back to the caller.
type UploadResult struct {
	URL          string
	PublicID     string
	ThumbnailURL string
}

// Gateway validates, optimizes, and uploads media blobs.
type Gateway struct {
	store  ObjectStore
	policy config.MediaConfig
}

func NewGateway(store ObjectStore, policy config.MediaConfig) *Gateway {
	return &Gateway{store: store, policy: policy}
}

// UploadImage validates the blob, recompresses JPEG/PNG, and uploads it.
func (g *Gateway) UploadImage(ctx context.Context, name string, data []byte) (*UploadResult, error) {
	ext, err := g.validate(name, int64(len(data)), g.policy.ImageExtensions)
	if err != nil {
		return nil, err
	}

	data = optimizeImage(data, ext)
	return g.put(ctx, model.MediaTypeImage, ext, data)
}

// UploadVideo uploads the blob and derives a 320x180 thumbnail URL.
func (g *Gateway) UploadVideo(ctx context.Context, name string, data []byte) (*UploadResult, error) {
	ext, err := g.validate(name, int64(len(data)), g.policy.VideoExtensions)
	if err != nil {
		return nil, err
	}

	res, err := g.put(ctx, model.MediaTypeVideo, ext, data)
	if err != nil {
		return nil, err
	}
	res.ThumbnailURL = g.TransformationURL(res.PublicID, 320, 180, "fill", strconv.Itoa(jpegQuality))
	return res, nil
}

// UploadAudio uploads the blob unmodified.
func (g *Gateway) UploadAudio(ctx context.Context, name string, data []byte) (*UploadResult, error) {
	ext, err := g.validate(name, int64(len(data)), g.policy.AudioExtensions)
	if err != nil {
		return nil, err
	}
	return g.put(ctx, model.MediaTypeAudio, ext, data)
}

// UploadDocument uploads the blob raw.
func (g *Gateway) UploadDocument(ctx context.Context, name string, data []byte) (*UploadResult, error) {
	ext, err := g.validate(name, int64(len(data)), g.policy.DocumentExtensions)
	if err != nil {
		return nil, err
	}
	return g.put(ctx, model.MediaTypeDocument, ext, data)
}

// Upload dispatches on media type.
func (g *Gateway) Upload(ctx context.Context, mediaType model.MediaType, name string, data []byte) (*UploadResult, error) {
	switch mediaType {
	case model.MediaTypeImage:
		return g.UploadImage(ctx, name, data)
	case model.MediaTypeVideo:
		return g.UploadVideo(ctx, name, data)
	case model.MediaTypeAudio:
		return g.UploadAudio(ctx, name, data)
	case model.MediaTypeDocument:
		return g.UploadDocument(ctx, name, data)
	}
	return nil, fmt.Errorf("%w: unknown media type %q", ErrInvalidMedia, mediaType)
}

// Delete removes the blob from the store. Best-effort: a store failure is
// logged and reported as false, never as an error.
func (g *Gateway) Delete(ctx context.Context, publicID string) bool {
	if err := g.store.Remove(ctx, publicID); err != nil {
		log.Printf("media: delete %s: %v", publicID, err)
		return false
	}
	return true
}

// TransformationURL synthesizes a delivery URL with resize parameters. Pure
// URL synthesis; the store itself is never consulted.
func (g *Gateway) TransformationURL(publicID string, width, height int, crop, quality string) string {
	base := g.store.PublicURL(publicID)

	q := url.Values{}
	if width > 0 {
		q.Set("width", strconv.Itoa(width))
	}
	if height > 0 {
		q.Set("height", strconv.Itoa(height))
	}
	if crop != "" {
		q.Set("crop", crop)
	}
	if quality != "" {
		q.Set("quality", quality)
	}
	if len(q) == 0 {
		return base
	}
	return base + "?" + q.Encode()
}

// MaxUploadSize exposes the configured size cap.
func (g *Gateway) MaxUploadSize() int64 {
	return g.policy.MaxUploadSize
}

func (g *Gateway) validate(name string, size int64, allowed []string) (string, error) {
	if size == 0 {
		return "", fmt.Errorf("%w: empty payload", ErrInvalidMedia)
	}
	if size > g.policy.MaxUploadSize {
		return "", fmt.Errorf("%w: size %d exceeds limit %d", ErrInvalidMedia, size, g.policy.MaxUploadSize)
	}

	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	for _, a := range allowed {
		if ext == a {
			return ext, nil
		}
	}
	return "", fmt.Errorf("%w: extension %q not allowed", ErrInvalidMedia, ext)
}

func (g *Gateway) put(ctx context.Context, mediaType model.MediaType, ext string, data []byte) (*UploadResult, error) {
	publicID := fmt.Sprintf("%s/%s.%s", mediaType, uuid.New(), ext)

	contentType := mime.TypeByExtension("." + ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	url, err := g.store.Put(ctx, publicID, bytes.NewReader(data), int64(len(data)), contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	return &UploadResult{URL: url, PublicID: publicID}, nil
}

// optimizeImage recompresses JPEG and PNG blobs, keeping the original when
// decoding fails or recompression does not shrink it.
func optimizeImage(data []byte, ext string) []byte {
	switch ext {
	case "jpg", "jpeg":
		img, err := jpeg.Decode(bytes.NewReader(data))
		if err != nil {
			return data
		}
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return data
		}
		if buf.Len() < len(data) {
			return buf.Bytes()
		}
	case "png":
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			return data
		}
		var buf bytes.Buffer
		enc := &png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(&buf, img); err != nil {
			return data
		}
		if buf.Len() < len(data) {
			return buf.Bytes()
		}
	}
	return data
}

// DecodeBase64Payload parses the `<mime>;base64,<data>` shape carried by
// media frames on the chat socket and returns the raw bytes plus a file
// extension derived from the mime subtype.
func DecodeBase64Payload(payload string) ([]byte, string, error) {
	mimePart, dataPart, ok := strings.Cut(payload, ";base64,")
	if !ok {
		return nil, "", fmt.Errorf("%w: malformed base64 payload", ErrInvalidMedia)
	}

	mimePart = strings.TrimPrefix(mimePart, "data:")
	_, subtype, ok := strings.Cut(mimePart, "/")
	if !ok || subtype == "" {
		return nil, "", fmt.Errorf("%w: malformed mime type %q", ErrInvalidMedia, mimePart)
	}
	ext := strings.ToLower(subtype)
	if ext == "jpeg" {
		ext = "jpg"
	}
	if ext == "mpeg" {
		ext = "mp3"
	}

	data, err := base64.StdEncoding.DecodeString(dataPart)
	if err != nil {
		return nil, "", fmt.Errorf("%w: bad base64 data: %v", ErrInvalidMedia, err)
	}
	return data, ext, nil
}
