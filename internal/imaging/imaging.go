package imaging

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Sentinel errors for codec failures. Callers match with errors.Is.
var (
	ErrFetch            = errors.New("imaging: fetch failed")
	ErrInvalidImageData = errors.New("imaging: invalid image data")
)

// Image is the decoded in-memory form of a picture.
type Image struct {
	Data []byte
	MIME string
}

// Encode produces the portable data URI representation for raw image bytes.
func Encode(data []byte, mime string) string {
	if mime == "" {
		mime = "application/octet-stream"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Decode parses a data URI back into raw bytes and its MIME type.
func Decode(dataURI string) (Image, error) {
	rest, ok := strings.CutPrefix(dataURI, "data:")
	if !ok {
		return Image{}, fmt.Errorf("%w: missing data prefix", ErrInvalidImageData)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Image{}, fmt.Errorf("%w: missing payload", ErrInvalidImageData)
	}
	mime, encoding, _ := strings.Cut(meta, ";")
	if encoding != "base64" {
		return Image{}, fmt.Errorf("%w: unsupported encoding %q", ErrInvalidImageData, encoding)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrInvalidImageData, err)
	}
	if len(data) == 0 {
		return Image{}, fmt.Errorf("%w: empty payload", ErrInvalidImageData)
	}
	if mime == "" {
		mime = "application/octet-stream"
	}
	return Image{Data: data, MIME: mime}, nil
}

// IsDataURI reports whether the value carries an embedded encoding rather
// than a durable URL.
func IsDataURI(value string) bool {
	return strings.HasPrefix(value, "data:")
}

// Fetcher converts remotely hosted images into the embedded encoding.
type Fetcher struct {
	client *http.Client
}

// NewFetcher returns a Fetcher. A nil client gets a default with a timeout.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Fetcher{client: client}
}

// EncodeRemote fetches url and returns its content as a data URI. A non-2xx
// response fails with ErrFetch carrying the status code.
func (f *Fetcher) EncodeRemote(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetch, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %s status %d", ErrFetch, url, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetch, err)
	}
	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = http.DetectContentType(data)
	}
	return Encode(data, mime), nil
}
