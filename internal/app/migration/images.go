package migration

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"time"

	"hostcompare/internal/app/storage"
)

type ImageStore interface {
	UploadFile(ctx context.Context, kind string, data []byte, originalFilename string) (string, error)
}

type Fetcher interface {
	// Fetch возвращает содержимое и имя файла из URL.
	Fetch(ctx context.Context, rawURL string) ([]byte, string, error)
}

type HTTPFetcher struct {
	Client  *http.Client
	MaxSize int64
}

func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		Client:  &http.Client{Timeout: 30 * time.Second},
		MaxSize: storage.MaxUploadSize,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", fmt.Errorf("parse image url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download %s: status %d", rawURL, resp.StatusCode)
	}

	data, err := storage.ReadLimited(resp.Body, f.MaxSize)
	if err != nil {
		return nil, "", fmt.Errorf("download %s: %w", rawURL, err)
	}
	return data, path.Base(u.Path), nil
}
