package ingest

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"os"
	"strings"

	"servicecatalog/internal/catalog"
	"servicecatalog/internal/platform/remote"
)

// Source yields the raw catalog document for one ingest run.
type Source interface {
	Name() string
	Open(ctx context.Context) (io.ReadCloser, catalog.Format, error)
}

type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return s.Path }

func (s FileSource) Open(_ context.Context) (io.ReadCloser, catalog.Format, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, "", err
	}
	return f, catalog.FormatFromPath(s.Path), nil
}

type RemoteSource struct {
	URL    string
	Client *remote.Client
}

func (s RemoteSource) Name() string { return s.URL }

func (s RemoteSource) Open(ctx context.Context) (io.ReadCloser, catalog.Format, error) {
	body, err := s.Client.Get(ctx, s.URL)
	if err != nil {
		return nil, "", err
	}
	format := catalog.FormatBlocks
	if u, err := url.Parse(s.URL); err == nil {
		format = catalog.FormatFromPath(u.Path)
	}
	return io.NopCloser(bytes.NewReader(body)), format, nil
}

// NewSource treats http(s) locations as remote documents and anything else
// as a local path.
func NewSource(location string, client *remote.Client) Source {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return RemoteSource{URL: location, Client: client}
	}
	return FileSource{Path: location}
}
