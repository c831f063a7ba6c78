package dataset

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"bikeshare/internal/core"
	"bikeshare/internal/log"
)

// DefaultURL is the published cleaned hourly dataset.
const DefaultURL = "https://raw.githubusercontent.com/faz024/bike-sharing/refs/heads/main/dashboard/hour_data_clean.csv"

// Source yields the raw usage records of a dataset.
type Source interface {
	Load(ctx context.Context) ([]core.UsageRecord, error)
	Name() string
}

// HTTPSource fetches a CSV table over HTTP.
type HTTPSource struct {
	URL     string
	Timeout time.Duration
	Client  *http.Client
}

// NewHTTPSource returns a source for url with a pooled client.
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPSource{URL: url, Timeout: timeout, Client: newHTTPClientWithPooling(timeout)}
}

func (s *HTTPSource) Name() string { return s.URL }

func (s *HTTPSource) Load(ctx context.Context) ([]core.UsageRecord, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.5")

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("fetch %s: unexpected status %s", s.URL, resp.Status)
	}

	records, err := ReadCSV(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.URL, err)
	}
	log.ForComponent(log.ComponentDataset).InfoContext(ctx, "Dataset fetched",
		"url", s.URL,
		"records", len(records),
		"duration_ms", time.Since(start).Milliseconds())
	return records, nil
}

// FileSource reads a CSV table from the local filesystem.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return s.Path }

func (s FileSource) Load(ctx context.Context) ([]core.UsageRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open dataset file: %w", err)
	}
	defer f.Close()

	records, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.Path, err)
	}
	return records, nil
}

// newHTTPClientWithPooling returns a client with keep-alive and bounded
// per-host connections; timeout caps the whole request.
func newHTTPClientWithPooling(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{Transport: transport, Timeout: timeout}
}
