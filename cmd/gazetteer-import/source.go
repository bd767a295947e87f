package main

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
)

// readSource returns the bytes behind src, which is a local path or an
// http(s) URL.
func readSource(ctx context.Context, client *http.Client, src string) ([]byte, error) {
	if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
		return os.ReadFile(src)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, src)
	}
	return io.ReadAll(resp.Body)
}

// openCSV returns a reader over the gazetteer CSV. Zip archives are
// searched for member (or the first .csv when member is empty).
func openCSV(body []byte, src, member string) (io.ReadCloser, error) {
	if !strings.EqualFold(path.Ext(src), ".zip") {
		return io.NopCloser(bytes.NewReader(body)), nil
	}

	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	for _, f := range zr.File {
		if member != "" && strings.EqualFold(f.Name, member) {
			return f.Open()
		}
		if member == "" && strings.EqualFold(path.Ext(f.Name), ".csv") {
			return f.Open()
		}
	}
	if member == "" {
		return nil, fmt.Errorf("no .csv file in %s", src)
	}
	return nil, fmt.Errorf("file %s not found in zip", member)
}
