// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const maxFilenameLen = 50

var (
	unsafeChars = regexp.MustCompile(`[^\w\s-]`)
	separators  = regexp.MustCompile(`[-\s]+`)
)

// SanitizeFilename turns a company name into a directory-safe name of at
// most 50 characters.
func SanitizeFilename(name string) string {
	s := unsafeChars.ReplaceAllString(name, "")
	s = separators.ReplaceAllString(strings.TrimSpace(s), "_")
	if len(s) > maxFilenameLen {
		s = s[:maxFilenameLen]
	}
	return s
}

// Download fetches l into dir/filename via a temporary file and returns
// the final path. Responses that are not images are rejected.
func (f *Finder) Download(ctx context.Context, l Logo, dir, filename string) (string, error) {
	resp, err := f.Client.Get(ctx, l.URL, "image/*")
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", l.URL, err)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "image") {
		return "", fmt.Errorf("downloading %s: not an image (%q)", l.URL, ct)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	dest := filepath.Join(dir, filename)
	tmp, err := os.CreateTemp(dir, ".logo-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(resp.Body)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("writing logo: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("renaming temp file: %w", err)
	}
	return dest, nil
}
