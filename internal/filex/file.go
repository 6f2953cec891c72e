// Package filex holds the filesystem helpers of the client: locating its
// data directory and sniffing the content type of media files.
package filex

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

var userConfigDir = os.UserConfigDir

// videoTypes covers containers missing from minimal system mime tables.
var videoTypes = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/x-m4v",
	".mov":  "video/quicktime",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
}

// EnsureDir creates dir and its parents with owner-only permissions.
func EnsureDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return dir, nil
}

// EnsureSubDir creates dirName under the working directory.
func EnsureSubDir(dirName string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getwd: %w", err)
	}
	return EnsureDir(filepath.Join(cwd, dirName))
}

// DataDir returns the per-user directory of app, creating it. Without a
// user config directory it falls back to a subdirectory of the working
// directory.
func DataDir(app string) (string, error) {
	base, err := userConfigDir()
	if err != nil || base == "" {
		return EnsureSubDir("." + app)
	}
	return EnsureDir(filepath.Join(base, app))
}

// ContentType guesses the MIME type of the file at path from its extension
// and falls back to sniffing its first bytes.
func ContentType(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ct, ok := videoTypes[ext]; ok {
		return ct, nil
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return http.DetectContentType(buf[:n]), nil
}
