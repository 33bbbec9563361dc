// Package media stores uploaded videos on local disk and forwards inline
// images to an external image host.
package media

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/solarworks/solarworks/internal/logging"
	"github.com/solarworks/solarworks/internal/metrics"
)

const (
	VideoURLPrefix = "/videos/"
	videoDirName   = "videos"
)

var (
	ErrVideoTooLarge = errors.New("video file too large")
	ErrNotVideo      = errors.New("Only video files are allowed")
	ErrUnsafePath    = errors.New("unsafe media path")
)

// VideoStore writes uploads to <staticDir>/videos, which the router serves at /videos/.
type VideoStore struct {
	dir      string
	maxBytes int64
}

// StoredFile describes a file found in the video directory.
type StoredFile struct {
	Name    string
	URL     string
	ModTime time.Time
}

func NewVideoStore(staticDir string, maxBytes int64) (*VideoStore, error) {
	dir := filepath.Join(staticDir, videoDirName)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create video directory: %w", err)
	}

	return &VideoStore{dir: dir, maxBytes: maxBytes}, nil
}

func (v *VideoStore) Dir() string {
	return v.dir
}

func (v *VideoStore) MaxBytes() int64 {
	return v.maxBytes
}

// TooLargeMessage is the client-facing text for ErrVideoTooLarge.
func (v *VideoStore) TooLargeMessage() string {
	return fmt.Sprintf("Video file too large. Maximum size is %dMB", v.maxBytes>>20)
}

// Save copies the upload into the video directory under a random name and
// returns its public URL. A partially written file is removed on failure.
func (v *VideoStore) Save(fh *multipart.FileHeader) (string, error) {
	if v.maxBytes > 0 && fh.Size > v.maxBytes {
		metrics.VideoUploads.WithLabelValues("too_large").Inc()
		return "", ErrVideoTooLarge
	}

	ext := cleanExt(fh.Filename)

	if !isVideo(fh.Header.Get("Content-Type"), ext) {
		metrics.VideoUploads.WithLabelValues("rejected").Inc()
		return "", ErrNotVideo
	}

	src, err := fh.Open()
	if err != nil {
		metrics.VideoUploads.WithLabelValues("failed").Inc()
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := uuid.New().String() + ext
	path := filepath.Join(v.dir, name)

	dst, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		metrics.VideoUploads.WithLabelValues("failed").Inc()
		return "", fmt.Errorf("create video file: %w", err)
	}

	reader := io.Reader(src)
	if v.maxBytes > 0 {
		reader = io.LimitReader(src, v.maxBytes+1)
	}

	written, err := io.Copy(dst, reader)
	closeErr := dst.Close()

	switch {
	case err != nil:
	case closeErr != nil:
		err = closeErr
	case v.maxBytes > 0 && written > v.maxBytes:
		err = ErrVideoTooLarge
	}

	if err != nil {
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			logging.Warn().Err(rmErr).Str("path", path).Msg("Failed to remove partial video")
		}

		if errors.Is(err, ErrVideoTooLarge) {
			metrics.VideoUploads.WithLabelValues("too_large").Inc()
			return "", err
		}

		metrics.VideoUploads.WithLabelValues("failed").Inc()
		return "", fmt.Errorf("write video file: %w", err)
	}

	metrics.VideoUploads.WithLabelValues("stored").Inc()
	logging.Info().Str("file", name).Int64("bytes", written).Msg("Stored video upload")

	return VideoURLPrefix + name, nil
}

// IsLocal reports whether url points into the local video directory.
func IsLocal(url string) bool {
	return strings.HasPrefix(url, VideoURLPrefix)
}

// Delete removes the file behind a local video URL. Foreign URLs are ignored
// and a missing file is not an error.
func (v *VideoStore) Delete(url string) error {
	if !IsLocal(url) {
		return nil
	}

	name, err := fileName(url)
	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(v.dir, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove video: %w", err)
	}

	return nil
}

// Release deletes a video and only logs failures. Used when a document drops
// or replaces its video.
func (v *VideoStore) Release(url string) {
	if url == "" {
		return
	}

	if err := v.Delete(url); err != nil {
		logging.Warn().Err(err).Str("url", url).Msg("Failed to delete video")
	}
}

func (v *VideoStore) List() ([]StoredFile, error) {
	entries, err := os.ReadDir(v.dir)
	if err != nil {
		return nil, fmt.Errorf("read video directory: %w", err)
	}

	files := make([]StoredFile, 0, len(entries))

	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		files = append(files, StoredFile{
			Name:    entry.Name(),
			URL:     VideoURLPrefix + entry.Name(),
			ModTime: info.ModTime(),
		})
	}

	return files, nil
}

func fileName(url string) (string, error) {
	name := strings.TrimPrefix(url, VideoURLPrefix)

	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}

	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return "", ErrUnsafePath
	}

	return name, nil
}

func cleanExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))

	if len(ext) < 2 || len(ext) > 8 {
		return ""
	}

	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}

	return ext
}

var videoExtensions = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/x-m4v",
	".mov":  "video/quicktime",
	".webm": "video/webm",
	".ogv":  "video/ogg",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
}

func isVideo(contentType, ext string) bool {
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = mime.TypeByExtension(ext)
		if contentType == "" {
			contentType = videoExtensions[ext]
		}
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return strings.HasPrefix(mediaType, "video/")
}
