package media

import (
	"context"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/solarworks/solarworks/internal/logging"
	"github.com/solarworks/solarworks/internal/metrics"
)

// ImageHost stores inline images remotely and hands back a public URL.
type ImageHost interface {
	Name() string
	Upload(ctx context.Context, dataURI string) (string, error)
	Destroy(ctx context.Context, imageURL string) error
}

// Images resolves image fields before they are stored. Inline data URIs go to
// the host; when no host is configured, the host fails, or the breaker is
// open, the raw value is kept.
type Images struct {
	host    ImageHost
	breaker *gobreaker.CircuitBreaker[string]
	timeout time.Duration
}

// NewImages wraps host in a circuit breaker. host may be nil.
func NewImages(host ImageHost, timeout time.Duration) *Images {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	name := "image-host"
	if host != nil {
		name = host.Name()
	}

	breaker := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Image host circuit breaker changed state")
		},
	})

	return &Images{host: host, breaker: breaker, timeout: timeout}
}

func (i *Images) Enabled() bool {
	return i.host != nil
}

// IsDataURI reports whether value is an inline base64 image.
func IsDataURI(value string) bool {
	return strings.HasPrefix(value, "data:image/") && strings.Contains(value, ";base64,")
}

func (i *Images) Resolve(ctx context.Context, value string) string {
	if !IsDataURI(value) {
		metrics.ImageUploads.WithLabelValues("skipped").Inc()
		return value
	}

	if i.host == nil {
		metrics.ImageUploads.WithLabelValues("fallback").Inc()
		return value
	}

	url, err := i.breaker.Execute(func() (string, error) {
		uploadCtx, cancel := context.WithTimeout(ctx, i.timeout)
		defer cancel()
		return i.host.Upload(uploadCtx, value)
	})

	if err != nil {
		metrics.ImageUploads.WithLabelValues("fallback").Inc()
		logging.Warn().Err(err).Str("host", i.host.Name()).Msg("Image upload failed, storing inline data")
		return value
	}

	metrics.ImageUploads.WithLabelValues("uploaded").Inc()
	return url
}

func (i *Images) ResolveAll(ctx context.Context, values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		out = append(out, i.Resolve(ctx, value))
	}
	return out
}

// Release destroys a hosted image, logging failures.
func (i *Images) Release(ctx context.Context, url string) {
	if i.host == nil || url == "" || IsDataURI(url) {
		return
	}

	destroyCtx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	if err := i.host.Destroy(destroyCtx, url); err != nil {
		logging.Warn().Err(err).Str("url", url).Msg("Failed to delete hosted image")
	}
}

// ReleaseReplaced destroys every image in previous that is not in current.
func (i *Images) ReleaseReplaced(ctx context.Context, previous, current []string) {
	keep := make(map[string]struct{}, len(current))
	for _, url := range current {
		keep[url] = struct{}{}
	}

	for _, url := range previous {
		if _, ok := keep[url]; !ok {
			i.Release(ctx, url)
		}
	}
}

// ReleaseUploaded destroys the images Resolve uploaded for a write that then
// failed. sent and resolved are the values before and after resolving, index
// aligned.
func (i *Images) ReleaseUploaded(ctx context.Context, sent, resolved []string) {
	for idx, value := range sent {
		if idx >= len(resolved) {
			return
		}
		if IsDataURI(value) && resolved[idx] != value {
			i.Release(ctx, resolved[idx])
		}
	}
}
