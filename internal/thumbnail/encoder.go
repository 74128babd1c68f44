// Package thumbnail turns remote bookmark images into inline data: URLs so a
// bookmark keeps its picture after the remote copy expires.
package thumbnail

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sony/gobreaker"
	"github.com/vincent-petithory/dataurl"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/metrics"
	"github.com/MrSnakeDoc/shelf/internal/utils"
)

var (
	errUnsupportedScheme = errors.New("unsupported scheme")
	errTooLarge          = errors.New("image too large")
	errNotImage          = errors.New("not an image")
	errEmpty             = errors.New("empty body")
	// errHostFailure marks errors that count against the image host.
	errHostFailure       = errors.New("image host failure")
)

// BreakerConfig tunes the circuit breaker guarding image hosts.
type BreakerConfig struct {
	MaxRequests         uint32
	Interval            time.Duration
	Timeout             time.Duration
	ConsecutiveFailures uint32
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:         1,
		Interval:            time.Minute,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 5,
	}
}

// Encoder fetches images and encodes them inline. It fails closed: every
// error path hands back the original reference.
//
// Each image host gets its own circuit breaker. Only transport errors and
// 5xx answers count against a host; a dead link (4xx, not an image, too
// large) says nothing about the host's health.
type Encoder struct {
	client   *http.Client
	maxBytes int64
	settings BreakerConfig
	log      logger.Logger
	metrics  *metrics.Metrics

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
}

func New(timeout time.Duration, maxBytes int64, bc BreakerConfig, log logger.Logger, m *metrics.Metrics) *Encoder {
	return &Encoder{
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
		settings: bc,
		log:      log,
		metrics:  m,
		breakers: make(map[string]*gobreaker.CircuitBreaker),
	}
}

// breaker returns the breaker of host, creating it on first use.
func (e *Encoder) breaker(host string) *gobreaker.CircuitBreaker {
	e.mu.Lock()
	defer e.mu.Unlock()

	if cb, ok := e.breakers[host]; ok {
		return cb
	}
	bc := e.settings
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "thumbnail:" + host,
		MaxRequests: bc.MaxRequests,
		Interval:    bc.Interval,
		Timeout:     bc.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= bc.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, errHostFailure)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			e.log.Warn("circuit breaker state changed",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		},
	})
	e.breakers[host] = cb
	return cb
}

// Encode returns ref as a data: URL, or ref unchanged when it is empty,
// already inline, or cannot be fetched and encoded.
func (e *Encoder) Encode(ctx context.Context, ref string) string {
	if ref == "" || domain.IsInline(ref) {
		e.metrics.ObserveThumbnail(metrics.ThumbnailSkipped)
		return ref
	}

	u, err := fetchable(ref)
	if err != nil {
		e.log.Debug("thumbnail kept as remote url", logger.String("url", ref), logger.Error(err))
		e.metrics.ObserveThumbnail(metrics.ThumbnailFallback)
		return ref
	}

	out, err := e.breaker(u.Host).Execute(func() (interface{}, error) {
		return e.fetch(ctx, ref)
	})
	if err != nil {
		e.log.Debug("thumbnail kept as remote url",
			logger.String("url", ref),
			logger.Error(err),
		)
		e.metrics.ObserveThumbnail(metrics.ThumbnailFallback)
		return ref
	}

	e.metrics.ObserveThumbnail(metrics.ThumbnailEncoded)
	return out.(string)
}

// fetchable rejects references the breaker should never see.
func fetchable(ref string) (*url.URL, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: %q", errUnsupportedScheme, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: no host", errUnsupportedScheme)
	}
	return u, nil
}

func (e *Encoder) fetch(ctx context.Context, ref string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "image/*")

	resp, err := e.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("fetch image: %w", ctx.Err())
		}
		return "", fmt.Errorf("%w: %w", errHostFailure, err)
	}
	defer utils.Close(resp.Body)

	switch {
	case resp.StatusCode >= 500:
		return "", fmt.Errorf("%w: status %d", errHostFailure, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return "", fmt.Errorf("fetch image: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("%w: read image: %w", errHostFailure, err)
	}
	if int64(len(body)) > e.maxBytes {
		return "", errTooLarge
	}
	if len(body) == 0 {
		return "", errEmpty
	}

	mediaType := imageType(body, resp.Header.Get("Content-Type"))
	if mediaType == "" {
		return "", errNotImage
	}
	return dataurl.New(body, mediaType).String(), nil
}

// imageType sniffs the payload and falls back to the declared content type.
// It returns "" when neither names an image.
func imageType(body []byte, declared string) string {
	if sniffed := baseType(mimetype.Detect(body).String()); strings.HasPrefix(sniffed, "image/") {
		return sniffed
	}
	if d := baseType(declared); strings.HasPrefix(d, "image/") {
		return d
	}
	return ""
}

func baseType(contentType string) string {
	t, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(t))
}
