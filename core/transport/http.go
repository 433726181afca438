package transport

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"record-collection/core/collection"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// StatusError is returned when the remote answers with a 4xx or 5xx status.
type StatusError struct {
	Method collection.Method
	Target string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.Target, e.Code, e.Body)
}

// HTTP is a collection.Transport talking JSON to a remote API.
type HTTP struct {
	baseURL string
	timeout time.Duration
	apiKey  string
	limiter *rate.Limiter
	logger  *zap.Logger
}

// HTTPOption configures an HTTP transport.
type HTTPOption func(*HTTP)

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) HTTPOption {
	return func(h *HTTP) {
		h.timeout = d
	}
}

// WithAPIKey sends key in the X-API-Key header.
func WithAPIKey(key string) HTTPOption {
	return func(h *HTTP) {
		h.apiKey = key
	}
}

// WithRateLimit throttles requests to perSecond with the given burst.
// A non-positive rate disables throttling.
func WithRateLimit(perSecond float64, burst int) HTTPOption {
	return func(h *HTTP) {
		if perSecond <= 0 {
			h.limiter = nil
			return
		}
		h.limiter = rate.NewLimiter(rate.Limit(perSecond), max(burst, 1))
	}
}

// WithHTTPLogger sets the logger.
func WithHTTPLogger(l *zap.Logger) HTTPOption {
	return func(h *HTTP) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewHTTP creates an HTTP transport rooted at baseURL.
func NewHTTP(baseURL string, opts ...HTTPOption) *HTTP {
	h := &HTTP{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: 30 * time.Second,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Do performs req. The Fiber agent has no context support, so ctx gates the
// rate limiter and the start of the call while the timeout bounds the rest.
func (h *HTTP) Do(ctx context.Context, req collection.Request) (collection.Response, error) {
	if h.limiter != nil {
		if err := h.limiter.Wait(ctx); err != nil {
			return collection.Response{}, fmt.Errorf("failed to wait for rate limiter: %w", err)
		}
	}
	if err := ctx.Err(); err != nil {
		return collection.Response{}, err
	}

	target := h.url(req.Target)
	var agent *fiber.Agent
	switch req.Method {
	case collection.MethodRead:
		agent = fiber.Get(target)
	case collection.MethodCreate:
		agent = fiber.Post(target)
		if len(req.Payload) > 0 {
			agent.JSON(req.Payload[0])
		}
	case collection.MethodUpdate:
		payload := req.Payload
		if payload == nil {
			payload = []collection.Attributes{}
		}
		agent = fiber.Put(target).JSON(payload)
	default:
		return collection.Response{}, fmt.Errorf("unsupported method %q", req.Method)
	}

	agent.Timeout(h.timeout)
	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if h.apiKey != "" {
		agent.Set("X-API-Key", h.apiKey)
	}

	start := time.Now()
	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return collection.Response{}, fmt.Errorf("failed to call %s: %w", target, errors.Join(errs...))
	}
	h.logger.Debug("Transport request completed",
		zap.String("method", string(req.Method)),
		zap.String("target", target),
		zap.Int("status", code),
		zap.Duration("took", time.Since(start)),
	)
	if code >= fiber.StatusBadRequest {
		return collection.Response{}, &StatusError{Method: req.Method, Target: target, Code: code, Body: string(body)}
	}

	records, err := DecodeRecords(body)
	if err != nil {
		return collection.Response{}, err
	}
	return collection.Response{Records: records}, nil
}

func (h *HTTP) url(target string) string {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return target
	}
	if target == "" {
		return h.baseURL
	}
	return h.baseURL + "/" + strings.TrimLeft(target, "/")
}
