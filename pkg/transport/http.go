package transport

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/matst80/slask-list/pkg/common/jsoncompat"
	"github.com/matst80/slask-list/pkg/types"
	"github.com/panjf2000/ants/v2"
	"golang.org/x/oauth2"
)

type Option func(*HTTPTransport)

func WithClient(c *http.Client) Option {
	return func(t *HTTPTransport) { t.client = c }
}

func WithTimeout(d time.Duration) Option {
	return func(t *HTTPTransport) { t.timeout = d }
}

// WithToken sends every request with a bearer token.
func WithToken(token string) Option {
	return func(t *HTTPTransport) { t.token = token }
}

func WithWorkers(n int) Option {
	return func(t *HTTPTransport) { t.workers = n }
}

func WithLoader(l Loader) Option {
	return func(t *HTTPTransport) { t.loader = l }
}

// HTTPTransport fetches list fragments on a bounded worker pool and delivers
// the results through the scheduler.
type HTTPTransport struct {
	client    *http.Client
	pool      *ants.Pool
	scheduler Scheduler
	loader    Loader
	timeout   time.Duration
	token     string
	workers   int
}

func NewHTTPTransport(scheduler Scheduler, opts ...Option) (*HTTPTransport, error) {
	t := &HTTPTransport{
		scheduler: scheduler,
		loader:    noopLoader{},
		timeout:   30 * time.Second,
		workers:   4,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.client == nil {
		t.client = &http.Client{}
	}
	if t.token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, t.client)
		t.client = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: t.token,
			TokenType:   "Bearer",
		}))
	}
	if t.client.Timeout == 0 {
		t.client.Timeout = t.timeout
	}
	if t.workers <= 0 {
		t.workers = 1
	}
	pool, err := ants.NewPool(t.workers)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport pool: %w", err)
	}
	t.pool = pool
	return t, nil
}

// Send requests a list fragment. The returned operation never fails synchronously.
func (t *HTTPTransport) Send(rawURL, message string, showLoader bool) *Operation {
	op := NewOperation(t.scheduler)
	if showLoader {
		t.loader.Show(message)
		op.Then(func(string) { t.loader.Hide() }, func(*types.Failure) { t.loader.Hide() })
	}
	err := t.pool.Submit(func() {
		html, f := t.fetch(context.Background(), rawURL, true)
		if f != nil {
			op.Reject(f)
			return
		}
		op.Resolve(html)
	})
	if err != nil {
		op.Reject(&types.Failure{StatusText: "error", Text: err.Error()})
	}
	return op
}

// Load fetches a complete page.
func (t *HTTPTransport) Load(ctx context.Context, rawURL string) (string, error) {
	html, f := t.fetch(ctx, rawURL, false)
	if f != nil {
		return "", f
	}
	return html, nil
}

func (t *HTTPTransport) Close() {
	t.pool.Release()
}

func (t *HTTPTransport) fetch(ctx context.Context, rawURL string, fragment bool) (string, *types.Failure) {
	start := time.Now()
	defer func() {
		requestDuration.Observe(time.Since(start).Seconds())
	}()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		requestsTotal.WithLabelValues("error").Inc()
		return "", &types.Failure{StatusText: "error", Text: err.Error()}
	}
	req.Header.Set("Accept", "text/html, */*; q=0.01")
	if fragment {
		req.Header.Set("X-Requested-With", "XMLHttpRequest")
	}
	res, err := t.client.Do(req)
	if err != nil {
		requestsTotal.WithLabelValues("error").Inc()
		return "", &types.Failure{StatusText: "error", Text: err.Error()}
	}
	defer res.Body.Close()
	requestsTotal.WithLabelValues(strconv.Itoa(res.StatusCode)).Inc()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", &types.Failure{Status: res.StatusCode, StatusText: statusText(res), Text: err.Error()}
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		f := &types.Failure{
			Status:     res.StatusCode,
			StatusText: statusText(res),
			Text:       string(body),
		}
		if isJSON(res.Header.Get("Content-Type")) {
			var v any
			if err := jsoncompat.Unmarshal(body, &v); err == nil {
				f.JSON = v
			}
		}
		return "", f
	}
	return string(body), nil
}

func statusText(res *http.Response) string {
	text := strings.TrimPrefix(res.Status, strconv.Itoa(res.StatusCode)+" ")
	if text == "" {
		return http.StatusText(res.StatusCode)
	}
	return text
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
