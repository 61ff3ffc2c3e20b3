package history

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/okian/winrate/internal/domain/match"
	"github.com/okian/winrate/pkg/logger"
)

// maxBodyBytes caps how much of a history response is read.
const maxBodyBytes = 8 << 20

// HTTPLoader fetches "<baseURL>/players/<playerID>/matches.csv" over a
// retrying, rate-limited client.
type HTTPLoader struct {
	baseURL string
	client  *retryablehttp.Client
	limiter *rate.Limiter
	logger  logger.Logger
}

// NewHTTPLoader creates a loader for the given base URL.
func NewHTTPLoader(baseURL string, opts ...Option) (*HTTPLoader, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid base url %q", ErrUnknownSource, baseURL)
	}
	o := newOptions(opts)
	l := o.logger.With(logger.String("loader", SourceHTTP))

	client := retryablehttp.NewClient()
	client.HTTPClient.Timeout = o.timeout
	client.RetryMax = o.maxRetries
	client.RetryWaitMin = o.retryWaitMin
	client.RetryWaitMax = o.retryWaitMax
	client.CheckRetry = retryPolicy
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	client.Logger = leveledLogger{logger: l}

	return &HTTPLoader{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(o.rateLimit), 1),
		logger:  l,
	}, nil
}

// Load implements match.Loader.
func (l *HTTPLoader) Load(ctx context.Context, playerID string) (match.History, error) {
	if err := validatePlayerID(playerID); err != nil {
		return nil, loadError(SourceHTTP, playerID, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, loadError(SourceHTTP, playerID, err)
	}
	// Wait only fails on ctx: canceled, or a deadline too close to wait for.
	if err := l.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, loadError(SourceHTTP, playerID, ctxErr)
		}
		return nil, loadError(SourceHTTP, playerID, fmt.Errorf("%w: %v", context.DeadlineExceeded, err))
	}

	endpoint := l.baseURL + "/players/" + url.PathEscape(playerID) + "/matches.csv"
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, loadError(SourceHTTP, playerID, err)
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, l.transportError(ctx, playerID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, loadError(SourceHTTP, playerID, ErrPlayerNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, loadError(SourceHTTP, playerID, fmt.Errorf("%w: status %d", ErrSourceUnavailable, resp.StatusCode))
	}

	h, err := DecodeCSV(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, loadError(SourceHTTP, playerID, err)
	}
	l.logger.Debug(ctx, "history fetched", logger.String("url", endpoint), logger.Int("matches", h.Len()))
	return h, nil
}

// transportError reports a canceled or expired caller ctx as such. Any other
// failure, client timeouts included, is an unavailable source.
func (l *HTTPLoader) transportError(ctx context.Context, playerID string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return loadError(SourceHTTP, playerID, ctxErr)
	}
	return loadError(SourceHTTP, playerID, fmt.Errorf("%w: %v", ErrSourceUnavailable, err))
}

// Close releases idle connections.
func (l *HTTPLoader) Close() error {
	l.client.HTTPClient.CloseIdleConnections()
	return nil
}

// retryPolicy retries transport failures, 429 and 5xx responses.
func retryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return true, nil
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return true, nil
	}
	return false, nil
}

// leveledLogger adapts logger.Logger to retryablehttp.LeveledLogger.
type leveledLogger struct {
	logger logger.Logger
}

func (l leveledLogger) Error(msg string, kv ...any) {
	l.logger.Error(context.Background(), msg, kvFields(kv)...)
}

func (l leveledLogger) Info(msg string, kv ...any) {
	l.logger.Info(context.Background(), msg, kvFields(kv)...)
}

func (l leveledLogger) Debug(msg string, kv ...any) {
	l.logger.Debug(context.Background(), msg, kvFields(kv)...)
}

func (l leveledLogger) Warn(msg string, kv ...any) {
	l.logger.Warn(context.Background(), msg, kvFields(kv)...)
}

func kvFields(kv []any) []logger.Field {
	fields := make([]logger.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields = append(fields, logger.Any(fmt.Sprint(kv[i]), kv[i+1]))
	}
	return fields
}
