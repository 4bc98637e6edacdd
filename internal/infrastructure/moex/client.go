package moex

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/muhammadchandra19/moex-history-service/internal/infrastructure/postgresql/interval"
	"github.com/muhammadchandra19/moex-history-service/internal/infrastructure/postgresql/securityhistory"
	"github.com/muhammadchandra19/moex-history-service/pkg/config"
	"github.com/muhammadchandra19/moex-history-service/pkg/daterange"
	"github.com/muhammadchandra19/moex-history-service/pkg/errors"
	"github.com/muhammadchandra19/moex-history-service/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Prometheus metrics for ISS client operations.
var (
	moexRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moex_requests_total",
		Help: "Total ISS requests by status",
	}, []string{"status"})

	moexRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "moex_request_duration_seconds",
		Help:    "ISS request duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"status"})

	moexRowsFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moex_history_rows_fetched_total",
		Help: "Total history rows decoded from ISS responses",
	})
)

// Client fetches security history from the MOEX ISS API. A single weighted
// semaphore gates every page request the process makes, so concurrent
// coordinators share one upstream budget.
type Client struct {
	http    *http.Client
	baseURL string
	gate    *semaphore.Weighted
	logger  logger.Interface
}

// NewClient creates a new ISS client.
func NewClient(cfg config.MoexConfig, log logger.Interface) *Client {
	return &Client{
		http:    &http.Client{Timeout: cfg.RequestTimeout},
		baseURL: cfg.BaseURL,
		gate:    semaphore.NewWeighted(cfg.MaxConcurrentRequests),
		logger:  log,
	}
}

// FetchRange fetches every page of the range. The first page is fetched alone
// to learn the cursor, remaining offsets are fetched concurrently and rows
// are returned in page order.
func (c *Client) FetchRange(ctx context.Context, key interval.ScopeKey, rng daterange.Range) ([]*securityhistory.Row, error) {
	first, err := c.fetchPage(ctx, key, rng, 0)
	if err != nil {
		return nil, err
	}

	cursor, err := first.cursor()
	if err != nil {
		return nil, err
	}

	rows, err := first.rows(key.Session)
	if err != nil {
		return nil, err
	}

	if cursor.Total <= cursor.PageSize {
		moexRowsFetched.Add(float64(len(rows)))
		return rows, nil
	}

	offsets := []int{}
	for start := cursor.PageSize; start < cursor.Total; start += cursor.PageSize {
		offsets = append(offsets, start)
	}

	pages := make([][]*securityhistory.Row, len(offsets))

	g, gctx := errgroup.WithContext(ctx)
	for i, start := range offsets {
		i, start := i, start
		g.Go(func() error {
			resp, err := c.fetchPage(gctx, key, rng, start)
			if err != nil {
				return err
			}
			pageRows, err := resp.rows(key.Session)
			if err != nil {
				return err
			}
			pages[i] = pageRows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, page := range pages {
		rows = append(rows, page...)
	}

	moexRowsFetched.Add(float64(len(rows)))

	c.logger.InfoContext(ctx, "Fetched history range",
		logger.Field{Key: "secid", Value: key.SecID},
		logger.Field{Key: "range", Value: rng.String()},
		logger.Field{Key: "pages", Value: len(offsets) + 1},
		logger.Field{Key: "rows", Value: len(rows)},
	)

	return rows, nil
}

func (c *Client) fetchPage(ctx context.Context, key interval.ScopeKey, rng daterange.Range, start int) (*historyResponse, error) {
	if err := c.gate.Acquire(ctx, 1); err != nil {
		return nil, errors.TracerFromError(err)
	}
	defer c.gate.Release(1)

	endpoint := fmt.Sprintf("%s/iss/history/engines/%s/markets/%s/securities/%s.json",
		c.baseURL,
		url.PathEscape(key.Engine),
		url.PathEscape(key.Market),
		url.PathEscape(key.SecID),
	)

	query := url.Values{}
	query.Set("from", rng.Start.Format(daterange.DateFormat))
	query.Set("till", rng.End.Format(daterange.DateFormat))
	query.Set("start", strconv.Itoa(start))
	query.Set("tradingsession", strconv.Itoa(int(key.Session)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, errors.TracerFromError(err)
	}

	began := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		moexRequestsTotal.WithLabelValues("network_error").Inc()
		return nil, errors.TracerWithCode("ISS request failed: "+err.Error(), errors.UpstreamError)
	}
	defer resp.Body.Close()

	status := strconv.Itoa(resp.StatusCode)
	moexRequestsTotal.WithLabelValues(status).Inc()
	moexRequestDuration.WithLabelValues(status).Observe(time.Since(began).Seconds())

	if resp.StatusCode != http.StatusOK {
		return nil, errors.TracerWithCode(fmt.Sprintf("ISS responded %d for %s", resp.StatusCode, rng.String()), errors.UpstreamError)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.TracerWithCode("reading ISS response: "+err.Error(), errors.UpstreamError)
	}

	return decodeHistoryResponse(body)
}
