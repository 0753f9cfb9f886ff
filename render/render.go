// Package render fetches JSON from API endpoints and writes its textual
// serialization into a display sink.
package render

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/oser-cs/apiview"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds RenderAll when Renderer.Concurrency is unset.
const DefaultConcurrency = 4

// Renderer fetches endpoints and renders their JSON bodies into a Sink.
// Renders are independent: nothing is retried or de-duplicated, and when
// several renders overlap the Sink keeps whichever finished last.
type Renderer struct {
	Fetcher     apiview.Fetcher
	Sink        apiview.Sink
	Throttle    apiview.OriginLimiter
	Logger      *slog.Logger
	BaseURL     string
	Concurrency int

	mu       sync.Mutex
	lastHash string
}

// Result holds the outcome of rendering one endpoint.
type Result struct {
	ID       string
	Endpoint string
	URL      string
	Text     string
	Hash     string
	Changed  bool
	Duration time.Duration
	Err      error
}

// ProgressFunc is called as each render of RenderAll completes.
type ProgressFunc func(result *Result)

// Render fetches endpoint, serializes its JSON body and writes the text to
// the sink. On failure the sink is left untouched, the error is logged and
// it is returned both directly and in Result.Err.
func (r *Renderer) Render(ctx context.Context, endpoint string) (*Result, error) {
	result := r.render(ctx, uuid.New().String(), endpoint)
	return result, result.Err
}

// FetchAndRender starts a render in the background and returns immediately.
// The caller may wait on the returned Task or drop it; a dropped Task still
// runs to completion and logs its failure.
func (r *Renderer) FetchAndRender(ctx context.Context, endpoint string) *Task {
	t := &Task{
		ID:       uuid.New().String(),
		Endpoint: endpoint,
		done:     make(chan struct{}),
	}
	go func() {
		defer close(t.done)
		t.result = r.render(ctx, t.ID, endpoint)
	}()
	return t
}

// RenderAll renders endpoints concurrently, at most Concurrency at a time.
// A failing endpoint does not stop the others. Results are returned in
// input order; progress, if provided, is called in completion order.
func (r *Renderer) RenderAll(ctx context.Context, endpoints []string, progress ProgressFunc) []*Result {
	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make([]*Result, len(endpoints))
	var progressMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, endpoint := range endpoints {
		g.Go(func() error {
			result := r.render(gctx, uuid.New().String(), endpoint)
			results[i] = result
			if progress != nil {
				progressMu.Lock()
				progress(result)
				progressMu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (r *Renderer) render(ctx context.Context, id, endpoint string) (result *Result) {
	result = &Result{ID: id, Endpoint: endpoint}

	defer func(begin time.Time) {
		result.Duration = time.Since(begin)
		r.logResult(result)
	}(time.Now())

	u, err := apiview.ResolveEndpoint(r.BaseURL, endpoint)
	if err != nil {
		result.Err = err
		return result
	}
	result.URL = u

	if r.Throttle != nil {
		if err := r.Throttle.Wait(ctx, apiview.Origin(u)); err != nil {
			result.Err = apiview.Errorf(apiview.ETRANSPORT, "GET %s: %v", u, err)
			return result
		}
	}

	body, err := r.Fetcher.Fetch(ctx, u)
	if err != nil {
		result.Err = err
		return result
	}

	text, err := apiview.Stringify(body)
	if err != nil {
		result.Err = fmt.Errorf("%s: %w", u, err)
		return result
	}

	hash := ComputeHash(text)

	// Writes are serialized so Changed compares against the text the sink
	// actually held before this write.
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.Sink.SetText(ctx, text); err != nil {
		result.Err = fmt.Errorf("display %s: %w", u, err)
		return result
	}

	result.Text = text
	result.Hash = hash
	result.Changed = hash != r.lastHash
	r.lastHash = hash

	return result
}

func (r *Renderer) logResult(result *Result) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if result.Err != nil {
		logger.Error("render failed",
			"id", result.ID,
			"endpoint", result.Endpoint,
			"url", result.URL,
			"code", apiview.ErrorCode(result.Err),
			"duration", result.Duration,
			"err", result.Err,
		)
		return
	}

	logger.Info("render",
		"id", result.ID,
		"url", result.URL,
		"bytes", len(result.Text),
		"hash", result.Hash,
		"changed", result.Changed,
		"duration", result.Duration,
	)
}

// ComputeHash computes a hash of the content using xxhash.
func ComputeHash(content string) string {
	h := xxhash.Sum64String(content)
	return fmt.Sprintf("%x", h)
}
