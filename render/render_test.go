package render_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/oser-cs/apiview"
	apihttp "github.com/oser-cs/apiview/http"
	"github.com/oser-cs/apiview/mock"
	"github.com/oser-cs/apiview/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer is a bytes.Buffer safe for concurrent log writes.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newLogger(buf *syncBuffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, nil))
}

func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/schools/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"name":"Lycée A"}]`))
	})
	mux.HandleFunc("/api/students/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id": 7, "user": {"first_name": "Ada"}, "school": 1}
		]`))
	})
	mux.HandleFunc("/api/tutors/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"boom"}`))
	})
	mux.HandleFunc("/api/users/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html>login required</html>`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestRenderer_Render(t *testing.T) {
	t.Parallel()

	t.Run("writes re-serialized JSON to sink", func(t *testing.T) {
		t.Parallel()

		server := newAPIServer(t)
		display := apiview.NewDisplay(apiview.DefaultPlaceholder)
		var logs syncBuffer
		r := &render.Renderer{
			Fetcher: apihttp.NewFetcher(),
			Sink:    display,
			Logger:  newLogger(&logs),
			BaseURL: server.URL,
		}

		result, err := r.Render(context.Background(), "/api/schools/")

		require.NoError(t, err)
		assert.Equal(t, `[{"id":1,"name":"Lycée A"}]`, display.Text())
		assert.Equal(t, display.Text(), result.Text)
		assert.Equal(t, server.URL+"/api/schools/", result.URL)
		assert.Equal(t, render.ComputeHash(result.Text), result.Hash)
		assert.True(t, result.Changed)
		assert.NotEmpty(t, result.ID)
		assert.Contains(t, logs.String(), "msg=render")
	})

	t.Run("resolves catalog names and compacts body", func(t *testing.T) {
		t.Parallel()

		server := newAPIServer(t)
		display := apiview.NewDisplay(apiview.DefaultPlaceholder)
		r := &render.Renderer{
			Fetcher: apihttp.NewFetcher(),
			Sink:    display,
			Logger:  newLogger(&syncBuffer{}),
			BaseURL: server.URL,
		}

		_, err := r.Render(context.Background(), "students")

		require.NoError(t, err)
		assert.Equal(t, `[{"id":7,"user":{"first_name":"Ada"},"school":1}]`, display.Text())
	})

	t.Run("leaves sink unchanged and logs on non-2xx status", func(t *testing.T) {
		t.Parallel()

		server := newAPIServer(t)
		display := apiview.NewDisplay(apiview.DefaultPlaceholder)
		var logs syncBuffer
		r := &render.Renderer{
			Fetcher: apihttp.NewFetcher(),
			Sink:    display,
			Logger:  newLogger(&logs),
			BaseURL: server.URL,
		}

		result, err := r.Render(context.Background(), "/api/tutors/")

		require.Error(t, err)
		assert.Equal(t, apiview.ETRANSPORT, apiview.ErrorCode(err))
		assert.Equal(t, err, result.Err)
		assert.Equal(t, apiview.DefaultPlaceholder, display.Text())
		assert.Zero(t, display.Writes())
		assert.Contains(t, logs.String(), "level=ERROR")
		assert.Contains(t, logs.String(), "render failed")
		assert.Contains(t, logs.String(), "code=transport")
	})

	t.Run("leaves sink unchanged and logs on unreachable host", func(t *testing.T) {
		t.Parallel()

		display := apiview.NewDisplay(apiview.DefaultPlaceholder)
		var logs syncBuffer
		r := &render.Renderer{
			Fetcher: apihttp.NewFetcher(apihttp.WithTimeout(100 * time.Millisecond)),
			Sink:    display,
			Logger:  newLogger(&logs),
		}

		_, err := r.Render(context.Background(), "http://non-existent-host.invalid/api/users/")

		require.Error(t, err)
		assert.Equal(t, apiview.ETRANSPORT, apiview.ErrorCode(err))
		assert.Equal(t, apiview.DefaultPlaceholder, display.Text())
		assert.Contains(t, logs.String(), "render failed")
	})

	t.Run("leaves sink unchanged and logs on invalid JSON", func(t *testing.T) {
		t.Parallel()

		server := newAPIServer(t)
		display := apiview.NewDisplay("previous")
		var logs syncBuffer
		r := &render.Renderer{
			Fetcher: apihttp.NewFetcher(),
			Sink:    display,
			Logger:  newLogger(&logs),
			BaseURL: server.URL,
		}

		_, err := r.Render(context.Background(), "users")

		require.Error(t, err)
		assert.Equal(t, apiview.EPARSE, apiview.ErrorCode(err))
		assert.Equal(t, "previous", display.Text())
		assert.Contains(t, logs.String(), "code=parse")
	})

	t.Run("rejects empty endpoint without fetching", func(t *testing.T) {
		t.Parallel()

		r := &render.Renderer{
			Fetcher: &mock.Fetcher{
				FetchFn: func(ctx context.Context, url string) ([]byte, error) {
					t.Fatal("fetch should not be called")
					return nil, nil
				},
			},
			Sink:   apiview.NewDisplay(""),
			Logger: newLogger(&syncBuffer{}),
		}

		_, err := r.Render(context.Background(), "")

		require.Error(t, err)
		assert.Equal(t, apiview.EINVALID, apiview.ErrorCode(err))
	})

	t.Run("returns sink error", func(t *testing.T) {
		t.Parallel()

		sinkErr := errors.New("sink closed")
		r := &render.Renderer{
			Fetcher: &mock.Fetcher{
				FetchFn: func(ctx context.Context, url string) ([]byte, error) {
					return []byte(`[]`), nil
				},
			},
			Sink: &mock.Sink{
				SetTextFn: func(ctx context.Context, text string) error {
					return sinkErr
				},
			},
			Logger: newLogger(&syncBuffer{}),
		}

		result, err := r.Render(context.Background(), "http://localhost:8000/api/users/")

		require.ErrorIs(t, err, sinkErr)
		assert.Empty(t, result.Text)
	})

	t.Run("reports unchanged content", func(t *testing.T) {
		t.Parallel()

		r := &render.Renderer{
			Fetcher: &mock.Fetcher{
				FetchFn: func(ctx context.Context, url string) ([]byte, error) {
					return []byte(`{"a": 1}`), nil
				},
			},
			Sink:   apiview.NewDisplay(""),
			Logger: newLogger(&syncBuffer{}),
		}

		first, err := r.Render(context.Background(), "http://localhost:8000/api/users/")
		require.NoError(t, err)
		second, err := r.Render(context.Background(), "http://localhost:8000/api/users/")
		require.NoError(t, err)

		assert.True(t, first.Changed)
		assert.False(t, second.Changed)
		assert.Equal(t, first.Hash, second.Hash)
	})

	t.Run("waits on throttle per origin", func(t *testing.T) {
		t.Parallel()

		var origins []string
		limiter := &recordingLimiter{record: func(origin string) { origins = append(origins, origin) }}
		r := &render.Renderer{
			Fetcher: &mock.Fetcher{
				FetchFn: func(ctx context.Context, url string) ([]byte, error) {
					return []byte(`[]`), nil
				},
			},
			Sink:     apiview.NewDisplay(""),
			Throttle: limiter,
			Logger:   newLogger(&syncBuffer{}),
			BaseURL:  "http://localhost:8000",
		}

		_, err := r.Render(context.Background(), "schools")

		require.NoError(t, err)
		assert.Equal(t, []string{"http://localhost:8000"}, origins)
	})

	t.Run("fails when throttle wait is canceled", func(t *testing.T) {
		t.Parallel()

		display := apiview.NewDisplay("kept")
		r := &render.Renderer{
			Fetcher: &mock.Fetcher{
				FetchFn: func(ctx context.Context, url string) ([]byte, error) {
					return []byte(`[]`), nil
				},
			},
			Sink:     display,
			Throttle: &recordingLimiter{err: context.Canceled},
			Logger:   newLogger(&syncBuffer{}),
		}

		_, err := r.Render(context.Background(), "http://localhost:8000/api/users/")

		require.Error(t, err)
		assert.Equal(t, apiview.ETRANSPORT, apiview.ErrorCode(err))
		assert.Equal(t, "kept", display.Text())
	})
}

type recordingLimiter struct {
	record func(origin string)
	err    error
}

func (l *recordingLimiter) Wait(ctx context.Context, origin string) error {
	if l.record != nil {
		l.record(origin)
	}
	return l.err
}

func TestRenderer_FetchAndRender(t *testing.T) {
	t.Parallel()

	t.Run("returns before the fetch completes", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		display := apiview.NewDisplay(apiview.DefaultPlaceholder)
		r := &render.Renderer{
			Fetcher: &mock.Fetcher{
				FetchFn: func(ctx context.Context, url string) ([]byte, error) {
					<-release
					return []byte(`[{"id":1}]`), nil
				},
			},
			Sink:   display,
			Logger: newLogger(&syncBuffer{}),
		}

		task := r.FetchAndRender(context.Background(), "http://localhost:8000/api/students/")

		select {
		case <-task.Done():
			t.Fatal("task finished before fetch was released")
		default:
		}
		assert.Equal(t, apiview.DefaultPlaceholder, display.Text())

		close(release)
		result, err := task.Wait()

		require.NoError(t, err)
		assert.Equal(t, task.ID, result.ID)
		assert.Equal(t, `[{"id":1}]`, display.Text())
	})

	t.Run("dropped task still logs failure", func(t *testing.T) {
		t.Parallel()

		var logs syncBuffer
		done := make(chan struct{})
		r := &render.Renderer{
			Fetcher: &mock.Fetcher{
				FetchFn: func(ctx context.Context, url string) ([]byte, error) {
					return nil, apiview.Errorf(apiview.ETRANSPORT, "HTTP 503 for %s", url)
				},
			},
			Sink: &mock.Sink{
				SetTextFn: func(ctx context.Context, text string) error {
					t.Fatal("sink should not be written")
					return nil
				},
			},
			Logger: newLogger(&logs),
		}

		task := r.FetchAndRender(context.Background(), "http://localhost:8000/api/tutors/")
		go func() {
			<-task.Done()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("task did not finish")
		}
		assert.Contains(t, logs.String(), "HTTP 503")
	})

	t.Run("wait returns error", func(t *testing.T) {
		t.Parallel()

		r := &render.Renderer{
			Fetcher: &mock.Fetcher{
				FetchFn: func(ctx context.Context, url string) ([]byte, error) {
					return []byte(`not json`), nil
				},
			},
			Sink:   apiview.NewDisplay(""),
			Logger: newLogger(&syncBuffer{}),
		}

		_, err := r.FetchAndRender(context.Background(), "http://localhost:8000/api/users/").Wait()

		require.Error(t, err)
		assert.Equal(t, apiview.EPARSE, apiview.ErrorCode(err))
	})
}

func TestRenderer_RenderAll(t *testing.T) {
	t.Parallel()

	t.Run("returns results in input order and reports each failure", func(t *testing.T) {
		t.Parallel()

		server := newAPIServer(t)
		display := apiview.NewDisplay(apiview.DefaultPlaceholder)
		r := &render.Renderer{
			Fetcher: apihttp.NewFetcher(),
			Sink:    display,
			Logger:  newLogger(&syncBuffer{}),
			BaseURL: server.URL,
		}

		var progressed []string
		results := r.RenderAll(context.Background(), []string{"students", "tutors", "schools"}, func(result *render.Result) {
			progressed = append(progressed, result.Endpoint)
		})

		require.Len(t, results, 3)
		assert.NoError(t, results[0].Err)
		assert.Equal(t, apiview.ETRANSPORT, apiview.ErrorCode(results[1].Err))
		assert.NoError(t, results[2].Err)

		sort.Strings(progressed)
		assert.Equal(t, []string{"schools", "students", "tutors"}, progressed)

		// Last writer wins: the display holds one of the successful bodies.
		assert.Contains(t, []string{results[0].Text, results[2].Text}, display.Text())
	})

	t.Run("respects concurrency limit", func(t *testing.T) {
		t.Parallel()

		var inFlight, maxInFlight atomic.Int32
		r := &render.Renderer{
			Fetcher: &mock.Fetcher{
				FetchFn: func(ctx context.Context, url string) ([]byte, error) {
					n := inFlight.Add(1)
					for {
						m := maxInFlight.Load()
						if n <= m || maxInFlight.CompareAndSwap(m, n) {
							break
						}
					}
					time.Sleep(20 * time.Millisecond)
					inFlight.Add(-1)
					return []byte(`[]`), nil
				},
			},
			Sink:        apiview.NewDisplay(""),
			Logger:      newLogger(&syncBuffer{}),
			BaseURL:     "http://localhost:8000",
			Concurrency: 2,
		}

		results := r.RenderAll(context.Background(), []string{"users", "tutors", "students", "schools", "visits"}, nil)

		require.Len(t, results, 5)
		for _, result := range results {
			assert.NoError(t, result.Err)
		}
		assert.LessOrEqual(t, maxInFlight.Load(), int32(2))
	})

	t.Run("does not de-duplicate endpoints", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		r := &render.Renderer{
			Fetcher: &mock.Fetcher{
				FetchFn: func(ctx context.Context, url string) ([]byte, error) {
					calls.Add(1)
					return []byte(`[]`), nil
				},
			},
			Sink:    apiview.NewDisplay(""),
			Logger:  newLogger(&syncBuffer{}),
			BaseURL: "http://localhost:8000",
		}

		r.RenderAll(context.Background(), []string{"users", "users", "users"}, nil)

		assert.Equal(t, int32(3), calls.Load())
	})
}

func TestComputeHash(t *testing.T) {
	t.Parallel()

	assert.Equal(t, render.ComputeHash(`[]`), render.ComputeHash(`[]`))
	assert.NotEqual(t, render.ComputeHash(`[]`), render.ComputeHash(`{}`))
}
