package main

import (
	"fmt"
	"os"

	"github.com/oser-cs/apiview"
	"github.com/oser-cs/apiview/fs"
	"github.com/oser-cs/apiview/goquery"
	"github.com/oser-cs/apiview/render"
	apislog "github.com/oser-cs/apiview/slog"
)

// Run executes the get command.
func (c *GetCmd) Run(deps *Dependencies) error {
	if c.Out != "" && c.HTML != "" {
		fmt.Fprintln(deps.Stderr, "error: --out and --html cannot be combined")
		return apiview.Errorf(apiview.EINVALID, "--out and --html cannot be combined")
	}

	var sink apiview.Sink
	var display *apiview.Display
	var page *goquery.DocumentSink

	switch {
	case c.Out != "":
		sink = fs.NewFileSink(c.Out)
	case c.HTML != "":
		html := goquery.DefaultPage
		if c.Page != "" {
			data, err := os.ReadFile(c.Page)
			if err != nil {
				fmt.Fprintf(deps.Stderr, "error: %s\n", err)
				return err
			}
			html = string(data)
		}
		var err error
		page, err = goquery.NewDocumentSink(html, c.Element)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", apiview.ErrorMessage(err))
			return err
		}
		sink = page
	default:
		display = apiview.NewDisplay(apiview.DefaultPlaceholder)
		sink = display
	}

	r := &render.Renderer{
		Fetcher:     deps.Fetcher,
		Sink:        apislog.NewLoggingSink(sink, deps.Logger),
		Logger:      deps.Logger,
		BaseURL:     deps.BaseURL,
		Concurrency: c.Concurrency,
	}
	if c.Rate > 0 {
		r.Throttle = render.NewThrottle(c.Rate, c.Burst)
	}

	results := r.RenderAll(deps.Ctx, c.Endpoints, func(result *render.Result) {
		if result.Err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s: %s\n", result.Endpoint, apiview.ErrorMessage(result.Err))
		}
	})

	var failed int
	for _, result := range results {
		if result.Err != nil {
			failed++
		}
	}

	switch {
	case display != nil:
		fmt.Fprintln(deps.Stdout, display.Text())
	case page != nil:
		html, err := page.HTML()
		if err != nil {
			return err
		}
		if err := fs.NewFileSink(c.HTML).SetText(deps.Ctx, html); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", err)
			return err
		}
	}

	if failed > 0 {
		return apiview.Errorf(apiview.ETRANSPORT, "%d of %d endpoints failed", failed, len(results))
	}
	return nil
}
