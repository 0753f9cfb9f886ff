package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/oser-cs/apiview"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx     context.Context
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *slog.Logger
	BaseURL string
	Host    string
	Fetcher apiview.Fetcher
	Jar     apiview.CookieJar
	Cookies func(host string) apiview.CookieSource
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	BaseURL string        `name:"base-url" env:"APIVIEW_BASE_URL" default:"http://localhost:8000" help:"Base URL for endpoint names and paths"`
	Timeout time.Duration `short:"t" env:"APIVIEW_TIMEOUT" default:"10s" help:"Timeout per request"`
	Jar     string        `env:"APIVIEW_JAR" help:"Path to the cookie jar database"`
	Cookies string        `env:"APIVIEW_COOKIES" help:"Literal cookie string read instead of the jar"`
	Verbose bool          `short:"v" help:"Log every fetch and display write"`

	Get       GetCmd       `cmd:"" help:"Fetch endpoints and display their JSON"`
	Endpoints EndpointsCmd `cmd:"" help:"List known API endpoints"`
	Cookie    CookieCmd    `cmd:"" help:"Read and manage cookies"`
}

// GetCmd is the "get" subcommand.
type GetCmd struct {
	Endpoints   []string `arg:"" help:"Endpoint names, paths or URLs"`
	Out         string   `short:"o" help:"Write the display text to this file"`
	HTML        string   `name:"html" help:"Write an HTML page holding the display text to this file"`
	Page        string   `help:"HTML page to render into (default: built-in page)"`
	Element     string   `default:"content" help:"Id of the display element in the HTML page"`
	Concurrency int      `short:"c" default:"4" help:"Concurrent request limit"`
	Rate        float64  `help:"Requests per second per API origin (0 for no limit)"`
	Burst       int      `default:"1" help:"Requests an API origin may receive at once before --rate applies"`
}

// EndpointsCmd is the "endpoints" subcommand.
type EndpointsCmd struct{}

// CookieCmd groups the cookie subcommands.
type CookieCmd struct {
	Get    CookieGetCmd    `cmd:"" help:"Print the value of a cookie"`
	Set    CookieSetCmd    `cmd:"" help:"Store a cookie in the jar"`
	Delete CookieDeleteCmd `cmd:"" help:"Remove a cookie from the jar"`
	List   CookieListCmd   `cmd:"" help:"List cookies stored for a host"`
}

// CookieGetCmd is the "cookie get" subcommand.
type CookieGetCmd struct {
	Name string `arg:"" help:"Cookie name"`
	Host string `help:"Cookie host (default: host of --base-url)"`
}

// CookieSetCmd is the "cookie set" subcommand.
type CookieSetCmd struct {
	Name  string `arg:"" help:"Cookie name"`
	Value string `arg:"" help:"Cookie value, stored as given"`
	Host  string `help:"Cookie host (default: host of --base-url)"`
	Path  string `default:"/" help:"Cookie path"`
}

// CookieDeleteCmd is the "cookie delete" subcommand.
type CookieDeleteCmd struct {
	Name string `arg:"" help:"Cookie name"`
	Host string `help:"Cookie host (default: host of --base-url)"`
	Path string `default:"/" help:"Cookie path"`
}

// CookieListCmd is the "cookie list" subcommand.
type CookieListCmd struct {
	Host string `help:"Cookie host (default: host of --base-url)"`
}

func (d *Dependencies) host(flag string) string {
	if flag != "" {
		return flag
	}
	return d.Host
}
