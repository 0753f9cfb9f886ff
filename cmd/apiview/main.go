package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/oser-cs/apiview"
	apihttp "github.com/oser-cs/apiview/http"
	apislog "github.com/oser-cs/apiview/slog"
	"github.com/oser-cs/apiview/sqlite"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Cookie jar path used when --jar is not given. Set before calling Run().
	JarPath string

	// SQLite database backing the cookie jar.
	DB *sqlite.DB

	// Fetcher overrides the HTTP fetcher, for end-to-end testing.
	Fetcher apiview.Fetcher
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		JarPath: defaultJarPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("apiview"),
		kong.Description("Fetch JSON from the API and display it as text"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'apiview --help' to see available commands")
	}

	if cmd := args[0]; cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	}
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	deps.BaseURL = cli.BaseURL
	deps.Host = hostname(cli.BaseURL)

	command := kongCtx.Command()
	switch {
	case strings.HasPrefix(command, "get"):
		fetcher := m.Fetcher
		if fetcher == nil {
			fetcher = apihttp.NewFetcher(apihttp.WithTimeout(cli.Timeout))
		}
		defer fetcher.Close()
		deps.Fetcher = apislog.NewLoggingFetcher(fetcher, deps.Logger)

	case strings.HasPrefix(command, "cookie"):
		if cli.Cookies != "" && strings.HasPrefix(command, "cookie get") {
			deps.Cookies = func(string) apiview.CookieSource {
				return apislog.NewLoggingCookieSource(apiview.StaticCookies(cli.Cookies), deps.Logger)
			}
			break
		}

		path := cli.Jar
		if path == "" {
			path = m.JarPath
		}
		m.DB = sqlite.NewDB(path)
		if err := m.DB.Open(ctx); err != nil {
			fmt.Fprintf(stderr, "Hint: Set APIVIEW_JAR to use a different cookie jar path\n")
			return fmt.Errorf("failed to open cookie jar at %q: %w", path, err)
		}
		defer m.Close()

		jar := sqlite.NewCookieJar(m.DB)
		deps.Jar = jar
		deps.Cookies = func(host string) apiview.CookieSource {
			return apislog.NewLoggingCookieSource(jar.Source(host), deps.Logger)
		}
	}

	return kongCtx.Run(deps)
}

func defaultJarPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "apiview.db"
	}
	return filepath.Join(home, ".apiview", "cookies.db")
}

// hostname returns the host name of rawURL, or "localhost" if it has none.
func hostname(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "localhost"
	}
	return u.Hostname()
}
