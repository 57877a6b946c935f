package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/KaramelBytes/datadash-cli/internal/backend"
	cfgpkg "github.com/KaramelBytes/datadash-cli/internal/config"
	"github.com/KaramelBytes/datadash-cli/internal/dashboard"
	"github.com/KaramelBytes/datadash-cli/internal/health"
	"github.com/KaramelBytes/datadash-cli/internal/utils"
)

var (
	okColor   = color.New(color.FgGreen)
	infoColor = color.New(color.FgCyan)
	warnColor = color.New(color.FgYellow)
	errColor  = color.New(color.FgRed)
)

func printOK(w io.Writer, format string, a ...any) {
	okColor.Fprintf(w, "✓ "+format+"\n", a...)
}

func printWarn(w io.Writer, format string, a ...any) {
	warnColor.Fprintf(w, "⚠ "+format+"\n", a...)
}

func printErr(w io.Writer, format string, a ...any) {
	errColor.Fprintf(w, "✗ "+format+"\n", a...)
}

// printNotices writes notices oldest first, one line each.
func printNotices(w io.Writer, notices []dashboard.Notice) {
	for _, n := range notices {
		switch n.Severity {
		case dashboard.SeveritySuccess:
			printOK(w, "%s", n.Message)
		case dashboard.SeverityInfo:
			infoColor.Fprintf(w, "• %s\n", n.Message)
		case dashboard.SeverityWarning:
			printWarn(w, "%s", n.Message)
		default:
			printErr(w, "%s", n.Message)
		}
	}
}

func newBackendClient(c *cfgpkg.Global) *backend.Client {
	return backend.NewClient(c.BackendBaseURL,
		backend.WithUploadTimeout(c.UploadTimeout()),
		backend.WithLogger(slog.Default()))
}

func newMonitor(client *backend.Client, c *cfgpkg.Global, opts ...health.Option) *health.Monitor {
	base := []health.Option{
		health.WithInterval(c.ProbeInterval()),
		health.WithTimeout(c.ProbeTimeout()),
		health.WithLogger(slog.Default()),
	}
	return health.NewMonitor(client, append(base, opts...)...)
}

func newSession(client *backend.Client, mon *health.Monitor, c *cfgpkg.Global) *dashboard.Session {
	return dashboard.NewSession(client, mon,
		dashboard.WithMaxUploadBytes(c.MaxUploadBytes()),
		dashboard.WithLogger(slog.Default()))
}

// saveDownload writes dl into dir and returns the written path.
func saveDownload(dir string, dl *dashboard.Download) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := utils.EnsureDir(dir); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, dl.Filename)
	if err := utils.SafeWriteFile(path, dl.Body); err != nil {
		return "", err
	}
	return path, nil
}
