package dispatch

import "log/slog"

// BrowserConfig holds the viewer command and its two argument sets.
type BrowserConfig struct {
	// Command is the browser executable.
	Command string
	// FirstArgs is the argument set for the first invocation of a run,
	// typically opening a fresh private window.
	FirstArgs []string
	// TabArgs is the argument set for every later invocation, typically
	// adding a tab to the window opened by the first one.
	TabArgs []string
}

// Browser dispatches files to the configured web browser. Browsers need
// different arguments to create a new top-level window versus adding a tab
// to an existing one, so the first successful launch of a run is tracked.
type Browser struct {
	cfg    BrowserConfig
	runner Runner
	opened bool
}

// NewBrowser creates a Browser that launches processes through runner.
func NewBrowser(cfg BrowserConfig, runner Runner) *Browser {
	return &Browser{cfg: cfg, runner: runner}
}

// Open launches the browser on file://<path>, fire-and-forget. A launch
// failure is logged and the run continues; the part is simply not shown.
func (b *Browser) Open(path string) {
	args := b.cfg.TabArgs
	if !b.opened {
		args = b.cfg.FirstArgs
	}

	argv := make([]string, 0, len(args)+1)
	argv = append(argv, args...)
	argv = append(argv, "file://"+path)

	if err := b.runner.Start(b.cfg.Command, argv...); err != nil {
		slog.Warn("failed to launch browser",
			"command", b.cfg.Command,
			"path", path,
			"error", err,
		)
		return
	}
	b.opened = true
}
