// Package pipeline wires the loader, extractor, rewriter and dispatcher into
// the single synchronous run that turns one message into viewable files.
package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/mailtools/mailview/internal/config"
	"github.com/mailtools/mailview/internal/dispatch"
	"github.com/mailtools/mailview/internal/extract"
	"github.com/mailtools/mailview/internal/parser"
	"github.com/mailtools/mailview/internal/rewrite"
)

// Pipeline processes messages into a shared working directory. Browser
// session state, output numbering and the filename set persist across Run
// calls, so several messages given on one command line open as tabs of one
// window without trampling each other's files.
type Pipeline struct {
	workdir    string
	extractor  *extract.Extractor
	rewriter   *rewrite.Rewriter
	browser    *dispatch.Browser
	dispatcher *dispatch.Dispatcher
}

// New creates a Pipeline writing into workdir and launching external
// programs through runner.
func New(cfg *config.Config, workdir string, runner dispatch.Runner) *Pipeline {
	browser := dispatch.NewBrowser(dispatch.BrowserConfig{
		Command:   cfg.Browser.Command,
		FirstArgs: cfg.Browser.FirstArgs,
		TabArgs:   cfg.Browser.TabArgs,
	}, runner)

	dispatcher := dispatch.NewDispatcher(dispatch.Config{
		ImageViewer:        cfg.Viewer.ImageViewer,
		ConvertPDFToHTML:   cfg.Viewer.ConvertPDFToHTML,
		UseWvHTMLForDoc:    cfg.Converter.UseWvHTMLForDoc,
		UnoconvStartupTime: cfg.Converter.UnoconvStartupTime,
	}, browser, runner)

	return &Pipeline{
		workdir:    workdir,
		extractor:  extract.New(workdir),
		rewriter:   rewrite.New(workdir),
		browser:    browser,
		dispatcher: dispatcher,
	}
}

// Run loads, extracts, rewrites and dispatches one message source. Only a
// missing source or an unparseable envelope is returned as an error; every
// later failure is local to its part and the run carries on with whatever
// could be produced.
func (p *Pipeline) Run(source string) error {
	raw, err := parser.Load(source)
	if err != nil {
		return err
	}

	msg, err := parser.Parse(raw)
	if err != nil {
		return fmt.Errorf("failed to parse message: %w", err)
	}

	res := p.extractor.Run(msg)
	slog.Debug("message extracted",
		"files", len(res.Files),
		"html_parts", len(res.HTMLParts),
		"content_ids", len(res.Index),
	)

	for _, part := range res.HTMLParts {
		path, err := p.rewriter.Rewrite(part, res.Index)
		if err != nil {
			slog.Warn("failed to rewrite html part", "error", err)
			continue
		}
		p.browser.Open(path)
	}

	p.dispatcher.Attachments(res.Files, p.rewriter.Embedded)

	return nil
}
