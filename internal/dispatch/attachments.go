package dispatch

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/mailtools/mailview/internal/extract"
)

// Word-processor and presentation subtypes routed through unoconv.
const (
	subtypeMSWord = "msword"
	subtypeDocX   = "vnd.openxmlformats-officedocument.wordprocessingml.document"
	subtypeODT    = "vnd.oasis.opendocument.text"
	subtypePPT    = "vnd.ms-powerpoint"
	subtypePPTX   = "vnd.openxmlformats-officedocument.presentationml.presentation"
	subtypePDF    = "pdf"
)

// Config controls how non-embedded attachments are routed.
type Config struct {
	// ImageViewer is a dedicated viewer for image attachments. Empty leaves
	// images alone.
	ImageViewer string
	// ConvertPDFToHTML converts PDFs with pdftohtml before dispatch instead
	// of handing the PDF to the browser directly.
	ConvertPDFToHTML bool
	// UseWvHTMLForDoc converts application/msword with wvHtml instead of
	// unoconv.
	UseWvHTMLForDoc bool
	// UnoconvStartupTime is passed to unoconv -T; its listener needs longer
	// to come up than the built-in default allows on most machines.
	UnoconvStartupTime string
}

// Dispatcher routes extracted attachment files to converters and viewers.
type Dispatcher struct {
	cfg     Config
	browser *Browser
	runner  Runner
}

// NewDispatcher creates a Dispatcher sharing the run's browser session.
func NewDispatcher(cfg Config, browser *Browser, runner Runner) *Dispatcher {
	return &Dispatcher{cfg: cfg, browser: browser, runner: runner}
}

// Attachments dispatches every extracted file that was not embedded into a
// rewritten HTML part. embedded reports whether a content identifier was
// substituted into some HTML output. Conversion failures are logged and leave
// the affected part undispatched; the remaining files are still processed.
func (d *Dispatcher) Attachments(files []extract.File, embedded func(cid string) bool) {
	for _, f := range files {
		cid := f.Part.ContentID()
		if cid != "" && embedded(cid) {
			slog.Debug("part embedded in html, not dispatched", "path", f.Path)
			continue
		}
		if f.Part.Subtype() == "html" {
			// HTML parts were rewritten and dispatched already.
			continue
		}

		switch f.Part.Maintype() {
		case "image":
			d.dispatchImage(f)
		case "application":
			d.dispatchApplication(f)
		}
	}
}

func (d *Dispatcher) dispatchImage(f extract.File) {
	if d.cfg.ImageViewer == "" {
		return
	}
	if err := d.runner.Start(d.cfg.ImageViewer, f.Path); err != nil {
		slog.Warn("failed to launch image viewer",
			"command", d.cfg.ImageViewer,
			"path", f.Path,
			"error", err,
		)
	}
}

// dispatchApplication applies the conversion policy: word-processor formats
// are converted to HTML, presentations to PDF (unoconv's HTML output drops
// their images), and PDFs are either converted to HTML or handed to the
// browser as is.
func (d *Dispatcher) dispatchApplication(f extract.File) {
	subtype := f.Part.Subtype()
	stem := strings.TrimSuffix(f.Path, filepath.Ext(f.Path))
	htmlFile := stem + ".html"

	if subtype == subtypeMSWord && d.cfg.UseWvHTMLForDoc {
		if err := d.runner.Run("wvHtml", f.Path, htmlFile); err != nil {
			slog.Warn("doc to html conversion failed", "path", f.Path, "error", err)
			return
		}
		d.browser.Open(htmlFile)
		return
	}

	switch subtype {
	case subtypeMSWord, subtypeDocX, subtypeODT:
		err := d.runner.Run("unoconv",
			"-f", "html",
			"-T", d.cfg.UnoconvStartupTime,
			"-o", htmlFile, f.Path)
		if err != nil {
			slog.Warn("document conversion failed", "path", f.Path, "error", err)
			return
		}
		d.browser.Open(htmlFile)
		return
	}

	path := f.Path
	switch subtype {
	case subtypePPT, subtypePPTX:
		pdfFile := stem + ".pdf"
		if err := d.runner.Run("unoconv", "-f", "pdf", "-o", pdfFile, path); err != nil {
			slog.Warn("presentation conversion failed", "path", path, "error", err)
			return
		}
		path = pdfFile
	}

	if subtype == subtypePDF || strings.HasSuffix(path, ".pdf") {
		d.dispatchPDF(path)
	}
}

func (d *Dispatcher) dispatchPDF(path string) {
	if !d.cfg.ConvertPDFToHTML {
		d.browser.Open(path)
		return
	}
	if err := d.runner.Run("pdftohtml", "-s", path); err != nil {
		slog.Warn("pdf conversion failed", "path", path, "error", err)
		return
	}
	// pdftohtml derives the output name itself and offers no override.
	stem := strings.TrimSuffix(path, filepath.Ext(path))
	d.browser.Open(stem + "-html.html")
}
