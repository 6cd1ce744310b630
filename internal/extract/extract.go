// Package extract persists the leaf parts of a message tree to a working
// directory and indexes them by content identifier for later HTML rewriting.
package extract

import (
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/mailtools/mailview/internal/message"
)

// File is a leaf part materialized on disk.
type File struct {
	// Path is the absolute path of the file inside the working directory.
	Path string
	// Name is the unique sanitized filename assigned to the part.
	Name string
	// Part is the originating MIME part.
	Part *message.Part
}

// Result is the outcome of extracting one message.
type Result struct {
	// Files lists every part written to disk, in encounter order.
	Files []File
	// Index maps normalized content identifiers to their extracted files.
	// Duplicate identifiers are pathological input; the last one wins.
	Index map[string]File
	// HTMLParts lists the HTML parts in encounter order. They are persisted
	// like any other leaf but their primary destiny is rewriting.
	HTMLParts []*message.Part
}

// Extractor writes message parts into a working directory. Its filename set
// and part counter span all messages extracted through it, so several
// messages can share one working directory without overwriting each other.
type Extractor struct {
	workdir string
	names   map[string]bool
	seq     int
}

// New creates an Extractor rooted at workdir.
func New(workdir string) *Extractor {
	return &Extractor{
		workdir: workdir,
		names:   make(map[string]bool),
	}
}

// Run walks the message tree depth first and extracts every leaf part.
// Containers are traversed but never written. A write failure for one part
// is logged and does not stop extraction of the remaining parts.
func (e *Extractor) Run(msg *message.Message) *Result {
	res := &Result{Index: make(map[string]File)}
	msg.Walk(func(p *message.Part) {
		if p.IsContainer() {
			return
		}
		e.extractPart(p, res)
	})
	return res
}

func (e *Extractor) extractPart(p *message.Part, res *Result) {
	e.seq++

	cid := p.ContentID()
	if p.Subtype() == "html" {
		res.HTMLParts = append(res.HTMLParts, p)
	}

	payload := p.Payload()
	name := e.fileName(p, cid, payload)
	path := filepath.Join(e.workdir, name)

	if err := os.WriteFile(path, payload, 0o644); err != nil {
		slog.Warn("failed to write part, skipping",
			"path", path,
			"content_type", p.MediaType,
			"error", err,
		)
		return
	}

	f := File{Path: path, Name: name, Part: p}
	res.Files = append(res.Files, f)
	if cid != "" {
		res.Index[cid] = f
	}
}

// fileName derives a safe unique filename for a part: the declared filename
// if there is one, otherwise a name built from the content identifier,
// otherwise a sequence-numbered fallback.
func (e *Extractor) fileName(p *message.Part, cid string, payload []byte) string {
	name := SanitizeFilename(p.Filename)
	if name == "" {
		ext := extensionFor(p.MediaType, payload)
		if cid != "" {
			name = SanitizeFilename("cid" + cid + ext)
		} else {
			name = fmt.Sprintf("part-%03d%s", e.seq, ext)
		}
	}
	return e.uniqueName(name)
}

// uniqueName reserves name in the run's filename set, suffixing the stem with
// -1, -2, ... until it no longer collides. Gmail in particular attaches
// several images to one message all named "image.png".
func (e *Extractor) uniqueName(name string) string {
	if !e.names[name] {
		e.names[name] = true
		return name
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s-%d%s", stem, n, ext)
		if !e.names[candidate] {
			e.names[candidate] = true
			return candidate
		}
	}
}

// extensionFor guesses a file extension for the declared media type, sniffing
// the payload when the type is unknown and falling back to a generic
// bag-of-bits extension.
func extensionFor(mediaType string, payload []byte) string {
	if exts, err := mime.ExtensionsByType(mediaType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	if ext := mimetype.Detect(payload).Extension(); ext != "" {
		return ext
	}
	return ".bin"
}
