// Package rewrite turns HTML message parts into standalone files by replacing
// cid: references to sibling parts with file:// URLs pointing at their
// extracted copies.
package rewrite

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/mailtools/mailview/internal/extract"
	"github.com/mailtools/mailview/internal/message"
)

// Rewriter writes rewritten HTML parts into a working directory. It keeps
// track of which content identifiers were actually substituted into some
// HTML output, so that embedded parts are not dispatched a second time as
// attachments. Output filenames are numbered across all messages rewritten
// through one Rewriter.
type Rewriter struct {
	workdir  string
	next     int
	embedded map[string]bool
}

// New creates a Rewriter rooted at workdir.
func New(workdir string) *Rewriter {
	return &Rewriter{
		workdir:  workdir,
		embedded: make(map[string]bool),
	}
}

// Embedded reports whether the content identifier was substituted into at
// least one rewritten HTML part.
func (r *Rewriter) Embedded(cid string) bool {
	return r.embedded[cid]
}

// Rewrite decodes the HTML part's text, replaces every cid: reference that
// resolves through index with the file:// URL of the extracted part, and
// writes the result to the next viewhtmlNN.html file. It returns the path of
// the written file.
func (r *Rewriter) Rewrite(part *message.Part, index map[string]extract.File) (string, error) {
	text := decodeText(part)

	for cid, f := range index {
		// Mailers reference cids in any case, occasionally with a space
		// after the colon.
		re, err := regexp.Compile(`(?i)cid: ?` + regexp.QuoteMeta(cid))
		if err != nil {
			continue
		}
		rewritten := re.ReplaceAllLiteralString(text, "file://"+f.Path)
		if rewritten != text {
			r.embedded[cid] = true
			text = rewritten
		}
	}

	path := filepath.Join(r.workdir, fmt.Sprintf("viewhtml%02d.html", r.next))
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("failed to write rewritten html: %w", err)
	}
	r.next++
	return path, nil
}

// decodeText decodes the part's payload to UTF-8 text using its declared
// charset, sniffing the content when none is declared. Undecodable bytes
// become replacement characters; decoding never fails outright.
func decodeText(part *message.Part) string {
	payload := part.Payload()

	var (
		reader io.Reader
		err    error
	)
	if label := part.Params["charset"]; label != "" {
		reader, err = charset.NewReaderLabel(label, bytes.NewReader(payload))
	} else {
		reader, err = charset.NewReader(bytes.NewReader(payload), part.MediaType)
	}
	if err == nil {
		if decoded, readErr := io.ReadAll(reader); readErr == nil {
			return string(decoded)
		}
	}
	return strings.ToValidUTF8(string(payload), "�")
}
