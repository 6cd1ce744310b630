// Package message defines the parsed MIME message model used throughout mailview.
package message

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime/quotedprintable"
	"net/textproto"
	"strings"
)

// Part is a node in a message's MIME tree. Container parts (multipart/* and
// message/rfc822) carry subparts and are never materialized as files; leaf
// parts carry the payload bytes as they appeared on the wire, still in their
// transfer encoding.
type Part struct {
	// MediaType is the normalized media type, e.g. "text/html".
	MediaType string
	// Params holds the Content-Type parameters (charset, boundary, name).
	Params map[string]string
	// Header holds all MIME headers of this part.
	Header textproto.MIMEHeader
	// Disposition is the first token of Content-Disposition, lowercased.
	Disposition string
	// Filename is the declared filename, or empty if the part declares none.
	Filename string
	// Encoding is the Content-Transfer-Encoding value.
	Encoding string
	// Body is the raw body before transfer decoding. Empty for containers.
	Body []byte
	// Subparts are the children of a container part, in message order.
	Subparts []*Part
}

// Message is a parsed email message: the root of its MIME part tree.
type Message struct {
	*Part
}

// Maintype returns the media type before the slash, e.g. "image".
func (p *Part) Maintype() string {
	maintype, _, _ := strings.Cut(p.MediaType, "/")
	return maintype
}

// Subtype returns the media type after the slash, e.g. "png".
func (p *Part) Subtype() string {
	_, subtype, _ := strings.Cut(p.MediaType, "/")
	return subtype
}

// IsContainer reports whether this part only holds other parts.
// Containers are traversed but never extracted as files themselves.
func (p *Part) IsContainer() bool {
	return strings.HasPrefix(p.MediaType, "multipart/") || p.MediaType == "message/rfc822"
}

// ContentID returns the part's content identifier with a single pair of
// surrounding angle brackets stripped, or "" if the part declares none.
// Mailers disagree on the capitalization of the header name (Content-Id,
// Content-ID, ...), so the header map is scanned case-insensitively rather
// than looked up by key.
func (p *Part) ContentID() string {
	for name, values := range p.Header {
		if !strings.EqualFold(name, "Content-Id") || len(values) == 0 {
			continue
		}
		id := strings.TrimSpace(values[0])
		if strings.HasPrefix(id, "<") && strings.HasSuffix(id, ">") {
			id = id[1 : len(id)-1]
		}
		return id
	}
	return ""
}

// Payload returns the body with the transfer encoding (base64 or
// quoted-printable) undone. Undecodable content degrades to the raw bytes
// rather than failing; extraction is best-effort on malformed messages.
func (p *Part) Payload() []byte {
	switch strings.ToLower(strings.TrimSpace(p.Encoding)) {
	case "base64":
		cleaned := strings.NewReplacer("\r", "", "\n", "").Replace(string(p.Body))
		decoded, err := base64.StdEncoding.DecodeString(cleaned)
		if err != nil {
			// Some mailers emit unpadded base64.
			decoded, err = base64.RawStdEncoding.DecodeString(cleaned)
			if err != nil {
				return p.Body
			}
		}
		return decoded
	case "quoted-printable":
		decoded, err := io.ReadAll(quotedprintable.NewReader(bytes.NewReader(p.Body)))
		if err != nil && len(decoded) == 0 {
			return p.Body
		}
		return decoded
	default:
		// "7bit", "8bit", "binary", empty, or anything unrecognized.
		return p.Body
	}
}

// Walk visits this part and all descendants in pre-order, depth first.
func (p *Part) Walk(fn func(*Part)) {
	fn(p)
	for _, sub := range p.Subparts {
		sub.Walk(fn)
	}
}
