// Package parser loads a single email message from an mbox file, a maildir or
// standard input and parses it into a MIME part tree.
package parser

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/mail"
	"net/textproto"
	"strings"

	"github.com/mailtools/mailview/internal/message"
)

// Parse parses a raw RFC 5322 message into its MIME part tree. Multipart
// containers and attached message/rfc822 parts are recursed into; malformed
// parts are logged and skipped so that the rest of the message still yields
// artifacts. Only an unreadable top-level envelope is a hard error.
func Parse(raw []byte) (*message.Message, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}

	body, err := io.ReadAll(msg.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read message body: %w", err)
	}

	return &message.Message{Part: buildPart(textproto.MIMEHeader(msg.Header), body)}, nil
}

// buildPart constructs the part for one header/body pair and recurses into it
// when it is a container.
func buildPart(header textproto.MIMEHeader, body []byte) *message.Part {
	contentType := header.Get("Content-Type")
	if contentType == "" {
		contentType = "text/plain"
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		slog.Warn("failed to parse content type, treating as plain text",
			"content_type", contentType,
			"error", err,
		)
		mediaType, params = "text/plain", nil
	}

	p := &message.Part{
		MediaType:   mediaType,
		Params:      params,
		Header:      header,
		Disposition: dispositionToken(header.Get("Content-Disposition")),
		Filename:    partFilename(header, params),
		Encoding:    header.Get("Content-Transfer-Encoding"),
		Body:        body,
	}

	switch {
	case strings.HasPrefix(mediaType, "multipart/"):
		boundary := params["boundary"]
		if boundary == "" {
			slog.Warn("multipart part missing boundary, no subparts parsed",
				"content_type", mediaType,
			)
			return p
		}
		p.Subparts = parseMultipart(body, boundary)

	case mediaType == "message/rfc822":
		sub, err := mail.ReadMessage(bytes.NewReader(p.Payload()))
		if err != nil {
			slog.Warn("failed to parse attached message", "error", err)
			return p
		}
		subBody, err := io.ReadAll(sub.Body)
		if err != nil {
			slog.Warn("failed to read attached message body", "error", err)
			return p
		}
		p.Subparts = []*message.Part{buildPart(textproto.MIMEHeader(sub.Header), subBody)}
	}

	return p
}

// parseMultipart splits a multipart body at the given boundary. Raw parts are
// read so transfer decoding stays with the part model rather than being done
// twice.
func parseMultipart(body []byte, boundary string) []*message.Part {
	var parts []*message.Part

	reader := multipart.NewReader(bytes.NewReader(body), boundary)
	for {
		part, err := reader.NextRawPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			slog.Warn("failed to read next part", "error", err)
			break
		}

		content, err := io.ReadAll(part)
		if err != nil {
			slog.Warn("failed to read part content", "error", err)
			continue
		}

		parts = append(parts, buildPart(part.Header, content))
	}

	return parts
}

// partFilename extracts the declared filename of a part, checking the
// Content-Disposition filename parameter first and falling back to the
// Content-Type name parameter. Encoded words are decoded; a filename that
// fails to decode is used as is.
func partFilename(header textproto.MIMEHeader, ctParams map[string]string) string {
	if cd := header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			if fn := params["filename"]; fn != "" {
				return decodeWord(fn)
			}
		}
	}
	if name := ctParams["name"]; name != "" {
		return decodeWord(name)
	}
	return ""
}

func decodeWord(s string) string {
	dec := new(mime.WordDecoder)
	decoded, err := dec.DecodeHeader(s)
	if err != nil {
		return s
	}
	return decoded
}

// dispositionToken returns the bare disposition ("attachment", "inline"),
// without parameters, lowercased.
func dispositionToken(cd string) string {
	token, _, _ := strings.Cut(cd, ";")
	return strings.ToLower(strings.TrimSpace(token))
}
