package parser

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/emersion/go-mbox"
)

// ErrNoMessage is returned when no message could be located at the given
// source: a missing file, an empty stream, or a maildir with no visible
// message files.
var ErrNoMessage = errors.New("no message found")

// Load resolves a message source to raw message bytes. An empty path reads
// standard input; a directory is treated as a maildir and the first regular
// non-hidden file found below it is taken; anything else is read as a single
// message file, with mbox `From ` separators handled transparently.
func Load(path string) ([]byte, error) {
	if path == "" {
		return loadReader(os.Stdin)
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrNoMessage)
		}
		return nil, fmt.Errorf("failed to stat message source: %w", err)
	}

	if info.IsDir() {
		return loadMaildir(path)
	}
	return loadFile(path)
}

// loadMaildir walks the maildir depth first and loads the first regular
// non-hidden file. Mutt nests messages one level down, under cur/ or new/,
// so the walk does not assume any particular layout.
func loadMaildir(root string) ([]byte, error) {
	var found string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		found = path
		return fs.SkipAll
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk maildir: %w", err)
	}
	if found == "" {
		return nil, fmt.Errorf("%s: %w", root, ErrNoMessage)
	}
	return loadFile(found)
}

func loadFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open message file: %w", err)
	}
	defer f.Close()
	return loadReader(f)
}

// loadReader reads one message from r. A stream starting with the mbox
// message separator is read through an mbox reader and the first message
// taken; everything else is treated as a bare RFC 5322 message.
func loadReader(r io.Reader) ([]byte, error) {
	br := bufio.NewReader(r)

	prefix, err := br.Peek(5)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read message: %w", err)
	}
	if bytes.Equal(prefix, []byte("From ")) {
		msg, err := mbox.NewReader(br).NextMessage()
		if err == io.EOF {
			return nil, ErrNoMessage
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read mbox message: %w", err)
		}
		raw, err := io.ReadAll(msg)
		if err != nil {
			return nil, fmt.Errorf("failed to read mbox message: %w", err)
		}
		return raw, nil
	}

	raw, err := io.ReadAll(br)
	if err != nil {
		return nil, fmt.Errorf("failed to read message: %w", err)
	}
	if len(raw) == 0 {
		return nil, ErrNoMessage
	}
	return raw, nil
}
