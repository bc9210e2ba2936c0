// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package input

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrNoPageCount is returned when no source yields a positive page count.
var ErrNoPageCount = errors.New("page count unknown")

// Prompter asks the user for the page count when the document does not
// report one.
type Prompter interface {
	PageCount() (int, error)
}

// ResolveCount settles the page count before any page is processed: an
// explicit override wins, then the document's own count, then the
// prompter. Zero is never returned without an error.
func ResolveCount(doc Document, override int, prompt Prompter) (int, error) {
	if override > 0 {
		return override, nil
	}
	if n := doc.PageCount(); n > 0 {
		return n, nil
	}
	if prompt == nil {
		return 0, fmt.Errorf("%w: pass --count", ErrNoPageCount)
	}
	n, err := prompt.PageCount()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNoPageCount, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%w: got %d", ErrNoPageCount, n)
	}
	return n, nil
}

// LinePrompter reads the answer from a line of in.
type LinePrompter struct {
	In  io.Reader
	Out io.Writer
}

func (p LinePrompter) PageCount() (int, error) {
	fmt.Fprintln(p.Out, "Unable to determine total number of pages in document")
	fmt.Fprint(p.Out, "Please enter number of pages: ")

	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return 0, fmt.Errorf("reading page count: %w", err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, fmt.Errorf("parsing page count %q: %w", strings.TrimSpace(line), err)
	}
	return n, nil
}
