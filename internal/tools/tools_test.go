// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tools

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockExecutor records calls and returns configured responses.
type mockExecutor struct {
	availableBins map[string]bool   // binary -> whether LookPath succeeds
	outputs       map[string]string // "bin arg1 arg2" -> stdout
	failing       map[string]string // "bin arg1 arg2" -> stderr of a failed run
	calls         []string
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if m.availableBins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) Run(dir, name string, args ...string) ([]byte, []byte, error) {
	key := name + " " + strings.Join(args, " ")
	m.calls = append(m.calls, key)
	if stderr, ok := m.failing[key]; ok {
		return nil, []byte(stderr), errors.New("exit status 1")
	}
	return []byte(m.outputs[key]), nil, nil
}

func TestNewCapabilities(t *testing.T) {
	exec := &mockExecutor{availableBins: map[string]bool{"pdftoppm": true, "pngnq": true}}
	caps := NewCapabilities(exec, Known...)

	assert.True(t, caps.Has(Pdftoppm))
	assert.True(t, caps.Has(Pngnq))
	assert.False(t, caps.Has(Optipng))
	assert.Equal(t, []string{"pdftoppm", "pngnq"}, caps.Found())
}

func TestRequire(t *testing.T) {
	caps := NewCapabilities(&mockExecutor{availableBins: map[string]bool{"gs": true}}, Known...)

	assert.NoError(t, caps.Require(Ghostscript))

	err := caps.Require(Ghostscript, Pdftops, Rbmake)
	require.ErrorIs(t, err, ErrToolMissing)
	assert.Contains(t, err.Error(), "pdftops, rbmake")
}

func TestOutput(t *testing.T) {
	exec := &mockExecutor{
		availableBins: map[string]bool{"pdfinfo": true},
		outputs:       map[string]string{"pdfinfo book.pdf": "Pages: 12\n"},
		failing:       map[string]string{"pdfinfo broken.pdf": "Syntax Error: Couldn't read xref table"},
	}
	caps := NewCapabilities(exec, Pdfinfo)

	out, err := caps.Output("", Pdfinfo, "book.pdf")
	require.NoError(t, err)
	assert.Equal(t, "Pages: 12\n", string(out))

	err = caps.Run("", Pdfinfo, "broken.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdfinfo failed")
	assert.Contains(t, err.Error(), "xref table")
}

func TestOutput_MissingToolNotExecuted(t *testing.T) {
	exec := &mockExecutor{}
	caps := NewCapabilities(exec, Pdftk)

	_, err := caps.Output("", Pdftk, "book.pdf", "dump_data")
	assert.ErrorIs(t, err, ErrToolMissing)
	assert.Empty(t, exec.calls)
}
