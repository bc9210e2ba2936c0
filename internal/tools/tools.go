// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tools probes and runs the external programs the pipeline
// delegates to: rasterizers, quantizers and e-book packagers. The probe
// result is an explicit Capabilities value handed to the components that
// need it.
package tools

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strings"
)

// External program names.
const (
	Pdftoppm     = "pdftoppm"
	Pdftops      = "pdftops"
	Ghostscript  = "gs"
	Pdftk        = "pdftk"
	Pdfinfo      = "pdfinfo"
	Djvused      = "djvused"
	Ddjvu        = "ddjvu"
	Tiffsplit    = "tiffsplit"
	Pngnq        = "pngnq"
	Magick       = "convert"
	Optipng      = "optipng"
	Rbmake       = "rbmake"
	EbookConvert = "ebook-convert"
)

// Known lists every program Probe looks for.
var Known = []string{
	Pdftoppm, Pdftops, Ghostscript, Pdftk, Pdfinfo,
	Djvused, Ddjvu, Tiffsplit,
	Pngnq, Magick, Optipng,
	Rbmake, EbookConvert,
}

// ErrToolMissing is returned when a required program is not on PATH.
var ErrToolMissing = errors.New("external tool not found")

// Executor abstracts process execution for testing.
type Executor interface {
	LookPath(file string) (string, error)
	// Run starts name in dir, waits for it, and returns its captured
	// stdout and stderr.
	Run(dir, name string, args ...string) (stdout, stderr []byte, err error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Run(dir, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

var defaultExec = &osExecutor{}

// Capabilities records which programs were found on PATH.
type Capabilities struct {
	exec  Executor
	paths map[string]string
}

// Probe looks up every Known program once.
func Probe() *Capabilities {
	return NewCapabilities(defaultExec, Known...)
}

// NewCapabilities probes names through exec.
func NewCapabilities(exec Executor, names ...string) *Capabilities {
	c := &Capabilities{exec: exec, paths: make(map[string]string)}
	for _, name := range names {
		if p, err := exec.LookPath(name); err == nil {
			c.paths[name] = p
		}
	}
	return c
}

// Has reports whether name was found.
func (c *Capabilities) Has(name string) bool {
	_, ok := c.paths[name]
	return ok
}

// Found returns the names that were found, sorted.
func (c *Capabilities) Found() []string {
	names := make([]string, 0, len(c.paths))
	for n := range c.paths {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Require returns ErrToolMissing naming every program in names that was
// not found.
func (c *Capabilities) Require(names ...string) error {
	var missing []string
	for _, n := range names {
		if !c.Has(n) {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrToolMissing, strings.Join(missing, ", "))
	}
	return nil
}

// Output runs name in dir and returns its stdout. A non-zero exit is
// reported together with the program's stderr.
func (c *Capabilities) Output(dir, name string, args ...string) ([]byte, error) {
	if err := c.Require(name); err != nil {
		return nil, err
	}
	stdout, stderr, err := c.exec.Run(dir, name, args...)
	if err != nil {
		return stdout, fmt.Errorf("%s failed: %w (output: %s)", name, err, strings.TrimSpace(string(stderr)))
	}
	return stdout, nil
}

// Run is Output for programs whose stdout is not needed.
func (c *Capabilities) Run(dir, name string, args ...string) error {
	_, err := c.Output(dir, name, args...)
	return err
}

// CombinedOutput runs name in dir and returns stdout followed by stderr,
// for programs that report results on stderr (gs -sDEVICE=bbox).
func (c *Capabilities) CombinedOutput(dir, name string, args ...string) ([]byte, error) {
	if err := c.Require(name); err != nil {
		return nil, err
	}
	stdout, stderr, err := c.exec.Run(dir, name, args...)
	out := append(append([]byte(nil), stdout...), stderr...)
	if err != nil {
		return out, fmt.Errorf("%s failed: %w (output: %s)", name, err, strings.TrimSpace(string(out)))
	}
	return out, nil
}
