//go:build mage

// Package main contains Mage build targets for pdfread developer tooling.
package main

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"

	"github.com/pdiddy/pdfread/internal/tools"
)

const (
	binDir  = "bin"
	binName = "pdfread"
	cmdPkg  = "./cmd/pdfread"
)

// ldflags stamps the version from git describe into main.version.
func ldflags() string {
	v, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || v == "" {
		v = "dev"
	}
	return "-X main.version=" + v
}

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-ldflags", ldflags(), "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests of every package.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Install builds and installs pdfread into GOBIN.
func Install() error {
	mg.Deps(Test)
	return sh.RunV("go", "install", "-ldflags", ldflags(), cmdPkg)
}

// Clean removes build output.
func Clean() error {
	return sh.Rm(binDir)
}

// Tools reports which external programs the converter can use.
func Tools() {
	caps := tools.Probe()
	for _, name := range tools.Known {
		state := "missing"
		if caps.Has(name) {
			state = "found"
		}
		fmt.Printf("  %-14s %s\n", name, state)
	}
}

// Stats prints Go production and test line counts per package.
func Stats() error {
	prod, test, err := countGoLines(".")
	if err != nil {
		return err
	}
	dirs := make([]string, 0, len(prod))
	for d := range prod {
		dirs = append(dirs, d)
	}
	for d := range test {
		if _, ok := prod[d]; !ok {
			dirs = append(dirs, d)
		}
	}
	sort.Strings(dirs)

	var totalProd, totalTest int
	for _, d := range dirs {
		fmt.Printf("  %-24s %6d %6d\n", d, prod[d], test[d])
		totalProd += prod[d]
		totalTest += test[d]
	}
	fmt.Printf("Lines of code (Go, production): %d\n", totalProd)
	fmt.Printf("Lines of code (Go, tests):      %d\n", totalTest)
	return nil
}

// countGoLines walks the tree and counts non-blank lines of Go files per
// directory, split into production and test files. Underscore and dot
// directories are skipped like the go tool does.
func countGoLines(root string) (prod, test map[string]int, err error) {
	prod, test = make(map[string]int), make(map[string]int)
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			name := info.Name()
			if path != root && (strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		n := 0
		sc := bufio.NewScanner(bytes.NewReader(data))
		for sc.Scan() {
			if strings.TrimSpace(sc.Text()) != "" {
				n++
			}
		}
		dir := filepath.Dir(path)
		if strings.HasSuffix(path, "_test.go") {
			test[dir] += n
		} else {
			prod[dir] += n
		}
		return nil
	})
	return prod, test, err
}
