// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Metadata is the descriptive information written into the output container.
type Metadata struct {
	Title    string `json:"title" yaml:"title"`
	Author   string `json:"author" yaml:"author"`
	Category string `json:"category" yaml:"category"`
}

// TOCEntry is one table-of-contents line as reported by the input document.
type TOCEntry struct {
	// Title is the entry text.
	Title string `json:"title" yaml:"title"`

	// Level is the nesting depth, starting at 1.
	Level int `json:"level" yaml:"level"`

	// Page is the 1-based source page the entry points at.
	Page int `json:"page" yaml:"page"`
}

// ResolvedEntry is a TOCEntry whose source page has been translated into
// the index of the first output image rendered from it.
type ResolvedEntry struct {
	Title string `json:"title" yaml:"title"`
	Level int    `json:"level" yaml:"level"`
	Index int    `json:"index" yaml:"index"`
}
