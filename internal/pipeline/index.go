// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

// IndexEntry pairs a logical page with the index of its first image.
type IndexEntry struct {
	Page  int `json:"page" yaml:"page"`
	Index int `json:"index" yaml:"index"`
}

// IndexMap maps logical pages to the output index of the first image each
// page produced. Pages that produced nothing are absent. Entries keep
// insertion order and are never reassigned.
type IndexMap struct {
	order []int
	index map[int]int
}

// NewIndexMap returns an empty map.
func NewIndexMap() *IndexMap {
	return &IndexMap{index: make(map[int]int)}
}

// Set records index for page. It returns false, leaving the map unchanged,
// when page is already mapped or index does not exceed the last one.
func (m *IndexMap) Set(page, index int) bool {
	if _, ok := m.index[page]; ok {
		return false
	}
	if n := len(m.order); n > 0 && index <= m.index[m.order[n-1]] {
		return false
	}
	m.index[page] = index
	m.order = append(m.order, page)
	return true
}

// Lookup returns the first output index of page.
func (m *IndexMap) Lookup(page int) (int, bool) {
	i, ok := m.index[page]
	return i, ok
}

// Len returns the number of mapped pages.
func (m *IndexMap) Len() int { return len(m.order) }

// Entries returns the mapping in insertion order.
func (m *IndexMap) Entries() []IndexEntry {
	out := make([]IndexEntry, len(m.order))
	for i, p := range m.order {
		out[i] = IndexEntry{Page: p, Index: m.index[p]}
	}
	return out
}

// IndexMapFrom rebuilds a map from saved entries, skipping any that would
// break the ordering invariant.
func IndexMapFrom(entries []IndexEntry) *IndexMap {
	m := NewIndexMap()
	for _, e := range entries {
		m.Set(e.Page, e.Index)
	}
	return m
}
