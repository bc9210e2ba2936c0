// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type factory func() string

func TestRegistry(t *testing.T) {
	r := New[factory]("widget")
	require.NoError(t, r.Register("b", func() string { return "bee" }))
	require.NoError(t, r.Register("a", func() string { return "ay" }))

	f, err := r.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "ay", f())
	assert.Equal(t, []string{"b", "a"}, r.Names())
}

func TestRegistry_Duplicate(t *testing.T) {
	r := New[factory]("widget")
	require.NoError(t, r.Register("a", nil))

	err := r.Register("a", nil)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
	assert.Panics(t, func() { r.MustRegister("a", nil) })
}

func TestRegistry_NotFound(t *testing.T) {
	r := New[factory]("widget").MustRegister("x", nil)

	_, err := r.Get("y")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), `widget "y"`)
	assert.Contains(t, err.Error(), "[x]")
}
