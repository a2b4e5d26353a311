package vars_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/braceval/internal/vars"
)

func TestContext_MapLookupIsCaseInsensitive(t *testing.T) {
	vc := vars.New(nil, map[string]any{"Name": "John"})

	v, ok := vc.Lookup("name")
	require.True(t, ok)
	require.Equal(t, "John", v)

	v, ok = vc.Lookup("NAME")
	require.True(t, ok)
	require.Equal(t, "John", v)

	_, ok = vc.Lookup("missing")
	require.False(t, ok)
}

func TestContext_StructFlattening(t *testing.T) {
	type user struct {
		Name string
		Age  int
		note string //nolint:unused // unexported fields must not leak
	}
	vc := vars.New(nil, &user{Name: "Ada", Age: 36})

	v, ok := vc.Lookup("age")
	require.True(t, ok)
	require.Equal(t, 36, v)

	_, ok = vc.Lookup("note")
	require.False(t, ok)
}

func TestContext_LocalOverridesGlobal(t *testing.T) {
	vc := vars.New(
		map[string]any{"name": "Default", "site": "example.org"},
		map[string]any{"Name": "John"},
	)

	v, ok := vc.Lookup("name")
	require.True(t, ok)
	require.Equal(t, "John", v)

	v, ok = vc.Lookup("site")
	require.True(t, ok)
	require.Equal(t, "example.org", v)
}

func TestContext_NilInputs(t *testing.T) {
	vc := vars.New(nil, nil)
	require.Empty(t, vc.Names())
	require.Nil(t, vc.Raw())
}

func TestContext_WithOverlayDoesNotMutate(t *testing.T) {
	base := vars.New(nil, map[string]any{"a": 1})
	overlay := base.With("b", 2)

	_, ok := base.Lookup("b")
	require.False(t, ok)

	v, ok := overlay.Lookup("b")
	require.True(t, ok)
	require.Equal(t, 2, v)

	v, ok = overlay.Lookup("a")
	require.True(t, ok)
	require.Equal(t, 1, v)
}

func TestContext_Names(t *testing.T) {
	vc := vars.New(map[string]any{"b": 1}, map[string]any{"A": 2})
	require.Equal(t, []string{"A", "b"}, vc.Names())
}
