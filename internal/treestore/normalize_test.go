package treestore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type entry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func TestSliceOfList(t *testing.T) {
	v := []any{
		map[string]any{"id": "a", "title": "one"},
		map[string]any{"id": "b", "title": "two"},
	}
	out := SliceOf[entry](v)
	assert.Equal(t, []entry{{ID: "a", Title: "one"}, {ID: "b", Title: "two"}}, out)
}

func TestSliceOfMapOrdersByKey(t *testing.T) {
	v := map[string]any{
		"k2": map[string]any{"id": "b", "title": "two"},
		"k1": map[string]any{"id": "a", "title": "one"},
	}
	out := SliceOf[entry](v)
	assert.Equal(t, []entry{{ID: "a", Title: "one"}, {ID: "b", Title: "two"}}, out)
}

func TestSliceOfAbsent(t *testing.T) {
	assert.Nil(t, SliceOf[entry](nil))
}

func TestSliceOfAlreadyTyped(t *testing.T) {
	in := []string{"x", "y"}
	assert.Equal(t, in, SliceOf[string](in))
}

func TestSliceOfScalarMap(t *testing.T) {
	v := map[string]any{"b": "u2", "a": "u1"}
	assert.Equal(t, []string{"u1", "u2"}, SliceOf[string](v))
}

func TestDecode(t *testing.T) {
	out, err := Decode[entry](map[string]any{"id": "a", "title": "one"})
	assert.NoError(t, err)
	assert.Equal(t, entry{ID: "a", Title: "one"}, out)
}
