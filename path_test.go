package paramshape_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	ps "github.com/reoring/paramshape"
)

func TestPath_Pointer(t *testing.T) {
	assert.Equal(t, "/", ps.Path{}.Pointer())
	p := ps.Path{}.Field("items").Index(2).Field("a/b~c")
	assert.Equal(t, "/items/2/a~1b~0c", p.Pointer())
	assert.Equal(t, "items.2.a/b~c", p.String())
	assert.Equal(t, "a/b~c", p.Last())
	assert.Equal(t, "", ps.Path{}.Last())
}

func TestPath_FieldDoesNotAlias(t *testing.T) {
	base := make(ps.Path, 1, 4)
	base[0] = "root"
	a := base.Field("a")
	b := base.Field("b")
	assert.Equal(t, ps.Path{"root", "a"}, a)
	assert.Equal(t, ps.Path{"root", "b"}, b)
}

func TestParsePointer_RoundTrip(t *testing.T) {
	for _, ptr := range []string{"/items/2/a~1b~0c", "/x", "/a/"} {
		assert.Equal(t, ptr, ps.ParsePointer(ptr).Pointer())
	}
	assert.Equal(t, ps.Path{}, ps.ParsePointer(""))
	assert.Equal(t, ps.Path{}, ps.ParsePointer("/"))
}
