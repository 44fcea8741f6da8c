package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPDFRenderer_Render(t *testing.T) {
	r := NewPDFRenderer()

	b, err := r.Render(Profile{Name: "John", Surname: "Doe", Email: "john@example.com", DateOfBirthday: "1990-01-15"})
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(b, []byte("%PDF-")), "missing PDF header")
	assert.True(t, bytes.HasSuffix(bytes.TrimSpace(b), []byte("%%EOF")), "missing PDF trailer")
}

func TestPDFRenderer_Deterministic(t *testing.T) {
	r := NewPDFRenderer()
	p := Profile{Name: "Ann", Surname: "Lee", Email: "ann@example.com", DateOfBirthday: "2001-12-31"}

	a, err := r.Render(p)
	require.NoError(t, err)
	b, err := r.Render(p)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestPDFRenderer_DifferentProfilesDiffer(t *testing.T) {
	r := NewPDFRenderer()

	a, err := r.Render(Profile{Name: "A", Surname: "A", Email: "a@a.io", DateOfBirthday: "2000-01-01"})
	require.NoError(t, err)
	b, err := r.Render(Profile{Name: "B", Surname: "B", Email: "b@b.io", DateOfBirthday: "2000-01-01"})
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestPDFRenderer_NonLatinInput(t *testing.T) {
	r := NewPDFRenderer()

	b, err := r.Render(Profile{Name: "Jürgen", Surname: "Müller", Email: "j@m.de", DateOfBirthday: "1970-05-05"})
	require.NoError(t, err)
	assert.NotEmpty(t, b)
}
