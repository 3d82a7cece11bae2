package bitacora

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentHash(t *testing.T) {
	composed := "\u00e9\n"
	decomposed := "e\u0301\n"

	assert.Equal(t, ContentHash(composed), ContentHash(decomposed))
	assert.Len(t, ContentHash(composed), 64)
	assert.NotEqual(t, ContentHash("a"), ContentHash("b"))

	withStamp := "Texto oficial\n" + GenerationLinePrefix + "2025-03-01 10:00:00 UTC\n"
	assert.Equal(t, ContentHash("Texto oficial\n"), ContentHash(withStamp))

	body := "Texto\n" + GenerationLinePrefix + "nota del residente\nCierre\n"
	altered := "Texto\n" + GenerationLinePrefix + "nota alterada\nCierre\n"
	assert.NotEqual(t, ContentHash(body), ContentHash(altered), "prefixed lines inside the text are hashed")
}

func TestVerifyContent(t *testing.T) {
	stored := ContentHash("Contenido sellado")

	computed, ok := VerifyContent("Contenido sellado", stored)
	assert.True(t, ok)
	assert.Equal(t, stored, computed)

	_, ok = VerifyContent("Contenido alterado", stored)
	assert.False(t, ok)
}

func TestContentLength(t *testing.T) {
	assert.Equal(t, 4, ContentLength("  obra \n"))
	assert.Equal(t, 1, ContentLength("e\u0301"))
}
