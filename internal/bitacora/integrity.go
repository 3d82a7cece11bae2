package bitacora

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// NormalizeContent trims the text and puts it in Unicode NFC form, so that an
// "é" typed as one or two code points counts and hashes the same way.
func NormalizeContent(content string) string {
	return norm.NFC.String(strings.TrimSpace(content))
}

// ContentLength is the length in characters of the normalised content
func ContentLength(content string) int {
	return utf8.RuneCountInString(NormalizeContent(content))
}

// ContentHash returns the hex sha256 of the sealed content, ignoring the
// generation timestamp line.
func ContentHash(content string) string {
	sum := sha256.Sum256([]byte(NormalizeContent(StripGenerationLine(content))))
	return hex.EncodeToString(sum[:])
}

// VerifyContent reports whether content still matches the stored hash
func VerifyContent(content, storedHash string) (computed string, ok bool) {
	computed = ContentHash(content)
	return computed, strings.EqualFold(computed, storedHash)
}
