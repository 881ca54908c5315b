package util

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"
)

const maxBinaryCheckBytes = 512

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Typographic characters that trending-data exports carry in titles.
var charReplacementMap = map[string]string{
	"\u2018": "'", "\u2019": "'", "\u201C": "\"", "\u201D": "\"",
	"\u2013": "-", "\u2014": "--", "\u2026": "...", "\u00a0": " ",
	"\u0096": "-", "\u0097": "--", "\u0091": "'", "\u0092": "'",
	"\u0093": "\"", "\u0094": "\"",
}

var punctuationReplacer = func() *strings.Replacer {
	var pairs []string
	for bad, good := range charReplacementMap {
		pairs = append(pairs, bad, good)
	}
	return strings.NewReplacer(pairs...)
}()

// IsLikelyBinary reports whether the first bytes of path contain a NUL byte.
func IsLikelyBinary(path string) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer file.Close()

	buffer := make([]byte, maxBinaryCheckBytes)
	n, err := file.Read(buffer)
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}

	return bytes.Contains(buffer[:n], []byte{0}), nil
}

// CleanText strips a UTF-8 BOM and repairs invalid UTF-8. It leaves every
// other byte alone so the result still parses as the same CSV. src is only
// used for log messages.
func CleanText(content []byte, src string) string {
	content = bytes.TrimPrefix(content, utf8BOM)

	if !utf8.Valid(content) {
		log.Warnf("%s contains invalid UTF-8, replacing invalid chars", src)
		content = bytes.ToValidUTF8(content, []byte(string(utf8.RuneError)))
	}
	return string(content)
}

// NormalizePunctuation replaces typographic quotes, dashes and ellipses in a
// single field with their ASCII forms. Apply it after CSV parsing.
func NormalizePunctuation(s string) string {
	return punctuationReplacer.Replace(s)
}
