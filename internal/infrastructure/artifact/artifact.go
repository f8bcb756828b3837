// Package artifact writes serialized documents produced by export, report
// and fiscal issuance to a configurable backend.
package artifact

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Kind groups artifacts of the same purpose under one location
type Kind string

// Artifact kinds
const (
	KindExport Kind = "export"
	KindReport Kind = "report"
	KindFiscal Kind = "fiscal"
)

// Sink stores a named artifact and returns where it was written
type Sink interface {
	Write(ctx context.Context, kind Kind, name string, data []byte) (string, error)
}

// Layout maps each kind to its directory or key prefix
type Layout map[Kind]string

// DefaultLayout returns the directory names used by the file backend
func DefaultLayout() Layout {
	return Layout{
		KindExport: "dados_exportados",
		KindReport: "relatorios",
		KindFiscal: "notas_fiscais",
	}
}

func (l Layout) location(kind Kind) string {
	if p, ok := l[kind]; ok && p != "" {
		return p
	}
	return string(kind)
}

// Encode serializes v with two-space indentation.
// Non-ASCII and HTML characters are written as-is.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

var stripMarks = runes.Remove(runes.In(unicode.Mn))

// SanitizeName turns a caller-supplied value into a safe single-segment file name.
// Accents are folded to their base letters; anything outside [A-Za-z0-9._-] becomes '_'.
func SanitizeName(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, stripMarks, norm.NFC), s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	name := strings.TrimLeft(b.String(), ".")
	if name == "" {
		return "_"
	}
	return name
}
