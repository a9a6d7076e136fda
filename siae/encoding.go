// Package siae turns event and ticket read models into the textual formats
// the entertainment-tax authority accepts: value normalization, the three
// XML document dialects, deterministic file naming and a structural linter.
//
// Every function in this file is pure and total: expected bad input yields
// a safe sentinel, never an error. The authority has no tolerance for
// format drift, so all of these are pinned by tests.
package siae

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Sentinels returned for missing or invalid date/time inputs.
const (
	ZeroData      = "00000000"
	ZeroOra       = "0000"
	ZeroOraEstesa = "000000"
)

// FormatData renders a timestamp as AAAAMMGG. A nil input yields the zero
// sentinel, never an error.
func FormatData(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ZeroData
	}
	return t.Format("20060102")
}

// FormatOra renders a timestamp as HHMM.
func FormatOra(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ZeroOra
	}
	return t.Format("1504")
}

// FormatOraEstesa renders a timestamp as HHMMSS.
func FormatOraEstesa(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ZeroOraEstesa
	}
	return t.Format("150405")
}

// ParseData parses an AAAAMMGG or dashed ISO date string back into a time.
// Upstream feeds carry both spellings. The zero sentinel and malformed input
// both come back as a nil time.
func ParseData(s string) *time.Time {
	if s == "" || s == ZeroData {
		return nil
	}
	for _, layout := range []string{"20060102", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// ToCentesimi converts a decimal euro amount to integer cents with a single
// rounding rule. NaN and infinities are treated as zero.
func ToCentesimi(amount float64) int64 {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0
	}
	return int64(math.Round(amount * 100))
}

// Canonical ticket type codes.
const (
	TipoTitoloIntero      = "R1"
	TipoTitoloRidotto     = "R2"
	TipoTitoloOmaggio     = "O1"
	TipoTitoloAbbonamento = "ABB"
)

// tipoTitoloSynonyms maps the many spellings seen in upstream feeds to the
// four canonical codes. Keys are lower case.
var tipoTitoloSynonyms = map[string]string{
	"r1":            TipoTitoloIntero,
	"intero":        TipoTitoloIntero,
	"full":          TipoTitoloIntero,
	"standard":      TipoTitoloIntero,
	"adult":         TipoTitoloIntero,
	"r2":            TipoTitoloRidotto,
	"ridotto":       TipoTitoloRidotto,
	"reduced":       TipoTitoloRidotto,
	"discount":      TipoTitoloRidotto,
	"student":       TipoTitoloRidotto,
	"o1":            TipoTitoloOmaggio,
	"omaggio":       TipoTitoloOmaggio,
	"free":          TipoTitoloOmaggio,
	"gratis":        TipoTitoloOmaggio,
	"complimentary": TipoTitoloOmaggio,
	"comp":          TipoTitoloOmaggio,
	"abb":           TipoTitoloAbbonamento,
	"abbonamento":   TipoTitoloAbbonamento,
	"subscription":  TipoTitoloAbbonamento,
	"season":        TipoTitoloAbbonamento,
}

// NormalizeTipoTitolo maps a raw type code to one of {R1,R2,O1,ABB}. An
// explicit complimentary flag always wins. Unrecognized codes default to
// R1: the permissive default is deliberate, a full-price ticket is the
// fiscally safe assumption.
func NormalizeTipoTitolo(raw string, complimentary bool) string {
	if complimentary {
		return TipoTitoloOmaggio
	}
	if canonical, ok := tipoTitoloSynonyms[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return canonical
	}
	return TipoTitoloIntero
}

func isASCIILetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func isASCIIDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// NormalizeOrdinePosto normalizes a sector code to letter+digits. A bare
// letter gets "0" appended, bare digits get "A" prepended, anything else
// falls back to "A0".
func NormalizeOrdinePosto(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return "A0"
	}
	if isASCIILetter(s[0]) {
		if len(s) == 1 {
			return s + "0"
		}
		allDigits := true
		for i := 1; i < len(s); i++ {
			if !isASCIIDigit(s[i]) {
				allDigits = false
				break
			}
		}
		if allDigits {
			return s
		}
		return "A0"
	}
	for i := 0; i < len(s); i++ {
		if !isASCIIDigit(s[i]) {
			return "A0"
		}
	}
	return "A" + s
}

func digitsOf(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if isASCIIDigit(s[i]) {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// FormatCodiceRichiedente derives the 8-digit numeric requester code. An
// already valid 8-digit code passes through. Otherwise the code is
// synthesized as "05" (system emission marker) plus 6 digits taken from the
// trailing numeric characters of the system code, zero-padded on the left.
// A system code with no digits at all gets a deterministic 6-digit body
// from a rolling character-code hash, so repeated calls always agree.
func FormatCodiceRichiedente(raw, systemCode string) string {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) == 8 && digitsOf(trimmed) == trimmed {
		return trimmed
	}

	digits := digitsOf(systemCode)
	if digits == "" {
		var h uint32
		for i := 0; i < len(systemCode); i++ {
			h = h*31 + uint32(systemCode[i])
		}
		return "05" + pad(strconv.FormatUint(uint64(h%1000000), 10), 6)
	}
	if len(digits) > 6 {
		digits = digits[len(digits)-6:]
	}
	return "05" + pad(digits, 6)
}

func pad(s string, width int) string {
	for len(s) < width {
		s = "0" + s
	}
	return s
}

// NormalizeCausaleAnnullamento extracts the numeric cancellation reason and
// zero-pads it to 3 digits. Only values 1..10 are accepted; anything else
// falls back to "005" (generic operator cancellation).
func NormalizeCausaleAnnullamento(raw string) string {
	digits := digitsOf(raw)
	if len(digits) >= 1 && len(digits) <= 3 {
		if n, err := strconv.Atoi(digits); err == nil && n >= 1 && n <= 10 {
			return pad(strconv.Itoa(n), 3)
		}
	}
	return "005"
}

// EscapeXML escapes & < > ' " in a single pass over the input. A single
// pass matters: sequential replacements would re-escape the ampersand of an
// already-inserted entity. The function is intentionally not idempotent;
// callers escape exactly once.
func EscapeXML(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '\'':
			b.WriteString("&apos;")
		case '"':
			b.WriteString("&quot;")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
