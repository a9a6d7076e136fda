package siae

import (
	"testing"
	"time"

	"sigillo/entities"

	"github.com/stretchr/testify/assert"
)

func TestFileNameIsPure(t *testing.T) {
	date := time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC)

	first := FileName(entities.KindLogTransazioni, date, 42, entities.SignatureXMLDSig)
	second := FileName(entities.KindLogTransazioni, date, 42, entities.SignatureXMLDSig)
	assert.Equal(t, first, second)
	assert.Equal(t, "LTR_20250714_000042.xsi", first)
}

func TestFileNameExtensionFollowsSignatureFormat(t *testing.T) {
	date := time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "RPG_20250714_000007.xsi.p7m",
		FileName(entities.KindGiornaliero, date, 7, entities.SignatureCAdES))
	assert.Equal(t, "RPG_20250714_000007.xsi",
		FileName(entities.KindGiornaliero, date, 7, entities.SignatureXMLDSig))
	assert.Equal(t, "RPG_20250714_000007.xsi",
		FileName(entities.KindGiornaliero, date, 7, ""))
}

func TestFileNamePrefixesPerKind(t *testing.T) {
	date := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "RCA_20260102_000001.xsi", FileName(entities.KindAccessi, date, 1, ""))
	assert.Equal(t, "RPM_20260102_000001.xsi", FileName(entities.KindMensile, date, 1, ""))
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("<LogTransazioni/>")
	b := Fingerprint("<LogTransazioni/>")
	c := Fingerprint("<LogTransazioni />")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}
