package siae

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"sigillo/entities"
)

// filePrefixes maps the transmission kind to the authority's report prefix.
var filePrefixes = map[entities.TransmissionKind]string{
	entities.KindAccessi:        "RCA",
	entities.KindGiornaliero:    "RPG",
	entities.KindMensile:        "RPM",
	entities.KindLogTransazioni: "LTR",
}

// FileName derives the transmission file name. It is a pure function of its
// inputs: PREFIX_AAAAMMGG_NNNNNN.xsi, with .p7m appended only for a CAdES
// envelope.
func FileName(kind entities.TransmissionKind, date time.Time, progressivo int64, signatureFormat string) string {
	prefix, ok := filePrefixes[kind]
	if !ok {
		prefix = "LTR"
	}
	name := fmt.Sprintf("%s_%s_%06d.xsi", prefix, date.Format("20060102"), progressivo)
	if signatureFormat == entities.SignatureCAdES {
		name += ".p7m"
	}
	return name
}

// Fingerprint returns the hex SHA-256 of the raw document text. The hash is
// stored with the transmission so the delivered artifact can be matched to
// the acknowledgement later.
func Fingerprint(document string) string {
	sum := sha256.Sum256([]byte(document))
	return hex.EncodeToString(sum[:])
}
