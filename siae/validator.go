package siae

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"sigillo/entities"
)

// ValidationResult is the linter verdict. Errors mean the document should
// not be transmitted; warnings are advisory. The rule set is deliberately a
// regex-based regression baseline, not a schema engine: every rule here is
// pinned by a test and must survive any future validator upgrade.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
	Summary  Summary  `json:"summary"`
}

// Summary is extracted from transaction-log documents only.
type Summary struct {
	Transactions     int    `json:"transactions"`
	CFTitolare       string `json:"cf_titolare"`
	SistemaEmissione string `json:"sistema_emissione"`
	GrossCents       int64  `json:"gross_cents"`
}

var (
	xmlDeclRe      = regexp.MustCompile(`^<\?xml[^>]*\?>`)
	utf8DeclRe     = regexp.MustCompile(`(?i)encoding="utf-8"`)
	transazioneRe  = regexp.MustCompile(`<Transazione[\s/>]`)
	cfTitolareRe   = regexp.MustCompile(`CFTitolare="([^"]*)"`)
	sistemaRe      = regexp.MustCompile(`SistemaEmissione="([^"]*)"`)
	importoLordoRe = regexp.MustCompile(`ImportoLordo="(-?\d+)"`)
	controlCharRe  = regexp.MustCompile("[\x00-\x08\x0b\x0c\x0e-\x1f]")
)

var requiredRootAttrs = []string{
	"DataGenerazione", "OraGenerazione", "ProgressivoInvio",
	"CFTitolare", "CodiceSistema",
}

var validatorRoots = map[entities.TransmissionKind]string{
	entities.KindAccessi:        "RendicontoAccessi",
	entities.KindGiornaliero:    "RiepilogoGiornaliero",
	entities.KindMensile:        "RiepilogoMensile",
	entities.KindLogTransazioni: "LogTransazioni",
}

// Validate lints a generated document for the given kind. It never panics;
// any structural finding lands in Errors or Warnings.
func Validate(kind entities.TransmissionKind, document string) ValidationResult {
	res := ValidationResult{Valid: true}

	fail := func(format string, args ...any) {
		res.Errors = append(res.Errors, fmt.Sprintf(format, args...))
		res.Valid = false
	}
	warn := func(format string, args ...any) {
		res.Warnings = append(res.Warnings, fmt.Sprintf(format, args...))
	}

	if !xmlDeclRe.MatchString(document) {
		fail("missing XML declaration")
	} else if !utf8DeclRe.MatchString(document) {
		fail("XML declaration does not declare UTF-8")
	}

	root, ok := validatorRoots[kind]
	if !ok {
		fail("unknown document kind %q", kind)
		return res
	}
	if !strings.Contains(document, "<"+root) {
		fail("missing root element %s", root)
	}

	for _, attr := range requiredRootAttrs {
		if !strings.Contains(document, attr+`="`) {
			fail("missing required attribute %s", attr)
		}
	}

	if controlCharRe.MatchString(document) {
		fail("document contains raw control characters")
	}

	switch kind {
	case entities.KindGiornaliero:
		// Month-only fields must not leak into the daily variant.
		if strings.Contains(document, `ImponibileIntrattenimenti="`) {
			fail("ImponibileIntrattenimenti is forbidden in the daily aggregate")
		}
		if strings.Contains(document, `EccedenzaIVAOmaggi="`) {
			fail("EccedenzaIVAOmaggi is forbidden in the daily aggregate")
		}
		if !strings.Contains(document, "<Evento") {
			fail("aggregate report carries no Evento blocks")
		}
	case entities.KindMensile:
		if !strings.Contains(document, "<Evento") {
			fail("aggregate report carries no Evento blocks")
		}
	case entities.KindAccessi:
		if !strings.Contains(document, "<Evento") {
			fail("access-control report carries no Evento block")
		}
	case entities.KindLogTransazioni:
		validateLog(document, &res, fail, warn)
	}

	return res
}

// ValidateC1Report lints a transaction-log document and fills the summary:
// transaction count, first holder tax id and system id found, and the sum
// of gross amounts across all transactions.
func ValidateC1Report(document string) ValidationResult {
	return Validate(entities.KindLogTransazioni, document)
}

func validateLog(document string, res *ValidationResult, fail, warn func(string, ...any)) {
	matches := transazioneRe.FindAllStringIndex(document, -1)
	res.Summary.Transactions = len(matches)
	if len(matches) == 0 {
		fail("transaction log contains no Transazione elements")
	}

	if m := cfTitolareRe.FindStringSubmatch(document); m != nil {
		res.Summary.CFTitolare = m[1]
	}
	if m := sistemaRe.FindStringSubmatch(document); m != nil {
		res.Summary.SistemaEmissione = m[1]
	}

	for _, m := range importoLordoRe.FindAllStringSubmatch(document, -1) {
		cents, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			warn("unparseable ImportoLordo %q", m[1])
			continue
		}
		res.Summary.GrossCents += cents
	}

	if strings.Contains(document, `CartaAttivazione="`+CartaMancante+`"`) {
		warn("one or more transactions carry the %s activation-card placeholder", CartaMancante)
	}
}
