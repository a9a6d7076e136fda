// Package card wraps the vendor single-slot smart-card API behind a narrow
// boundary so hardware failures surface as first-class error kinds instead
// of generic native-call noise. The operator-facing taxonomy matters: "no
// reader attached" and "vendor library built for the wrong architecture"
// require completely different troubleshooting.
package card

import (
	"errors"
	"fmt"
)

var (
	// ErrLibraryNotFound: the vendor shared library could not be located
	// or loaded at all.
	ErrLibraryNotFound = errors.New("vendor card library not found")
	// ErrArchitectureMismatch: the library exists but was built for a
	// different processor architecture than this process.
	ErrArchitectureMismatch = errors.New("vendor card library has the wrong processor architecture")
	// ErrNoReader: no physical smart-card reader is attached.
	ErrNoReader = errors.New("no smart card reader detected")
	// ErrNoCard: a reader is present but no card is inserted.
	ErrNoCard = errors.New("no smart card inserted")
	// ErrPINIncorrect: the card rejected the PIN. The card's own retry
	// counter is authoritative; callers must never auto-retry.
	ErrPINIncorrect = errors.New("PIN rejected by the card")
	// ErrPINBlocked: the card exhausted its PIN retry counter.
	ErrPINBlocked = errors.New("PIN blocked, card requires unblocking with the PUK")
	// ErrNotInitialized: the slot was not initialized before use.
	ErrNotInitialized = errors.New("card slot not initialized")
)

// Status words returned by the vendor library (libsiaecardt.h).
const (
	statusOK             = 0x0000
	statusContextError   = 0x0001
	statusNotInitialized = 0x0002
	statusAlreadyInit    = 0x0003
	statusNoCard         = 0x0004
	statusUnknownCard    = 0x0005
	statusNotAuthorized  = 0x6982
	statusPINBlocked     = 0x6983
	statusGenericError   = 0xFFFF
)

// CardError carries an uncategorized vendor status word.
type CardError struct {
	Op   string
	Code int32
}

func (e CardError) Error() string {
	return fmt.Sprintf("card operation %s failed with status 0x%04X", e.Op, uint32(e.Code))
}

// statusError maps a vendor status word to the error taxonomy. statusOK
// maps to nil.
func statusError(op string, code int32) error {
	switch uint32(code) & 0xFFFF {
	case statusOK:
		return nil
	case statusNotInitialized:
		return ErrNotInitialized
	case statusAlreadyInit:
		// treated as success: the slot is usable
		return nil
	case statusNoCard, statusUnknownCard:
		return ErrNoCard
	case statusNotAuthorized:
		return ErrPINIncorrect
	case statusPINBlocked:
		return ErrPINBlocked
	default:
		return CardError{Op: op, Code: code}
	}
}

// Message renders the operator-facing description for any error produced by
// this package.
func Message(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrArchitectureMismatch):
		return "La libreria della smart card non è compatibile con l'architettura del sistema"
	case errors.Is(err, ErrLibraryNotFound):
		return "Libreria della smart card non trovata"
	case errors.Is(err, ErrNoReader):
		return "Nessun lettore di smart card rilevato"
	case errors.Is(err, ErrNoCard):
		return "Nessuna smart card inserita"
	case errors.Is(err, ErrPINBlocked):
		return "PIN bloccato: è necessario lo sblocco con il PUK"
	case errors.Is(err, ErrPINIncorrect):
		return "PIN errato"
	case errors.Is(err, ErrNotInitialized):
		return "Slot della smart card non inizializzato"
	default:
		return err.Error()
	}
}
