package card

import (
	"fmt"
	"time"
)

// Seal is the result of the fiscal-seal primitive: the card serial, the MAC
// computed over the packed date/time and price, and the card's monotonic
// emission counter.
type Seal struct {
	Serial  string `json:"serial"`
	MAC     []byte `json:"mac"`
	Counter uint32 `json:"counter"`
}

// Code renders the printable seal code stamped on tickets and documents.
func (s Seal) Code() string {
	return fmt.Sprintf("%s-%X-%08X", s.Serial, s.MAC, s.Counter)
}

// API is the single-slot vendor surface. Implementations are not reentrant:
// every multi-step operation must be wrapped in the transaction bracket, and
// a second bracketed operation must never be issued on the same slot while
// one is open. The bridge's card actor is the sole caller.
type API interface {
	Initialize(slot int) error
	Finalize() error

	BeginTransaction() error
	EndTransaction() error

	CardPresent() (bool, error)
	Serial() (string, error)
	ReadCounter() (uint32, error)
	ReadBalance() (uint32, error)
	KeyID() (byte, error)

	// VerifyPIN performs exactly one verification; the card enforces its
	// own retry counter.
	VerifyPIN(pin string) error

	// ComputeSigillo runs the seal primitive over the packed date/time
	// and the price in cents.
	ComputeSigillo(ts time.Time, priceCents uint32) (Seal, error)

	Sign(content []byte) ([]byte, error)
	Certificate() ([]byte, error)
}
