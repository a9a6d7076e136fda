package card

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/binary"
	"fmt"
	"sync"
	"time"
)

// DemoSerial is the stable serial a demo card reports for the whole
// session.
const DemoSerial = "DEMO00000001"

// Demo is a deterministic in-memory card. Every response is explicitly
// tagged so a fabricated seal can never be mistaken for a hardware-backed
// one. It satisfies the same non-reentrancy contract as the real card even
// though it never touches hardware.
type Demo struct {
	mu          sync.Mutex
	initialized bool
	inTx        bool
	counter     uint32
}

func NewDemo() *Demo {
	return &Demo{}
}

func (d *Demo) Initialize(slot int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.initialized = true
	return nil
}

func (d *Demo) Finalize() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.initialized = false
	return nil
}

func (d *Demo) BeginTransaction() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.inTx {
		return fmt.Errorf("transaction bracket already open on demo slot")
	}
	d.inTx = true
	return nil
}

func (d *Demo) EndTransaction() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.inTx = false
	return nil
}

func (d *Demo) CardPresent() (bool, error) {
	return true, nil
}

func (d *Demo) Serial() (string, error) {
	return DemoSerial, nil
}

func (d *Demo) ReadCounter() (uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.counter, nil
}

func (d *Demo) ReadBalance() (uint32, error) {
	return 999999, nil
}

func (d *Demo) KeyID() (byte, error) {
	return 0x01, nil
}

func (d *Demo) VerifyPIN(pin string) error {
	// demo always succeeds, by definition of demo mode
	return nil
}

// ComputeSigillo fabricates a deterministic seal: the MAC is an HMAC over
// the packed date/time and price keyed with the demo serial, so repeated
// demo runs are reproducible and visibly tagged.
func (d *Demo) ComputeSigillo(ts time.Time, priceCents uint32) (Seal, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.counter++

	block := PackBCD(ts)
	payload := make([]byte, 0, 9)
	payload = append(payload, block[:]...)
	payload = binary.BigEndian.AppendUint32(payload, priceCents)

	mac := hmac.New(sha1.New, []byte(DemoSerial))
	mac.Write(payload)

	return Seal{
		Serial:  DemoSerial,
		MAC:     mac.Sum(nil)[:8],
		Counter: d.counter,
	}, nil
}

func (d *Demo) Sign(content []byte) ([]byte, error) {
	mac := hmac.New(sha1.New, []byte(DemoSerial))
	mac.Write(content)
	return mac.Sum(nil), nil
}

func (d *Demo) Certificate() ([]byte, error) {
	return []byte("-----DEMO CERTIFICATE-----"), nil
}
