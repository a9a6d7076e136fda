//go:build linux || darwin

package card

import (
	"fmt"
	"strings"
	"time"

	"github.com/ebitengine/purego"
)

// Libsiae binds the vendor shared library through dlopen, the same loading
// strategy the vendor's own tooling uses. All calls go through the single
// slot configured at Initialize time.
type Libsiae struct {
	handle uintptr
	slot   int32

	initialize     func(int32) int32
	finalize       func() int32
	isCardIn       func(int32) int32
	getSN          func([]byte) int32
	verifyPIN      func(int32, string) int32
	computeSigillo func([]byte, uint32, []byte, []byte, *uint32) int32
	sign           func(int32, []byte, []byte) int32
	getKeyID       func() byte
	getCertificate func([]byte, *int32) int32
	readCounter    func(*uint32) int32
	readBalance    func(*uint32) int32
	beginTx        func() int32
	endTx          func() int32
}

// OpenLibsiae loads the vendor library from path. A load failure is
// classified: a library present but compiled for another architecture is
// reported as ErrArchitectureMismatch, anything else as ErrLibraryNotFound.
func OpenLibsiae(path string) (API, error) {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		return nil, classifyLoadError(path, err)
	}

	l := &Libsiae{handle: handle}
	purego.RegisterLibFunc(&l.initialize, handle, "Initialize")
	purego.RegisterLibFunc(&l.finalize, handle, "Finalize")
	purego.RegisterLibFunc(&l.isCardIn, handle, "isCardIn")
	purego.RegisterLibFunc(&l.getSN, handle, "GetSN")
	purego.RegisterLibFunc(&l.verifyPIN, handle, "VerifyPIN")
	purego.RegisterLibFunc(&l.computeSigillo, handle, "ComputeSigillo")
	purego.RegisterLibFunc(&l.sign, handle, "Sign")
	purego.RegisterLibFunc(&l.getKeyID, handle, "GetKeyID")
	purego.RegisterLibFunc(&l.getCertificate, handle, "GetCertificate")
	purego.RegisterLibFunc(&l.readCounter, handle, "ReadCounter")
	purego.RegisterLibFunc(&l.readBalance, handle, "ReadBalance")
	purego.RegisterLibFunc(&l.beginTx, handle, "BeginTransaction")
	purego.RegisterLibFunc(&l.endTx, handle, "EndTransaction")
	return l, nil
}

func classifyLoadError(path string, err error) error {
	msg := strings.ToLower(err.Error())
	for _, hint := range []string{
		"wrong elf class",
		"invalid elf header",
		"incompatible architecture",
		"not a mach-o",
		"mach-o, but wrong architecture",
	} {
		if strings.Contains(msg, hint) {
			return fmt.Errorf("%w: %s: %v", ErrArchitectureMismatch, path, err)
		}
	}
	return fmt.Errorf("%w: %s: %v", ErrLibraryNotFound, path, err)
}

func (l *Libsiae) Initialize(slot int) error {
	l.slot = int32(slot)
	return statusError("Initialize", l.initialize(int32(slot)))
}

func (l *Libsiae) Finalize() error {
	return statusError("Finalize", l.finalize())
}

func (l *Libsiae) BeginTransaction() error {
	return statusError("BeginTransaction", l.beginTx())
}

func (l *Libsiae) EndTransaction() error {
	return statusError("EndTransaction", l.endTx())
}

func (l *Libsiae) CardPresent() (bool, error) {
	return l.isCardIn(l.slot) != 0, nil
}

func (l *Libsiae) Serial() (string, error) {
	serial := make([]byte, 8)
	if err := statusError("GetSN", l.getSN(serial)); err != nil {
		return "", err
	}
	return fmt.Sprintf("%X", serial), nil
}

func (l *Libsiae) ReadCounter() (uint32, error) {
	var value uint32
	if err := statusError("ReadCounter", l.readCounter(&value)); err != nil {
		return 0, err
	}
	return value, nil
}

func (l *Libsiae) ReadBalance() (uint32, error) {
	var value uint32
	if err := statusError("ReadBalance", l.readBalance(&value)); err != nil {
		return 0, err
	}
	return value, nil
}

func (l *Libsiae) KeyID() (byte, error) {
	return l.getKeyID(), nil
}

func (l *Libsiae) VerifyPIN(pin string) error {
	// exactly one native verification; the card counts its own retries
	return statusError("VerifyPIN", l.verifyPIN(1, pin))
}

func (l *Libsiae) ComputeSigillo(ts time.Time, priceCents uint32) (Seal, error) {
	block := PackBCD(ts)
	serial := make([]byte, 8)
	mac := make([]byte, 8)
	var counter uint32

	if err := statusError("ComputeSigillo", l.computeSigillo(block[:], priceCents, serial, mac, &counter)); err != nil {
		return Seal{}, err
	}
	return Seal{
		Serial:  fmt.Sprintf("%X", serial),
		MAC:     mac,
		Counter: counter,
	}, nil
}

func (l *Libsiae) Sign(content []byte) ([]byte, error) {
	// the card signs a 20-byte SHA-1 digest with the emission key
	signature := make([]byte, 256)
	if err := statusError("Sign", l.sign(int32(l.getKeyID()), content, signature)); err != nil {
		return nil, err
	}
	return signature, nil
}

func (l *Libsiae) Certificate() ([]byte, error) {
	cert := make([]byte, 4096)
	size := int32(len(cert))
	if err := statusError("GetCertificate", l.getCertificate(cert, &size)); err != nil {
		return nil, err
	}
	return cert[:size], nil
}
