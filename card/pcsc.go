package card

import (
	"fmt"

	"github.com/ebfe/scard"
)

// ListReaders enumerates physical smart-card readers directly through the
// platform PC/SC service, bypassing the vendor library entirely. It exists
// to disambiguate two failures that look identical from above: no reader
// attached versus a reader present but the vendor library unloadable.
func ListReaders() ([]string, error) {
	ctx, err := scard.EstablishContext()
	if err != nil {
		return nil, fmt.Errorf("could not reach the PC/SC service: %w", err)
	}
	defer ctx.Release()

	readers, err := ctx.ListReaders()
	if err != nil {
		if err == scard.ErrNoReadersAvailable {
			return nil, ErrNoReader
		}
		return nil, fmt.Errorf("could not enumerate readers: %w", err)
	}
	if len(readers) == 0 {
		return nil, ErrNoReader
	}
	return readers, nil
}

// Diagnose classifies a vendor-library load failure using the independent
// PC/SC view. With no reader attached, the reader problem is reported first
// (fixing the library would not help the operator yet); with readers
// present, the load error itself stands — typically the architecture
// mismatch category.
func Diagnose(loadErr error) error {
	readers, readerErr := ListReaders()
	if readerErr != nil {
		return readerErr
	}
	if loadErr != nil {
		return fmt.Errorf("%d reader(s) present but: %w", len(readers), loadErr)
	}
	return nil
}
