//go:build !(linux || darwin)

package card

import "fmt"

// OpenLibsiae is unavailable on platforms without dlopen support.
func OpenLibsiae(path string) (API, error) {
	return nil, fmt.Errorf("%w: dynamic loading not supported on this platform", ErrLibraryNotFound)
}
