package card

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPackBCD(t *testing.T) {
	ts := time.Date(2025, 7, 14, 21, 45, 30, 0, time.UTC)
	assert.Equal(t, [5]byte{0x25, 0x07, 0x14, 0x21, 0x45}, PackBCD(ts))

	ts = time.Date(2009, 12, 31, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, [5]byte{0x09, 0x12, 0x31, 0x23, 0x59}, PackBCD(ts))

	ts = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, [5]byte{0x00, 0x01, 0x01, 0x00, 0x00}, PackBCD(ts))
}

func TestPackBCDRoundTrip(t *testing.T) {
	ts := time.Date(2025, 7, 14, 21, 45, 0, 0, time.UTC)
	got := UnpackBCD(PackBCD(ts), ts)
	assert.True(t, ts.Equal(got))
}
