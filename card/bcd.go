package card

import "time"

// PackBCD packs a timestamp into the 5-byte binary-coded-decimal block the
// seal primitive requires: YY MM DD HH mm, each byte holding two decimal
// digits (high nibble = tens).
func PackBCD(ts time.Time) [5]byte {
	bcd := func(v int) byte {
		return byte(v/10<<4 | v%10)
	}
	return [5]byte{
		bcd(ts.Year() % 100),
		bcd(int(ts.Month())),
		bcd(ts.Day()),
		bcd(ts.Hour()),
		bcd(ts.Minute()),
	}
}

// UnpackBCD is the inverse of PackBCD, used by the demo card to echo the
// timestamp it was asked to seal. Seconds are always zero.
func UnpackBCD(block [5]byte, base time.Time) time.Time {
	dec := func(b byte) int {
		return int(b>>4)*10 + int(b&0x0F)
	}
	century := base.Year() - base.Year()%100
	return time.Date(
		century+dec(block[0]),
		time.Month(dec(block[1])),
		dec(block[2]),
		dec(block[3]),
		dec(block[4]),
		0, 0, base.Location(),
	)
}
