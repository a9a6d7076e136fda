package card

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemoSerialIsStable(t *testing.T) {
	d := NewDemo()
	first, err := d.Serial()
	require.NoError(t, err)
	second, err := d.Serial()
	require.NoError(t, err)

	assert.Equal(t, DemoSerial, first)
	assert.Equal(t, first, second)
}

func TestDemoComputeSigilloIsDeterministic(t *testing.T) {
	ts := time.Date(2025, 7, 14, 21, 45, 0, 0, time.UTC)

	a := NewDemo()
	sealA, err := a.ComputeSigillo(ts, 1050)
	require.NoError(t, err)

	b := NewDemo()
	sealB, err := b.ComputeSigillo(ts, 1050)
	require.NoError(t, err)

	assert.Equal(t, sealA.MAC, sealB.MAC)
	assert.Equal(t, DemoSerial, sealA.Serial)
	assert.Len(t, sealA.MAC, 8)

	// the counter advances per seal
	sealA2, err := a.ComputeSigillo(ts, 1050)
	require.NoError(t, err)
	assert.Equal(t, sealA.Counter+1, sealA2.Counter)
}

func TestDemoSealCodeIsTagged(t *testing.T) {
	d := NewDemo()
	seal, err := d.ComputeSigillo(time.Now(), 100)
	require.NoError(t, err)
	assert.Contains(t, seal.Code(), "DEMO")
}

func TestDemoVerifyPINAlwaysSucceeds(t *testing.T) {
	d := NewDemo()
	assert.NoError(t, d.VerifyPIN("0000"))
	assert.NoError(t, d.VerifyPIN(""))
}

func TestDemoTransactionBracketIsNotReentrant(t *testing.T) {
	d := NewDemo()
	require.NoError(t, d.BeginTransaction())
	assert.Error(t, d.BeginTransaction())
	require.NoError(t, d.EndTransaction())
	assert.NoError(t, d.BeginTransaction())
}

func TestStatusErrorTaxonomy(t *testing.T) {
	assert.NoError(t, statusError("x", 0x0000))
	assert.NoError(t, statusError("x", 0x0003))
	assert.ErrorIs(t, statusError("x", 0x0002), ErrNotInitialized)
	assert.ErrorIs(t, statusError("x", 0x0004), ErrNoCard)
	assert.ErrorIs(t, statusError("x", 0x6982), ErrPINIncorrect)
	assert.ErrorIs(t, statusError("x", 0x6983), ErrPINBlocked)

	var cardErr CardError
	err := statusError("ReadBinary", 0x6A82)
	assert.ErrorAs(t, err, &cardErr)
	assert.Equal(t, "ReadBinary", cardErr.Op)
}

func TestMessageCategories(t *testing.T) {
	assert.Contains(t, Message(ErrArchitectureMismatch), "architettura")
	assert.Contains(t, Message(ErrNoReader), "lettore")
	assert.Contains(t, Message(ErrNoCard), "inserita")
	assert.NotEqual(t, Message(ErrNoReader), Message(ErrArchitectureMismatch))
}
