package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"sigillo/card"
	"sigillo/entities"
	"sigillo/message/event"
	"sigillo/metrics"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startActor runs an actor with no vendor library, the way the bridge comes
// up on a workstation without the card stack installed.
func startActor(t *testing.T) (*CardActor, *gochannel.GoChannel) {
	t.Helper()

	pubsub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 16}, watermill.NopLogger{})
	actor := NewCardActor(nil, card.ErrLibraryNotFound, 0, event.NewBus(pubsub), metrics.NewUnregistered())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() {
		_ = actor.Run(ctx)
	}()
	return actor, pubsub
}

func TestEnableDemoThenGetStatus(t *testing.T) {
	actor, _ := startActor(t)

	resp := Handle(actor, Request{Type: "enableDemo"})
	require.True(t, resp.Success)

	resp = Handle(actor, Request{Type: "getStatus"})
	require.True(t, resp.Success)
	require.Equal(t, "status", resp.Type)

	status, ok := resp.Data.(entities.CardStatus)
	require.True(t, ok)
	assert.True(t, status.DemoMode)
	assert.True(t, status.CardInserted)
	assert.Equal(t, card.DemoSerial, status.SerialNumber)

	// the demo serial does not drift between reads
	again := Handle(actor, Request{Type: "getStatus"}).Data.(entities.CardStatus)
	assert.Equal(t, status.SerialNumber, again.SerialNumber)
}

func TestDisableDemoClearsOverride(t *testing.T) {
	actor, _ := startActor(t)

	Handle(actor, Request{Type: "enableDemo"})
	resp := Handle(actor, Request{Type: "disableDemo"})
	require.True(t, resp.Success)

	status := resp.Data.(entities.CardStatus)
	assert.False(t, status.DemoMode)
	assert.NotEqual(t, card.DemoSerial, status.SerialNumber)
}

func TestComputeSigilloInDemoMode(t *testing.T) {
	actor, _ := startActor(t)
	actor.SetDemoMode(true)

	payload, _ := json.Marshal(TicketData{Price: 10.50, Timestamp: "2025-07-14T21:45:00Z"})
	resp := Handle(actor, Request{Type: "computeSigillo", Data: payload})
	require.True(t, resp.Success, resp.Error)

	seal, ok := resp.Data.(SealResult)
	require.True(t, ok)
	assert.True(t, seal.Demo)
	assert.Equal(t, card.DemoSerial, seal.Serial)
	assert.Contains(t, seal.Sigillo, "DEMO")
}

func TestComputeSigilloWithoutCardFails(t *testing.T) {
	actor, _ := startActor(t)

	payload, _ := json.Marshal(TicketData{Price: 5})
	resp := Handle(actor, Request{Type: "computeSigillo", Data: payload})
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
}

func TestVerifyPinInDemoModeSucceeds(t *testing.T) {
	actor, _ := startActor(t)
	actor.SetDemoMode(true)

	payload, _ := json.Marshal(map[string]string{"pin": "1234"})
	resp := Handle(actor, Request{Type: "verifyPin", Data: payload})
	assert.True(t, resp.Success, resp.Error)
}

func TestUnknownCommandGetsTypedError(t *testing.T) {
	actor, _ := startActor(t)

	resp := Handle(actor, Request{Type: "selfDestruct"})
	assert.False(t, resp.Success)
	assert.Equal(t, "error", resp.Type)
	assert.Contains(t, resp.Error, "selfDestruct")

	// the actor is still responsive afterwards
	assert.True(t, Handle(actor, Request{Type: "ping"}).Success)
}

func TestMalformedPayloadDoesNotKillActor(t *testing.T) {
	actor, _ := startActor(t)

	resp := Handle(actor, Request{Type: "computeSigillo", Data: json.RawMessage(`{broken`)})
	assert.False(t, resp.Success)

	assert.True(t, Handle(actor, Request{Type: "getStatus"}).Success)
}

// stubAPI fails its first initFailures Initialize calls, then succeeds.
type stubAPI struct {
	mu           sync.Mutex
	initFailures int
	initCalls    int
}

func (s *stubAPI) Initialize(int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initCalls++
	if s.initCalls <= s.initFailures {
		return errors.New("vendor busy")
	}
	return nil
}

func (s *stubAPI) Finalize() error { return nil }

func (s *stubAPI) BeginTransaction() error { return nil }

func (s *stubAPI) EndTransaction() error { return nil }

func (s *stubAPI) CardPresent() (bool, error) { return true, nil }

func (s *stubAPI) Serial() (string, error) { return "A1B2C3D4E5F60708", nil }

func (s *stubAPI) ReadCounter() (uint32, error) { return 7, nil }

func (s *stubAPI) ReadBalance() (uint32, error) { return 0, nil }

func (s *stubAPI) KeyID() (byte, error) { return 1, nil }

func (s *stubAPI) VerifyPIN(string) error { return nil }

func (s *stubAPI) ComputeSigillo(time.Time, uint32) (card.Seal, error) {
	return card.Seal{Serial: "A1B2C3D4E5F60708", MAC: make([]byte, 8), Counter: 1}, nil
}

func (s *stubAPI) Sign([]byte) ([]byte, error) { return []byte{0x01}, nil }

func (s *stubAPI) Certificate() ([]byte, error) { return []byte{0x02}, nil }

// startStubActor runs an actor over a stub card with a fast poll tick and
// a reader always present.
func startStubActor(t *testing.T, api *stubAPI) *CardActor {
	t.Helper()

	pubsub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 16}, watermill.NopLogger{})
	actor := NewCardActor(api, nil, 0, event.NewBus(pubsub), metrics.NewUnregistered())
	actor.SetPollInterval(10 * time.Millisecond)
	actor.listReaders = func() ([]string, error) {
		return []string{"Stub Reader 0"}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() {
		_ = actor.Run(ctx)
	}()
	return actor
}

// A slot init that fails at boot must be retried by the poller: a reader
// attached after startup still brings the card up.
func TestSlotInitializationIsRetried(t *testing.T) {
	api := &stubAPI{initFailures: 3}
	actor := startStubActor(t, api)

	require.Eventually(t, func() bool {
		return actor.Status().Initialized
	}, 3*time.Second, 10*time.Millisecond)

	status := actor.Status()
	assert.True(t, status.CardInserted)
	assert.Equal(t, "A1B2C3D4E5F60708", status.SerialNumber)
	assert.NoError(t, actor.VerifyPIN("1234"))
}

func TestUninitializedSlotReportsRealError(t *testing.T) {
	api := &stubAPI{initFailures: 1 << 20}
	actor := startStubActor(t, api)

	require.Eventually(t, func() bool {
		return actor.Status().LastError != ""
	}, 3*time.Second, 10*time.Millisecond)

	status := actor.Status()
	assert.False(t, status.Initialized)
	assert.NotEqual(t, "ok", status.LastError)
	assert.Contains(t, status.LastError, "vendor busy")

	err := actor.VerifyPIN("1234")
	assert.ErrorIs(t, err, card.ErrNotInitialized)
}

func TestSignInDemoModeReturnsBase64(t *testing.T) {
	actor, _ := startActor(t)
	actor.SetDemoMode(true)

	payload, _ := json.Marshal(map[string]string{"content": "aGVsbG8="})
	resp := Handle(actor, Request{Type: "sign", Data: payload})
	require.True(t, resp.Success, resp.Error)

	data := resp.Data.(map[string]string)
	assert.NotEmpty(t, data["signature"])
}
