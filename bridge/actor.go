// Package bridge is the always-on local process that exposes smart-card
// operations to the application over loopback. The card is a single-slot,
// non-reentrant resource: every hardware command funnels through one actor
// goroutine, and card state reaches clients through pushed status
// snapshots, never through client polling.
package bridge

import (
	"context"
	"encoding/base64"
	"errors"
	"time"

	"sigillo/card"
	"sigillo/entities"
	messageEvent "sigillo/message/event"
	"sigillo/metrics"
	"sigillo/siae"

	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/sirupsen/logrus"
)

// StatusTopic carries CardStatusChanged_v1 snapshots on the in-process bus.
var StatusTopic = messageEvent.InternalTopic("CardStatusChanged_v1")

const (
	defaultPollInterval = 1500 * time.Millisecond
	demoPollInterval    = 5 * time.Second
)

// TicketData is the payload of a computeSigillo command.
type TicketData struct {
	Price     float64 `json:"price"`
	Timestamp string  `json:"timestamp,omitempty"`
}

// SealResult is the response payload for computeSigillo.
type SealResult struct {
	Sigillo string `json:"sigillo"`
	Serial  string `json:"serial"`
	Counter uint32 `json:"counter"`
	Demo    bool   `json:"demo"`
}

// CardActor owns the card API, the demo override and the status snapshot.
// All mutations happen on the actor goroutine; public methods do a channel
// round-trip, which also serializes hardware access across clients.
type CardActor struct {
	api     card.API
	loadErr error
	demo    *card.Demo
	slot    int

	eventBus *cqrs.EventBus
	metrics  *metrics.Metrics

	pollInterval time.Duration
	cmds         chan func()
	listReaders  func() ([]string, error)

	// actor-goroutine state, untouched from outside
	status entities.CardStatus
}

// NewCardActor builds the actor. api may be nil when the vendor library
// failed to load; loadErr then explains why and the poller keeps reporting
// the categorized error while the bridge stays up.
func NewCardActor(api card.API, loadErr error, slot int, eventBus *cqrs.EventBus, m *metrics.Metrics) *CardActor {
	return &CardActor{
		api:          api,
		loadErr:      loadErr,
		demo:         card.NewDemo(),
		slot:         slot,
		eventBus:     eventBus,
		metrics:      m,
		pollInterval: defaultPollInterval,
		cmds:         make(chan func()),
		listReaders:  card.ListReaders,
		status: entities.CardStatus{
			Slot: slot,
		},
	}
}

// SetPollInterval overrides the hardware poll cadence; call before Run.
func (a *CardActor) SetPollInterval(d time.Duration) {
	if d > 0 {
		a.pollInterval = d
	}
}

// Run drives the actor until ctx is done: the presence polling loop (sole
// writer of presence flags, which also owns slot initialization) and command
// execution. The poll cadence slows down in demo mode, where the snapshot
// cannot change underneath us.
func (a *CardActor) Run(ctx context.Context) error {
	if a.api == nil {
		a.status.LastError = card.Message(card.Diagnose(a.loadErr))
		logrus.WithField("error", a.status.LastError).Error("Card layer unavailable")
	}
	a.poll()

	ticker := time.NewTicker(a.pollInterval)
	defer ticker.Stop()

	for {
		interval := a.pollInterval
		if a.status.DemoMode {
			interval = demoPollInterval
		}
		ticker.Reset(interval)

		select {
		case <-ctx.Done():
			if a.api != nil && a.status.Initialized {
				_ = a.api.Finalize()
			}
			return ctx.Err()
		case <-ticker.C:
			a.poll()
		case cmd := <-a.cmds:
			cmd()
		}
	}
}

// poll refreshes reader/card presence. It is only ever called on the actor
// goroutine, so the demo toggle can never race a presence update.
func (a *CardActor) poll() {
	prev := a.status

	if a.status.DemoMode {
		a.status.ReaderConnected = true
		a.status.CardInserted = true
		a.status.SerialNumber = card.DemoSerial
		a.status.LastError = ""
	} else {
		a.pollHardware()
	}

	if a.metrics != nil {
		if a.status.CardInserted {
			a.metrics.CardPresent.Set(1)
		} else {
			a.metrics.CardPresent.Set(0)
		}
	}

	if a.status != prev {
		a.broadcast()
	}
}

func (a *CardActor) pollHardware() {
	readers, err := a.listReaders()
	if err != nil {
		a.status.ReaderConnected = false
		a.status.CardInserted = false
		a.status.ReaderName = ""
		a.status.SerialNumber = ""
		a.status.LastError = card.Message(err)
		return
	}
	a.status.ReaderConnected = true
	a.status.ReaderName = readers[0]

	if a.api == nil {
		a.status.CardInserted = false
		a.status.LastError = card.Message(card.Diagnose(a.loadErr))
		return
	}

	// a failed slot init (reader attached after boot, transient vendor
	// error) is retried on every pass until it sticks
	if !a.status.Initialized {
		if err := a.api.Initialize(a.slot); err != nil {
			a.status.CardInserted = false
			a.status.LastError = card.Message(err)
			logrus.WithField("error", a.status.LastError).Debug("Card slot initialization failed")
			return
		}
		a.status.Initialized = true
	}

	present, err := a.api.CardPresent()
	if err != nil {
		a.status.CardInserted = false
		a.status.LastError = card.Message(err)
		return
	}
	a.status.CardInserted = present
	if !present {
		a.status.SerialNumber = ""
		a.status.LastError = card.Message(card.ErrNoCard)
		return
	}

	a.status.LastError = ""
	if a.status.SerialNumber == "" {
		if serial, err := a.api.Serial(); err == nil {
			a.status.SerialNumber = serial
		}
	}
}

// broadcast pushes the full snapshot to every connected client through the
// status topic.
func (a *CardActor) broadcast() {
	statusEvent := entities.CardStatusChanged_v1{
		Header: entities.NewEventHeader(),
		Status: a.status,
	}
	if err := a.eventBus.Publish(context.Background(), statusEvent); err != nil {
		logrus.WithError(err).Error("Could not publish card status")
	}
}

// do runs fn on the actor goroutine and waits for it.
func (a *CardActor) do(fn func()) {
	done := make(chan struct{})
	a.cmds <- func() {
		fn()
		close(done)
	}
	<-done
}

// Status returns the current snapshot without touching hardware.
func (a *CardActor) Status() entities.CardStatus {
	var st entities.CardStatus
	a.do(func() { st = a.status })
	return st
}

// SetDemoMode toggles the demo override and rebroadcasts. Enabling forces
// cardInserted=true with canned responses; disabling reverts to real polled
// state on the same actor pass, so no poller update is ever lost.
func (a *CardActor) SetDemoMode(enabled bool) entities.CardStatus {
	var st entities.CardStatus
	a.do(func() {
		a.status.DemoMode = enabled
		if enabled {
			a.status.ReaderConnected = true
			a.status.CardInserted = true
			a.status.SerialNumber = card.DemoSerial
			a.status.LastError = ""
		} else {
			a.status.SerialNumber = ""
			a.pollHardware()
		}
		a.broadcast()
		st = a.status
	})
	return st
}

// VerifyPIN performs exactly one verification call. Never auto-retried: the
// card's own retry counter is authoritative.
func (a *CardActor) VerifyPIN(pin string) error {
	var err error
	a.do(func() {
		if a.status.DemoMode {
			err = a.demo.VerifyPIN(pin)
			return
		}
		if err = a.requireCard(); err != nil {
			return
		}
		err = a.api.VerifyPIN(pin)
	})

	if a.metrics != nil {
		outcome := "ok"
		if err != nil {
			outcome = "error"
			if errors.Is(err, card.ErrPINIncorrect) {
				outcome = "rejected"
			} else if errors.Is(err, card.ErrPINBlocked) {
				outcome = "blocked"
			}
		}
		a.metrics.PinVerifications.WithLabelValues(outcome).Inc()
	}
	return err
}

// ComputeSigillo runs the seal primitive inside a transaction bracket.
func (a *CardActor) ComputeSigillo(data TicketData) (SealResult, error) {
	ts := time.Now()
	if data.Timestamp != "" {
		if parsed, err := time.Parse(time.RFC3339, data.Timestamp); err == nil {
			ts = parsed
		}
	}
	priceCents := uint32(siae.ToCentesimi(data.Price))

	var res SealResult
	var err error
	a.do(func() {
		if a.status.DemoMode {
			var seal card.Seal
			seal, err = a.demo.ComputeSigillo(ts, priceCents)
			if err == nil {
				res = SealResult{Sigillo: seal.Code(), Serial: seal.Serial, Counter: seal.Counter, Demo: true}
			}
			return
		}
		if err = a.requireCard(); err != nil {
			return
		}
		if err = a.api.BeginTransaction(); err != nil {
			return
		}
		defer func() {
			_ = a.api.EndTransaction()
		}()

		var seal card.Seal
		seal, err = a.api.ComputeSigillo(ts, priceCents)
		if err == nil {
			res = SealResult{Sigillo: seal.Code(), Serial: seal.Serial, Counter: seal.Counter}
		}
	})

	if a.metrics != nil && err == nil {
		mode := "card"
		if res.Demo {
			mode = "demo"
		}
		a.metrics.SealsComputed.WithLabelValues(mode).Inc()
	}
	return res, err
}

// Sign computes a generic signature over caller-supplied bytes.
func (a *CardActor) Sign(content []byte) (string, error) {
	var signature []byte
	var err error
	a.do(func() {
		if a.status.DemoMode {
			signature, err = a.demo.Sign(content)
			return
		}
		if err = a.requireCard(); err != nil {
			return
		}
		if err = a.api.BeginTransaction(); err != nil {
			return
		}
		defer func() {
			_ = a.api.EndTransaction()
		}()
		signature, err = a.api.Sign(content)
	})
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(signature), nil
}

// Certificate reads the emission certificate, base64-encoded.
func (a *CardActor) Certificate() (string, error) {
	var cert []byte
	var err error
	a.do(func() {
		if a.status.DemoMode {
			cert, err = a.demo.Certificate()
			return
		}
		if err = a.requireCard(); err != nil {
			return
		}
		cert, err = a.api.Certificate()
	})
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(cert), nil
}

// Serial returns the card serial from the snapshot or the card itself.
func (a *CardActor) Serial() (string, error) {
	var serial string
	var err error
	a.do(func() {
		if a.status.DemoMode {
			serial = card.DemoSerial
			return
		}
		if a.status.SerialNumber != "" {
			serial = a.status.SerialNumber
			return
		}
		if err = a.requireCard(); err != nil {
			return
		}
		serial, err = a.api.Serial()
	})
	return serial, err
}

// requireCard gates hardware commands; must run on the actor goroutine.
func (a *CardActor) requireCard() error {
	if a.api == nil {
		if diag := card.Diagnose(a.loadErr); diag != nil {
			return diag
		}
		return card.ErrNotInitialized
	}
	if !a.status.Initialized {
		return card.ErrNotInitialized
	}
	if !a.status.ReaderConnected {
		return card.ErrNoReader
	}
	if !a.status.CardInserted {
		return card.ErrNoCard
	}
	return nil
}
