package event

import (
	"context"

	"sigillo/entities"
	"sigillo/metrics"

	"github.com/sirupsen/logrus"
)

// Handler reacts to pipeline events consumed back from the broker. Delivery
// to the authority is owned by the out-of-scope transport; this handler only
// keeps operational visibility (logs, counters) of what the pipeline
// produced.
type Handler struct {
	metrics *metrics.Metrics
}

func NewHandler(m *metrics.Metrics) Handler {
	return Handler{metrics: m}
}

func (h Handler) OnTransmissionCreated(ctx context.Context, event *entities.TransmissionCreated_v1) error {
	logrus.WithFields(logrus.Fields{
		"transmission_id": event.TransmissionID,
		"kind":            event.Kind,
		"file_name":       event.FileName,
		"progressivo":     event.Progressivo,
	}).Info("Transmission ready for delivery")

	if h.metrics != nil {
		h.metrics.TransmissionsPending.WithLabelValues(string(event.Kind)).Inc()
	}
	return nil
}
