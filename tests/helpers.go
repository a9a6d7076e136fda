package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"sigillo/entities"

	"github.com/lithammer/shortuuid/v3"
	"github.com/stretchr/testify/require"
)

// inMemoryRepository stands in for Postgres so the component test exercises
// the HTTP surface and the pipeline without external services.
type inMemoryRepository struct {
	mu      sync.Mutex
	records map[string]entities.Transmission
}

func newInMemoryRepository() *inMemoryRepository {
	return &inMemoryRepository{records: map[string]entities.Transmission{}}
}

func (r *inMemoryRepository) Create(_ context.Context, tm entities.Transmission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[tm.TransmissionID] = tm
	return nil
}

func (r *inMemoryRepository) GetByID(_ context.Context, transmissionID string) (entities.Transmission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tm, ok := r.records[transmissionID]
	if !ok {
		return entities.Transmission{}, errors.New("transmission not found")
	}
	return tm, nil
}

func (r *inMemoryRepository) ListPending(context.Context) ([]entities.Transmission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var pending []entities.Transmission
	for _, tm := range r.records {
		if tm.Status == entities.TransmissionPending {
			pending = append(pending, tm)
		}
	}
	return pending, nil
}

func (r *inMemoryRepository) UpdateStatus(_ context.Context, transmissionID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tm, ok := r.records[transmissionID]
	if !ok {
		return errors.New("transmission not found")
	}
	tm.Status = status
	r.records[transmissionID] = tm
	return nil
}

func postJSON(t *testing.T, url string, body any, out any) *http.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	httpReq, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(payload))
	require.NoError(t, err)
	httpReq.Header.Set("Correlation-ID", shortuuid.New())
	httpReq.Header.Set("Content-Type", "application/json")

	client := http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(httpReq)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}
