package sink_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	esconfig "github.com/jonesrussell/flightwatch/internal/config/elasticsearch"
	"github.com/jonesrussell/flightwatch/internal/domain"
	"github.com/jonesrussell/flightwatch/internal/logger"
	"github.com/jonesrussell/flightwatch/internal/sink"
)

// fakeES records index and update requests the way Elasticsearch would
// receive them.
type fakeES struct {
	mu       sync.Mutex
	indexed  map[string]json.RawMessage
	updates  map[string]json.RawMessage
	failNext bool
}

func newFakeES() *fakeES {
	return &fakeES{
		indexed: make(map[string]json.RawMessage),
		updates: make(map[string]json.RawMessage),
	}
}

func (f *fakeES) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The client validates this header on every response.
		w.Header().Set("X-Elastic-Product", "Elasticsearch")

		switch {
		case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/flights/_doc/"):
			id := strings.TrimPrefix(r.URL.Path, "/flights/_doc/")
			f.mu.Lock()
			defer f.mu.Unlock()
			if f.failNext {
				f.failNext = false
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			body, _ := io.ReadAll(r.Body)
			f.indexed[id] = body
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"result":"created"}`))

		case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/flights/_update/"):
			id := strings.TrimPrefix(r.URL.Path, "/flights/_update/")
			f.mu.Lock()
			defer f.mu.Unlock()
			body, _ := io.ReadAll(r.Body)
			f.updates[id] = body
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"result":"updated"}`))

		default:
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"version":{"number":"8.19.1"}}`))
		}
	})
}

func newTestSink(t *testing.T) (*sink.ElasticsearchSink, *fakeES) {
	t.Helper()

	fake := newFakeES()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	cfg := esconfig.New()
	cfg.Addresses = []string{srv.URL}
	cfg.IndexName = "flights"

	s, err := sink.NewElasticsearchSink(cfg, logger.NewNoOp())
	require.NoError(t, err)
	return s, fake
}

func testFlight() domain.Flight {
	scheduled := time.Date(2024, 3, 15, 16, 15, 0, 0, time.UTC)
	f := domain.Flight{
		FlightNumber: "WS 3118",
		Airline:      "WestJet",
		Kind:         domain.KindDeparture,
		CityPair:     "Calgary",
		ScheduledAt:  scheduled,
		SourceURL:    "https://example.com/board",
		ObservedAt:   time.Now().UTC(),
	}
	f.ID = domain.FlightID(f.Kind, f.FlightNumber, f.ScheduledAt)
	return f
}

func TestEmitIndexesByFlightID(t *testing.T) {
	s, fake := newTestSink(t)
	flight := testFlight()

	require.NoError(t, s.Emit(context.Background(), flight))

	fake.mu.Lock()
	defer fake.mu.Unlock()
	raw, ok := fake.indexed[flight.ID]
	require.True(t, ok, "document must be indexed under the flight ID")

	var doc domain.Flight
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, flight.FlightNumber, doc.FlightNumber)
	assert.Equal(t, flight.ScheduledAt, doc.ScheduledAt)
}

func TestEmitIsIdempotentOnFlightID(t *testing.T) {
	s, fake := newTestSink(t)
	flight := testFlight()

	require.NoError(t, s.Emit(context.Background(), flight))
	require.NoError(t, s.Emit(context.Background(), flight))

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Len(t, fake.indexed, 1)
}

func TestEmitWrapsServerErrors(t *testing.T) {
	s, fake := newTestSink(t)
	fake.mu.Lock()
	fake.failNext = true
	fake.mu.Unlock()

	err := s.Emit(context.Background(), testFlight())
	require.Error(t, err)
	assert.True(t, sink.IsSinkError(err))
}

func TestUpdateActualSendsPartialDoc(t *testing.T) {
	s, fake := newTestSink(t)
	flight := testFlight()
	actual := flight.ScheduledAt.Add(40 * time.Minute)

	require.NoError(t, s.Emit(context.Background(), flight))
	require.NoError(t, s.UpdateActual(context.Background(), flight.ID, actual))

	fake.mu.Lock()
	defer fake.mu.Unlock()
	raw, ok := fake.updates[flight.ID]
	require.True(t, ok)

	var update struct {
		Doc struct {
			ActualAt time.Time `json:"actual_at"`
		} `json:"doc"`
	}
	require.NoError(t, json.Unmarshal(raw, &update))
	assert.Equal(t, actual, update.Doc.ActualAt)
}
