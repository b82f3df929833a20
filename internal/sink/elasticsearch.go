package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"

	esconfig "github.com/jonesrussell/flightwatch/internal/config/elasticsearch"
	"github.com/jonesrussell/flightwatch/internal/domain"
	"github.com/jonesrussell/flightwatch/internal/logger"
)

// ElasticsearchSink indexes flights into an Elasticsearch index, one
// document per flight keyed by the flight ID.
type ElasticsearchSink struct {
	client *es.Client
	index  string
	log    logger.Interface
}

// NewElasticsearchSink creates the sink and verifies connectivity.
func NewElasticsearchSink(cfg *esconfig.Config, log logger.Interface) (*ElasticsearchSink, error) {
	client, err := es.NewClient(es.Config{
		Addresses: cfg.Addresses,
		APIKey:    cfg.APIKey,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	res, err := client.Ping()
	if err != nil {
		return nil, fmt.Errorf("failed to ping Elasticsearch: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("error pinging Elasticsearch: %s", res.String())
	}

	return &ElasticsearchSink{
		client: client,
		index:  cfg.IndexName,
		log:    log.WithComponent("sink"),
	}, nil
}

// Emit indexes one flight. Using the flight ID as document ID makes
// re-emission after a failed commit overwrite rather than duplicate.
func (s *ElasticsearchSink) Emit(ctx context.Context, flight domain.Flight) error {
	// Marshal failures are permanent, so they stay outside SinkError
	// and the retry path.
	body, err := json.Marshal(flight)
	if err != nil {
		return fmt.Errorf("marshal flight %s: %w", flight.ID, err)
	}

	res, err := s.client.Index(
		s.index,
		bytes.NewReader(body),
		s.client.Index.WithContext(ctx),
		s.client.Index.WithDocumentID(flight.ID),
	)
	if err != nil {
		return &SinkError{DocID: flight.ID, Err: err}
	}
	defer res.Body.Close()

	if res.IsError() {
		return &SinkError{DocID: flight.ID, Err: fmt.Errorf("elasticsearch error: %s", res.String())}
	}

	s.log.Debug("flight emitted",
		"flight_number", flight.FlightNumber,
		"doc_id", flight.ID,
		"index", s.index,
	)
	return nil
}

// UpdateActual sets the actual time on an already-indexed flight.
func (s *ElasticsearchSink) UpdateActual(ctx context.Context, id string, actual time.Time) error {
	update := map[string]any{
		"doc": map[string]any{
			"actual_at": actual.UTC(),
		},
	}
	body, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("marshal update for %s: %w", id, err)
	}

	res, err := s.client.Update(
		s.index,
		id,
		bytes.NewReader(body),
		s.client.Update.WithContext(ctx),
	)
	if err != nil {
		return &SinkError{DocID: id, Err: err}
	}
	defer res.Body.Close()

	if res.IsError() {
		return &SinkError{DocID: id, Err: fmt.Errorf("elasticsearch error: %s", res.String())}
	}

	s.log.Debug("actual time updated", "doc_id", id, "index", s.index)
	return nil
}

// Close is a no-op; the Elasticsearch client holds no persistent
// connection state beyond its transport pool.
func (s *ElasticsearchSink) Close() error {
	return nil
}
