package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/jonesrussell/flightwatch/internal/domain"
)

// searchResponse mirrors the subset of the Elasticsearch search
// response the CLI needs.
type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source domain.Flight `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search returns indexed flights matching query, most recently
// scheduled first. An empty query returns the latest flights.
func (s *ElasticsearchSink) Search(ctx context.Context, query string, size int) ([]domain.Flight, error) {
	esQuery := buildFlightQuery(query, size)

	body, err := json.Marshal(esQuery)
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, &SinkError{Err: err}
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, &SinkError{Err: fmt.Errorf("elasticsearch error: %s", res.String())}
	}

	var parsed searchResponse
	if decodeErr := json.NewDecoder(res.Body).Decode(&parsed); decodeErr != nil {
		return nil, fmt.Errorf("decode search response: %w", decodeErr)
	}

	flights := make([]domain.Flight, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		flights = append(flights, hit.Source)
	}
	return flights, nil
}

// buildFlightQuery constructs the Elasticsearch query body.
func buildFlightQuery(query string, size int) map[string]any {
	q := map[string]any{
		"size": size,
		"sort": []map[string]any{
			{"scheduled_at": map[string]any{"order": "desc"}},
		},
	}

	if query == "" {
		q["query"] = map[string]any{"match_all": map[string]any{}}
		return q
	}

	q["query"] = map[string]any{
		"multi_match": map[string]any{
			"query":  query,
			"fields": []string{"flight_number", "airline", "city_pair", "gate"},
		},
	}
	return q
}
