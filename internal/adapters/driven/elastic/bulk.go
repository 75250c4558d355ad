package elastic

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/domain"
	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/logger"
)

type bulkAction struct {
	Index string `json:"_index"`
	ID    string `json:"_id"`
}

// encodeBulk renders the newline-delimited bulk body: an index action plus
// source line per upsert, then one delete action per key.
func encodeBulk(index string, upserts []domain.Concept, deletes []domain.DocumentKey) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)

	for _, c := range upserts {
		action := map[string]bulkAction{"index": {Index: index, ID: c.Key().String()}}
		if err := enc.Encode(action); err != nil {
			return nil, err
		}
		if err := enc.Encode(c.ToIndexDocument()); err != nil {
			return nil, fmt.Errorf("document %s: %w", c.Key(), err)
		}
	}
	for _, key := range deletes {
		action := map[string]bulkAction{"delete": {Index: index, ID: key.String()}}
		if err := enc.Encode(action); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func validDeleteKeys(keys []domain.DocumentKey) []domain.DocumentKey {
	valid := keys[:0:0]
	for _, key := range keys {
		if _, _, ok := key.Split(); !ok {
			logger.Warn("Skipping delete of malformed document key %q", key)
			continue
		}
		valid = append(valid, key)
	}
	return valid
}

type bulkResponse struct {
	Errors bool                         `json:"errors"`
	Items  []map[string]bulkItemOutcome `json:"items"`
}

type bulkItemOutcome struct {
	ID     string `json:"_id"`
	Status int    `json:"status"`
	Error  *struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
}

// failures lists rejected items as "op id: type: reason".
// Deleting a missing document is not a failure.
func (r bulkResponse) failures() []string {
	if !r.Errors {
		return nil
	}
	var out []string
	for _, item := range r.Items {
		for op, outcome := range item {
			if outcome.Error == nil {
				continue
			}
			out = append(out, fmt.Sprintf("%s %s: %s: %s", op, outcome.ID, outcome.Error.Type, outcome.Error.Reason))
		}
	}
	return out
}

type mgetResponse struct {
	Docs []struct {
		ID     string                `json:"_id"`
		Found  bool                  `json:"found"`
		Source *domain.IndexDocument `json:"_source"`
	} `json:"docs"`
}
