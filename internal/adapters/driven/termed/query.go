package termed

import (
	"net/url"
	"strings"

	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/domain"
)

const (
	pathGraphs    = "/graphs"
	pathNodeTrees = "/node-trees"

	// maxIDsPerQuery bounds the id disjunction so request URLs stay short.
	maxIDsPerQuery = 50
)

// Field selections for node-trees queries.
var (
	selectSnapshot = []string{
		"id", "type", "code", "uri", "lastModifiedDate",
		"properties.*", "references.*",
	}

	selectVocabulary = []string{
		"id", "type", "code", "uri", "lastModifiedDate",
		"properties.*",
	}

	selectConcepts = []string{
		"id", "type", "code", "uri", "lastModifiedDate",
		"properties.*",
		"references.prefLabelXl:2",
		"references.altLabelXl:2",
		"references." + domain.RefBroader,
		"referrers." + domain.RefBroader,
	}
)

// nodeTreeQuery builds the query parameters of a node-trees request.
func nodeTreeQuery(fields []string, where string) url.Values {
	q := url.Values{}
	q.Set("select", strings.Join(fields, ","))
	q.Set("where", where)
	q.Set("max", "-1")
	return q
}

func whereGraph(graphID domain.GraphID) string {
	return "graph.id:" + string(graphID)
}

func whereGraphAndType(graphID domain.GraphID, typeID string) string {
	return whereGraph(graphID) + " AND type.id:" + typeID
}

func whereGraphAndIDs(graphID domain.GraphID, ids []domain.NodeID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = "id:" + string(id)
	}
	return whereGraph(graphID) + " AND (" + strings.Join(parts, " OR ") + ")"
}

// chunkIDs splits ids into batches of at most size.
func chunkIDs(ids []domain.NodeID, size int) [][]domain.NodeID {
	var chunks [][]domain.NodeID
	for len(ids) > size {
		chunks = append(chunks, ids[:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		chunks = append(chunks, ids)
	}
	return chunks
}
