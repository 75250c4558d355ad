package termed

import (
	"time"

	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/domain"
	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/logger"
)

// nodeTree is a node as serialised by the node-trees endpoint.
// Nested references and referrers use the same shape.
type nodeTree struct {
	ID               string                             `json:"id"`
	Code             string                             `json:"code"`
	URI              string                             `json:"uri"`
	LastModifiedDate string                             `json:"lastModifiedDate"`
	Type             nodeType                           `json:"type"`
	Properties       map[string][]domain.LocalizedValue `json:"properties"`
	References       map[string][]nodeTree              `json:"references"`
	Referrers        map[string][]nodeTree              `json:"referrers"`
}

type nodeType struct {
	ID    string `json:"id"`
	Graph struct {
		ID string `json:"id"`
	} `json:"graph"`
}

type graphRef struct {
	ID string `json:"id"`
}

// timeLayouts are the accepted lastModifiedDate formats, most common first.
var timeLayouts = []string{
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05-0700",
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000",
}

func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	logger.Debug("Unparseable lastModifiedDate %q", s)
	return nil
}

func (n nodeTree) toRawNode() domain.RawNode {
	return domain.RawNode{
		ID:           domain.NodeID(n.ID),
		Type:         n.Type.ID,
		GraphID:      domain.GraphID(n.Type.Graph.ID),
		Code:         n.Code,
		URI:          n.URI,
		LastModified: parseTime(n.LastModifiedDate),
		Properties:   n.Properties,
		References:   toRawNodeMap(n.References),
		Referrers:    toRawNodeMap(n.Referrers),
	}
}

func toRawNodeMap(m map[string][]nodeTree) map[string][]domain.RawNode {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string][]domain.RawNode, len(m))
	for attr, trees := range m {
		out[attr] = toRawNodes(trees)
	}
	return out
}

func toRawNodes(trees []nodeTree) []domain.RawNode {
	nodes := make([]domain.RawNode, 0, len(trees))
	for _, t := range trees {
		nodes = append(nodes, t.toRawNode())
	}
	return nodes
}
