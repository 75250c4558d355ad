package domain

import (
	"fmt"
	"sort"
)

// GraphSnapshot is a read-only, id-indexed view of every node in one graph.
// It is built from a single bulk fetch and discarded after the run that built it.
type GraphSnapshot struct {
	graphID   GraphID
	nodes     map[NodeID]RawNode
	order     []NodeID
	referrers map[NodeID]map[string][]NodeID
	dropped   int
}

// NewGraphSnapshot indexes nodes by id.
// Nodes that name a different graph are dropped; nodes without a graph id are
// assumed to belong to graphID. A repeated id keeps its first occurrence.
func NewGraphSnapshot(graphID GraphID, nodes []RawNode) *GraphSnapshot {
	s := &GraphSnapshot{
		graphID:   graphID,
		nodes:     make(map[NodeID]RawNode, len(nodes)),
		order:     make([]NodeID, 0, len(nodes)),
		referrers: make(map[NodeID]map[string][]NodeID),
	}

	for _, node := range nodes {
		if node.GraphID != "" && node.GraphID != graphID {
			s.dropped++
			continue
		}
		if _, seen := s.nodes[node.ID]; seen {
			continue
		}
		s.nodes[node.ID] = node
		s.order = append(s.order, node.ID)
	}

	// Reverse edges are derived from the forward references only.
	for _, id := range s.order {
		for attr, targets := range s.nodes[id].References {
			for _, target := range targets {
				byAttr, ok := s.referrers[target.ID]
				if !ok {
					byAttr = make(map[string][]NodeID)
					s.referrers[target.ID] = byAttr
				}
				byAttr[attr] = append(byAttr[attr], id)
			}
		}
	}

	return s
}

// GraphID returns the graph the snapshot was built for.
func (s *GraphSnapshot) GraphID() GraphID {
	return s.graphID
}

// Len returns the number of nodes in the snapshot.
func (s *GraphSnapshot) Len() int {
	return len(s.nodes)
}

// Dropped returns how many input nodes belonged to another graph.
func (s *GraphSnapshot) Dropped() int {
	return s.dropped
}

// Lookup returns the node with the given id.
// When expectedType is given the node's type must match one of its values.
// Every failure wraps ErrNotFound and says why the node is unavailable.
func (s *GraphSnapshot) Lookup(id NodeID, expectedType ...string) (RawNode, error) {
	node, ok := s.nodes[id]
	if !ok {
		return RawNode{}, fmt.Errorf("%w: node %s not in graph %s", ErrNotFound, id, s.graphID)
	}
	if node.Type == "" {
		return RawNode{}, fmt.Errorf("%w: node %s in graph %s has no type", ErrNotFound, id, s.graphID)
	}
	if len(expectedType) == 0 {
		return node, nil
	}
	for _, t := range expectedType {
		if node.Type == t {
			return node, nil
		}
	}
	return RawNode{}, fmt.Errorf("%w: node %s in graph %s is %s, expected %v",
		ErrNotFound, id, s.graphID, node.Type, expectedType)
}

// ConceptIDs returns the ids of all concept nodes in insertion order.
func (s *GraphSnapshot) ConceptIDs() []NodeID {
	var ids []NodeID
	for _, id := range s.order {
		if IsConceptType(s.nodes[id].Type) {
			ids = append(ids, id)
		}
	}
	return ids
}

// VocabularyID returns the id of the graph's vocabulary node.
// With several candidates, the type listed first in VocabularyTypes wins and
// ties are broken by the smallest id.
func (s *GraphSnapshot) VocabularyID() (NodeID, bool) {
	for _, t := range VocabularyTypes {
		var candidates []NodeID
		for _, id := range s.order {
			if s.nodes[id].Type == t {
				candidates = append(candidates, id)
			}
		}
		if len(candidates) > 0 {
			sort.Slice(candidates, func(i, j int) bool { return candidates[i] < candidates[j] })
			return candidates[0], true
		}
	}
	return "", false
}

// ReferrerIDs returns the ids of nodes referencing id through attr,
// in snapshot order.
func (s *GraphSnapshot) ReferrerIDs(id NodeID, attr string) []NodeID {
	return append([]NodeID(nil), s.referrers[id][attr]...)
}
