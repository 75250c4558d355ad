package domain

import "strings"

// GraphID identifies one vocabulary's graph in the source API.
type GraphID string

// NodeID identifies a node inside a graph. It is only unique within its graph.
type NodeID string

// DocumentKey is the index document id, "<graphId>/<conceptId>".
// Existing indices depend on this exact format.
type DocumentKey string

// NewDocumentKey joins a graph id and a concept id into a document key.
func NewDocumentKey(graphID GraphID, conceptID NodeID) DocumentKey {
	return DocumentKey(string(graphID) + "/" + string(conceptID))
}

// Split returns the graph and concept ids of the key.
// Graph ids never contain a slash, so the key is split on the first one.
func (k DocumentKey) Split() (GraphID, NodeID, bool) {
	graph, concept, ok := strings.Cut(string(k), "/")
	if !ok || graph == "" || concept == "" {
		return "", "", false
	}
	return GraphID(graph), NodeID(concept), true
}

// String returns the string representation.
func (k DocumentKey) String() string {
	return string(k)
}

// NodeIDs converts a slice of strings into node ids.
func NodeIDs(ids ...string) []NodeID {
	out := make([]NodeID, len(ids))
	for i, id := range ids {
		out[i] = NodeID(id)
	}
	return out
}
