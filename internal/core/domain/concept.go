package domain

import (
	"strings"
	"time"
)

// Vocabulary is the vocabulary sub-document embedded in every concept document.
type Vocabulary struct {
	GraphID GraphID
	URI     string
	Label   map[string][]string
	Status  string
}

// Concept is the document model of one concept.
// NarrowerIDs is derived from other concepts' broader references and is
// never stored in the source graph.
type Concept struct {
	ID           NodeID
	Vocabulary   Vocabulary
	Label        map[string][]string
	AltLabel     map[string][]string
	Definition   map[string][]string
	Status       string
	BroaderIDs   []NodeID
	NarrowerIDs  []NodeID
	LastModified *time.Time
}

// GraphID returns the graph the concept belongs to.
func (c Concept) GraphID() GraphID {
	return c.Vocabulary.GraphID
}

// Key returns the document key the concept is indexed under.
func (c Concept) Key() DocumentKey {
	return NewDocumentKey(c.Vocabulary.GraphID, c.ID)
}

// HasNarrower reports whether any concept lists this one as broader.
func (c Concept) HasNarrower() bool {
	return len(c.NarrowerIDs) > 0
}

// SortByLabel maps each label language to its first value, lower-cased.
func (c Concept) SortByLabel() map[string]string {
	out := make(map[string]string, len(c.Label))
	for lang, values := range c.Label {
		if len(values) == 0 {
			continue
		}
		out[lang] = strings.ToLower(values[0])
	}
	return out
}

// Neighbors returns the union of broader and narrower ids, first occurrence wins.
func (c Concept) Neighbors() []NodeID {
	seen := make(map[NodeID]bool, len(c.BroaderIDs)+len(c.NarrowerIDs))
	var out []NodeID
	for _, ids := range [][]NodeID{c.BroaderIDs, c.NarrowerIDs} {
		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// ToIndexDocument flattens the concept into its stored JSON shape.
func (c Concept) ToIndexDocument() IndexDocument {
	doc := IndexDocument{
		ID: string(c.ID),
		Vocabulary: VocabularyDocument{
			ID:     string(c.Vocabulary.GraphID),
			URI:    c.Vocabulary.URI,
			Label:  nonNilLabels(c.Vocabulary.Label),
			Status: c.Vocabulary.Status,
		},
		Label:       nonNilLabels(c.Label),
		AltLabel:    nonNilLabels(c.AltLabel),
		Definition:  nonNilLabels(c.Definition),
		SortByLabel: c.SortByLabel(),
		Broader:     idStrings(c.BroaderIDs),
		Narrower:    idStrings(c.NarrowerIDs),
		HasNarrower: c.HasNarrower(),
		Status:      c.Status,
	}
	if c.LastModified != nil {
		modified := c.LastModified.UTC()
		doc.Modified = &modified
	}
	return doc
}

func nonNilLabels(m map[string][]string) map[string][]string {
	if m == nil {
		return map[string][]string{}
	}
	return m
}

func idStrings(ids []NodeID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
