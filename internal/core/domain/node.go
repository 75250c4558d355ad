package domain

import "time"

// Node type names used by the graph API.
const (
	TypeConcept                  = "Concept"
	TypeTerm                     = "Term"
	TypeTerminologicalVocabulary = "TerminologicalVocabulary"
	TypeVocabulary               = "Vocabulary"
)

// VocabularyTypes lists the vocabulary node types in probe order.
// Newer graphs use TerminologicalVocabulary, older ones Vocabulary.
var VocabularyTypes = []string{TypeTerminologicalVocabulary, TypeVocabulary}

// ConceptTypes lists the node types indexed as concept documents.
var ConceptTypes = []string{TypeConcept}

// Property and reference attribute names.
const (
	PropPrefLabel  = "prefLabel"
	PropAltLabel   = "altLabel"
	PropDefinition = "definition"
	PropStatus     = "status"

	RefBroader     = "broader"
	RefPrefLabelXl = "prefLabelXl"
	RefAltLabelXl  = "altLabelXl"
)

// IsVocabularyType reports whether typeID is one of the vocabulary types.
func IsVocabularyType(typeID string) bool {
	for _, t := range VocabularyTypes {
		if t == typeID {
			return true
		}
	}
	return false
}

// IsConceptType reports whether typeID is indexed as a concept.
func IsConceptType(typeID string) bool {
	for _, t := range ConceptTypes {
		if t == typeID {
			return true
		}
	}
	return false
}

// LocalizedValue is one property value with its language code.
// Lang may be empty for language-neutral values such as status.
type LocalizedValue struct {
	Lang  string `json:"lang"`
	Value string `json:"value"`
}

// RawNode is a node as returned by the graph API.
// References hold the nodes this node points to, Referrers the nodes pointing
// at it. Referenced nodes are shallow unless the query expanded them.
type RawNode struct {
	ID           NodeID
	Type         string
	GraphID      GraphID
	Code         string
	URI          string
	LastModified *time.Time
	Properties   map[string][]LocalizedValue
	References   map[string][]RawNode
	Referrers    map[string][]RawNode
}

// HasProperty reports whether the node has at least one value for name.
func (n RawNode) HasProperty(name string) bool {
	return len(n.Properties[name]) > 0
}

// Localized groups the values of a property by language, keeping source order.
// It never returns nil.
func (n RawNode) Localized(name string) map[string][]string {
	out := make(map[string][]string)
	for _, v := range n.Properties[name] {
		out[v.Lang] = append(out[v.Lang], v.Value)
	}
	return out
}

// FirstValue returns the first value of a property, or "" if it has none.
func (n RawNode) FirstValue(name string) string {
	values := n.Properties[name]
	if len(values) == 0 {
		return ""
	}
	return values[0].Value
}

// ReferenceIDs returns the ids of the nodes referenced through attr.
func (n RawNode) ReferenceIDs(attr string) []NodeID {
	return nodeIDs(n.References[attr])
}

// ReferrerIDs returns the ids of the nodes referring to this one through attr.
func (n RawNode) ReferrerIDs(attr string) []NodeID {
	return nodeIDs(n.Referrers[attr])
}

func nodeIDs(nodes []RawNode) []NodeID {
	ids := make([]NodeID, 0, len(nodes))
	for _, node := range nodes {
		ids = append(ids, node.ID)
	}
	return ids
}
