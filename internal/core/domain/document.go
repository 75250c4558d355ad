package domain

import "time"

// IndexDocument is a concept as stored in the search index.
// Modified and Status are left out of the JSON entirely when absent so the
// index applies its own missing-field handling.
type IndexDocument struct {
	ID          string              `json:"id"`
	Vocabulary  VocabularyDocument  `json:"vocabulary"`
	Label       map[string][]string `json:"label"`
	AltLabel    map[string][]string `json:"altLabel"`
	Definition  map[string][]string `json:"definition"`
	SortByLabel map[string]string   `json:"sortByLabel"`
	Broader     []string            `json:"broader"`
	Narrower    []string            `json:"narrower"`
	HasNarrower bool                `json:"hasNarrower"`
	Modified    *time.Time          `json:"modified,omitempty"`
	Status      string              `json:"status,omitempty"`
}

// VocabularyDocument is the vocabulary sub-document. Its ID is the graph id,
// which is what delete-by-graph matches on.
type VocabularyDocument struct {
	ID     string              `json:"id"`
	URI    string              `json:"uri,omitempty"`
	Label  map[string][]string `json:"label"`
	Status string              `json:"status,omitempty"`
}
