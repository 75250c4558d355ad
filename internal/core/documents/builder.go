// Package documents builds concept documents from graph nodes.
//
// There are three build paths, all producing the same domain.Concept shape:
//
//   - FromSnapshot: full reindex, references resolved through a GraphSnapshot
//   - FromNodeTree: incremental updates, term references expanded inline
//   - FromIndexDocument: prior index state read back for closure repair
//
// A node that cannot be resolved is reported as unavailable (false) and the
// caller drops it. Builders never fail.
package documents

import (
	"sort"

	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/domain"
	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/logger"
)

// VocabularyFromNode builds the vocabulary sub-document of a graph.
func VocabularyFromNode(graphID domain.GraphID, node domain.RawNode) domain.Vocabulary {
	return domain.Vocabulary{
		GraphID: graphID,
		URI:     node.URI,
		Label:   node.Localized(domain.PropPrefLabel),
		Status:  node.FirstValue(domain.PropStatus),
	}
}

// VocabularyFromSnapshot resolves the graph's vocabulary node.
// Returns false when the graph has none.
func VocabularyFromSnapshot(snap *domain.GraphSnapshot) (domain.Vocabulary, bool) {
	id, ok := snap.VocabularyID()
	if !ok {
		return domain.Vocabulary{}, false
	}
	node, err := snap.Lookup(id, domain.VocabularyTypes...)
	if err != nil {
		logger.Warn("vocabulary unavailable: %v", err)
		return domain.Vocabulary{}, false
	}
	return VocabularyFromNode(snap.GraphID(), node), true
}

// FromSnapshot builds the concept with the given id.
// Term labels and narrower ids are resolved through the snapshot.
func FromSnapshot(snap *domain.GraphSnapshot, id domain.NodeID, vocabulary domain.Vocabulary) (domain.Concept, bool) {
	node, err := snap.Lookup(id, domain.TypeConcept)
	if err != nil {
		logger.Warn("concept unavailable: %v", err)
		return domain.Concept{}, false
	}

	resolve := func(ref domain.RawNode) (domain.RawNode, bool) {
		term, err := snap.Lookup(ref.ID, domain.TypeTerm)
		if err != nil {
			logger.Warn("term of concept %s unavailable: %v", id, err)
			return domain.RawNode{}, false
		}
		return term, true
	}

	c := baseConcept(node, vocabulary, resolve)
	c.NarrowerIDs = sortedIDs(snap.ReferrerIDs(id, domain.RefBroader))
	return c, true
}

// FromNodeTree builds a concept from a node fetched with its term
// references expanded and its broader referrers included.
func FromNodeTree(node domain.RawNode, vocabulary domain.Vocabulary) (domain.Concept, bool) {
	if node.Type != domain.TypeConcept {
		logger.Warn("concept unavailable: node %s in graph %s is %q, expected %s",
			node.ID, vocabulary.GraphID, node.Type, domain.TypeConcept)
		return domain.Concept{}, false
	}

	resolve := func(ref domain.RawNode) (domain.RawNode, bool) {
		if ref.Type != "" && ref.Type != domain.TypeTerm {
			logger.Warn("term of concept %s unavailable: node %s is %q", node.ID, ref.ID, ref.Type)
			return domain.RawNode{}, false
		}
		return ref, true
	}

	c := baseConcept(node, vocabulary, resolve)
	c.NarrowerIDs = sortedIDs(node.ReferrerIDs(domain.RefBroader))
	return c, true
}

// FromIndexDocument reconstructs a concept from its indexed form.
// Only the fields stored in the index survive the round trip.
func FromIndexDocument(doc *domain.IndexDocument) (domain.Concept, bool) {
	if doc == nil || doc.ID == "" || doc.Vocabulary.ID == "" {
		return domain.Concept{}, false
	}

	c := domain.Concept{
		ID: domain.NodeID(doc.ID),
		Vocabulary: domain.Vocabulary{
			GraphID: domain.GraphID(doc.Vocabulary.ID),
			URI:     doc.Vocabulary.URI,
			Label:   copyLabels(doc.Vocabulary.Label),
			Status:  doc.Vocabulary.Status,
		},
		Label:       copyLabels(doc.Label),
		AltLabel:    copyLabels(doc.AltLabel),
		Definition:  copyLabels(doc.Definition),
		Status:      doc.Status,
		BroaderIDs:  domain.NodeIDs(doc.Broader...),
		NarrowerIDs: domain.NodeIDs(doc.Narrower...),
	}
	if doc.Modified != nil {
		modified := *doc.Modified
		c.LastModified = &modified
	}
	return c, true
}

func baseConcept(node domain.RawNode, vocabulary domain.Vocabulary, resolve func(domain.RawNode) (domain.RawNode, bool)) domain.Concept {
	c := domain.Concept{
		ID:         node.ID,
		Vocabulary: vocabulary,
		Label:      labels(node, domain.PropPrefLabel, domain.RefPrefLabelXl, resolve),
		AltLabel:   labels(node, domain.PropAltLabel, domain.RefAltLabelXl, resolve),
		Definition: node.Localized(domain.PropDefinition),
		Status:     node.FirstValue(domain.PropStatus),
		BroaderIDs: node.ReferenceIDs(domain.RefBroader),
	}
	if node.LastModified != nil {
		modified := node.LastModified.UTC()
		c.LastModified = &modified
	}
	return c
}

// labels reads the direct property when the node has one, otherwise the
// prefLabel values of the referenced terms, in reference order.
func labels(node domain.RawNode, property, xlReference string, resolve func(domain.RawNode) (domain.RawNode, bool)) map[string][]string {
	if node.HasProperty(property) {
		return node.Localized(property)
	}

	out := make(map[string][]string)
	for _, ref := range node.References[xlReference] {
		term, ok := resolve(ref)
		if !ok {
			continue
		}
		for _, v := range term.Properties[domain.PropPrefLabel] {
			out[v.Lang] = append(out[v.Lang], v.Value)
		}
	}
	return out
}

func sortedIDs(ids []domain.NodeID) []domain.NodeID {
	out := append([]domain.NodeID{}, ids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func copyLabels(m map[string][]string) map[string][]string {
	out := make(map[string][]string, len(m))
	for lang, values := range m {
		out[lang] = append([]string(nil), values...)
	}
	return out
}
