package domain

// AffectedNodes is one graph's share of a change notification.
type AffectedNodes struct {
	GraphID       GraphID
	VocabularyIDs []NodeID
	ConceptIDs    []NodeID
}

// HasVocabulary reports whether the vocabulary node itself changed.
// A changed vocabulary always forces a rebuild of the whole graph.
func (a AffectedNodes) HasVocabulary() bool {
	return len(a.VocabularyIDs) > 0
}

// NodeRef identifies a changed node together with its type and graph.
type NodeRef struct {
	ID      NodeID
	TypeID  string
	GraphID GraphID
}

// GroupByGraph builds one AffectedNodes per graph, in order of first appearance.
// Ids are deduplicated per graph. Nodes whose type is neither a vocabulary nor a
// concept type, or that lack a graph id, are ignored.
func GroupByGraph(refs []NodeRef) []AffectedNodes {
	index := make(map[GraphID]int)
	seen := make(map[GraphID]map[NodeID]bool)
	var groups []AffectedNodes

	for _, ref := range refs {
		if ref.GraphID == "" || ref.ID == "" {
			continue
		}
		isVocabulary := IsVocabularyType(ref.TypeID)
		if !isVocabulary && !IsConceptType(ref.TypeID) {
			continue
		}

		i, ok := index[ref.GraphID]
		if !ok {
			i = len(groups)
			index[ref.GraphID] = i
			seen[ref.GraphID] = make(map[NodeID]bool)
			groups = append(groups, AffectedNodes{GraphID: ref.GraphID})
		}
		if seen[ref.GraphID][ref.ID] {
			continue
		}
		seen[ref.GraphID][ref.ID] = true

		if isVocabulary {
			groups[i].VocabularyIDs = append(groups[i].VocabularyIDs, ref.ID)
		} else {
			groups[i].ConceptIDs = append(groups[i].ConceptIDs, ref.ID)
		}
	}

	return groups
}
