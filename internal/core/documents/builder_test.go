package documents

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/domain"
	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/logger"
)

func values(lang string, vs ...string) []domain.LocalizedValue {
	out := make([]domain.LocalizedValue, len(vs))
	for i, v := range vs {
		out[i] = domain.LocalizedValue{Lang: lang, Value: v}
	}
	return out
}

func shallow(typ string, ids ...domain.NodeID) []domain.RawNode {
	out := make([]domain.RawNode, len(ids))
	for i, id := range ids {
		out[i] = domain.RawNode{ID: id, Type: typ}
	}
	return out
}

var modified = time.Date(2024, 5, 2, 8, 30, 0, 0, time.UTC)

func graphNodes() []domain.RawNode {
	return []domain.RawNode{
		{
			ID:   "v",
			Type: domain.TypeTerminologicalVocabulary,
			URI:  "http://uri.suomi.fi/terminology/g1",
			Properties: map[string][]domain.LocalizedValue{
				domain.PropPrefLabel: values("fi", "Sanasto"),
				domain.PropStatus:    values("", "VALID"),
			},
		},
		{
			ID:   "a",
			Type: domain.TypeConcept,
			Properties: map[string][]domain.LocalizedValue{
				domain.PropPrefLabel:  values("fi", "Eläin", "Otus"),
				domain.PropDefinition: values("fi", "Elollinen olento"),
			},
		},
		{
			ID:           "b",
			Type:         domain.TypeConcept,
			LastModified: &modified,
			Properties: map[string][]domain.LocalizedValue{
				domain.PropStatus: values("", "DRAFT"),
			},
			References: map[string][]domain.RawNode{
				domain.RefBroader:     shallow(domain.TypeConcept, "a"),
				domain.RefPrefLabelXl: shallow(domain.TypeTerm, "t1", "missing"),
				domain.RefAltLabelXl:  shallow(domain.TypeTerm, "t2"),
			},
		},
		{
			ID:   "c",
			Type: domain.TypeConcept,
			References: map[string][]domain.RawNode{
				domain.RefBroader: shallow(domain.TypeConcept, "a"),
			},
		},
		{
			ID:   "t1",
			Type: domain.TypeTerm,
			Properties: map[string][]domain.LocalizedValue{
				domain.PropPrefLabel: append(values("fi", "Koira"), values("en", "Dog")...),
			},
		},
		{
			ID:   "t2",
			Type: domain.TypeTerm,
			Properties: map[string][]domain.LocalizedValue{
				domain.PropPrefLabel: values("fi", "Hauva"),
			},
		},
	}
}

func quiet(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(os.Stderr) })
	return &buf
}

func TestVocabularyFromSnapshot(t *testing.T) {
	snap := domain.NewGraphSnapshot("g1", graphNodes())

	v, ok := VocabularyFromSnapshot(snap)
	require.True(t, ok)
	assert.Equal(t, domain.GraphID("g1"), v.GraphID)
	assert.Equal(t, "http://uri.suomi.fi/terminology/g1", v.URI)
	assert.Equal(t, map[string][]string{"fi": {"Sanasto"}}, v.Label)
	assert.Equal(t, "VALID", v.Status)

	_, ok = VocabularyFromSnapshot(domain.NewGraphSnapshot("g2", nil))
	assert.False(t, ok)
}

func TestFromSnapshot_DirectLabels(t *testing.T) {
	quiet(t)
	snap := domain.NewGraphSnapshot("g1", graphNodes())
	v, _ := VocabularyFromSnapshot(snap)

	c, ok := FromSnapshot(snap, "a", v)
	require.True(t, ok)
	assert.Equal(t, map[string][]string{"fi": {"Eläin", "Otus"}}, c.Label)
	assert.Equal(t, map[string][]string{"fi": {"Elollinen olento"}}, c.Definition)
	assert.Empty(t, c.AltLabel)
	assert.Empty(t, c.BroaderIDs)
	assert.Equal(t, []domain.NodeID{"b", "c"}, c.NarrowerIDs)
	assert.True(t, c.HasNarrower())
	assert.Equal(t, domain.DocumentKey("g1/a"), c.Key())
}

func TestFromSnapshot_TermLabels(t *testing.T) {
	buf := quiet(t)
	snap := domain.NewGraphSnapshot("g1", graphNodes())
	v, _ := VocabularyFromSnapshot(snap)

	c, ok := FromSnapshot(snap, "b", v)
	require.True(t, ok)
	assert.Equal(t, map[string][]string{"fi": {"Koira"}, "en": {"Dog"}}, c.Label)
	assert.Equal(t, map[string][]string{"fi": {"Hauva"}}, c.AltLabel)
	assert.Equal(t, []domain.NodeID{"a"}, c.BroaderIDs)
	assert.Empty(t, c.NarrowerIDs)
	assert.Equal(t, "DRAFT", c.Status)
	require.NotNil(t, c.LastModified)
	assert.True(t, modified.Equal(*c.LastModified))

	assert.Contains(t, buf.String(), "[WARN] term of concept b unavailable")
}

func TestFromSnapshot_Unavailable(t *testing.T) {
	buf := quiet(t)
	snap := domain.NewGraphSnapshot("g1", graphNodes())
	v, _ := VocabularyFromSnapshot(snap)

	_, ok := FromSnapshot(snap, "t1", v)
	assert.False(t, ok)
	_, ok = FromSnapshot(snap, "nope", v)
	assert.False(t, ok)
	assert.Contains(t, buf.String(), "[WARN] concept unavailable")
}

func TestFromNodeTree(t *testing.T) {
	quiet(t)
	v := domain.Vocabulary{GraphID: "g1"}

	node := domain.RawNode{
		ID:   "b",
		Type: domain.TypeConcept,
		References: map[string][]domain.RawNode{
			domain.RefBroader: shallow(domain.TypeConcept, "a"),
			domain.RefPrefLabelXl: {{
				ID:   "t1",
				Type: domain.TypeTerm,
				Properties: map[string][]domain.LocalizedValue{
					domain.PropPrefLabel: values("fi", "Koira"),
				},
			}},
		},
		Referrers: map[string][]domain.RawNode{
			domain.RefBroader: shallow(domain.TypeConcept, "z", "d"),
		},
	}

	c, ok := FromNodeTree(node, v)
	require.True(t, ok)
	assert.Equal(t, map[string][]string{"fi": {"Koira"}}, c.Label)
	assert.Equal(t, []domain.NodeID{"a"}, c.BroaderIDs)
	assert.Equal(t, []domain.NodeID{"d", "z"}, c.NarrowerIDs)

	_, ok = FromNodeTree(domain.RawNode{ID: "t", Type: domain.TypeTerm}, v)
	assert.False(t, ok)
}

func TestFromNodeTree_DirectPropertyWins(t *testing.T) {
	node := domain.RawNode{
		ID:   "a",
		Type: domain.TypeConcept,
		Properties: map[string][]domain.LocalizedValue{
			domain.PropPrefLabel: values("fi", "Suora"),
		},
		References: map[string][]domain.RawNode{
			domain.RefPrefLabelXl: {{
				ID:   "t1",
				Type: domain.TypeTerm,
				Properties: map[string][]domain.LocalizedValue{
					domain.PropPrefLabel: values("fi", "Epäsuora"),
				},
			}},
		},
	}

	c, ok := FromNodeTree(node, domain.Vocabulary{GraphID: "g1"})
	require.True(t, ok)
	assert.Equal(t, map[string][]string{"fi": {"Suora"}}, c.Label)
}

// TestBuildPaths_Converge tests that snapshot and node tree builds agree
func TestBuildPaths_Converge(t *testing.T) {
	quiet(t)
	nodes := graphNodes()
	snap := domain.NewGraphSnapshot("g1", nodes)
	v, _ := VocabularyFromSnapshot(snap)

	fromSnapshot, ok := FromSnapshot(snap, "a", v)
	require.True(t, ok)

	tree := nodes[1]
	tree.Referrers = map[string][]domain.RawNode{
		domain.RefBroader: shallow(domain.TypeConcept, "c", "b"),
	}
	fromTree, ok := FromNodeTree(tree, v)
	require.True(t, ok)

	assert.Equal(t, fromSnapshot.ToIndexDocument(), fromTree.ToIndexDocument())
}

func TestFromIndexDocument(t *testing.T) {
	quiet(t)
	snap := domain.NewGraphSnapshot("g1", graphNodes())
	v, _ := VocabularyFromSnapshot(snap)
	original, ok := FromSnapshot(snap, "b", v)
	require.True(t, ok)

	doc := original.ToIndexDocument()
	c, ok := FromIndexDocument(&doc)
	require.True(t, ok)

	assert.Equal(t, original.Key(), c.Key())
	assert.Equal(t, original.BroaderIDs, c.BroaderIDs)
	assert.Equal(t, original.Label, c.Label)
	assert.Equal(t, doc, c.ToIndexDocument())

	_, ok = FromIndexDocument(nil)
	assert.False(t, ok)
	_, ok = FromIndexDocument(&domain.IndexDocument{ID: "x"})
	assert.False(t, ok)
}
