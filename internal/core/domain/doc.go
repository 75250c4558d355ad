// Package domain defines the core entities of the terminology index sync engine.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RawNode: an untyped node fetched from the graph API
//   - GraphSnapshot: an id-indexed view of one vocabulary graph
//   - Concept / Vocabulary: the document model built from raw nodes
//   - IndexDocument: the flattened JSON shape stored in the search index
//   - AffectedNodes / ChangeEvent: change notifications grouped per graph
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
