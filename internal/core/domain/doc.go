// Package domain defines the core business entities for docqa.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Chunk: A page or row addressable window of extracted text
//   - ChunkMetadata: Provenance recorded for every chunk of an index
//   - DocumentIndex: The persisted vectors and chunks for one file
//   - FileKind: The closed set of formats that can be ingested
//   - QuerySession: Multi-turn question and answer history
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
