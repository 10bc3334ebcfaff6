// Package normalisers provides implementations of the Extractor interface
// for the supported file formats. Each extractor knows how to turn one
// FileKind into page or row tagged chunks.
//
// Extractors are registered with the Registry at startup.
package normalisers
