// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Extractor: Turns one file format into page or row tagged chunks
//   - ExtractorRegistry: Total mapping from FileKind to Extractor
//   - EmbeddingService: Generates vector embeddings for chunks and questions
//   - IndexStore: Builds, loads and searches per-file indexes
//   - SessionStore: Persists conversation history between requests
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Answers questions. Without it, queries return context only.
//   - OCREngine: Reads text from images. Without it, image uploads are rejected.
//   - PromptStore: Customisable prompt templates. Without it, defaults are used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
