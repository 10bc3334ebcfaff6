// Package file provides file-based implementations of driven port interfaces.
//
// Adapters:
//   - ConfigStore: TOML configuration at ~/.docqa/config.toml with
//     DOCQA_* environment overrides
//   - PromptStore: user-editable prompt templates under ~/.docqa/prompts
package file
