// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML configuration, read and written as dot-notation keys
//   - PromptStore: user-editable prompt templates, one file per prompt
package file
