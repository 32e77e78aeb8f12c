// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem under ~/.merkuze.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: user-editable prompt templates, optionally watched for changes
package file
