// Package patterns provides embedded default recognizer and vocabulary
// definitions. YAML files in this directory use the registry format
// documented in internal/redact (regex recognizers with Veil extensions,
// plus title and street-suffix vocabularies).
package patterns

import _ "embed"

//go:embed pii_us.yaml
var piiUSYAML []byte

//go:embed vocab.yaml
var vocabYAML []byte

// PIIUSYAML returns the embedded default US PII recognizer definitions.
func PIIUSYAML() []byte { return piiUSYAML }

// VocabYAML returns the embedded title and street-suffix vocabularies.
func VocabYAML() []byte { return vocabYAML }
