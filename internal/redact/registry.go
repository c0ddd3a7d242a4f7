package redact

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/veildata/veil/patterns"
)

// RecognizerZIP names the built-in optional ZIP recognizer, the one the
// MaskZIPCodes option toggles.
const RecognizerZIP = "ZIP"

// RecognizerFile is the top-level YAML structure for a recognizer config file.
type RecognizerFile struct {
	Recognizers []RecognizerConfig `yaml:"recognizers"`
}

// RecognizerConfig is one regex recognizer definition. The adjacency and
// scoping fields are Veil extensions standing in for the lookarounds the
// original patterns relied on (RE2 has none).
type RecognizerConfig struct {
	Name     string  `yaml:"name" json:"name"`
	Category string  `yaml:"category" json:"category"`
	Order    int     `yaml:"order" json:"order"`
	Regex    string  `yaml:"regex" json:"regex"`
	Score    float64 `yaml:"score" json:"score"`
	Enabled  *bool   `yaml:"enabled,omitempty" json:"enabled,omitempty"`

	NotPrecededByDigit bool   `yaml:"not_preceded_by_digit,omitempty" json:"not_preceded_by_digit,omitempty"`
	NotFollowedByDigit bool   `yaml:"not_followed_by_digit,omitempty" json:"not_followed_by_digit,omitempty"`
	RequiresToken      string `yaml:"requires_token,omitempty" json:"requires_token,omitempty"`

	// Optional recognizers compile but stay dormant until a run enables
	// them by name (Options.OptionalRecognizers, or MaskZIPCodes for the
	// built-in ZIP recognizer).
	Optional bool `yaml:"optional,omitempty" json:"optional,omitempty"`
}

// isEnabled returns true if the recognizer is enabled (defaults to true when nil).
func (r *RecognizerConfig) isEnabled() bool {
	if r.Enabled == nil {
		return true
	}
	return *r.Enabled
}

// VocabFile holds the fixed vocabularies for the title-name detector and
// the street policy filter.
type VocabFile struct {
	TitleScore     float64  `yaml:"title_score"`
	Titles         []string `yaml:"titles"`
	StreetSuffixes []string `yaml:"street_suffixes"`
}

// ParseRecognizerFile parses recognizer YAML bytes into a RecognizerFile.
func ParseRecognizerFile(data []byte) (*RecognizerFile, error) {
	var rf RecognizerFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing recognizer YAML: %w", err)
	}
	return &rf, nil
}

// LoadRecognizerFile reads and parses a recognizer YAML file from disk.
// Returns nil (not an error) if the file does not exist, so callers can
// treat a missing override file as a no-op.
func LoadRecognizerFile(path string) (*RecognizerFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading recognizer file %s: %w", path, err)
	}
	return ParseRecognizerFile(data)
}

// ParseVocabFile parses vocabulary YAML bytes.
func ParseVocabFile(data []byte) (*VocabFile, error) {
	var vf VocabFile
	if err := yaml.Unmarshal(data, &vf); err != nil {
		return nil, fmt.Errorf("parsing vocab YAML: %w", err)
	}
	return &vf, nil
}

// DefaultRecognizers returns the built-in recognizers parsed from the
// embedded pii_us.yaml file.
func DefaultRecognizers() ([]RecognizerConfig, error) {
	rf, err := ParseRecognizerFile(patterns.PIIUSYAML())
	if err != nil {
		return nil, fmt.Errorf("parsing embedded recognizers: %w", err)
	}
	return rf.Recognizers, nil
}

// DefaultVocab returns the embedded title and street-suffix vocabularies.
func DefaultVocab() (*VocabFile, error) {
	vf, err := ParseVocabFile(patterns.VocabYAML())
	if err != nil {
		return nil, fmt.Errorf("parsing embedded vocab: %w", err)
	}
	return vf, nil
}

// MergeRecognizers layers override recognizers on top of the defaults.
// Later layers replace earlier ones by matching on Name; new recognizers
// are appended.
func MergeRecognizers(layers ...[]RecognizerConfig) []RecognizerConfig {
	index := make(map[string]int)
	var merged []RecognizerConfig

	for _, layer := range layers {
		for _, rc := range layer {
			if idx, exists := index[rc.Name]; exists {
				merged[idx] = rc
			} else {
				index[rc.Name] = len(merged)
				merged = append(merged, rc)
			}
		}
	}

	return merged
}

// CompileDetectors converts recognizer configs into the compiled detectors
// used at runtime, sorted by Order so the masking passes run in the fixed
// sequence the configs declare. Disabled recognizers are skipped.
func CompileDetectors(recognizers []RecognizerConfig) ([]*Detector, error) {
	var detectors []*Detector

	for i := range recognizers {
		rc := &recognizers[i]
		if !rc.isEnabled() {
			continue
		}
		d, err := newDetector(rc)
		if err != nil {
			return nil, fmt.Errorf("compiling recognizer %q: %w", rc.Name, err)
		}
		detectors = append(detectors, d)
	}

	sort.SliceStable(detectors, func(i, j int) bool {
		return detectors[i].Order < detectors[j].Order
	})

	return detectors, nil
}
