package cmd

import (
	"fmt"

	"github.com/veildata/veil/internal/config"
	"github.com/veildata/veil/internal/ner"
)

// buildProvider resolves the configured NER backend. urlOverride, when
// non-empty, forces the http provider at that URL regardless of config.
func buildProvider(cfg *config.Config, urlOverride string) (ner.Provider, error) {
	if urlOverride != "" {
		return ner.NewHTTPProvider(urlOverride), nil
	}
	switch cfg.NERProvider {
	case "http":
		return ner.NewHTTPProvider(cfg.NERBaseURL), nil
	case "openai":
		return ner.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIModel), nil
	default:
		return nil, fmt.Errorf("%w: %q", ner.ErrUnknownProvider, cfg.NERProvider)
	}
}
