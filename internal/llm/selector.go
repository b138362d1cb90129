package llm

import (
	"time"

	"docextract-api/internal/shared/apperr"
)

// ProviderConfig carries the settings an adapter is built from.
type ProviderConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Factory builds an adapter from its configuration.
type Factory func(cfg ProviderConfig) Extractor

// Binding ties a provider name to its configuration and constructor.
type Binding struct {
	Provider Provider
	Config   ProviderConfig
	New      Factory
}

// Selector resolves a Provider to a fresh Extractor.
type Selector struct {
	bindings map[Provider]Binding
}

func NewSelector(bindings ...Binding) *Selector {
	m := make(map[Provider]Binding, len(bindings))
	for _, b := range bindings {
		m[b.Provider] = b
	}
	return &Selector{bindings: m}
}

// Select returns an adapter for p. Unbound providers are client input errors.
func (s *Selector) Select(p Provider) (Extractor, error) {
	b, ok := s.bindings[p]
	if !ok || b.New == nil {
		return nil, apperr.Wrap(apperr.KindInvalidInput, "Invalid provider", ErrUnknownProvider)
	}
	return b.New(b.Config), nil
}
