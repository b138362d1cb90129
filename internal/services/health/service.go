package health

import "sort"

// Service reports liveness plus the static wiring a caller can rely on.
type Service struct {
	archiveBackend string
	providers      []string
}

// NewService constructs a health service. providers lists the extraction
// providers that have credentials configured.
func NewService(archiveBackend string, providers ...string) *Service {
	p := append([]string(nil), providers...)
	sort.Strings(p)
	return &Service{archiveBackend: archiveBackend, providers: p}
}

// Status returns the health payload.
func (s *Service) Status() map[string]any {
	providers := s.providers
	if providers == nil {
		providers = []string{}
	}
	return map[string]any{
		"ok":             true,
		"archiveBackend": s.archiveBackend,
		"providers":      providers,
	}
}
