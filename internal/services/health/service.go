package health

// Service encapsulates health-related checks.
type Service struct {
	name    string
	version string
}

// NewService constructs a new health service.
func NewService(name, version string) *Service {
	return &Service{name: name, version: version}
}

// Status returns the health payload. The endpoint is liveness only; external
// collaborators are not probed.
func (s *Service) Status() map[string]string {
	return map[string]string{
		"status":  "healthy",
		"service": s.name,
		"version": s.version,
	}
}
