package tui

// Option defines a functional option for model configuration.
type Option func(*Model)

// WithLaneCode sets the station's lane code, recorded with each meal scan.
func WithLaneCode(code int) Option {
	return func(m *Model) {
		if code >= 0 {
			m.laneCode = code
		}
	}
}
