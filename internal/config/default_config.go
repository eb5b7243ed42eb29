package config

// LoadDefaultConfig returns a fresh copy of the built-in default
// configuration. Unlike the teacher's embedded-JSON default (a
// //go:embed default_config.json baked into the binary), plank's default
// is small enough to express directly as a struct literal — DefaultConfig
// is the single source of truth, this is just a named alias for callers
// that want to mirror the teacher's LoadDefaultConfig entry point (e.g.
// `plank init` comparing a scaffolded file against the built-in default).
func LoadDefaultConfig() (*Config, error) {
	return DefaultConfig(), nil
}
