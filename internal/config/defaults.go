package config

// DefaultConfig returns a Config populated with sensible defaults.
// File and environment values overlay these.
func DefaultConfig() *Config {
	return &Config{
		Env:     EnvDevelopment,
		Port:    8080,
		DataDir: ".liferx",
		// The org every unscoped call lands in. Operators override this
		// with their real tenant id in production.
		DefaultOrgID: "00000000-0000-0000-0000-000000000000",
		LLM: LLMConfig{
			Model: "gpt-4o-mini",
		},
		Pipelines: PipelineConfig{
			ScoreThreshold:    75,
			PresenceThreshold: 60,
			MaxQuoteCards:     3,
			DiscoveryLimit:    50,
		},
	}
}
