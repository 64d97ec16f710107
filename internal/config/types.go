package config

// RuntimeEnv identifies the deployment environment.
type RuntimeEnv string

const (
	EnvDevelopment RuntimeEnv = "development"
	EnvProduction  RuntimeEnv = "production"
)

// Config is the top-level configuration, corresponding to .liferx.yml.
type Config struct {
	Env            RuntimeEnv `yaml:"env" koanf:"env"`
	Port           int        `yaml:"port" koanf:"port"`
	DataDir        string     `yaml:"data_dir" koanf:"data_dir"`
	InternalSecret string     `yaml:"internal_secret" koanf:"internal_secret"`
	DefaultOrgID   string     `yaml:"default_org_id" koanf:"default_org_id"`
	HubURL         string     `yaml:"hub_url" koanf:"hub_url"`
	AllowAllCORS   bool       `yaml:"allow_all_cors" koanf:"allow_all_cors"`

	LLM       LLMConfig      `yaml:"llm" koanf:"llm"`
	Pipelines PipelineConfig `yaml:"pipelines" koanf:"pipelines"`
	Schedules ScheduleConfig `yaml:"schedules" koanf:"schedules"`
}

// LLMConfig selects the optional model provider used by generative tools.
// When APIKey is empty the tools fall back to deterministic heuristics.
type LLMConfig struct {
	Model  string `yaml:"model" koanf:"model"`
	APIKey string `yaml:"api_key" koanf:"api_key"`
}

// PipelineConfig holds the tunable pipeline and eligibility thresholds.
type PipelineConfig struct {
	ScoreThreshold    float64 `yaml:"score_threshold" koanf:"score_threshold"`
	PresenceThreshold float64 `yaml:"presence_threshold" koanf:"presence_threshold"`
	MaxQuoteCards     int     `yaml:"max_quote_cards" koanf:"max_quote_cards"`
	DiscoveryLimit    int     `yaml:"discovery_limit" koanf:"discovery_limit"`
}

// ScheduleConfig holds optional cron expressions for internal triggers.
// Empty expressions disable the corresponding job.
type ScheduleConfig struct {
	Discovery string `yaml:"discovery" koanf:"discovery"`
}

// DevMode reports whether the runtime is explicitly in development mode.
// Only in dev mode may internal endpoints run without a configured secret.
func (c *Config) DevMode() bool {
	return c.Env == EnvDevelopment
}
