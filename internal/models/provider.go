package models

// Provider kinds select the adapter used to reach a backend.
const (
	KindOpenAI      = "openai"
	KindDeepSeek    = "deepseek"
	KindGroq        = "groq"
	KindGemini      = "gemini"
	KindHuggingFace = "huggingface"
)

// Kinds lists every supported provider kind.
var Kinds = []string{KindOpenAI, KindDeepSeek, KindGroq, KindGemini, KindHuggingFace}

// ProviderSpec describes a callable LLM backend.
//
// Specs are built once by the config layer and passed around by value; nothing
// downstream mutates them.
type ProviderSpec struct {
	Name       string `mapstructure:"name" yaml:"name" json:"name"`
	Kind       string `mapstructure:"kind" yaml:"kind" json:"kind"`
	Model      string `mapstructure:"model" yaml:"model" json:"model"`
	BaseURL    string `mapstructure:"base_url" yaml:"base_url,omitempty" json:"base_url,omitempty"`
	Credential string `mapstructure:"api_key" yaml:"api_key,omitempty" json:"-"`
}

// Available reports whether the provider has a credential and can be selected.
func (p ProviderSpec) Available() bool {
	return p.Credential != ""
}

// CompareConfig represents the comparison configuration
type CompareConfig struct {
	Providers   []ProviderSpec `mapstructure:"providers" yaml:"providers"`
	Temperature float64        `mapstructure:"temperature" yaml:"temperature"`
	Concurrency int            `mapstructure:"concurrency" yaml:"concurrency"`
	Timeout     string         `mapstructure:"timeout" yaml:"timeout"`
}

// AssistConfig selects the backend used by the single-shot assist tools.
type AssistConfig struct {
	Provider string `mapstructure:"provider" yaml:"provider,omitempty"`
	Timeout  string `mapstructure:"timeout" yaml:"timeout"`
}

// ServerConfig holds the HTTP API settings
type ServerConfig struct {
	Address        string   `mapstructure:"address" yaml:"address"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins,omitempty"`
}
