package config

import (
	"modelmind/internal/models"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Credentials holds the API keys found in the environment.
type Credentials struct {
	OpenAI      string `env:"OPENAI_API_KEY"`
	Google      string `env:"GOOGLE_API_KEY"`
	Groq        string `env:"GROQ_API_KEY"`
	HuggingFace string `env:"HUGGINGFACE_API_KEY"`
	DeepSeek    string `env:"DEEPSEEK_API_KEY"`
}

// LoadCredentials reads a .env file if present, then the environment.
func LoadCredentials() (Credentials, error) {
	// A missing .env file is fine.
	_ = godotenv.Load()

	var c Credentials
	if err := env.Parse(&c); err != nil {
		return Credentials{}, err
	}
	return c, nil
}

// ForKind returns the key used by providers of kind.
func (c Credentials) ForKind(kind string) string {
	switch kind {
	case models.KindOpenAI:
		return c.OpenAI
	case models.KindGemini:
		return c.Google
	case models.KindGroq:
		return c.Groq
	case models.KindHuggingFace:
		return c.HuggingFace
	case models.KindDeepSeek:
		return c.DeepSeek
	}
	return ""
}

// Apply fills missing provider credentials from the environment. Keys set in
// the config file win.
func (c Credentials) Apply(providers []models.ProviderSpec) []models.ProviderSpec {
	out := make([]models.ProviderSpec, len(providers))
	for i, p := range providers {
		if p.Credential == "" {
			p.Credential = c.ForKind(p.Kind)
		}
		out[i] = p
	}
	return out
}

// DefaultCatalog is the provider list used when the config file names none.
func DefaultCatalog() []models.ProviderSpec {
	return []models.ProviderSpec{
		{Name: "OpenAI GPT-4o", Kind: models.KindOpenAI, Model: "gpt-4o"},
		{Name: "Google Gemini 1.5 Pro", Kind: models.KindGemini, Model: "gemini-1.5-pro-latest"},
		{Name: "Llama 3 70B (Groq)", Kind: models.KindGroq, Model: "llama3-70b-8192"},
		{Name: "Mistral 7B (Hugging Face)", Kind: models.KindHuggingFace, Model: "mistralai/Mistral-7B-Instruct-v0.2"},
		{Name: "DeepSeek Chat", Kind: models.KindDeepSeek, Model: "deepseek-chat"},
	}
}
