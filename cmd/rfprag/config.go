package main

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v2"
)

type config struct {
	AzureConnectionString string `env:"AZURE_CONNECTION_STRING"`
	Container             string `env:"CONTAINER_NAME" envDefault:"word-data"`

	OpenAIEndpoint string `env:"OPENAI_ENDPOINT"`
	OpenAIAPIKey   string `env:"OPENAI_API_KEY"`
	ChatDeployment string `env:"CHAT_DEPLOYMENT_NAME"`

	LanguageEndpoint string `env:"LANGUAGE_ENDPOINT"`
	LanguageAPIKey   string `env:"LANGUAGE_API_KEY"`

	SearchServiceName string `env:"SEARCH_SERVICE_NAME"`
	SearchAPIKey      string `env:"SEARCH_API_KEY"`

	LangSearchKey string `env:"LANG_SEARCH_KEY"`

	LocalStorePath string `env:"LOCAL_STORE_PATH"`
	LocalIndexPath string `env:"LOCAL_INDEX_PATH"`

	OllamaHost       string `env:"OLLAMA_HOST"`
	OllamaModel      string `env:"OLLAMA_MODEL" envDefault:"llama3.1"`
	OllamaEmbedModel string `env:"OLLAMA_EMBED_MODEL" envDefault:"nomic-embed-text"`

	MaxChunkChars int    `env:"MAX_CHUNK_CHARS" envDefault:"4000"`
	PresetFile    string `env:"PRESET_FILE"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
}

func loadConfig() (config, error) {
	cfg := config{}
	if err := env.Parse(&cfg); err != nil {
		return config{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// loadPresets reads named analysis instruction presets from a YAML file.
func loadPresets(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read preset file: %w", err)
	}

	var parsed struct {
		Presets map[string]string `yaml:"presets"`
	}
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse preset file: %w", err)
	}

	return parsed.Presets, nil
}
