// Package config persists stash settings at ~/.stash/cfg.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/stashmd/stash/internal/constants"
)

var ErrAPIKeyNotSet = errors.New("api key not configured")

// AIConfig controls the natural-language query translator and note rewrite
// assistant.
type AIConfig struct {
	Enabled      bool   `yaml:"enabled"        json:"enabled"`
	APIKey       string `yaml:"openai_api_key" json:"openai_api_key"`
	Model        string `yaml:"model"          json:"model"`
	PromptStyle  string `yaml:"prompt_style"   json:"prompt_style"`
	CustomPrompt string `yaml:"custom_prompt"  json:"custom_prompt"`
}

// SearchConfig carries search defaults applied when flags are absent.
type SearchConfig struct {
	CaseSensitive bool `yaml:"case_sensitive" json:"case_sensitive"`
}

type Config struct {
	NotesDir   string       `yaml:"notes_dir"   json:"notes_dir"`
	Editor     string       `yaml:"editor"      json:"editor"`
	EditorArgs string       `yaml:"editor_args" json:"editor_args"`
	AI         AIConfig     `yaml:"ai"          json:"ai"`
	Search     SearchConfig `yaml:"search"      json:"search"`

	path string
}

// GetConfigPath returns the config file location under home.
func GetConfigPath(home string) string {
	return filepath.Join(
		home,
		constants.ConfigDir,
		constants.ConfigFile+"."+constants.ConfigFileType,
	)
}

func defaults(home string) *Config {
	return &Config{
		NotesDir: filepath.Join(home, constants.ConfigDir, constants.NotesSubdir),
		Editor:   "nvim",
		AI:       AIConfig{Model: "gpt-4o-mini", PromptStyle: "professional"},
		path:     GetConfigPath(home),
	}
}

// Load reads the config for home, falling back to defaults when no file
// exists yet.
func Load(home string) (*Config, error) {
	cfg := defaults(home)

	data, err := os.ReadFile(cfg.path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if strings.TrimSpace(string(data)) != "" {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.ensureDefaults(home)
	return cfg, nil
}

func (cfg *Config) ensureDefaults(home string) {
	if strings.TrimSpace(cfg.NotesDir) == "" {
		cfg.NotesDir = filepath.Join(home, constants.ConfigDir, constants.NotesSubdir)
	}
	if strings.TrimSpace(cfg.Editor) == "" {
		cfg.Editor = "nvim"
	}
	if strings.TrimSpace(cfg.AI.Model) == "" {
		cfg.AI.Model = "gpt-4o-mini"
	}
	if strings.TrimSpace(cfg.AI.PromptStyle) == "" {
		cfg.AI.PromptStyle = "professional"
	}
	cfg.path = GetConfigPath(home)
}

// Save writes the config back to disk, creating ~/.stash when needed.
func (cfg *Config) Save() error {
	if cfg.path == "" {
		return errors.New("config has no backing file path")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(cfg.path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	viper.Set("notes_dir", cfg.NotesDir)
	viper.Set("editor", cfg.Editor)
	return nil
}

func (cfg *Config) HasAPIKey() bool {
	return strings.TrimSpace(cfg.AI.APIKey) != ""
}

func (cfg *Config) GetAPIKey() (string, error) {
	if !cfg.HasAPIKey() {
		return "", ErrAPIKeyNotSet
	}
	return cfg.AI.APIKey, nil
}

func (cfg *Config) SetAPIKey(key string) error {
	cfg.AI.APIKey = strings.TrimSpace(key)
	cfg.AI.Enabled = cfg.AI.APIKey != ""
	return cfg.Save()
}

func (cfg *Config) ClearAPIKey() error {
	cfg.AI.APIKey = ""
	cfg.AI.Enabled = false
	return cfg.Save()
}

// PromptStyles enumerates the built-in rewrite styles, in menu order.
var PromptStyles = []string{
	"professional",
	"casual",
	"concise",
	"detailed",
	"technical",
	"simple",
	"custom",
}

func ValidatePromptStyle(style string) error {
	for _, valid := range PromptStyles {
		if style == valid {
			return nil
		}
	}
	return fmt.Errorf(
		"invalid prompt style: %q. Please choose from %s.",
		style,
		strings.Join(PromptStyles, ", "),
	)
}

func (cfg *Config) SetPromptStyle(style string) error {
	if err := ValidatePromptStyle(style); err != nil {
		return err
	}
	cfg.AI.PromptStyle = style
	return cfg.Save()
}

func (cfg *Config) SetCustomPrompt(prompt string) error {
	cfg.AI.CustomPrompt = strings.TrimSpace(prompt)
	return cfg.Save()
}

const rewriteBasePrompt = "You are an expert writing assistant. Your task is to clean up and improve notes while preserving their original meaning and structure. Keep the same tone but make the text clearer, fix grammar, improve organization, and ensure proper markdown formatting. Do not add new information or change the core content. Return only the improved text without any additional commentary, introductions, or explanations."

// RewriteSystemPrompt assembles the rewrite instruction for the configured
// prompt style.
func (cfg *Config) RewriteSystemPrompt() string {
	switch cfg.AI.PromptStyle {
	case "professional":
		return rewriteBasePrompt + " Make the writing more professional and polished."
	case "casual":
		return rewriteBasePrompt + " Keep the writing casual and conversational."
	case "concise":
		return rewriteBasePrompt + " Make the writing more concise and to the point."
	case "detailed":
		return rewriteBasePrompt + " Expand on ideas and add more detail where appropriate."
	case "technical":
		return rewriteBasePrompt + " Use more technical language and precise terminology."
	case "simple":
		return rewriteBasePrompt + " Simplify the language and make it easier to understand."
	case "custom":
		if strings.TrimSpace(cfg.AI.CustomPrompt) != "" {
			return rewriteBasePrompt + " " + cfg.AI.CustomPrompt
		}
		return rewriteBasePrompt
	default:
		return rewriteBasePrompt
	}
}
