package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable. Provider credentials are
// deliberately not checked here: they are only required once a backend that
// needs them is selected, so the Require* helpers below are called lazily.
func (c *Config) Validate() error {
	if err := c.validateSubtitles(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSubtitles() error {
	if c.Subtitles.FontSize <= 0 {
		return errors.New("subtitles.font_size must be positive")
	}
	switch c.Subtitles.Color {
	case "white", "black", "yellow":
		return nil
	default:
		return fmt.Errorf("subtitles.color %q is not supported (use white, black, or yellow)", c.Subtitles.Color)
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q is not supported (use console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not supported (use debug, info, warn, or error)", c.Logging.Level)
	}
	return nil
}

func (c *Config) requireCredential(value, key, env string) error {
	if strings.TrimSpace(value) != "" {
		return nil
	}
	path, err := DefaultConfigPath()
	if err != nil {
		path = "~/.config/shortreel/config.toml"
	}
	return fmt.Errorf("providers.%s is required: set %s in the environment (or .env) or edit %s", key, env, path)
}

// RequireDeepSeek checks the DeepSeek credential.
func (c *Config) RequireDeepSeek() error {
	return c.requireCredential(c.Providers.DeepSeekAPIKey, "deepseek_api_key", "DEEPSEEK_API_KEY")
}

// RequireReplicate checks the Replicate credential.
func (c *Config) RequireReplicate() error {
	return c.requireCredential(c.Providers.ReplicateAPIToken, "replicate_api_token", "REPLICATE_API_TOKEN")
}

// RequireGemini checks the Gemini credential.
func (c *Config) RequireGemini() error {
	return c.requireCredential(c.Providers.GeminiAPIKey, "gemini_api_key", "GEMINI_API_KEY")
}

// RequireElevenLabs checks the ElevenLabs credential.
func (c *Config) RequireElevenLabs() error {
	return c.requireCredential(c.Providers.ElevenLabsAPIKey, "elevenlabs_api_key", "ELEVENLABS_API_KEY")
}

// RequireTixte checks the file-hosting credential pair.
func (c *Config) RequireTixte() error {
	if err := c.requireCredential(c.Providers.TixteAPIKey, "tixte_api_key", "TIXTE_API_KEY"); err != nil {
		return err
	}
	return c.requireCredential(c.Providers.TixteDomain, "tixte_domain", "TIXTE_DOMAIN")
}
