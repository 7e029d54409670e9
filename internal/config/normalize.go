package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeProviders()
	if err := c.normalizeAssets(); err != nil {
		return err
	}
	if err := c.normalizeSubtitles(); err != nil {
		return err
	}
	if err := c.normalizeMedia(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeProviders() {
	fromEnv := func(value *string, key string) {
		*value = strings.TrimSpace(*value)
		if *value == "" {
			if env, ok := os.LookupEnv(key); ok {
				*value = strings.TrimSpace(env)
			}
		}
	}
	fromEnv(&c.Providers.DeepSeekAPIKey, "DEEPSEEK_API_KEY")
	fromEnv(&c.Providers.ReplicateAPIToken, "REPLICATE_API_TOKEN")
	fromEnv(&c.Providers.GeminiAPIKey, "GEMINI_API_KEY")
	fromEnv(&c.Providers.ElevenLabsAPIKey, "ELEVENLABS_API_KEY")
	fromEnv(&c.Providers.TixteAPIKey, "TIXTE_API_KEY")
	fromEnv(&c.Providers.TixteDomain, "TIXTE_DOMAIN")
}

func (c *Config) normalizeAssets() error {
	var err error
	if strings.TrimSpace(c.Assets.VideoDir) == "" {
		c.Assets.VideoDir = defaultVideoDir
	}
	if c.Assets.VideoDir, err = expandPath(c.Assets.VideoDir); err != nil {
		return fmt.Errorf("assets.video_dir: %w", err)
	}
	if strings.TrimSpace(c.Assets.AudioDir) == "" {
		c.Assets.AudioDir = defaultAudioDir
	}
	if c.Assets.AudioDir, err = expandPath(c.Assets.AudioDir); err != nil {
		return fmt.Errorf("assets.audio_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSubtitles() error {
	var err error
	if strings.TrimSpace(c.Subtitles.FontPath) == "" {
		c.Subtitles.FontPath = defaultFontPath
	}
	if c.Subtitles.FontPath, err = expandPath(c.Subtitles.FontPath); err != nil {
		return fmt.Errorf("subtitles.font_path: %w", err)
	}
	if c.Subtitles.FontSize <= 0 {
		c.Subtitles.FontSize = defaultFontSize
	}
	c.Subtitles.Color = strings.ToLower(strings.TrimSpace(c.Subtitles.Color))
	if c.Subtitles.Color == "" {
		c.Subtitles.Color = defaultSubtitleColor
	}
	return nil
}

func (c *Config) normalizeMedia() error {
	c.Media.FFmpegBinary = strings.TrimSpace(c.Media.FFmpegBinary)
	if c.Media.FFmpegBinary == "" {
		c.Media.FFmpegBinary = defaultFFmpegBinary
	}
	c.Media.FFprobeBinary = strings.TrimSpace(c.Media.FFprobeBinary)
	if c.Media.FFprobeBinary == "" {
		c.Media.FFprobeBinary = defaultFFprobeBinary
	}
	c.Media.WorkDir = strings.TrimSpace(c.Media.WorkDir)
	if c.Media.WorkDir == "" {
		c.Media.WorkDir = os.TempDir()
	}
	var err error
	if c.Media.WorkDir, err = expandPath(c.Media.WorkDir); err != nil {
		return fmt.Errorf("media.work_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
