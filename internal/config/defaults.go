package config

const (
	defaultVideoDir      = "video"
	defaultAudioDir      = "audio"
	defaultFontPath      = "arial.ttf"
	defaultFontSize      = 48
	defaultSubtitleColor = "white"
	defaultFFmpegBinary  = "ffmpeg"
	defaultFFprobeBinary = "ffprobe"
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Assets: Assets{
			VideoDir: defaultVideoDir,
			AudioDir: defaultAudioDir,
		},
		Subtitles: Subtitles{
			FontPath: defaultFontPath,
			FontSize: defaultFontSize,
			Color:    defaultSubtitleColor,
		},
		Media: Media{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
