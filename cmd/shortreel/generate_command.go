package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"shortreel/internal/language"
	"shortreel/internal/media"
	"shortreel/internal/pipeline"
	"shortreel/internal/services/deepseek"
	"shortreel/internal/services/elevenlabs"
	"shortreel/internal/services/gemini"
	"shortreel/internal/services/gtts"
	"shortreel/internal/services/replicate"
	"shortreel/internal/services/tixte"
	"shortreel/internal/speech"
	"shortreel/internal/subtitles"
	"shortreel/internal/summarize"
	"shortreel/internal/transcribe"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var (
		inputPath     string
		outputPath    string
		videoPath     string
		audioPath     string
		noSubtitles   bool
		noSummary     bool
		model         string
		voiceProvider string
		voiceID       string
		volume        float64
		lang          string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a narrated short from a text or PDF file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			if _, ok := language.Lookup(lang); !ok {
				return fmt.Errorf("unsupported language %q (supported: %s)", lang, strings.Join(language.Codes(), ", "))
			}
			if volume < 0 {
				return fmt.Errorf("volume must not be negative")
			}

			if !noSummary {
				switch model {
				case summarize.ModelDeepSeek:
					err = cfg.RequireDeepSeek()
				case summarize.ModelLlama:
					err = cfg.RequireReplicate()
				case summarize.ModelGemini:
					err = cfg.RequireGemini()
				default:
					err = fmt.Errorf("unsupported model %q (supported: %s)", model, strings.Join(summarize.Models(), ", "))
				}
				if err != nil {
					return err
				}
			}
			switch voiceProvider {
			case speech.ProviderGoogle:
			case speech.ProviderElevenLabs:
				if err := cfg.RequireElevenLabs(); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unsupported voice provider %q (supported: %s)", voiceProvider, strings.Join(speech.Providers(), ", "))
			}
			if !noSubtitles {
				if err := cfg.RequireReplicate(); err != nil {
					return err
				}
				if err := cfg.RequireTixte(); err != nil {
					return err
				}
			}

			var replicateClient *replicate.Client
			if cfg.Providers.ReplicateAPIToken != "" {
				replicateClient = replicate.NewClient(cfg.Providers.ReplicateAPIToken)
			}
			var deepseekChat summarize.Chatter
			if cfg.Providers.DeepSeekAPIKey != "" {
				deepseekChat = deepseek.NewClient(cfg.Providers.DeepSeekAPIKey)
			}
			var geminiChat summarize.Chatter
			if cfg.Providers.GeminiAPIKey != "" {
				geminiChat = gemini.NewClient(cfg.Providers.GeminiAPIKey)
			}
			var llamaRunner summarize.PromptRunner
			if replicateClient != nil {
				llamaRunner = replicateClient
			}

			var premiumVoice speech.VoiceSynthesizer
			if cfg.Providers.ElevenLabsAPIKey != "" {
				premiumVoice = elevenlabs.NewClient(cfg.Providers.ElevenLabsAPIKey)
			}

			var transcriber pipeline.Transcriber
			var captions pipeline.CaptionRenderer
			if !noSubtitles {
				uploader := tixte.NewClient(cfg.Providers.TixteAPIKey, cfg.Providers.TixteDomain)
				transcriber = transcribe.New(uploader, replicateClient, logger)
				captions, err = subtitles.NewRenderer(subtitles.Style{
					FontPath: cfg.Subtitles.FontPath,
					FontSize: float64(cfg.Subtitles.FontSize),
					Color:    cfg.Subtitles.Color,
				})
				if err != nil {
					return err
				}
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			p := pipeline.New(cfg, logger, pipeline.Components{
				Summarizer:  summarize.New(deepseekChat, geminiChat, llamaRunner),
				Synthesizer: speech.New(gtts.NewClient(), premiumVoice),
				Transcriber: transcriber,
				Captions:    captions,
				Media:       media.NewService(cfg.Media.FFmpegBinary, cfg.Media.FFprobeBinary, logger),
			})
			return p.Run(runCtx, pipeline.Request{
				InputPath:     inputPath,
				OutputPath:    outputPath,
				VideoPath:     videoPath,
				AudioPath:     audioPath,
				Subtitles:     !noSubtitles,
				Summarize:     !noSummary,
				Model:         model,
				VoiceProvider: voiceProvider,
				VoiceID:       voiceID,
				Volume:        volume,
				Language:      lang,
			})
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "Text or PDF file to narrate")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination for the finished short")
	cmd.Flags().StringVar(&videoPath, "video", "", "Background video (random pick from the video pool when omitted)")
	cmd.Flags().StringVar(&audioPath, "audio", "", "Background music (random pick from the audio pool when omitted)")
	cmd.Flags().BoolVar(&noSubtitles, "no-sub", false, "Skip word-level subtitles")
	cmd.Flags().BoolVar(&noSummary, "no-summary", false, "Narrate the input text as-is without summarizing")
	cmd.Flags().StringVar(&model, "model", summarize.DefaultModel, "Summarization model")
	cmd.Flags().StringVar(&voiceProvider, "voice-provider", speech.DefaultProvider, "Text-to-speech provider")
	cmd.Flags().StringVar(&voiceID, "voice", "", "ElevenLabs voice ID (language default when omitted)")
	cmd.Flags().Float64Var(&volume, "volume", 0.3, "Background music gain")
	cmd.Flags().StringVar(&lang, "lang", "en", "Narration language")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}
