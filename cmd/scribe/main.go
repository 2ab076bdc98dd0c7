// Command scribe transcribes audio/video files or YouTube URLs into
// speaker-attributed text transcripts using a remote speech-to-text
// service.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/voxkit/scribe/internal/config"
	"github.com/voxkit/scribe/internal/logging"
	"github.com/voxkit/scribe/internal/media"
	"github.com/voxkit/scribe/internal/pipeline"
	"github.com/voxkit/scribe/internal/stt"
	"github.com/voxkit/scribe/internal/watcher"
	"github.com/voxkit/scribe/internal/youtube"
)

// Version is set at build time via -ldflags "-X main.Version=...".
var Version = "dev"

type transcribeFlags struct {
	output         string
	diarize        bool
	tagAudioEvents bool
	numSpeakers    int
	language       string
	outputFormat   string
	segmentMin     int
}

func (f *transcribeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Output transcript path (default: generated name in the output dir)")
	cmd.Flags().BoolVar(&f.diarize, "diarize", true, "Ask the service to attribute speakers")
	cmd.Flags().BoolVar(&f.tagAudioEvents, "tag-audio-events", true, "Ask the service to tag non-speech audio events")
	cmd.Flags().IntVar(&f.numSpeakers, "num-speakers", 0, "Expected speaker count hint (0 = let the service decide)")
	cmd.Flags().StringVar(&f.language, "language", "", "Language hint, e.g. \"en\" (default: auto-detect)")
	cmd.Flags().StringVar(&f.outputFormat, "output-format", "json", "Response format requested from the service")
	cmd.Flags().IntVar(&f.segmentMin, "segment-length", 0, "Segment length in minutes (default from config)")
}

func (f *transcribeFlags) request(input string, cfg *config.Config) pipeline.Request {
	return pipeline.Request{
		Input:          input,
		OutputPath:     f.output,
		OutputDir:      cfg.OutputDir,
		Diarize:        f.diarize,
		TagAudioEvents: f.tagAudioEvents,
		NumSpeakers:    f.numSpeakers,
		OutputFormat:   f.outputFormat,
		LanguageHint:   f.language,
	}
}

func main() {
	var (
		cfg *config.Config
		log zerolog.Logger
	)

	root := &cobra.Command{
		Use:           "scribe",
		Short:         "Transcribe audio, video or YouTube URLs with speaker attribution",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return err
			}
			log = logging.New(cfg.LogLevel, cfg.LogFormat)
			return nil
		},
	}

	var tf transcribeFlags
	transcribeCmd := &cobra.Command{
		Use:   "transcribe <file-or-url>",
		Short: "Transcribe a local media file or a YouTube URL",
		Example: `  scribe transcribe recording.mp3
  scribe transcribe "https://www.youtube.com/watch?v=abc123" -o talk.txt`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			requireAPIKey(cfg, log)
			p := buildPipeline(cfg, &tf, log)
			os.Exit(p.Run(cmd.Context(), tf.request(args[0], cfg)))
		},
	}
	tf.register(transcribeCmd)

	var wf transcribeFlags
	watchCmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Watch a directory and transcribe recordings as they appear",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			requireAPIKey(cfg, log)
			p := buildPipeline(cfg, &wf, log)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w := watcher.New(args[0], 0, func(path string) {
				req := wf.request(path, cfg)
				req.OutputPath = "" // each recording gets its own generated name

				// Failures are logged and the watch continues; one bad
				// recording must not stop the others.
				if code := p.Run(ctx, req); code != pipeline.ExitOK {
					log.Error().Str("file", path).Msg("transcription failed")
				}
			}, log)

			if err := w.Watch(ctx); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("watcher stopped")
				os.Exit(pipeline.ExitFailure)
			}
		},
	}
	wf.register(watchCmd)

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the scribe version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(Version)
		},
	}

	root.AddCommand(transcribeCmd, watchCmd, versionCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(pipeline.ExitFailure)
	}
}

func requireAPIKey(cfg *config.Config, log zerolog.Logger) {
	if cfg.APIKey == "" {
		log.Fatal().Msg("no API key configured; set ELEVENLABS_API_KEY or SCRIBE_API_KEY")
	}
}

func buildPipeline(cfg *config.Config, tf *transcribeFlags, log zerolog.Logger) *pipeline.Pipeline {
	segmentLengthMs := cfg.SegmentLengthMs()
	if tf.segmentMin > 0 {
		segmentLengthMs = int64(tf.segmentMin) * 60 * 1000
	}

	service := stt.NewClient(stt.ClientConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		ModelID: cfg.ModelID,
	}, log)
	prober := media.NewProber(nil)
	segmenter := media.NewSegmenter(nil, segmentLengthMs, "", log)
	downloader := youtube.NewDownloader(nil, "", log)

	return pipeline.New(service, prober, segmenter, downloader, log)
}
