package config

const (
	defaultLibraryDir     = "~/.local/share/cutroom/library"
	defaultStagingDir     = "~/.local/share/cutroom/staging"
	defaultOutputDir      = "~/videos/cutroom"
	defaultLogDir         = "~/.local/share/cutroom/logs"
	defaultAPIBind        = "127.0.0.1:7319"
	defaultFFmpegBinary   = "ffmpeg"
	defaultFFprobeBinary  = "ffprobe"
	defaultCanvasWidth    = 1920
	defaultCanvasHeight   = 1080
	defaultFrameRate      = 30.0
	defaultSampleRate     = 48000
	defaultExportCodec    = "h264"
	defaultExportBitrate  = 8_000_000
	defaultPollIntervalMS = 100
	defaultCaptionLang    = "en"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultRetentionDays  = 60
)

func defaultEnabledCodecs() []string {
	return []string{"h264", "h265"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryDir: defaultLibraryDir,
			StagingDir: defaultStagingDir,
			OutputDir:  defaultOutputDir,
			LogDir:     defaultLogDir,
			APIBind:    defaultAPIBind,
		},
		Tools: Tools{
			FFmpeg:  defaultFFmpegBinary,
			FFprobe: defaultFFprobeBinary,
		},
		Project: Project{
			CanvasWidth:  defaultCanvasWidth,
			CanvasHeight: defaultCanvasHeight,
			FrameRate:    defaultFrameRate,
			SampleRate:   defaultSampleRate,
		},
		Export: Export{
			DefaultCodec:         defaultExportCodec,
			EnabledCodecs:        defaultEnabledCodecs(),
			DefaultBitrate:       defaultExportBitrate,
			PollIntervalMS:       defaultPollIntervalMS,
			OptimizeForStreaming: true,
		},
		Captions: Captions{
			DefaultLanguage: defaultCaptionLang,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultRetentionDays,
		},
	}
}
