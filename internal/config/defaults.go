package config

const (
	defaultDataDir    = "~/.local/share/genarrative"
	defaultLibraryDir = "~/genarrative/library"
	defaultLogDir     = "~/.local/share/genarrative/logs"

	defaultOllamaBaseURL = "http://localhost:11434"
	defaultOllamaModel   = "llama3.2-vision:latest"
	defaultOllamaTimeout = 300

	defaultTextBaseURL   = "http://localhost:11434/v1"
	defaultTextModel     = "gemma3:4b-it-qat"
	defaultTextTimeout   = 300
	defaultTextWordCount = 50

	defaultImageBaseURL = "http://localhost:7860"
	defaultImageTimeout = 300
	defaultImageWidth   = 1024
	defaultImageHeight  = 768
	defaultImageSteps   = 20

	defaultMusicBaseURL  = "http://localhost:5003"
	defaultMusicTimeout  = 300
	defaultMusicDuration = 30

	defaultSpeechBaseURL = "http://localhost:5002"
	defaultSpeechTimeout = 120

	defaultMaxConcurrentGenerations = 4
	defaultRetryAttempts            = 0
	defaultRetryBaseDelaySeconds    = 1

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:    defaultDataDir,
			LibraryDir: defaultLibraryDir,
			LogDir:     defaultLogDir,
		},
		Backends: Backends{
			Ollama: Ollama{
				BaseURL:        defaultOllamaBaseURL,
				Model:          defaultOllamaModel,
				TimeoutSeconds: defaultOllamaTimeout,
			},
			Text: TextGen{
				BaseURL:        defaultTextBaseURL,
				Model:          defaultTextModel,
				TimeoutSeconds: defaultTextTimeout,
				WordCount:      defaultTextWordCount,
			},
			Image: Diffusion{
				BaseURL:        defaultImageBaseURL,
				TimeoutSeconds: defaultImageTimeout,
				Width:          defaultImageWidth,
				Height:         defaultImageHeight,
				Steps:          defaultImageSteps,
			},
			Music: MusicGen{
				BaseURL:         defaultMusicBaseURL,
				TimeoutSeconds:  defaultMusicTimeout,
				DurationSeconds: defaultMusicDuration,
			},
			Speech: Speech{
				BaseURL:        defaultSpeechBaseURL,
				TimeoutSeconds: defaultSpeechTimeout,
			},
		},
		Workflow: Workflow{
			MaxConcurrentGenerations: defaultMaxConcurrentGenerations,
			RetryAttempts:            defaultRetryAttempts,
			RetryBaseDelaySeconds:    defaultRetryBaseDelaySeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
