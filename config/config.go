package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const EnvPrefix = "ACTAS"

type Service struct {
	URL string `yaml:"url" mapstructure:"url" validate:"omitempty,url"`
}
type Services struct {
	ASR Service `yaml:"asr" mapstructure:"asr"`
	NLP Service `yaml:"nlp" mapstructure:"nlp"`
}
type Transcription struct {
	Backend       string        `yaml:"backend" mapstructure:"backend" validate:"oneof=http whisperx file"`
	Language      string        `yaml:"language" mapstructure:"language" validate:"required"`
	Model         string        `yaml:"model" mapstructure:"model"`
	FallbackModel string        `yaml:"fallback_model" mapstructure:"fallback_model"`
	Device        string        `yaml:"device" mapstructure:"device" validate:"oneof=cpu cuda"`
	ComputeType   string        `yaml:"compute_type" mapstructure:"compute_type" validate:"oneof=float16 float32 int8 int8_float16 int8_float32"`
	BatchSize     int           `yaml:"batch_size" mapstructure:"batch_size" validate:"min=1"`
	WhisperXBin   string        `yaml:"whisperx_bin" mapstructure:"whisperx_bin"`
	HFToken       string        `yaml:"hf_token" mapstructure:"hf_token"`
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
}
type Storage struct {
	Backend    string `yaml:"backend" mapstructure:"backend" validate:"oneof=json sqlite memory"`
	Dir        string `yaml:"dir" mapstructure:"dir"`
	SQLitePath string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}
type Suggest struct {
	WindowWords int `yaml:"window_words" mapstructure:"window_words" validate:"min=1"`
}
type Media struct {
	FFmpegBin  string `yaml:"ffmpeg_bin" mapstructure:"ffmpeg_bin"`
	FFprobeBin string `yaml:"ffprobe_bin" mapstructure:"ffprobe_bin"`
	Parts      int    `yaml:"parts" mapstructure:"parts" validate:"min=1"`
	// Dir receives the clean copy and the parts; empty means next to the audio.
	Dir string `yaml:"dir" mapstructure:"dir"`
}
type Root struct {
	Pipeline struct {
		Name      string `yaml:"name" mapstructure:"name"`
		LogLvl    string `yaml:"log_level" mapstructure:"log_level" validate:"oneof=trace debug info warn warning error"`
		LogFormat string `yaml:"log_format" mapstructure:"log_format" validate:"oneof=text json"`
	} `yaml:"pipeline" mapstructure:"pipeline"`
	Transcription Transcription `yaml:"transcription" mapstructure:"transcription"`
	Services      Services      `yaml:"services" mapstructure:"services"`
	Storage       Storage       `yaml:"storage" mapstructure:"storage"`
	Suggest       Suggest       `yaml:"suggest" mapstructure:"suggest"`
	Media         Media         `yaml:"media" mapstructure:"media"`
	Paths         struct {
		// Outputs holds transcripts; empty means next to the audio.
		Outputs string `yaml:"outputs" mapstructure:"outputs"`
	} `yaml:"paths" mapstructure:"paths"`
}

var defaults = map[string]any{
	"pipeline.name":                "actas",
	"pipeline.log_level":           "info",
	"pipeline.log_format":          "text",
	"transcription.backend":        "http",
	"transcription.language":       "es",
	"transcription.model":          "large-v2",
	"transcription.fallback_model": "medium",
	"transcription.device":         "cpu",
	"transcription.compute_type":   "float16",
	"transcription.batch_size":     16,
	"transcription.whisperx_bin":   "whisperx",
	"transcription.hf_token":       "",
	"transcription.timeout":        "30m",
	"services.asr.url":             "http://localhost:8001",
	"services.nlp.url":             "",
	"storage.backend":              "json",
	"storage.dir":                  ".",
	"storage.sqlite_path":          "actas.db",
	"suggest.window_words":         40,
	"media.ffmpeg_bin":             "ffmpeg",
	"media.ffprobe_bin":            "ffprobe",
	"media.parts":                  3,
	"media.dir":                    "audio_procesado",
	"paths.outputs":                "",
}

// FlagKeys maps command line flags to the config keys they override.
var FlagKeys = map[string]string{
	"log-level":       "pipeline.log_level",
	"storage-backend": "storage.backend",
	"storage-dir":     "storage.dir",
}

// Load builds the configuration from defaults, the YAML file, the
// environment (with .env files) and finally any changed flags. An explicit
// file must exist; otherwise the usual locations are tried and defaults are
// enough when none is found.
func Load(file string, flags *pflag.FlagSet) (*Root, error) {
	loadDotEnv()

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("transcription.hf_token", EnvPrefix+"_TRANSCRIPTION_HF_TOKEN", "HF_TOKEN"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("pipeline.log_level", EnvPrefix+"_PIPELINE_LOG_LEVEL", "LOG_LEVEL"); err != nil {
		return nil, err
	}

	path, err := resolveFile(file)
	if err != nil {
		return nil, err
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	if flags != nil {
		for name, key := range FlagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	var cfg Root
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadDotEnv() {
	for _, p := range []string{".env", filepath.Join("config", ".env")} {
		if _, err := os.Stat(p); err == nil {
			// existing variables win over the file
			_ = godotenv.Load(p)
		}
	}
}

func resolveFile(file string) (string, error) {
	if file != "" {
		if _, err := os.Stat(file); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return file, nil
	}

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	var guess []string = []string{
		filepath.Join("config", env, "config.yaml"),
		"config.yaml",
	}
	for _, p := range guess {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" || name == "" {
			return strings.ToLower(fld.Name)
		}
		return name
	})
	return v
}

// Validate checks field values and the cross-field rules.
func (r *Root) Validate() error {
	if err := validate.Struct(r); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("config: %w", err)
		}
		msgs := make([]string, 0, len(fieldErrs))
		for _, e := range fieldErrs {
			msgs = append(msgs, fieldName(e)+" "+describe(e))
		}
		return fmt.Errorf("config: %s", strings.Join(msgs, "; "))
	}
	if r.Transcription.Backend == "http" && r.Services.ASR.URL == "" {
		return fmt.Errorf("config: services.asr.url is required for the http backend")
	}
	return nil
}

func fieldName(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	return ns
}

func describe(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + e.Param()
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + e.Param()
	default:
		return "is invalid"
	}
}

// YAML renders the effective configuration with secrets masked.
func (r *Root) YAML() ([]byte, error) {
	shown := *r
	if shown.Transcription.HFToken != "" {
		shown.Transcription.HFToken = "****"
	}
	return yaml.Marshal(&shown)
}
