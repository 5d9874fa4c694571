package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultVocabularyHint nudges the transcription engine to keep disfluencies.
const DefaultVocabularyHint = "uh, um, ah, like, you know, well, hmm, uh-huh, okay..."

type Service struct {
	URL string `yaml:"url" mapstructure:"url"`
}
type Services struct {
	ASR            Service `yaml:"asr" mapstructure:"asr"`
	Emotion        Service `yaml:"emotion" mapstructure:"emotion"`
	Summarizer     Service `yaml:"summarizer" mapstructure:"summarizer"`
	TimeoutSeconds int     `yaml:"timeout_seconds" mapstructure:"timeout_seconds" validate:"gte=1"`
}
type Providers struct {
	Transcription string `yaml:"transcription" mapstructure:"transcription" validate:"oneof=http openai"`
	Emotion       string `yaml:"emotion" mapstructure:"emotion" validate:"oneof=http"`
	Summarizer    string `yaml:"summarizer" mapstructure:"summarizer" validate:"oneof=http openai vertex"`
}
type OpenAI struct {
	APIKey             string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL            string `yaml:"base_url" mapstructure:"base_url"`
	TranscriptionModel string `yaml:"transcription_model" mapstructure:"transcription_model"`
	ChatModel          string `yaml:"chat_model" mapstructure:"chat_model"`
}
type Vertex struct {
	Project  string `yaml:"project" mapstructure:"project"`
	Location string `yaml:"location" mapstructure:"location"`
	Model    string `yaml:"model" mapstructure:"model"`
}
type Analysis struct {
	VocabularyHint    string   `yaml:"vocabulary_hint" mapstructure:"vocabulary_hint"`
	Fillers           []string `yaml:"fillers" mapstructure:"fillers"`
	SegmentWorkers    int      `yaml:"segment_workers" mapstructure:"segment_workers" validate:"gte=1"`
	MaxConcurrentJobs int      `yaml:"max_concurrent_jobs" mapstructure:"max_concurrent_jobs" validate:"gte=0"`
}
type Events struct {
	AMQPURL string `yaml:"amqp_url" mapstructure:"amqp_url"`
	Queue   string `yaml:"queue" mapstructure:"queue" validate:"required"`
}
type Server struct {
	Addr        string `yaml:"addr" mapstructure:"addr" validate:"required"`
	MaxUploadMB int    `yaml:"max_upload_mb" mapstructure:"max_upload_mb" validate:"gte=1"`
}
type Root struct {
	Pipeline struct {
		Name      string `yaml:"name" mapstructure:"name"`
		Version   string `yaml:"version" mapstructure:"version"`
		LogLvl    string `yaml:"log_level" mapstructure:"log_level"`
		LogFormat string `yaml:"log_format" mapstructure:"log_format" validate:"oneof=text json"`
	} `yaml:"pipeline" mapstructure:"pipeline"`
	Server    Server    `yaml:"server" mapstructure:"server"`
	Services  Services  `yaml:"services" mapstructure:"services"`
	Providers Providers `yaml:"providers" mapstructure:"providers"`
	OpenAI    OpenAI    `yaml:"openai" mapstructure:"openai"`
	Vertex    Vertex    `yaml:"vertex" mapstructure:"vertex"`
	Analysis  Analysis  `yaml:"analysis" mapstructure:"analysis"`
	Events    Events    `yaml:"events" mapstructure:"events"`
	Paths     struct {
		Outputs string `yaml:"outputs" mapstructure:"outputs" validate:"required"`
	} `yaml:"paths" mapstructure:"paths"`
}

var defaults = map[string]any{
	"pipeline.name":                 "speech-coach",
	"pipeline.version":              "0.1.0",
	"pipeline.log_level":            "info",
	"pipeline.log_format":           "text",
	"server.addr":                   ":8000",
	"server.max_upload_mb":          200,
	"services.asr.url":              "http://localhost:9001",
	"services.emotion.url":          "http://localhost:9002",
	"services.summarizer.url":       "http://localhost:9003",
	"services.timeout_seconds":      120,
	"providers.transcription":       "http",
	"providers.emotion":             "http",
	"providers.summarizer":          "http",
	"openai.api_key":                "",
	"openai.base_url":               "",
	"openai.transcription_model":    "whisper-1",
	"openai.chat_model":             "gpt-4o-mini",
	"vertex.project":                "",
	"vertex.location":               "us-central1",
	"vertex.model":                  "gemini-1.5-flash",
	"analysis.vocabulary_hint":      DefaultVocabularyHint,
	"analysis.fillers":              []string{"uh", "um", "ah", "like", "you know", "well", "hmm"},
	"analysis.segment_workers":      4,
	"analysis.max_concurrent_jobs":  0,
	"events.amqp_url":               "",
	"events.queue":                  "speech_coach_jobs",
	"paths.outputs":                 "data",
}

// Load reads configuration from path, or when path is empty from the first
// of config/$CONFIG_ENV/config.yaml and ./config.yaml that exists. A missing
// file is fine; COACH_* environment variables override file values.
func Load(path string) (*Root, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix("COACH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = guess()
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Root
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func guess() string {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	for _, p := range []string{
		filepath.Join("config", env, "config.yaml"),
		"config.yaml",
	} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Validate checks field constraints and provider prerequisites.
func (c *Root) Validate() error {
	err := validator.New().Struct(c)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msg := fmt.Sprintf("field '%s' failed on the '%s' tag", fe.Namespace(), fe.Tag())
			if fe.Param() != "" {
				msg = fmt.Sprintf("%s (value: %s)", msg, fe.Param())
			}
			msgs = append(msgs, msg)
		}
		return fmt.Errorf("config: %s", strings.Join(msgs, "; "))
	}
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	usesOpenAI := c.Providers.Transcription == "openai" || c.Providers.Summarizer == "openai"
	if usesOpenAI && c.OpenAI.APIKey == "" {
		return errors.New("config: openai.api_key is required by the openai provider")
	}
	if c.Providers.Summarizer == "vertex" && c.Vertex.Project == "" {
		return errors.New("config: vertex.project is required by the vertex provider")
	}
	return nil
}

// YAML renders the configuration. The OpenAI key is masked.
func (c Root) YAML() ([]byte, error) {
	if c.OpenAI.APIKey != "" {
		c.OpenAI.APIKey = "********"
	}
	return yaml.Marshal(c)
}

func DurSeconds(n int) time.Duration { return time.Duration(n) * time.Second }
