package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Script   ScriptConfig   `yaml:"script"`
	History  HistoryConfig  `yaml:"history"`
	Images   ImagesConfig   `yaml:"images"`
	Voice    VoiceConfig    `yaml:"voice"`
	Video    VideoConfig    `yaml:"video"`
	Metadata MetadataConfig `yaml:"metadata"`
	Upload   UploadConfig   `yaml:"upload"`
	Paths    PathsConfig    `yaml:"paths"`
}

type ScriptConfig struct {
	Provider    string `yaml:"provider"`
	Model       string `yaml:"model"`
	OllamaURL   string `yaml:"ollama_url"`
	MaxAttempts int    `yaml:"max_attempts"`
}

type HistoryConfig struct {
	File                string  `yaml:"file"`
	MaxEntries          int     `yaml:"max_entries"`
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	AngleWindow         int     `yaml:"angle_window"`
}

type ImagesConfig struct {
	Width   int `yaml:"width"`
	Height  int `yaml:"height"`
	Retries int `yaml:"retries"`
}

type VoiceConfig struct {
	Narrator string `yaml:"narrator"`
	Male     string `yaml:"male"`
	Female   string `yaml:"female"`
	Rate     string `yaml:"rate"`
	Pitch    string `yaml:"pitch"`
}

type VideoConfig struct {
	Width       int     `yaml:"width"`
	Height      int     `yaml:"height"`
	FPS         int     `yaml:"fps"`
	MaxDuration float64 `yaml:"max_duration_sec"`
	Workers     int     `yaml:"workers"`
}

type MetadataConfig struct {
	TitleMaxChars int `yaml:"title_max_chars"`
}

type UploadConfig struct {
	Enabled           bool   `yaml:"enabled"`
	Visibility        string `yaml:"visibility"`
	CategoryID        string `yaml:"category_id"`
	NotifySubscribers bool   `yaml:"notify_subscribers"`
	MadeForKids       bool   `yaml:"made_for_kids"`
	DefaultLanguage   string `yaml:"default_language"`
}

type PathsConfig struct {
	Output string `yaml:"output"`
	Logs   string `yaml:"logs"`
}

// Load reads config.yaml, applies defaults and returns a Config struct
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a Config usable without a config.yaml on disk.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Script.Provider == "" {
		c.Script.Provider = "groq"
	}
	if c.Script.Model == "" {
		c.Script.Model = "llama-3.3-70b-versatile"
	}
	if c.Script.MaxAttempts <= 0 {
		c.Script.MaxAttempts = 3
	}
	if c.History.File == "" {
		c.History.File = "outputs/topic_history.json"
	}
	if c.History.MaxEntries <= 0 {
		c.History.MaxEntries = 90
	}
	if c.History.SimilarityThreshold <= 0 {
		c.History.SimilarityThreshold = 0.6
	}
	if c.History.AngleWindow <= 0 {
		c.History.AngleWindow = 8
	}
	if c.Images.Width <= 0 {
		c.Images.Width = 1080
	}
	if c.Images.Height <= 0 {
		c.Images.Height = 1920
	}
	if c.Images.Retries <= 0 {
		c.Images.Retries = 2
	}
	if c.Voice.Narrator == "" {
		c.Voice.Narrator = "en-US-GuyNeural"
	}
	if c.Voice.Male == "" {
		c.Voice.Male = "en-US-ChristopherNeural"
	}
	if c.Voice.Female == "" {
		c.Voice.Female = "en-US-JennyNeural"
	}
	if c.Voice.Rate == "" {
		c.Voice.Rate = "-5%"
	}
	if c.Voice.Pitch == "" {
		c.Voice.Pitch = "-3Hz"
	}
	if c.Video.Width <= 0 {
		c.Video.Width = 1080
	}
	if c.Video.Height <= 0 {
		c.Video.Height = 1920
	}
	if c.Video.FPS <= 0 {
		c.Video.FPS = 24
	}
	if c.Video.MaxDuration <= 0 {
		c.Video.MaxDuration = 30
	}
	if c.Video.Workers <= 0 {
		c.Video.Workers = 4
	}
	if c.Metadata.TitleMaxChars <= 0 {
		c.Metadata.TitleMaxChars = 100
	}
	if c.Upload.Visibility == "" {
		c.Upload.Visibility = "public"
	}
	if c.Upload.CategoryID == "" {
		c.Upload.CategoryID = "23" // Comedy
	}
	if c.Upload.DefaultLanguage == "" {
		c.Upload.DefaultLanguage = "hi"
	}
	if c.Paths.Output == "" {
		c.Paths.Output = "outputs"
	}
	if c.Paths.Logs == "" {
		c.Paths.Logs = "logs"
	}
}
