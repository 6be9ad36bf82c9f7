// Package config holds the application configuration and its JSON file form.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gestellence/gestellence/internal/capture"
	"github.com/gestellence/gestellence/internal/detector"
	"github.com/gestellence/gestellence/internal/pipeline"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid configuration")

// Config holds the application configuration
type Config struct {
	DataDir  string         `json:"data_dir"`
	Camera   CameraConfig   `json:"camera"`
	Detector DetectorConfig `json:"detector"`
	Pipeline PipelineConfig `json:"pipeline"`
	Viewer   ViewerConfig   `json:"viewer"`
	Tray     bool           `json:"tray"`
}

// CameraConfig selects the frame source
type CameraConfig struct {
	Source string `json:"source"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	FPS    int    `json:"fps"`
}

// DetectorConfig holds hand landmark detection settings
type DetectorConfig struct {
	MaxHands               int     `json:"max_hands"`
	MinDetectionConfidence float64 `json:"min_detection_confidence"`
	MinPresenceConfidence  float64 `json:"min_presence_confidence"`
	MinTrackingConfidence  float64 `json:"min_tracking_confidence"`
	ModelPath              string  `json:"model_path"`
	ModelURL               string  `json:"model_url"`
	Script                 string  `json:"script"`
	Python                 string  `json:"python"`
}

// PipelineConfig holds frame processing settings
type PipelineConfig struct {
	FrameIntervalMs int  `json:"frame_interval_ms"`
	Mirror          bool `json:"mirror"`
	DiscardStale    bool `json:"discard_stale"`
}

// ViewerConfig holds HTTP viewer settings
type ViewerConfig struct {
	Addr        string `json:"addr"`
	StaticDir   string `json:"static_dir"`
	JPEGQuality int    `json:"jpeg_quality"`
}

// Default returns a configuration with default values
func Default() *Config {
	det := detector.DefaultConfig()
	return &Config{
		DataDir: defaultDataDir(),
		Camera: CameraConfig{
			Source: "0",
			Width:  capture.DefaultWidth,
			Height: capture.DefaultHeight,
			FPS:    capture.DefaultFPS,
		},
		Detector: DetectorConfig{
			MaxHands:               det.MaxHands,
			MinDetectionConfidence: det.MinDetectionConfidence,
			MinPresenceConfidence:  det.MinPresenceConfidence,
			MinTrackingConfidence:  det.MinTrackingConfidence,
			ModelURL:               detector.DefaultModelURL,
		},
		Pipeline: PipelineConfig{
			FrameIntervalMs: int(pipeline.DefaultFrameInterval / time.Millisecond),
			Mirror:          true,
		},
		Viewer: ViewerConfig{
			Addr:        "127.0.0.1:8080",
			JPEGQuality: 80,
		},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gestellence"
	}
	return filepath.Join(home, ".gestellence")
}

// LoadFromFile loads configuration from a JSON file. Fields missing from the
// file keep their default values.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Camera.FPS <= 0 {
		return fmt.Errorf("%w: camera.fps must be positive", ErrInvalid)
	}
	if c.Camera.Width < 0 || c.Camera.Height < 0 {
		return fmt.Errorf("%w: camera size must not be negative", ErrInvalid)
	}
	if c.Detector.MaxHands < 1 {
		return fmt.Errorf("%w: detector.max_hands must be at least 1", ErrInvalid)
	}

	confidences := []struct {
		name  string
		value float64
	}{
		{"min_detection_confidence", c.Detector.MinDetectionConfidence},
		{"min_presence_confidence", c.Detector.MinPresenceConfidence},
		{"min_tracking_confidence", c.Detector.MinTrackingConfidence},
	}
	for _, conf := range confidences {
		if conf.value < 0 || conf.value > 1 {
			return fmt.Errorf("%w: detector.%s must be between 0 and 1", ErrInvalid, conf.name)
		}
	}

	if c.Pipeline.FrameIntervalMs <= 0 {
		return fmt.Errorf("%w: pipeline.frame_interval_ms must be positive", ErrInvalid)
	}
	if c.Viewer.JPEGQuality < 1 || c.Viewer.JPEGQuality > 100 {
		return fmt.Errorf("%w: viewer.jpeg_quality must be between 1 and 100", ErrInvalid)
	}
	if c.DataDir == "" {
		return fmt.Errorf("%w: data_dir must be set", ErrInvalid)
	}

	return nil
}

// ModelPath returns the hand landmark model location, inside DataDir unless
// set explicitly.
func (c *Config) ModelPath() string {
	if c.Detector.ModelPath != "" {
		return c.Detector.ModelPath
	}
	return filepath.Join(c.DataDir, "models", "hand_landmarker.task")
}

// DBPath returns the database file location.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "gestellence.db")
}

// CaptureOptions converts the camera section for the capture package.
func (c *Config) CaptureOptions() capture.Options {
	return capture.Options{
		Source: c.Camera.Source,
		Width:  c.Camera.Width,
		Height: c.Camera.Height,
		FPS:    c.Camera.FPS,
	}
}

// DetectorOptions converts the detector section for the detector package.
func (c *Config) DetectorOptions() detector.Config {
	return detector.Config{
		MaxHands:               c.Detector.MaxHands,
		MinDetectionConfidence: c.Detector.MinDetectionConfidence,
		MinPresenceConfidence:  c.Detector.MinPresenceConfidence,
		MinTrackingConfidence:  c.Detector.MinTrackingConfidence,
		ModelPath:              c.ModelPath(),
		Script:                 c.Detector.Script,
		Python:                 c.Detector.Python,
	}
}

// PipelineOptions converts the pipeline section for the pipeline package.
func (c *Config) PipelineOptions() pipeline.Config {
	p := pipeline.DefaultConfig()
	p.FrameInterval = time.Duration(c.Pipeline.FrameIntervalMs) * time.Millisecond
	p.Mirror = c.Pipeline.Mirror
	p.DiscardStale = c.Pipeline.DiscardStale
	return p
}
