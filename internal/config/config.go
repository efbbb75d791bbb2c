// Package config provides configuration types and defaults for vidnorm.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Default constants
const (
	// DefaultFFmpegPath is the transformation engine binary.
	DefaultFFmpegPath = "ffmpeg"

	// DefaultFFprobePath is the media inspection binary.
	DefaultFFprobePath = "ffprobe"

	// DefaultOutputSuffix is appended to the input stem to name each output.
	DefaultOutputSuffix = "_normalized"

	// LockFileName is the advisory lock created inside the output directory.
	LockFileName = ".vidnorm.lock"
)

// DefaultExtensions lists the input container extensions picked up by discovery.
var DefaultExtensions = []string{".mp4", ".mov", ".mkv", ".avi", ".m4v"}

// TargetProfile is the technical envelope every output must meet,
// independent of the input's dynamic range.
type TargetProfile struct {
	PixelFormat    string
	ColorSpace     string
	ColorTransfer  string
	ColorPrimaries string
	ColorRange     string

	// VideoCodec is the ffmpeg encoder; CodecName is what ffprobe reports for
	// it and is checked on every verified output.
	VideoCodec string
	CodecName  string
	Profile    string
	Preset     string
	CRF        uint8

	AudioCodec string
}

// DefaultTargetProfile returns the Rec.709 SDR H.264 High profile target.
func DefaultTargetProfile() TargetProfile {
	return TargetProfile{
		PixelFormat:    "yuv420p",
		ColorSpace:     "bt709",
		ColorTransfer:  "bt709",
		ColorPrimaries: "bt709",
		ColorRange:     "tv",
		VideoCodec:     "libx264",
		CodecName:      "h264",
		Profile:        "high",
		Preset:         "slow",
		CRF:            23,
		AudioCodec:     "copy",
	}
}

// String summarises the profile for display.
func (p TargetProfile) String() string {
	return fmt.Sprintf("%s %s, CRF %d, %s, %s/%s/%s",
		p.CodecName, p.Profile, p.CRF, p.PixelFormat, p.ColorSpace, p.ColorTransfer, p.ColorPrimaries)
}

// Config holds all configuration for a normalization run.
type Config struct {
	// Input/output paths
	InputDir  string
	OutputDir string
	LogDir    string

	// External tools
	FFmpegPath  string
	FFprobePath string

	// Output naming and discovery
	OutputSuffix string
	Extensions   []string

	// Processing options
	ResponsiveEncoding bool // Run ffmpeg at the lowest scheduling priority
	VerifyAfterRun     bool // Run the conformance check once the batch finishes
}

// NewConfig creates a new Config with default values.
func NewConfig(inputDir, outputDir, logDir string) *Config {
	return &Config{
		InputDir:     inputDir,
		OutputDir:    outputDir,
		LogDir:       logDir,
		FFmpegPath:   DefaultFFmpegPath,
		FFprobePath:  DefaultFFprobePath,
		OutputSuffix: DefaultOutputSuffix,
		Extensions:   append([]string(nil), DefaultExtensions...),
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.FFmpegPath) == "" {
		return fmt.Errorf("%w: ffmpeg", ErrEmptyBinary)
	}
	if strings.TrimSpace(c.FFprobePath) == "" {
		return fmt.Errorf("%w: ffprobe", ErrEmptyBinary)
	}

	if strings.ContainsAny(c.OutputSuffix, `/\`) {
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidSuffix, c.OutputSuffix)
	}

	if len(c.Extensions) == 0 {
		return ErrNoExtensions
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("%w: %q", ErrInvalidExtension, ext)
		}
	}

	if c.InputDir != "" && c.OutputDir != "" && c.OutputSuffix == "" {
		in, _ := filepath.Abs(c.InputDir)
		out, _ := filepath.Abs(c.OutputDir)
		if in == out {
			return ErrOutputOverwritesInput
		}
	}

	return nil
}

// ExtensionSet returns the configured extensions as a lowercase lookup set.
func (c *Config) ExtensionSet() map[string]bool {
	set := make(map[string]bool, len(c.Extensions))
	for _, ext := range c.Extensions {
		set[strings.ToLower(ext)] = true
	}
	return set
}
