package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// File mirrors the optional TOML configuration file. Every field is a
// pointer or slice so an absent key leaves the default untouched.
type File struct {
	FFmpegPath     *string  `toml:"ffmpeg_path"`
	FFprobePath    *string  `toml:"ffprobe_path"`
	OutputSuffix   *string  `toml:"output_suffix"`
	LogDir         *string  `toml:"log_dir"`
	Responsive     *bool    `toml:"responsive"`
	VerifyAfterRun *bool    `toml:"verify_after_run"`
	Extensions     []string `toml:"extensions"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/vidnorm/config.toml")
}

// LoadFile reads a TOML configuration file. An empty path means the default
// location. A missing file is not an error: the returned bool reports
// whether a file was read.
func LoadFile(path string) (*File, string, bool, error) {
	resolved := path
	if resolved == "" {
		p, err := DefaultConfigPath()
		if err != nil {
			return nil, "", false, err
		}
		resolved = p
	} else {
		p, err := expandPath(resolved)
		if err != nil {
			return nil, "", false, err
		}
		resolved = p
	}

	f, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &File{}, resolved, false, nil
		}
		return nil, "", false, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	var file File
	decoder := toml.NewDecoder(f)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&file); err != nil {
		return nil, "", false, fmt.Errorf("parse config %s: %w", resolved, err)
	}
	return &file, resolved, true, nil
}

// Apply copies every value set in the file onto cfg.
func (f *File) Apply(cfg *Config) error {
	if f == nil {
		return nil
	}
	if f.FFmpegPath != nil {
		cfg.FFmpegPath = strings.TrimSpace(*f.FFmpegPath)
	}
	if f.FFprobePath != nil {
		cfg.FFprobePath = strings.TrimSpace(*f.FFprobePath)
	}
	if f.OutputSuffix != nil {
		cfg.OutputSuffix = *f.OutputSuffix
	}
	if f.LogDir != nil {
		dir, err := expandPath(*f.LogDir)
		if err != nil {
			return err
		}
		cfg.LogDir = dir
	}
	if f.Responsive != nil {
		cfg.ResponsiveEncoding = *f.Responsive
	}
	if f.VerifyAfterRun != nil {
		cfg.VerifyAfterRun = *f.VerifyAfterRun
	}
	if len(f.Extensions) > 0 {
		exts := make([]string, 0, len(f.Extensions))
		for _, ext := range f.Extensions {
			ext = strings.ToLower(strings.TrimSpace(ext))
			if ext != "" && !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			exts = append(exts, ext)
		}
		cfg.Extensions = exts
	}
	return nil
}

func expandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Abs(path)
}
