// Package config provides configuration types and defaults for vidnorm.
package config

import "errors"

// Sentinel errors for configuration validation.
var (
	// ErrEmptyBinary indicates an external tool path was blanked out.
	ErrEmptyBinary = errors.New("binary path is empty")

	// ErrInvalidSuffix indicates an output suffix that would escape the output directory.
	ErrInvalidSuffix = errors.New("invalid output suffix")

	// ErrNoExtensions indicates discovery would match nothing.
	ErrNoExtensions = errors.New("no input extensions configured")

	// ErrInvalidExtension indicates an extension without its leading dot.
	ErrInvalidExtension = errors.New("invalid input extension")

	// ErrOutputOverwritesInput indicates outputs would replace their own inputs.
	ErrOutputOverwritesInput = errors.New("output directory equals input directory and suffix is empty")
)
