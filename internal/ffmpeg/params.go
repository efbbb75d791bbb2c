// Package ffmpeg translates filter chains into ffmpeg invocations and runs them.
package ffmpeg

import (
	"strconv"

	"github.com/eucVeteran/video-normalization-pipeline/internal/config"
	"github.com/eucVeteran/video-normalization-pipeline/internal/filterchain"
)

// TransformParams is everything needed to normalize one file.
type TransformParams struct {
	InputPath  string
	OutputPath string
	Chain      filterchain.FilterChain
	Profile    config.TargetProfile

	// DurationSecs is only used to turn elapsed time into a percentage.
	DurationSecs float64
}

// BuildCommand returns the ffmpeg argument list (without the binary).
// The first video stream is mapped with every audio stream, which is copied.
func BuildCommand(params TransformParams) []string {
	p := params.Profile

	args := []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", params.InputPath,
		"-map", "0:v:0",
		"-map", "0:a?",
	}

	if graph := RenderFilterGraph(params.Chain); graph != "" {
		args = append(args, "-vf", graph)
	}

	args = append(args,
		"-c:v", p.VideoCodec,
		"-profile:v", p.Profile,
		"-preset", p.Preset,
		"-crf", strconv.Itoa(int(p.CRF)),
		"-pix_fmt", p.PixelFormat,
		"-color_primaries", p.ColorPrimaries,
		"-color_trc", p.ColorTransfer,
		"-colorspace", p.ColorSpace,
		"-color_range", p.ColorRange,
		"-c:a", p.AudioCodec,
		params.OutputPath,
	)

	return args
}
