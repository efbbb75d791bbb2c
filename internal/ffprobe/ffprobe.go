// Package ffprobe extracts first-video-stream colour metadata using ffprobe.
//
// Only stream v:0 is inspected. When a container places an auxiliary or
// preview track at that index the metadata describes that track instead of
// the main picture; this is a known approximation.
package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"strconv"
	"strings"

	"github.com/eucVeteran/video-normalization-pipeline/internal/errors"
	"github.com/eucVeteran/video-normalization-pipeline/internal/logging"
)

// StreamMetadata is the colour signalling of a file's first video stream,
// reported verbatim. Empty strings mean ffprobe reported nothing.
type StreamMetadata struct {
	StreamIndex            int
	CodecName              string
	PixelFormat            string
	ColorSpace             string
	TransferCharacteristic string
	ColorPrimaries         string
	ColorRange             string
	DurationSecs           float64
}

// ffprobeOutput represents the JSON output from ffprobe.
type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
}

type ffprobeStream struct {
	Index          int    `json:"index"`
	CodecType      string `json:"codec_type"`
	CodecName      string `json:"codec_name"`
	PixFmt         string `json:"pix_fmt"`
	ColorSpace     string `json:"color_space"`
	ColorTransfer  string `json:"color_transfer"`
	ColorPrimaries string `json:"color_primaries"`
	ColorRange     string `json:"color_range"`
}

// streamEntries is the -show_entries selector: the stream fields the
// classifier and verifier need plus the container duration for progress.
const streamEntries = "stream=index,codec_type,codec_name,pix_fmt,color_space,color_transfer,color_primaries,color_range:format=duration"

// Prober runs ffprobe.
type Prober struct {
	binary string
}

// New returns a Prober using the given ffprobe binary (empty means "ffprobe").
func New(binary string) *Prober {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	return &Prober{binary: binary}
}

// Args returns the ffprobe argument list used to inspect path.
func Args(path string) []string {
	return []string{
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", streamEntries,
		"-of", "json",
		"--", path,
	}
}

// ProbeVideoStream inspects the first video stream of path. It fails with a
// KindNoVideoStream error when the file has no video stream at all.
func (p *Prober) ProbeVideoStream(ctx context.Context, path string) (StreamMetadata, error) {
	cmd := exec.CommandContext(ctx, p.binary, Args(path)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return StreamMetadata{}, errors.NewCancelledError(ctx.Err())
		}
		return StreamMetadata{}, errors.NewProbeError(path,
			errors.WrapExecError(p.binary, err, strings.TrimSpace(stderr.String())))
	}

	probe, err := parseFFprobeOutput(output)
	if err != nil {
		return StreamMetadata{}, errors.NewProbeError(path, err)
	}

	meta, err := extractStreamMetadata(probe, path)
	if err != nil {
		return StreamMetadata{}, err
	}

	logging.Debug("probed video stream",
		"path", path,
		"codec", meta.CodecName,
		"pix_fmt", meta.PixelFormat,
		"color_transfer", meta.TransferCharacteristic,
		"color_space", meta.ColorSpace,
		"color_primaries", meta.ColorPrimaries)

	return meta, nil
}

// parseFFprobeOutput decodes the raw ffprobe JSON payload.
func parseFFprobeOutput(data []byte) (*ffprobeOutput, error) {
	var result ffprobeOutput
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, errors.NewJSONParseError("failed to parse ffprobe output", err)
	}
	return &result, nil
}

// extractStreamMetadata picks the selected video stream out of a parsed response.
func extractStreamMetadata(probe *ffprobeOutput, path string) (StreamMetadata, error) {
	var video *ffprobeStream
	for i := range probe.Streams {
		// -select_streams v:0 already filters; codec_type is checked in case
		// a different selector was used to produce the payload.
		if probe.Streams[i].CodecType == "" || probe.Streams[i].CodecType == "video" {
			video = &probe.Streams[i]
			break
		}
	}
	if video == nil {
		return StreamMetadata{}, errors.NewNoVideoStreamError(path)
	}

	var duration float64
	if probe.Format.Duration != "" {
		if d, err := strconv.ParseFloat(probe.Format.Duration, 64); err == nil {
			duration = d
		}
	}

	return StreamMetadata{
		StreamIndex:            0,
		CodecName:              video.CodecName,
		PixelFormat:            video.PixFmt,
		ColorSpace:             video.ColorSpace,
		TransferCharacteristic: video.ColorTransfer,
		ColorPrimaries:         video.ColorPrimaries,
		ColorRange:             video.ColorRange,
		DurationSecs:           duration,
	}, nil
}
