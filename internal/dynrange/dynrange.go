// Package dynrange classifies a video stream's dynamic-range family from its
// transfer characteristic tag.
package dynrange

import (
	"strings"

	"github.com/eucVeteran/video-normalization-pipeline/internal/ffprobe"
)

// Class is the dynamic-range family of a video stream.
type Class int

const (
	// SDR is standard dynamic range (BT.709 gamma, or anything unrecognized).
	SDR Class = iota
	// HLG is Hybrid Log-Gamma HDR.
	HLG
	// PQ is Perceptual Quantizer (SMPTE ST 2084) HDR.
	PQ
)

// String returns the display name of the class.
func (c Class) String() string {
	switch c {
	case HLG:
		return "HDR (HLG)"
	case PQ:
		return "HDR (PQ)"
	default:
		return "SDR"
	}
}

// IsHDR reports whether the class needs tone-mapping.
func (c Class) IsHDR() bool {
	return c == HLG || c == PQ
}

// Transfer tags as reported by ffprobe.
const (
	TagHLG   = "arib-std-b67"
	TagPQ    = "smpte2084"
	TagPQAlt = "smpte-st-2084"
	TagBT709 = "bt709"
)

// Classify maps a transfer characteristic tag to its class. The match is
// case-insensitive and whitespace-tolerant. It never fails: an absent or
// unrecognized tag is SDR.
func Classify(tag string) Class {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case TagHLG:
		return HLG
	case TagPQ, TagPQAlt:
		return PQ
	case TagBT709:
		return SDR
	default:
		return SDR
	}
}

// Source records whether a classification came from a recognized tag or was
// assumed because the tag was missing or unknown.
type Source int

const (
	// SourceRecognized means the transfer tag was one of the known tags.
	SourceRecognized Source = iota
	// SourceAssumed means the tag was absent or unknown and SDR was assumed.
	SourceAssumed
)

// String returns a short label for reports.
func (s Source) String() string {
	if s == SourceAssumed {
		return "assumed"
	}
	return "recognized"
}

// Classification is the outcome of classifying one stream. Source and
// LooksHDR only change what gets reported; processing follows Class alone.
type Classification struct {
	Class  Class
	Source Source
	RawTag string

	// LooksHDR is set when the tag was not recognized but the stream carries
	// BT.2020 primaries or matrix, or a high bit depth pixel format.
	LooksHDR bool
}

// ClassifyMetadata classifies a probed stream.
func ClassifyMetadata(meta ffprobe.StreamMetadata) Classification {
	tag := meta.TransferCharacteristic
	c := Classification{
		Class:  Classify(tag),
		Source: SourceAssumed,
		RawTag: tag,
	}

	if isKnownTag(tag) {
		c.Source = SourceRecognized
		return c
	}

	c.LooksHDR = hasWideGamut(meta.ColorPrimaries, meta.ColorSpace) || isHighBitDepth(meta.PixelFormat)
	return c
}

// Label describes the classification for reports, flagging assumed SDR.
func (c Classification) Label() string {
	if c.Source == SourceRecognized {
		return c.Class.String()
	}
	tag := c.RawTag
	if tag == "" {
		tag = "none"
	}
	return c.Class.String() + " (assumed, transfer=" + tag + ")"
}

func isKnownTag(tag string) bool {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case TagHLG, TagPQ, TagPQAlt, TagBT709:
		return true
	}
	return false
}

func hasWideGamut(primaries, matrix string) bool {
	return strings.Contains(strings.ToLower(primaries), "bt2020") ||
		strings.Contains(strings.ToLower(matrix), "bt2020")
}

func isHighBitDepth(pixFmt string) bool {
	p := strings.ToLower(pixFmt)
	switch p {
	case "p010le", "p016le":
		return true
	}
	return strings.Contains(p, "10le") || strings.Contains(p, "12le") ||
		strings.Contains(p, "10be") || strings.Contains(p, "12be")
}
