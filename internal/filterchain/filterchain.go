// Package filterchain describes the colour pipeline applied to each input as
// plain data. Rendering it into ffmpeg arguments lives in internal/ffmpeg.
package filterchain

import (
	"strings"

	"github.com/eucVeteran/video-normalization-pipeline/internal/config"
	"github.com/eucVeteran/video-normalization-pipeline/internal/dynrange"
	"github.com/eucVeteran/video-normalization-pipeline/internal/ffprobe"
)

// Stage names. Every chain ends with StageEncode.
const (
	StageLinearize = "linearize"
	StageGamut     = "gamut"
	StageToneMap   = "tonemap"
	StageEncode    = "encode"
)

// Param is one key=value option of a filter. An empty Key renders the value
// positionally (format=yuv420p).
type Param struct {
	Key   string
	Value string
}

// Filter is a single ffmpeg filter with ordered options.
type Filter struct {
	Name   string
	Params []Param
}

// Param returns the value of key, if set.
func (f Filter) Param(key string) (string, bool) {
	for _, p := range f.Params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Stage is a named step of the chain made of one or more filters.
type Stage struct {
	Name    string
	Filters []Filter
}

// Param returns the first value of key across the stage's filters.
func (s Stage) Param(key string) (string, bool) {
	for _, f := range s.Filters {
		if v, ok := f.Param(key); ok {
			return v, true
		}
	}
	return "", false
}

// FilterChain is the ordered pipeline for one dynamic-range class.
type FilterChain struct {
	Class  dynrange.Class
	Stages []Stage
}

// HasStage reports whether the chain contains a stage called name.
func (c FilterChain) HasStage(name string) bool {
	_, ok := c.Stage(name)
	return ok
}

// Stage returns the stage called name.
func (c FilterChain) Stage(name string) (Stage, bool) {
	for _, s := range c.Stages {
		if s.Name == name {
			return s, true
		}
	}
	return Stage{}, false
}

// Final returns the last stage, or the zero Stage for an empty chain.
func (c FilterChain) Final() Stage {
	if len(c.Stages) == 0 {
		return Stage{}
	}
	return c.Stages[len(c.Stages)-1]
}

// Summary lists the stage names joined by " -> ".
func (c FilterChain) Summary() string {
	names := make([]string, 0, len(c.Stages))
	for _, s := range c.Stages {
		names = append(names, s.Name)
	}
	return strings.Join(names, " -> ")
}

// Working-space constants for the HDR path.
const (
	nominalPeakLuminance = "100"
	linearWorkingFormat  = "gbrpf32le"
	pqInputFormat        = "p010le"
	hdrPrimaries         = "bt2020"
	hdrMatrix            = "bt2020nc"
	toneMapOperator      = "hable"
)

// Build returns the chain for class, targeting profile. It is a pure function
// of its arguments; the codec parameters stay on the profile.
func Build(class dynrange.Class, profile config.TargetProfile) FilterChain {
	switch class {
	case dynrange.HLG:
		return hdrChain(class, dynrange.TagHLG, profile)
	case dynrange.PQ:
		return hdrChain(class, dynrange.TagPQ, profile)
	default:
		return sdrChain(profile)
	}
}

// BuildForStream builds the chain for class and pins any input-side
// properties to the stream's own signalling.
func BuildForStream(class dynrange.Class, profile config.TargetProfile, meta ffprobe.StreamMetadata) FilterChain {
	return Build(class, profile).WithInput(Signal{
		Transfer:    meta.TransferCharacteristic,
		Matrix:      meta.ColorSpace,
		Primaries:   meta.ColorPrimaries,
		Range:       meta.ColorRange,
		PixelFormat: meta.PixelFormat,
	})
}

func hdrChain(class dynrange.Class, transferIn string, profile config.TargetProfile) FilterChain {
	var linearize []Filter
	if class == dynrange.PQ {
		linearize = append(linearize, formatFilter(pqInputFormat))
	}
	linearize = append(linearize,
		Filter{Name: "zscale", Params: []Param{
			{"tin", transferIn},
			{"pin", hdrPrimaries},
			{"min", hdrMatrix},
			{"t", "linear"},
			{"npl", nominalPeakLuminance},
		}},
		formatFilter(linearWorkingFormat),
	)

	return FilterChain{
		Class: class,
		Stages: []Stage{
			{Name: StageLinearize, Filters: linearize},
			{Name: StageGamut, Filters: []Filter{
				{Name: "zscale", Params: []Param{{"p", profile.ColorPrimaries}}},
			}},
			{Name: StageToneMap, Filters: []Filter{
				// desat=0 keeps highlight chroma; mid-tones can read slightly
				// less saturated than a dynamic tone-mapper would give.
				{Name: "tonemap", Params: []Param{{"tonemap", toneMapOperator}, {"desat", "0"}}},
			}},
			{Name: StageEncode, Filters: []Filter{
				{Name: "zscale", Params: []Param{
					{"t", profile.ColorTransfer},
					{"m", profile.ColorSpace},
					{"p", profile.ColorPrimaries},
					{"r", profile.ColorRange},
				}},
				formatFilter(profile.PixelFormat),
			}},
		},
	}
}

func sdrChain(profile config.TargetProfile) FilterChain {
	return FilterChain{
		Class: dynrange.SDR,
		Stages: []Stage{
			{Name: StageEncode, Filters: []Filter{
				{Name: "colorspace", Params: []Param{
					{"all", profile.ColorPrimaries},
					{"iall", profile.ColorPrimaries},
					{"trc", profile.ColorTransfer},
					{"space", profile.ColorSpace},
					{"primaries", profile.ColorPrimaries},
					{"range", profile.ColorRange},
					{"format", profile.PixelFormat},
				}},
				formatFilter(profile.PixelFormat),
			}},
		},
	}
}

// Input properties the colorspace filter can convert from, keyed by the
// name ffprobe reports.
var (
	colorspaceTransfers = map[string]bool{
		"bt709": true, "gamma22": true, "gamma28": true, "smpte170m": true, "smpte240m": true,
		"linear": true, "iec61966-2-1": true, "iec61966-2-4": true, "bt2020-10": true, "bt2020-12": true,
	}
	colorspaceMatrices = map[string]bool{
		"bt709": true, "fcc": true, "bt470bg": true, "smpte170m": true, "smpte240m": true,
		"ycgco": true, "bt2020nc": true,
	}
	colorspacePrimaries = map[string]bool{
		"bt709": true, "bt470m": true, "bt470bg": true, "smpte170m": true, "smpte240m": true,
		"film": true, "bt2020": true, "smpte428": true, "smpte431": true, "smpte432": true, "jedec-p22": true,
	}
	colorspaceRanges = map[string]bool{"tv": true, "pc": true}
)

// WithInput pins the colorspace filter's input properties to the probed
// signalling. A property that is untagged, or that the filter cannot read,
// falls back to the iall default the chain was built with. Chains without a
// colorspace filter are returned unchanged.
func (c FilterChain) WithInput(in Signal) FilterChain {
	out := FilterChain{Class: c.Class, Stages: make([]Stage, len(c.Stages))}
	for i, s := range c.Stages {
		stage := Stage{Name: s.Name, Filters: make([]Filter, len(s.Filters))}
		for j, f := range s.Filters {
			stage.Filters[j] = f.withInput(in)
		}
		out.Stages[i] = stage
	}
	return out
}

func (f Filter) withInput(in Signal) Filter {
	fallback, ok := f.Param("iall")
	if f.Name != "colorspace" || !ok {
		return Filter{Name: f.Name, Params: append([]Param(nil), f.Params...)}
	}

	rangeFallback, ok := f.Param("range")
	if !ok {
		rangeFallback = "tv"
	}
	pick := func(tag string, known map[string]bool, def string) string {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if known[tag] {
			return tag
		}
		return def
	}
	inputs := []Param{
		{"itrc", pick(in.Transfer, colorspaceTransfers, fallback)},
		{"ispace", pick(in.Matrix, colorspaceMatrices, fallback)},
		{"iprimaries", pick(in.Primaries, colorspacePrimaries, fallback)},
		{"irange", pick(in.Range, colorspaceRanges, rangeFallback)},
	}

	params := make([]Param, 0, len(f.Params)+len(inputs))
	for _, p := range f.Params {
		if p.Key == "iall" {
			params = append(params, inputs...)
			continue
		}
		params = append(params, p)
	}
	return Filter{Name: f.Name, Params: params}
}

func formatFilter(pixFmt string) Filter {
	return Filter{Name: "format", Params: []Param{{Value: pixFmt}}}
}

// Signal is the colour signalling a stage produces.
type Signal struct {
	Transfer    string
	Matrix      string
	Primaries   string
	Range       string
	PixelFormat string
}

// Output reads the signalling a stage writes, understanding both the zscale
// and colorspace option names. The pixel format is that of the last format
// filter.
func (s Stage) Output() Signal {
	var sig Signal
	for _, f := range s.Filters {
		switch f.Name {
		case "zscale":
			setIf(&sig.Transfer, f, "t")
			setIf(&sig.Matrix, f, "m")
			setIf(&sig.Primaries, f, "p")
			setIf(&sig.Range, f, "r")
		case "colorspace":
			setIf(&sig.Transfer, f, "trc")
			setIf(&sig.Matrix, f, "space")
			setIf(&sig.Primaries, f, "primaries")
			setIf(&sig.Range, f, "range")
		case "format":
			setIf(&sig.PixelFormat, f, "")
		}
	}
	return sig
}

func setIf(dst *string, f Filter, key string) {
	if v, ok := f.Param(key); ok {
		*dst = v
	}
}
