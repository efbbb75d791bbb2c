package ffmpeg

import (
	"strings"

	"github.com/eucVeteran/video-normalization-pipeline/internal/filterchain"
)

// VideoFilterChain builds video filter chains.
type VideoFilterChain struct {
	filters []string
}

// NewVideoFilterChain creates a new empty filter chain.
func NewVideoFilterChain() *VideoFilterChain {
	return &VideoFilterChain{}
}

// AddFilter adds a rendered filter to the chain.
func (c *VideoFilterChain) AddFilter(filter string) *VideoFilterChain {
	if filter != "" {
		c.filters = append(c.filters, filter)
	}
	return c
}

// AddStage renders every filter of a stage onto the chain.
func (c *VideoFilterChain) AddStage(stage filterchain.Stage) *VideoFilterChain {
	for _, f := range stage.Filters {
		c.AddFilter(RenderFilter(f))
	}
	return c
}

// Build builds the filter chain into a single filter string.
// Returns empty string if no filters are present.
func (c *VideoFilterChain) Build() string {
	if len(c.filters) == 0 {
		return ""
	}
	return strings.Join(c.filters, ",")
}

// RenderFilter renders a filter as name=k=v:k=v, keeping option order.
func RenderFilter(f filterchain.Filter) string {
	if len(f.Params) == 0 {
		return f.Name
	}
	opts := make([]string, 0, len(f.Params))
	for _, p := range f.Params {
		if p.Key == "" {
			opts = append(opts, p.Value)
			continue
		}
		opts = append(opts, p.Key+"="+p.Value)
	}
	return f.Name + "=" + strings.Join(opts, ":")
}

// RenderFilterGraph renders a whole chain into a -vf argument.
func RenderFilterGraph(chain filterchain.FilterChain) string {
	vf := NewVideoFilterChain()
	for _, s := range chain.Stages {
		vf.AddStage(s)
	}
	return vf.Build()
}
