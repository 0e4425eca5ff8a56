package ffmpeg

import (
	"fmt"
	"strings"
)

// FilterBuilder assembles a comma separated -vf chain.
// Steps with zero or empty arguments are dropped so callers can chain
// optional steps unconditionally.
type FilterBuilder struct {
	steps []string
}

func NewFilterBuilder() *FilterBuilder {
	return &FilterBuilder{}
}

// Scale resizes to width x height
func (fb *FilterBuilder) Scale(width, height int) *FilterBuilder {
	if width > 0 && height > 0 {
		fb.steps = append(fb.steps, fmt.Sprintf("scale=%d:%d:flags=neighbor", width, height))
	}
	return fb
}

// Format converts to pixFmt
func (fb *FilterBuilder) Format(pixFmt string) *FilterBuilder {
	if pixFmt != "" {
		fb.steps = append(fb.steps, "format="+pixFmt)
	}
	return fb
}

// Custom appends a raw filter expression
func (fb *FilterBuilder) Custom(filter string) *FilterBuilder {
	if filter != "" {
		fb.steps = append(fb.steps, filter)
	}
	return fb
}

func (fb *FilterBuilder) Build() string {
	return strings.Join(fb.steps, ",")
}
