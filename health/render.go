package health

import (
	"context"
	"fmt"

	"github.com/jonwraymond/compose/component"
)

// RenderChecker renders a probe component end to end. A failed or halted
// render is unhealthy.
type RenderChecker struct {
	name  string
	probe *component.Class
	props component.Props
}

// NewRenderChecker creates a checker that renders probe with props.
func NewRenderChecker(name string, probe *component.Class, props component.Props) *RenderChecker {
	return &RenderChecker{name: name, probe: probe, props: props}
}

func (c *RenderChecker) Name() string { return c.name }

func (c *RenderChecker) Check(ctx context.Context) Result {
	out, halted, err := component.Boundary(ctx, func(ctx context.Context) (any, error) {
		return c.probe.Call(ctx, c.props, nil)
	})
	if err != nil {
		return Unhealthy("probe render failed", err)
	}
	if halted != nil {
		return Unhealthy(fmt.Sprintf("probe halted with status %d", halted.Status), ErrProbeHalted)
	}
	return Healthy("probe rendered").WithDetails(map[string]any{
		"component": c.probe.Name(),
		"bytes":     len(component.Text(out)),
	})
}
