// Package pipeline chains the passes in request order: optional coercion,
// validation as the gate, then transformation into the internal form.
package pipeline

import (
	ps "github.com/reoring/paramshape"
	"github.com/reoring/paramshape/coerce"
	"github.com/reoring/paramshape/deserialize"
	"github.com/reoring/paramshape/schema"
	"github.com/reoring/paramshape/transform"
	"github.com/reoring/paramshape/validate"
)

// Option configures a Pipeline.
type Option func(*config)

type config struct {
	coerce   bool
	maxDepth int
	vopts    []validate.Option
	topts    []transform.Option
}

// WithCoercion runs the Coercer before validation. Use it for string-origin
// input such as query strings and form values.
func WithCoercion() Option { return func(c *config) { c.coerce = true } }

// WithMaxDepth applies one depth bound to every pass.
func WithMaxDepth(n int) Option { return func(c *config) { c.maxDepth = n } }

// WithValidateOptions forwards options to the Validator.
func WithValidateOptions(opts ...validate.Option) Option {
	return func(c *config) { c.vopts = append(c.vopts, opts...) }
}

// WithTransformOptions forwards options to the Transformer.
func WithTransformOptions(opts ...transform.Option) Option {
	return func(c *config) { c.topts = append(c.topts, opts...) }
}

// Pipeline is immutable and safe for concurrent use.
type Pipeline struct {
	c *coerce.Coercer
	v *validate.Validator
	t *transform.Transformer
	d *deserialize.Deserializer
}

// New builds every pass over the same registry so they share one scope
// resolution.
func New(reg *schema.Registry, opts ...Option) *Pipeline {
	cfg := config{maxDepth: ps.DefaultMaxDepth}
	for _, o := range opts {
		o(&cfg)
	}
	p := &Pipeline{
		v: validate.New(reg, append([]validate.Option{validate.WithMaxDepth(cfg.maxDepth)}, cfg.vopts...)...),
		t: transform.New(reg, append([]transform.Option{transform.WithMaxDepth(cfg.maxDepth)}, cfg.topts...)...),
		d: deserialize.New(reg),
	}
	if cfg.coerce {
		p.c = coerce.New(reg, coerce.WithMaxDepth(cfg.maxDepth))
	}
	return p
}

// Check runs coercion (when enabled) and validation only.
func (p *Pipeline) Check(shape *schema.Shape, data any) ps.Result {
	if p.c != nil {
		data = p.c.Coerce(shape, data)
	}
	return p.v.Validate(shape, data)
}

// Run returns the transformed parameters, or the validation issues as an
// ps.Issues error.
func (p *Pipeline) Run(shape *schema.Shape, data any) (map[string]any, error) {
	res := p.Check(shape, data)
	if !res.OK() {
		return nil, res.Issues
	}
	out, _ := p.t.Transform(shape, res.Params).(map[string]any)
	return out, nil
}

// Decode is the reverse flow: domain values are decoded through attribute
// hooks for rendering. No checks run.
func (p *Pipeline) Decode(shape *schema.Shape, data any) any {
	return p.d.Deserialize(shape, data)
}
