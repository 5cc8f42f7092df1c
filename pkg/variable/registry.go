package variable

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/zurustar/inkbot/pkg/logger"
)

// Env is the explicit name to value environment a generation exposes to the
// script namespace.
type Env map[string]any

// Registry holds the variables of the current generation and a read-only
// snapshot of the previous one.
type Registry struct {
	current map[string]Variable
	order   []string
	old     map[string]Variable
	presets map[string]any
	log     *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for duplicate declarations and preset mismatches.
func WithLogger(log *slog.Logger) Option {
	return func(r *Registry) {
		r.log = log
	}
}

// WithPresets seeds values that apply to the first declaration of each name.
func WithPresets(presets map[string]any) Option {
	return func(r *Registry) {
		for k, v := range presets {
			r.presets[k] = v
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		current: make(map[string]Variable),
		presets: make(map[string]any),
		log:     logger.GetLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Begin starts a new generation. The current variables become the old
// snapshot and the registry starts empty.
func (r *Registry) Begin() {
	r.old = r.current
	r.current = make(map[string]Variable)
	r.order = nil
}

// End finishes the generation and drops the old snapshot.
func (r *Registry) End() {
	r.old = nil
}

// Declare registers a variable and returns its resolved form.
//
// The value is chosen in this order: the value of a compatible variable
// from the previous generation, the explicit Decl.Value, a preset, the
// default. Declaring a name twice in one generation replaces the earlier
// declaration.
func (r *Registry) Declare(d Decl) (Variable, error) {
	if _, ok := typeNames[d.Type]; !ok {
		return Variable{}, fmt.Errorf("%w: %d", ErrUnknownType, int(d.Type))
	}

	v := Variable{Name: d.Name, Type: d.Type, Min: d.Min, Max: d.Max}
	if v.Type == Number {
		if v.Min == 0 && v.Max == 0 {
			v.Max = math.Inf(1)
			v.Min = math.Inf(-1)
		}
		if v.Min > v.Max {
			v.Min, v.Max = v.Max, v.Min
		}
	}

	def := d.Default
	if def == nil {
		def = zero(d.Type)
	}
	cdef, err := coerce(d.Type, def)
	if err != nil {
		return Variable{}, fmt.Errorf("variable %s default: %w", d.Name, err)
	}
	if n, ok := cdef.(float64); ok {
		cdef = clamp(n, v.Min, v.Max)
	}
	v.Default = cdef
	v.Value = cdef

	switch {
	case r.carry(&v):
	case d.Value != nil:
		val, err := r.normalize(v, d.Value)
		if err != nil {
			return Variable{}, fmt.Errorf("variable %s value: %w", d.Name, err)
		}
		v.Value = val
	default:
		if p, ok := r.presets[d.Name]; ok {
			if val, err := r.normalize(v, p); err == nil {
				v.Value = val
			} else {
				r.log.Warn("Preset ignored", "name", d.Name, "error", err)
			}
		}
	}

	if _, dup := r.current[d.Name]; dup {
		r.log.Warn("Variable declared twice in one generation, last declaration wins", "name", d.Name)
	} else {
		r.order = append(r.order, d.Name)
	}
	r.current[d.Name] = v
	delete(r.presets, d.Name)
	return v, nil
}

// carry copies the previous value into v when the old declaration is compatible.
func (r *Registry) carry(v *Variable) bool {
	if v.Type == Button {
		return false
	}
	prev, ok := r.old[v.Name]
	if !ok || !Compatible(prev, *v) {
		return false
	}
	v.Value = prev.Value
	return true
}

func (r *Registry) normalize(v Variable, value any) (any, error) {
	val, err := coerce(v.Type, value)
	if err != nil {
		return nil, err
	}
	if n, ok := val.(float64); ok {
		val = clamp(n, v.Min, v.Max)
	}
	return val, nil
}

// Get returns a variable of the current generation.
func (r *Registry) Get(name string) (Variable, bool) {
	v, ok := r.current[name]
	return v, ok
}

// Variables returns the current variables in declaration order.
func (r *Registry) Variables() []Variable {
	vars := make([]Variable, 0, len(r.order))
	for _, name := range r.order {
		vars = append(vars, r.current[name])
	}
	return vars
}

// Env returns the current values as a fresh environment. The bot binds it
// into the script globals before every draw().
func (r *Registry) Env() Env {
	env := make(Env, len(r.current))
	for name, v := range r.current {
		env[name] = v.Value
	}
	return env
}

// Set changes the value of a declared variable between frames. The new
// value reaches the script through the next Env.
// Numbers are clamped into bounds.
func (r *Registry) Set(name string, value any) error {
	v, ok := r.current[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownVariable, name)
	}
	val, err := r.normalize(v, value)
	if err != nil {
		return fmt.Errorf("variable %s: %w", name, err)
	}
	v.Value = val
	r.current[name] = v
	return nil
}

// Sync records a value the script assigned itself, so the next generation
// carries the latest value.
func (r *Registry) Sync(name string, value any) {
	v, ok := r.current[name]
	if !ok {
		return
	}
	if val, err := r.normalize(v, value); err == nil {
		v.Value = val
		r.current[name] = v
	}
}

// Press returns the function bound to a Button variable.
func (r *Registry) Press(name string) (string, error) {
	v, ok := r.current[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownVariable, name)
	}
	if v.Type != Button {
		return "", fmt.Errorf("%w: %s is %s, not BUTTON", ErrTypeMismatch, name, v.Type)
	}
	fn, _ := v.Value.(string)
	return fn, nil
}
