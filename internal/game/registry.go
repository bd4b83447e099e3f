package game

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrUnknownVariant = errors.New("unknown game code")
	ErrInstanceFailed = errors.New("game factory returned no instance")
)

// Factory describes one registered game variant.
type Factory struct {
	Code string
	Name string
	New  func() Instance
}

// Info is the listing view of a registered variant.
type Info struct {
	Code string
	Name string
}

// Registry is the static catalogue of playable variants. It is populated
// once at startup from an explicit factory list and read-only afterwards,
// so lookups need no locking.
type Registry struct {
	factories map[string]Factory
	codes     []string
}

func NewRegistry(factories ...Factory) *Registry {
	r := &Registry{factories: make(map[string]Factory, len(factories))}
	for _, f := range factories {
		code := strings.ToLower(strings.TrimSpace(f.Code))
		if code == "" || f.New == nil {
			continue
		}
		if _, dup := r.factories[code]; dup {
			continue
		}
		f.Code = code
		r.factories[code] = f
		r.codes = append(r.codes, code)
	}
	sort.Strings(r.codes)
	return r
}

// List returns the registered variants sorted by code.
func (r *Registry) List() []Info {
	out := make([]Info, 0, len(r.codes))
	for _, c := range r.codes {
		f := r.factories[c]
		out = append(out, Info{Code: f.Code, Name: f.Name})
	}
	return out
}

// Has reports whether code names a registered variant.
func (r *Registry) Has(code string) bool {
	_, ok := r.factories[strings.ToLower(strings.TrimSpace(code))]
	return ok
}

// New produces a fresh instance for code.
func (r *Registry) New(code string) (Instance, error) {
	f, ok := r.factories[strings.ToLower(strings.TrimSpace(code))]
	if !ok {
		return nil, ErrUnknownVariant
	}
	inst := f.New()
	if inst == nil {
		return nil, ErrInstanceFailed
	}
	return inst, nil
}
