package filter

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Presets is a registry of named filters, usually the filter.presets
// section of the config file.
type Presets struct {
	compiler Compiler

	mu     sync.RWMutex
	byName map[string]CompiledFilter
}

// NewPresets creates an empty registry compiling with compiler.
func NewPresets(compiler Compiler) *Presets {
	return &Presets{compiler: compiler, byName: map[string]CompiledFilter{}}
}

// Load compiles every expression and adds them under their names. When any
// expression fails nothing is added and all failures are reported.
func (p *Presets) Load(expressions map[string]string) error {
	compiled := make(map[string]CompiledFilter, len(expressions))
	var errs []error
	for _, name := range slices.Sorted(maps.Keys(expressions)) {
		f, err := p.compiler.Compile(expressions[name])
		if err != nil {
			errs = append(errs, fmt.Errorf("preset '%s': %w", name, err))
			continue
		}
		compiled[name] = f
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	maps.Copy(p.byName, compiled)
	return nil
}

// Lookup returns the preset called name.
func (p *Presets) Lookup(name string) (CompiledFilter, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if f, ok := p.byName[name]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("preset '%s' not found in config", name)
}

// Names lists the registered presets alphabetically.
func (p *Presets) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Sorted(maps.Keys(p.byName))
}
