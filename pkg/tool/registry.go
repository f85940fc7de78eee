package tool

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/xeipuuv/gojsonschema"
)

var (
	// ErrToolNotFound is returned when no spec or handler exists for an ID.
	ErrToolNotFound = errors.New("tool not found")

	// ErrRegistryFrozen is returned when registering during an active run.
	ErrRegistryFrozen = errors.New("registry is frozen")
)

type entry struct {
	spec    Spec
	factory HandlerFactory
	schema  *gojsonschema.Schema
}

// Registry is an explicitly constructed catalogue of tools. It is mutable
// between runs and frozen (read-only) for the duration of a run.
type Registry struct {
	mu      sync.RWMutex
	entries map[ModelFamily]map[string]*entry
	order   []string // tool IDs in first-registration order, across variants
	frozen  bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[ModelFamily]map[string]*entry),
	}
}

// Register adds a tool spec and its handler factory. Registering an ID that
// already exists for the same variant is an error; use RegisterOverwrite to
// replace it.
func (r *Registry) Register(spec Spec, factory HandlerFactory) error {
	return r.register(spec, factory, false)
}

// RegisterOverwrite adds a tool spec, replacing any existing registration
// for the same ID and variant.
func (r *Registry) RegisterOverwrite(spec Spec, factory HandlerFactory) error {
	return r.register(spec, factory, true)
}

func (r *Registry) register(spec Spec, factory HandlerFactory, overwrite bool) error {
	if spec.ID == "" {
		return fmt.Errorf("tool spec has empty ID")
	}
	if factory == nil {
		return fmt.Errorf("tool %s: handler factory is required", spec.ID)
	}
	if spec.Variant == "" {
		spec.Variant = FamilyGeneric
	}

	schema, err := compileSchema(spec)
	if err != nil {
		return fmt.Errorf("tool %s: %w", spec.ID, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return fmt.Errorf("register %s: %w", spec.ID, ErrRegistryFrozen)
	}

	variants, ok := r.entries[spec.Variant]
	if !ok {
		variants = make(map[string]*entry)
		r.entries[spec.Variant] = variants
	}

	if _, exists := variants[spec.ID]; exists && !overwrite {
		return fmt.Errorf("tool %s already registered for variant %s", spec.ID, spec.Variant)
	}

	if !r.known(spec.ID) {
		r.order = append(r.order, spec.ID)
	}
	variants[spec.ID] = &entry{spec: spec, factory: factory, schema: schema}

	log.Debug().Str("tool", spec.ID).Str("variant", string(spec.Variant)).Msg("Tool registered")
	return nil
}

func (r *Registry) known(id string) bool {
	for _, existing := range r.order {
		if existing == id {
			return true
		}
	}
	return false
}

// Freeze marks the registry read-only. Registration fails until Thaw.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Thaw re-enables registration between runs.
func (r *Registry) Thaw() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = false
}

// Frozen reports whether the registry is currently read-only.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// lookup resolves an ID for a family, falling back to the generic variant.
func (r *Registry) lookup(id string, family ModelFamily) (*entry, bool) {
	if family != "" && family != FamilyGeneric {
		if variants, ok := r.entries[family]; ok {
			if e, ok := variants[id]; ok {
				return e, true
			}
		}
	}
	if variants, ok := r.entries[FamilyGeneric]; ok {
		if e, ok := variants[id]; ok {
			return e, true
		}
	}
	return nil, false
}

// Spec returns the spec for an ID, preferring the given family's variant.
func (r *Registry) Spec(id string, family ModelFamily) (Spec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.lookup(id, family)
	if !ok {
		return Spec{}, fmt.Errorf("spec %s: %w", id, ErrToolNotFound)
	}
	return e.spec, nil
}

// Handler builds a handler for an ID, bound to the given working directory.
func (r *Registry) Handler(id string, family ModelFamily, workdir string) (Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.lookup(id, family)
	if !ok {
		return nil, fmt.Errorf("handler %s: %w", id, ErrToolNotFound)
	}
	return e.factory(workdir), nil
}

// SpecsFor returns every tool spec visible to a model family, applying
// per-ID variant selection, in registration order.
func (r *Registry) SpecsFor(family ModelFamily) []Spec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	specs := make([]Spec, 0, len(r.order))
	for _, id := range r.order {
		if e, ok := r.lookup(id, family); ok {
			specs = append(specs, e.spec)
		}
	}
	return specs
}

// Has reports whether any variant of the tool ID is registered.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.lookup(id, FamilyGeneric)
	return ok || r.hasAnyVariant(id)
}

func (r *Registry) hasAnyVariant(id string) bool {
	for _, variants := range r.entries {
		if _, ok := variants[id]; ok {
			return true
		}
	}
	return false
}

// IDs returns all registered tool IDs, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, len(r.order))
	copy(ids, r.order)
	sort.Strings(ids)
	return ids
}

// Len returns the number of distinct tool IDs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// ValidateArgs checks the given arguments against the tool's compiled
// schema. A missing required parameter or unknown ID is returned as an
// error for the executor to fold into a validation Result.
func (r *Registry) ValidateArgs(id string, family ModelFamily, args map[string]string) error {
	r.mu.RLock()
	e, ok := r.lookup(id, family)
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("validate %s: %w", id, ErrToolNotFound)
	}

	doc := make(map[string]interface{}, len(args))
	for k, v := range args {
		doc[k] = v
	}

	result, err := e.schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("validate %s: %w", id, err)
	}
	if !result.Valid() {
		var first string
		for _, desc := range result.Errors() {
			first = desc.String()
			break
		}
		return fmt.Errorf("invalid arguments for %s: %s", id, first)
	}
	return nil
}

func compileSchema(spec Spec) (*gojsonschema.Schema, error) {
	loader := gojsonschema.NewGoLoader(spec.InputSchema())
	schema, err := gojsonschema.NewSchema(loader)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return schema, nil
}
