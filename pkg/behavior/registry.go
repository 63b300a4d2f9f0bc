package behavior

import (
	"fmt"
	"sync"

	"github.com/nullwave/audiograph/pkg/types"
)

// Registry maps a type_name to its recipe. It is populated once during
// startup by MustRegister calls; the spec's design notes call for treating
// it as immutable thereafter so no synchronization is required on the hot
// path, but the RWMutex is kept so a host that wants to register
// user-supplied recipes after startup may still do so safely.
type Registry struct {
	recipes map[string]Recipe
	mu      sync.RWMutex
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		recipes: make(map[string]Recipe),
	}
}

// Register adds a recipe under typeName. Returns an error if the name is
// already taken.
func (r *Registry) Register(typeName string, recipe Recipe) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.recipes[typeName]; exists {
		return fmt.Errorf("recipe already registered for type: %s", typeName)
	}
	r.recipes[typeName] = recipe
	return nil
}

// MustRegister registers a recipe and panics on error. Used at startup,
// where a duplicate registration is a programmer error.
func (r *Registry) MustRegister(typeName string, recipe Recipe) {
	if err := r.Register(typeName, recipe); err != nil {
		panic(err)
	}
}

// New resolves node_type against the registry and returns a fresh behavior.
// Fails with UnknownRecipe if node_type is not registered.
func (r *Registry) New(typeName string) (types.Behavior, error) {
	r.mu.RLock()
	recipe, exists := r.recipes[typeName]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%s: %w", typeName, types.ErrUnknownRecipe)
	}
	return recipe(), nil
}

// ListRegisteredTypes returns every registered type_name.
func (r *Registry) ListRegisteredTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.recipes))
	for name := range r.recipes {
		names = append(names, name)
	}
	return names
}
