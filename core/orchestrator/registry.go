package orchestrator

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	cmap "github.com/orcaman/concurrent-map/v2"
)

// Registry holds the feature descriptors of one tier together with their
// runtime state. Descriptors are immutable after registration; runtime state
// is mutated only by the owning tier orchestrator.
type Registry struct {
	tier    Tier
	entries cmap.ConcurrentMap[string, *entry]

	mu    sync.Mutex
	order []string // registration order, breaks resolver ties deterministically
}

var validate = validator.New()

// NewRegistry creates an empty registry for one tier.
func NewRegistry(tier Tier) *Registry {
	return &Registry{
		tier:    tier,
		entries: cmap.New[*entry](),
	}
}

// Register adds a feature descriptor. It rejects invalid descriptors,
// duplicate IDs, descriptors registered into the wrong tier, self
// dependencies, and dependency edges between features sharing a batch number
// (such features are meant to start concurrently, so an edge between them
// could never be honored).
func (r *Registry) Register(d Descriptor) error {
	if err := validate.Struct(d); err != nil {
		return &RegistrationError{FeatureID: d.ID, Reason: err.Error()}
	}
	if d.Tier != r.tier {
		return &RegistrationError{
			FeatureID: d.ID,
			Reason:    fmt.Sprintf("descriptor tier %q does not match registry tier %q", d.Tier, r.tier),
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.entries.Has(d.ID) {
		return &RegistrationError{FeatureID: d.ID, Reason: "duplicate feature id"}
	}
	for _, dep := range d.Dependencies {
		if dep == d.ID {
			return &RegistrationError{FeatureID: d.ID, Reason: "feature depends on itself"}
		}
		// Unknown dependency ids are allowed here so partial graphs stay
		// resolvable; they surface as DependencyError at start time.
		if existing, ok := r.entries.Get(dep); ok && existing.desc.Batch == d.Batch {
			return &RegistrationError{
				FeatureID: d.ID,
				Reason:    fmt.Sprintf("dependency %q shares batch %d", dep, d.Batch),
			}
		}
	}

	r.entries.Set(d.ID, newEntry(d))
	r.order = append(r.order, d.ID)
	return nil
}

// lookup returns the entry for an ID.
func (r *Registry) lookup(id string) (*entry, bool) {
	return r.entries.Get(id)
}

// ids returns feature IDs in registration order.
func (r *Registry) ids() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered features.
func (r *Registry) Len() int {
	return r.entries.Count()
}

// reset returns every feature to its pre-initialization state. Used by the
// shared-instance reset path for tests.
func (r *Registry) reset() {
	for _, id := range r.ids() {
		if e, ok := r.entries.Get(id); ok {
			e.mu.Lock()
			e.status = StatusPending
			e.instance = nil
			e.lastErr = nil
			e.heavyLoaded = false
			e.mu.Unlock()
		}
	}
}
