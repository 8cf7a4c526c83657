package resolver

import (
	"fmt"
	"reflect"
	"slices"
	"sync"

	"jobmonitor/internal/domain"
)

// Registry is an ordered set of resolvers, safe for concurrent use.
// The first resolver to recognise a task name wins.
type Registry struct {
	mu        sync.RWMutex
	resolvers []Resolver
}

func NewRegistry(rs ...Resolver) (*Registry, error) {
	reg := &Registry{}
	for _, r := range rs {
		if err := reg.Add(r); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Add appends r. The registry is unchanged when r is already present.
func (reg *Registry) Add(r Resolver) error {
	if !isComparable(r) {
		return fmt.Errorf("add resolver %T: %w", r, domain.ErrIncomparableResolver)
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if slices.Contains(reg.resolvers, r) {
		return fmt.Errorf("add resolver %s: %w", Describe(r), domain.ErrDuplicateResolver)
	}
	reg.resolvers = append(reg.resolvers, r)
	return nil
}

// Remove drops the first occurrence of r. Removing an absent resolver is a no-op.
func (reg *Registry) Remove(r Resolver) {
	if !isComparable(r) {
		return
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if i := slices.Index(reg.resolvers, r); i >= 0 {
		reg.resolvers = slices.Delete(reg.resolvers, i, i+1)
	}
}

// List returns a copy of the resolvers in insertion order.
func (reg *Registry) List() []Resolver {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return slices.Clone(reg.resolvers)
}

// Resolve asks each resolver in order and returns the first target found.
// Resolvers run outside the lock, against a snapshot of the registry.
func (reg *Registry) Resolve(taskName string) (string, bool) {
	for _, r := range reg.List() {
		if target, ok := r.Resolve(taskName); ok {
			return target, true
		}
	}
	return "", false
}

// isComparable reports whether r can be compared with == without panicking,
// including values held in interface fields.
func isComparable(r Resolver) bool {
	return r != nil && reflect.ValueOf(r).Comparable()
}

// Describe returns a printable name for r.
func Describe(r Resolver) string {
	if s, ok := r.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", r)
}
