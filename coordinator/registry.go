package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Registry tracks the live coordinators by EIC. Callers own the registry;
// there is no package-level instance.
type Registry struct {
	mu           sync.RWMutex
	coordinators map[string]*Coordinator
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		coordinators: make(map[string]*Coordinator),
	}
}

// Add registers a coordinator under its EIC. Registering a second
// coordinator for the same EIC is an error.
func (r *Registry) Add(c *Coordinator) error {
	if c == nil {
		return fmt.Errorf("coordinator cannot be nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	eic := c.EIC()
	if _, exists := r.coordinators[eic]; exists {
		return fmt.Errorf("coordinator already registered for %s", eic)
	}
	r.coordinators[eic] = c
	return nil
}

// Remove unregisters the coordinator for eic, if any.
func (r *Registry) Remove(eic string) {
	r.mu.Lock()
	delete(r.coordinators, eic)
	r.mu.Unlock()
}

// Get returns the coordinator for eic, or nil.
func (r *Registry) Get(eic string) *Coordinator {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.coordinators[eic]
}

// EICs returns the registered EICs in sorted order.
func (r *Registry) EICs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	eics := make([]string, 0, len(r.coordinators))
	for eic := range r.coordinators {
		eics = append(eics, eic)
	}
	sort.Strings(eics)
	return eics
}

// Len returns the number of registered coordinators.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.coordinators)
}

// FetchHistoryAll runs a manual backfill on every registered coordinator,
// or on the single named one when eic is non-empty. Failures are collected;
// a failed coordinator does not stop the others.
func (r *Registry) FetchHistoryAll(ctx context.Context, eic string, days int) error {
	targets := r.snapshot(eic)
	if eic != "" && len(targets) == 0 {
		return fmt.Errorf("no coordinator registered for %s", eic)
	}

	var errs []error
	for _, c := range targets {
		if _, err := c.FetchHistory(ctx, days); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) snapshot(eic string) []*Coordinator {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if eic != "" {
		if c, ok := r.coordinators[eic]; ok {
			return []*Coordinator{c}
		}
		return nil
	}
	out := make([]*Coordinator, 0, len(r.coordinators))
	for _, eic := range sortedKeys(r.coordinators) {
		out = append(out, r.coordinators[eic])
	}
	return out
}

func sortedKeys(m map[string]*Coordinator) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
