package processor

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	domainErrors "github.com/asciisd/cashier/internal/domain/errors"
	"github.com/sony/gobreaker/v2"
)

// Constructor builds a fresh processor instance. Configuration is bound at
// registration time by the composition root, usually as a closure over the
// processor's Config.
type Constructor func() (Processor, error)

// Registry is a name-keyed registry of processor constructors. Create
// returns a fresh instance per call (processors may be stateful per
// configuration, so instances are never cached). Each registered name also
// gets a circuit breaker that callers execute backend operations through.
//
// The registry is an explicit, injectable object: it is owned by the
// application's composition root and passed to the callers that need it.
type Registry struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
	breakers     map[string]*gobreaker.CircuitBreaker[any]
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		constructors: make(map[string]Constructor),
		breakers:     make(map[string]*gobreaker.CircuitBreaker[any]),
	}
}

// Register binds a constructor to a name. Re-registering a name overwrites
// the prior mapping; last write wins. A nil constructor is rejected.
func (r *Registry) Register(name string, ctor Constructor) error {
	if name == "" {
		return domainErrors.NewValidationError("name", "processor name cannot be empty")
	}
	if ctor == nil {
		return domainErrors.NewValidationError("constructor", "processor constructor cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.constructors[name] = ctor
	r.breakers[name] = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: 10,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.6
		},
	})
	return nil
}

// RegisterMultiple registers each entry independently. Entries registered
// before a failure remain registered; registration is idempotent per entry,
// not transactional.
func (r *Registry) RegisterMultiple(processors map[string]Constructor) error {
	names := make([]string, 0, len(processors))
	for name := range processors {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		if err := r.Register(name, processors[name]); err != nil {
			errs = append(errs, fmt.Errorf("register %q: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Create constructs a new instance of the named processor.
func (r *Registry) Create(name string) (Processor, error) {
	r.mu.RLock()
	ctor, ok := r.constructors[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("processor %q: %w", name, domainErrors.ErrProcessorNotFound)
	}

	p, err := ctor()
	if err != nil {
		return nil, fmt.Errorf("construct processor %q: %w", name, err)
	}
	return p, nil
}

// Breaker returns the circuit breaker for the named processor, or nil when
// the name is unregistered.
func (r *Registry) Breaker(name string) *gobreaker.CircuitBreaker[any] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.breakers[name]
}

// HasProcessor reports whether the name is registered.
func (r *Registry) HasProcessor(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.constructors[name]
	return ok
}

// RegisteredProcessors returns a copy of the full name-to-constructor map.
func (r *Registry) RegisteredProcessors() map[string]Constructor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Constructor, len(r.constructors))
	for name, ctor := range r.constructors {
		out[name] = ctor
	}
	return out
}

// ProcessorNames returns the sorted registered names.
func (r *Registry) ProcessorNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.constructors))
	for name := range r.constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
