package context

import (
	"fmt"
	"sync"

	"github.com/govm-net/counter/types"
)

// ContextType names a storage backend
type ContextType string

const (
	// MemoryContextType represents in-memory store implementation
	MemoryContextType ContextType = "memory"
	// DBContextType represents database-backed store implementation
	DBContextType ContextType = "db"
)

// StoreConstructor creates a new StateStore instance
type StoreConstructor func(params map[string]any) (types.StateStore, error)

// Registry defines the interface for managing StateStore implementations
type Registry interface {
	// Register adds a new StateStore implementation to the registry
	Register(ct ContextType, constructor StoreConstructor) error
	// SetDefault sets the default context type
	SetDefault(ct ContextType) error
	// Get returns a new instance of the specified context type
	Get(ct ContextType, params map[string]any) (types.StateStore, error)
	// GetDefault returns a new instance of the default context type
	GetDefault(params map[string]any) (types.StateStore, error)
	// DefaultContextType returns the current default context type
	DefaultContextType() ContextType
	// ListRegistered returns a list of all registered context types
	ListRegistered() []ContextType
}

// registry implements the Registry interface
type registry struct {
	mu        sync.RWMutex
	stores    map[ContextType]StoreConstructor
	defaultCt ContextType
}

var (
	// defaultRegistry is the global singleton registry instance
	defaultRegistry Registry
)

func init() {
	defaultRegistry = NewRegistry()
}

// NewRegistry returns an empty registry
func NewRegistry() Registry {
	return &registry{
		stores: make(map[ContextType]StoreConstructor),
	}
}

// GetRegistry returns the global Registry instance
func GetRegistry() Registry {
	return defaultRegistry
}

// Register adds a new StateStore implementation to the registry
func (r *registry) Register(ct ContextType, constructor StoreConstructor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.stores[ct]; exists {
		return fmt.Errorf("context type %s already registered", ct)
	}

	r.stores[ct] = constructor
	return nil
}

// SetDefault sets the default context type
func (r *registry) SetDefault(ct ContextType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.stores[ct]; !exists {
		return fmt.Errorf("context type %s not registered", ct)
	}

	r.defaultCt = ct
	return nil
}

// Get returns a new instance of the specified context type
func (r *registry) Get(ct ContextType, params map[string]any) (types.StateStore, error) {
	r.mu.RLock()
	constructor, exists := r.stores[ct]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("context type %s not found", ct)
	}

	return constructor(params)
}

// GetDefault returns a new instance of the default context type
func (r *registry) GetDefault(params map[string]any) (types.StateStore, error) {
	r.mu.RLock()
	ct := r.defaultCt
	r.mu.RUnlock()

	if ct == "" {
		return nil, fmt.Errorf("no default context type set")
	}
	return r.Get(ct, params)
}

// DefaultContextType returns the current default context type
func (r *registry) DefaultContextType() ContextType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.defaultCt == "" {
		return DBContextType
	}
	return r.defaultCt
}

// ListRegistered returns a list of all registered context types
func (r *registry) ListRegistered() []ContextType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]ContextType, 0, len(r.stores))
	for ct := range r.stores {
		types = append(types, ct)
	}
	return types
}

// Package level functions that delegate to defaultRegistry

// Register adds a new StateStore implementation to the registry
func Register(ct ContextType, constructor StoreConstructor) error {
	return GetRegistry().Register(ct, constructor)
}

// SetDefault sets the default context type
func SetDefault(ct ContextType) error {
	return GetRegistry().SetDefault(ct)
}

// Get returns a new instance of the specified context type
func Get(ct ContextType, params map[string]any) (types.StateStore, error) {
	if ct == "" {
		ct = GetRegistry().DefaultContextType()
	}
	return GetRegistry().Get(ct, params)
}

// GetDefault returns a new instance of the default context type
func GetDefault(params map[string]any) (types.StateStore, error) {
	return GetRegistry().GetDefault(params)
}

// DefaultContextType returns the current default context type
func DefaultContextType() ContextType {
	return GetRegistry().DefaultContextType()
}

// ListRegistered returns a list of all registered context types
func ListRegistered() []ContextType {
	return GetRegistry().ListRegistered()
}
