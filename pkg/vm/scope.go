package vm

import (
	"sort"
	"sync"
)

// Scope represents a variable scope in the VM.
// Lookups fall back to the parent scope.
type Scope struct {
	variables map[string]any
	parent    *Scope
	mu        sync.RWMutex
}

// NewScope creates a new scope with an optional parent scope.
func NewScope(parent *Scope) *Scope {
	return &Scope{
		variables: make(map[string]any),
		parent:    parent,
	}
}

// Get retrieves a variable value by name.
// It first searches the current scope, then parent scopes.
func (s *Scope) Get(name string) (any, bool) {
	s.mu.RLock()
	value, ok := s.variables[name]
	s.mu.RUnlock()
	if ok {
		return value, true
	}

	if s.parent != nil {
		return s.parent.Get(name)
	}

	return nil, false
}

// Set updates the variable in the nearest scope that defines it.
// Otherwise it creates the variable in the current scope.
func (s *Scope) Set(name string, value any) {
	for sc := s; sc != nil; sc = sc.parent {
		sc.mu.Lock()
		if _, ok := sc.variables[name]; ok {
			sc.variables[name] = value
			sc.mu.Unlock()
			return
		}
		sc.mu.Unlock()
	}

	s.SetLocal(name, value)
}

// SetLocal sets a variable value only in the current scope.
// Function parameters are bound with SetLocal.
func (s *Scope) SetLocal(name string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.variables[name] = value
}

// GetLocal retrieves a variable value only from the current scope.
func (s *Scope) GetLocal(name string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.variables[name]
	return value, ok
}

// Delete removes a variable from the current scope.
func (s *Scope) Delete(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.variables[name]; ok {
		delete(s.variables, name)
		return true
	}
	return false
}

// Has checks if a variable exists in this scope or any parent scope.
func (s *Scope) Has(name string) bool {
	_, ok := s.Get(name)
	return ok
}

// Parent returns the parent scope, or nil for the global scope.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Keys returns the sorted variable names of the current scope.
func (s *Scope) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.variables))
	for k := range s.variables {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
