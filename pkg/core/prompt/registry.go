package prompt

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound is returned for an unknown prompt or schema id.
var ErrNotFound = errors.New("not registered")

// catalog is an id-keyed set of definitions safe for concurrent use.
type catalog[T any] struct {
	kind  string
	mu    sync.RWMutex
	items map[string]*T
}

func newCatalog[T any](kind string) *catalog[T] {
	return &catalog[T]{kind: kind, items: make(map[string]*T)}
}

func (c *catalog[T]) put(id string, v *T) error {
	if id == "" {
		return fmt.Errorf("%s id cannot be empty", c.kind)
	}
	c.mu.Lock()
	c.items[id] = v
	c.mu.Unlock()
	return nil
}

func (c *catalog[T]) get(id string) (*T, error) {
	c.mu.RLock()
	v, ok := c.items[id]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%s %q: %w", c.kind, id, ErrNotFound)
	}
	return v, nil
}

func (c *catalog[T]) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Registry holds the prompts and schemas the process knows about.
type Registry struct {
	prompts *catalog[PromptTemplate]
	schemas *catalog[ResponseSchema]
}

var (
	global     *Registry
	globalOnce sync.Once
)

func NewRegistry() *Registry {
	return &Registry{
		prompts: newCatalog[PromptTemplate]("prompt"),
		schemas: newCatalog[ResponseSchema]("schema"),
	}
}

// Get returns the process-wide registry.
func Get() *Registry {
	globalOnce.Do(func() { global = NewRegistry() })
	return global
}

// Register adds or replaces a prompt.
func (r *Registry) Register(pt *PromptTemplate) error {
	return r.prompts.put(pt.ID, pt)
}

// RegisterSchema adds or replaces a schema.
func (r *Registry) RegisterSchema(s *ResponseSchema) error {
	return r.schemas.put(s.ID, s)
}

func (r *Registry) GetPrompt(id string) (*PromptTemplate, error) {
	return r.prompts.get(id)
}

func (r *Registry) GetSchema(id string) (*ResponseSchema, error) {
	return r.schemas.get(id)
}

// Count is the number of prompts.
func (r *Registry) Count() int {
	return r.prompts.size()
}
