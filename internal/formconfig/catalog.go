package formconfig

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"sort"
	"sync"
)

var (
	ErrFormNotFound  = errors.New("form not found")
	ErrUnknownSource = errors.New("unknown catalogue source")
)

// Source names one of the catalogue files.
type Source string

const (
	SourceManual Source = "manual"
	SourceLLM    Source = "llm-generated"
)

func ParseSource(s string) (Source, error) {
	switch Source(s) {
	case "", SourceManual:
		return SourceManual, nil
	case SourceLLM:
		return SourceLLM, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSource, s)
}

// Catalog caches the form definitions of each source and serves the active
// one. It is safe for concurrent use.
type Catalog struct {
	mu     sync.RWMutex
	paths  map[Source]string
	active Source
	cache  map[Source]map[string]*FormDefinition
	load   func(path string) (map[string]*FormDefinition, error)
}

// NewCatalog serves the manual catalogue from manualPath and the generated
// one from llmPath. Files are read on first use.
func NewCatalog(manualPath, llmPath string, active Source) *Catalog {
	if active == "" {
		active = SourceManual
	}
	return &Catalog{
		paths:  map[Source]string{SourceManual: manualPath, SourceLLM: llmPath},
		active: active,
		cache:  map[Source]map[string]*FormDefinition{},
		load:   LoadFile,
	}
}

// NewStaticCatalog serves forms held in memory, as the manual source.
func NewStaticCatalog(forms map[string]*FormDefinition) *Catalog {
	c := NewCatalog("", "", SourceManual)
	c.cache[SourceManual] = forms
	c.load = func(string) (map[string]*FormDefinition, error) {
		return forms, nil
	}
	return c
}

func (c *Catalog) Active() Source {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

// Use switches the active source and drops its cached copy so the next
// read sees the file as it is now.
func (c *Catalog) Use(src Source) error {
	if src != SourceManual && src != SourceLLM {
		return fmt.Errorf("%w: %q", ErrUnknownSource, src)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = src
	delete(c.cache, src)
	return nil
}

// Invalidate drops every cached source.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = map[Source]map[string]*FormDefinition{}
}

// Reload re-reads the active source. On failure the previous copy is kept.
func (c *Catalog) Reload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	forms, err := c.read(c.active)
	if err != nil {
		return err
	}
	c.cache[c.active] = forms
	return nil
}

func (c *Catalog) Get(id string) (*FormDefinition, error) {
	forms, err := c.forms()
	if err != nil {
		return nil, err
	}
	def, ok := forms[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFormNotFound, id)
	}
	return def, nil
}

// List returns the forms of the active source ordered by id.
func (c *Catalog) List() ([]*FormDefinition, error) {
	forms, err := c.forms()
	if err != nil {
		return nil, err
	}
	out := make([]*FormDefinition, 0, len(forms))
	for _, def := range forms {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (c *Catalog) forms() (map[string]*FormDefinition, error) {
	c.mu.RLock()
	src := c.active
	forms, ok := c.cache[src]
	c.mu.RUnlock()
	if ok {
		return forms, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if forms, ok := c.cache[c.active]; ok {
		return forms, nil
	}
	forms, err := c.read(c.active)
	if err != nil {
		return nil, err
	}
	c.cache[c.active] = forms
	return forms, nil
}

// read loads one source. A missing generated catalogue is served as empty;
// the manual catalogue must exist. Callers hold c.mu.
func (c *Catalog) read(src Source) (map[string]*FormDefinition, error) {
	path := c.paths[src]
	if src == SourceLLM && path == "" {
		log.Printf("Warning: no path configured for %s catalogue, serving no forms", src)
		return map[string]*FormDefinition{}, nil
	}
	forms, err := c.load(path)
	if err != nil {
		if src == SourceLLM && errors.Is(err, fs.ErrNotExist) {
			log.Printf("Warning: %s catalogue %s not found, serving no forms", src, path)
			return map[string]*FormDefinition{}, nil
		}
		return nil, fmt.Errorf("load %s catalogue: %w", src, err)
	}
	return forms, nil
}
