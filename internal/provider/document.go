// Package provider defines the boundary to external UI surfaces and wallet SDKs.
package provider

import (
	"context"
	"slices"
	"sync"
)

// Element is a node that can be mounted into a container.
type Element interface {
	ID() string
}

// Container is a named mount point for wallet buttons.
type Container interface {
	Element
	AppendChild(el Element)
	RemoveChild(el Element) bool
	FirstChild() Element
	Children() []Element
}

// Document resolves containers by id.
type Document interface {
	GetElementByID(id string) (Container, bool)
}

// Button is a clickable element created by a wallet processor.
type Button struct {
	id      string
	onClick func(ctx context.Context) error
}

func NewButton(id string, onClick func(ctx context.Context) error) *Button {
	return &Button{id: id, onClick: onClick}
}

func (b *Button) ID() string { return b.id }

// Click runs the button's handler.
func (b *Button) Click(ctx context.Context) error {
	if b.onClick == nil {
		return nil
	}
	return b.onClick(ctx)
}

// MemoryDocument is an in-process Document. It backs headless sessions, where
// containers are declared in configuration, and tests.
type MemoryDocument struct {
	mu         sync.RWMutex
	containers map[string]*MemoryContainer
}

func NewMemoryDocument(ids ...string) *MemoryDocument {
	d := &MemoryDocument{containers: make(map[string]*MemoryContainer, len(ids))}
	for _, id := range ids {
		d.AddContainer(id)
	}
	return d
}

// AddContainer declares a container, returning the existing one if id is taken.
func (d *MemoryDocument) AddContainer(id string) *MemoryContainer {
	d.mu.Lock()
	defer d.mu.Unlock()
	if c, ok := d.containers[id]; ok {
		return c
	}
	c := &MemoryContainer{id: id}
	d.containers[id] = c
	return c
}

func (d *MemoryDocument) RemoveContainer(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.containers, id)
}

func (d *MemoryDocument) GetElementByID(id string) (Container, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	c, ok := d.containers[id]
	if !ok {
		return nil, false
	}
	return c, true
}

// Element looks up a mounted element by id across all containers.
func (d *MemoryDocument) Element(id string) (Element, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, c := range d.containers {
		for _, el := range c.Children() {
			if el.ID() == id {
				return el, true
			}
		}
	}
	return nil, false
}

type MemoryContainer struct {
	id       string
	mu       sync.Mutex
	children []Element
}

func (c *MemoryContainer) ID() string { return c.id }

func (c *MemoryContainer) AppendChild(el Element) {
	if el == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.children = append(c.children, el)
}

func (c *MemoryContainer) RemoveChild(el Element) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := slices.Index(c.children, el)
	if i < 0 {
		return false
	}
	c.children = slices.Delete(c.children, i, i+1)
	return true
}

func (c *MemoryContainer) FirstChild() Element {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.children) == 0 {
		return nil
	}
	return c.children[0]
}

func (c *MemoryContainer) Children() []Element {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.children)
}
