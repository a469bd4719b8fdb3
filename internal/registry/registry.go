// Package registry defines the entity configurations driving tool
// generation and dispatch. Adding an entity means adding one entry to
// entities.go; no other code changes.
package registry

import (
	"fmt"
	"strings"
)

// Field describes one schema field of an entity.
type Field struct {
	Name        string
	Type        string // JSON schema type: string, number, integer, array
	Description string
}

// EntityConfig is the static configuration for one Agiloft entity.
type EntityConfig struct {
	Key               string // internal key: "contract"
	KeyPlural         string // plural form for tool names: "contracts"
	APIPath           string // API resource path: "/contract"
	DisplayName       string
	DisplayNamePlural string

	// KeyFields are shown in tool schemas, in declaration order. They are
	// documentation for the agent, never enforced against the live API.
	KeyFields []Field

	// DefaultSearchFields are returned when a search omits a field list.
	DefaultSearchFields []string

	// RequiredFields are mandatory for create (documentation only).
	RequiredFields []string

	// TextSearchFields are matched with ~= when a query is free text.
	TextSearchFields []string

	SupportsAttach         bool
	SupportsActionButton   bool
	SupportsEvaluateFormat bool
}

// Field returns the named key field, if declared.
func (e EntityConfig) Field(name string) (Field, bool) {
	for _, f := range e.KeyFields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

var byKey = func() map[string]EntityConfig {
	m := make(map[string]EntityConfig, len(entities))
	for _, e := range entities {
		m[e.Key] = e
	}
	return m
}()

// Get returns the entity config for key. Unknown keys fail with an error
// listing the valid entities.
func Get(key string) (EntityConfig, error) {
	e, ok := byKey[key]
	if !ok {
		return EntityConfig{}, fmt.Errorf("unknown entity: %q. Valid entities: %s", key, strings.Join(Keys(), ", "))
	}
	return e, nil
}

// Keys returns the registered entity keys in declaration order.
func Keys() []string {
	keys := make([]string, len(entities))
	for i, e := range entities {
		keys[i] = e.Key
	}
	return keys
}

// All returns the entity configs in declaration order.
func All() []EntityConfig {
	out := make([]EntityConfig, len(entities))
	copy(out, entities)
	return out
}
