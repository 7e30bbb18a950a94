// Package config loads named state container definitions from YAML.
//
// A definition file lists map-backed stores and scalar values:
//
//	stores:
//	  - name: counter
//	    state: {count: 0, foo: 10}
//	values:
//	  - name: text
//	    value: "The text will sync together"
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/statesub/statesub-go/pkg/subscription"
)

// Config is a set of container definitions.
type Config struct {
	Stores []StoreDef `yaml:"stores"`
	Values []ValueDef `yaml:"values"`
}

// StoreDef defines a map-backed store.
type StoreDef struct {
	// Name identifies the store. Required and unique across the file.
	Name string `yaml:"name"`

	// State is the initial state (empty when omitted).
	State map[string]any `yaml:"state"`
}

// ValueDef defines a scalar value container.
type ValueDef struct {
	// Name identifies the value. Required and unique across the file.
	Name string `yaml:"name"`

	// Value is the initial value.
	Value any `yaml:"value"`
}

// LoadError describes a failure to load or validate a definition file.
type LoadError struct {
	// File is the path to the file that failed to load (empty for Parse).
	File string

	// Message describes the error.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	if e.File != "" {
		return e.File + ": " + msg
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Parse parses and validates a definition document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &LoadError{Message: "failed to parse YAML", Cause: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads and parses a definition file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{File: path, Message: "failed to read file", Cause: err}
	}

	cfg, err := Parse(data)
	if err != nil {
		if le, ok := err.(*LoadError); ok {
			le.File = path
			return nil, le
		}
		return nil, &LoadError{File: path, Message: err.Error()}
	}
	return cfg, nil
}

// Validate checks that every container has a unique, non-empty name.
func (c *Config) Validate() error {
	seen := make(map[string]bool)
	check := func(kind string, i int, name string) error {
		if name == "" {
			return &LoadError{Message: fmt.Sprintf("%s #%d: name is required", kind, i+1)}
		}
		if seen[name] {
			return &LoadError{Message: fmt.Sprintf("%s %q: duplicate name", kind, name)}
		}
		seen[name] = true
		return nil
	}

	for i, s := range c.Stores {
		if err := check("store", i, s.Name); err != nil {
			return err
		}
	}
	for i, v := range c.Values {
		if err := check("value", i, v.Name); err != nil {
			return err
		}
	}
	return nil
}

// Containers holds the containers built from a Config, by name.
type Containers struct {
	Stores map[string]*subscription.Store
	Values map[string]*subscription.Value[any]
}

// Build creates one container per definition. Each container is named
// after its definition; opts are applied to all of them.
func (c *Config) Build(opts ...subscription.Option) *Containers {
	out := &Containers{
		Stores: make(map[string]*subscription.Store, len(c.Stores)),
		Values: make(map[string]*subscription.Value[any], len(c.Values)),
	}
	for _, def := range c.Stores {
		o := append([]subscription.Option{subscription.WithName(def.Name)}, opts...)
		out.Stores[def.Name] = subscription.NewStore(def.State, o...)
	}
	for _, def := range c.Values {
		o := append([]subscription.Option{subscription.WithName(def.Name)}, opts...)
		out.Values[def.Name] = subscription.NewValue[any](def.Value, o...)
	}
	return out
}
