package network

import (
	"fmt"

	"sigs.k8s.io/yaml"
)

// Config is the declarative table a session is wired from: the finite domains
// of the analysis and one row per relation giving its ordered attribute list.
type Config struct {
	Domains   []DomainConfig   `json:"domains"`
	Relations []RelationConfig `json:"relations"`
}

// DomainConfig declares a finite domain and its element universe.
type DomainConfig struct {
	Name     string   `json:"name"`
	Elements []string `json:"elements"`
}

// RelationConfig declares one named relation over an ordered attribute list.
type RelationConfig struct {
	Name       string            `json:"name"`
	Attributes []AttributeConfig `json:"attributes"`
}

// AttributeConfig binds an attribute name to a declared domain.
type AttributeConfig struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

// ParseConfig decodes a YAML (or JSON) network table.
func ParseConfig(data []byte) (Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, NewConfigError("cannot parse network table", err)
	}
	return c, nil
}

// Validate performs the structural checks that do not need domain metadata.
func (c Config) Validate() error {
	domains := map[string]bool{}
	for _, d := range c.Domains {
		if d.Name == "" {
			return NewConfigError("domain with empty name", nil)
		}
		if domains[d.Name] {
			return NewDuplicateError("domain", d.Name)
		}
		domains[d.Name] = true
	}

	relations := map[string]bool{}
	for _, r := range c.Relations {
		if r.Name == "" {
			return NewConfigError("relation with empty name", nil)
		}
		if relations[r.Name] {
			return NewDuplicateError("relation", r.Name)
		}
		relations[r.Name] = true

		for _, a := range r.Attributes {
			if !domains[a.Domain] {
				return NewConfigError(fmt.Sprintf("relation %q: attribute %q references unknown domain %q",
					r.Name, a.Name, a.Domain), nil)
			}
		}
	}

	return nil
}
