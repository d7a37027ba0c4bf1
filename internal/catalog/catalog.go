package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/howard-nolan/llmgateway/internal/capabilities"
)

// Catalog is an immutable, read-only-after-build mapping of model name to
// ModelSpec (§3.5). It is safe for concurrent reads from many goroutines
// because nothing mutates it after Insert-time construction.
type Catalog struct {
	byName   map[string]*ModelSpec
	byFormat map[capabilities.ProviderFormat][]string
	byParent map[string][]string
}

// Empty returns a catalog with no entries.
func Empty() *Catalog {
	return &Catalog{
		byName:   make(map[string]*ModelSpec),
		byFormat: make(map[capabilities.ProviderFormat][]string),
		byParent: make(map[string][]string),
	}
}

// Insert adds or overwrites a catalog entry, auto-filling spec.Model from
// name when absent and indexing by format/parent.
func (c *Catalog) Insert(name string, spec ModelSpec) {
	if spec.Model == "" {
		spec.Model = name
	}
	s := spec
	c.byName[name] = &s
	c.byFormat[s.Format] = append(c.byFormat[s.Format], name)
	if s.Parent != "" {
		c.byParent[s.Parent] = append(c.byParent[s.Parent], name)
	}
}

// Get returns the exact-match entry for name, if any.
func (c *Catalog) Get(name string) (*ModelSpec, bool) {
	s, ok := c.byName[name]
	return s, ok
}

// Len reports the number of catalog entries.
func (c *Catalog) Len() int { return len(c.byName) }

// ModelsForFormat lists model names registered under a given format.
func (c *Catalog) ModelsForFormat(format capabilities.ProviderFormat) []string {
	return c.byFormat[format]
}

// ChildModels lists model names whose Parent equals parent.
func (c *Catalog) ChildModels(parent string) []string {
	return c.byParent[parent]
}

// ResolveFormatWithPrefix implements spec §4.8's resolution algorithm:
// exact match, else the longest prefix present in the catalog that is
// followed by '-' or '/' in model (so "gpt-4o-2024-08-06" matches
// "gpt-4o" but "gpt-4ox" does not match "gpt-4o"). Ported verbatim from
// catalog/mod.rs's resolve_format_with_prefix.
func (c *Catalog) ResolveFormatWithPrefix(model string) (capabilities.ProviderFormat, bool) {
	if spec, ok := c.byName[model]; ok {
		return spec.Format, true
	}
	var bestLen = -1
	var bestFormat capabilities.ProviderFormat
	for name, spec := range c.byName {
		if len(model) > len(name) && strings.HasPrefix(model, name) {
			next := model[len(name)]
			if next == '-' || next == '/' {
				if len(name) > bestLen {
					bestLen = len(name)
					bestFormat = spec.Format
				}
			}
		}
	}
	if bestLen < 0 {
		return "", false
	}
	return bestFormat, true
}

// specForPrefix returns the ModelSpec backing ResolveFormatWithPrefix's
// match, needed by Resolve to return the full spec, not just the format.
func (c *Catalog) specForPrefix(model string) (*ModelSpec, bool) {
	if spec, ok := c.byName[model]; ok {
		return spec, true
	}
	var bestLen = -1
	var best *ModelSpec
	for name, spec := range c.byName {
		if len(model) > len(name) && strings.HasPrefix(model, name) {
			next := model[len(name)]
			if next == '-' || next == '/' {
				if len(name) > bestLen {
					bestLen = len(name)
					best = spec
				}
			}
		}
	}
	if best == nil {
		return nil, false
	}
	return best, true
}

// Resolve implements the full §4.8 resolution: exact-or-prefix lookup
// followed by the Bedrock-Anthropic override (an Anthropic-format spec
// whose model id matches Bedrock's naming convention routes through the
// BedrockAnthropic dialect instead).
func (c *Catalog) Resolve(model string) (*ModelSpec, capabilities.ProviderFormat, error) {
	spec, ok := c.specForPrefix(model)
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", ErrUnknownModel, model)
	}
	format := spec.Format
	if format == capabilities.FormatAnthropic && IsBedrockAnthropicModel(model) {
		format = capabilities.FormatBedrockAnthropic
	}
	return spec, format, nil
}

// ErrUnknownModel is wrapped by Resolve when no catalog entry matches.
var ErrUnknownModel = fmt.Errorf("unknown model")

// FromJSON parses a JSON object of name -> ModelSpec into a Catalog.
func FromJSON(data []byte) (*Catalog, error) {
	var raw map[string]ModelSpec
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse model catalog: %w", err)
	}
	c := Empty()
	for name, spec := range raw {
		c.Insert(name, spec)
	}
	return c, nil
}

// FromFile loads a catalog from a JSON file on disk.
func FromFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model catalog %s: %w", path, err)
	}
	return FromJSON(data)
}
