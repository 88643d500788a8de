package tools

import (
	"chatrelay/internal/service/llm/tools/external"
)

// ToolRegistryBuilder provides a fluent API for building tool registries.
type ToolRegistryBuilder struct {
	registry *ToolRegistry
	config   *ToolConfig
	catalog  *Catalog
}

// NewToolRegistryBuilder creates a new builder with a fresh registry.
func NewToolRegistryBuilder(catalog *Catalog) *ToolRegistryBuilder {
	if catalog == nil {
		catalog = &Catalog{}
	}
	return &ToolRegistryBuilder{
		registry: NewToolRegistry(),
		config:   DefaultToolConfig(),
		catalog:  catalog,
	}
}

// WithConfig sets custom tool configuration.
// If not called, defaults will be used.
func (b *ToolRegistryBuilder) WithConfig(config *ToolConfig) *ToolRegistryBuilder {
	if config != nil {
		b.config = config
	}
	return b
}

// WithLeadTools registers create_lead and its catalog aliases.
// Registration happens even without a CRM client so the model gets a
// structured "not configured" failure rather than an unknown-function one.
func (b *ToolRegistryBuilder) WithLeadTools(client external.CRMClient) *ToolRegistryBuilder {
	b.register("create_lead", NewCreateLeadTool(client, b.config))
	return b
}

// register adds the executor and every alias the catalog lists for it.
func (b *ToolRegistryBuilder) register(name string, executor ToolExecutor) {
	b.registry.Register(name, executor)
	if spec, ok := b.catalog.Spec(name); ok {
		for _, alias := range spec.Aliases {
			b.registry.Alias(alias, name)
		}
	}
}

// Build returns the configured registry.
func (b *ToolRegistryBuilder) Build() *ToolRegistry {
	return b.registry
}
