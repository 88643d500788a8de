package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCatalog(t *testing.T) {
	catalog, err := LoadCatalog()
	require.NoError(t, err)

	spec, ok := catalog.Spec("create_lead")
	require.True(t, ok)
	assert.Contains(t, spec.Aliases, "create_crm_lead")
	assert.Contains(t, spec.Required, "name")

	_, ok = catalog.Spec("create_crm_lead")
	assert.False(t, ok, "aliases are not canonical specs")
}

func TestParseCatalog_RejectsDuplicateNames(t *testing.T) {
	_, err := ParseCatalog([]byte(`
tools:
  - name: create_lead
    aliases: [add_lead]
  - name: add_lead
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "add_lead")

	_, err = ParseCatalog([]byte(`tools: [{description: nameless}]`))
	require.Error(t, err)
}

func TestBuilder_RegistersCatalogAliases(t *testing.T) {
	catalog, err := LoadCatalog()
	require.NoError(t, err)

	crm := &fakeCRM{id: "77"}
	registry := NewToolRegistryBuilder(catalog).WithLeadTools(crm).Build()

	assert.Equal(t, []string{"create_lead"}, registry.Names())
	for _, alias := range []string{"create_lead", "create_crm_lead", "add_lead", "submit_lead", "save_contact"} {
		result := registry.Execute(context.Background(), ToolCall{
			ID:    "call_" + alias,
			Name:  alias,
			Input: map[string]interface{}{"name": "Ola", "email": "ola@example.pl"},
		})
		require.False(t, result.IsError, "alias %s: %v", alias, result.Error)
		assert.Equal(t, "77", result.Payload()["id"])
	}
	assert.Len(t, crm.leads, 5)
}
