package actions

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	catalog, err := DefaultCatalog()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"add_item_to_service_order",
		"create_client",
		"create_inventory_item",
		"create_part",
		"create_service_order",
		"update_service_order_status",
	}, catalog.Names())

	cmd, ok := catalog.Get("update_service_order_status")
	require.True(t, ok)
	assert.Equal(t, "/service-orders/{id}/status", cmd.Endpoint)
	assert.Equal(t, "PUT", cmd.Method)
	assert.False(t, cmd.AutoExecute)

	client, ok := catalog.Get("create_client")
	require.True(t, ok)
	assert.True(t, client.AutoExecute)
}

// Every catalog entry must have a typed parameter variant with the same fields.
func TestCatalogMatchesParamSchemas(t *testing.T) {
	catalog, err := DefaultCatalog()
	require.NoError(t, err)

	require.Len(t, paramSchemas, len(catalog.Commands()))
	for _, cmd := range catalog.Commands() {
		t.Run(cmd.Name, func(t *testing.T) {
			schema, ok := paramSchemas[cmd.Name]
			require.True(t, ok, "no typed params for %s", cmd.Name)

			want := append(append([]string{}, cmd.Required...), cmd.Optional...)
			got := append([]string{}, schema.fields...)
			sort.Strings(want)
			sort.Strings(got)
			assert.Equal(t, want, got)

			decoded, ok := DecodeParams(cmd.Name, nil)
			require.True(t, ok)
			assert.Equal(t, cmd.Name, decoded.Params.Command())
			assert.Equal(t, cmd.Required, Missing(cmd, decoded.Values()))
		})
	}
}

func TestLoadCatalogRejectsInvalid(t *testing.T) {
	_, err := LoadCatalog([]byte("commands:\n  - name: broken\n"))
	assert.Error(t, err)

	_, err = LoadCatalog([]byte(`commands:
  - {name: a, endpoint: /a, method: post}
  - {name: a, endpoint: /b, method: post}
`))
	assert.Error(t, err)

	c, err := LoadCatalog([]byte("commands:\n  - {name: a, endpoint: /a, method: post}\n"))
	require.NoError(t, err)
	cmd, _ := c.Get("a")
	assert.Equal(t, "POST", cmd.Method)
	assert.Equal(t, "unknown_param", c.ParamLabel("unknown_param"))
}

func TestParamLabel(t *testing.T) {
	catalog, err := DefaultCatalog()
	require.NoError(t, err)
	assert.NotEqual(t, "vehicleId", catalog.ParamLabel("vehicleId"))
	assert.Equal(t, "whatever", catalog.ParamLabel("whatever"))
}

func TestPromptSectionListsEveryCommand(t *testing.T) {
	catalog, err := DefaultCatalog()
	require.NoError(t, err)
	section := catalog.PromptSection()
	for _, name := range catalog.Names() {
		assert.Contains(t, section, name)
	}
}
