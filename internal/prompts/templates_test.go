package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"is_command": false}`, `{"is_command": false}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"plain fence", "```\n{\"a\": 2}\n```", `{"a": 2}`},
		{"surrounding prose", `Claro! {"a": {"b": 3}} espero ter ajudado`, `{"a": {"b": 3}}`},
		{"no object", "não é json", ""},
		{"reversed braces", "} {", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractJSON(tc.in))
		})
	}
}

func TestParseJSON(t *testing.T) {
	type intent struct {
		IsCommand bool   `json:"is_command"`
		Action    string `json:"action"`
	}

	got, err := ParseJSON[intent]("```json\n{\"is_command\": true, \"action\": \"create_part\"}\n```")
	require.NoError(t, err)
	assert.True(t, got.IsCommand)
	assert.Equal(t, "create_part", got.Action)

	_, err = ParseJSON[intent]("sem json")
	assert.Error(t, err)

	_, err = ParseJSON[intent](`{"is_command": "talvez"`)
	assert.Error(t, err)
}

func TestPageContextSuffix(t *testing.T) {
	assert.Empty(t, PageContextSuffix("  "))
	assert.Contains(t, PageContextSuffix("estoque"), "estoque")
}

func TestExtractSQL(t *testing.T) {
	assert.Equal(t, "SELECT 1", ExtractSQL("```sql\nSELECT 1;\n```"))
	assert.Equal(t, "SELECT name FROM clients", ExtractSQL("  SELECT name FROM clients  "))
	assert.Equal(t, "SELECT 2", ExtractSQL("Aqui está:\n```\nSELECT 2\n```"))
}
