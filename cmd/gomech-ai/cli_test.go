package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		routeOffline = false
		routeContext = ""
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCatalogCommand(t *testing.T) {
	out, err := execute(t, "catalog")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Greater(t, len(lines), 1)
	assert.True(t, strings.HasPrefix(lines[0], "ACTION"))
	assert.Contains(t, out, "/clients")
}

func TestRouteOffline(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"quantos clientes temos cadastrados?", "data-query"},
		{"me mostre um gráfico de barras por mecânico", "visualization"},
		{"bom dia!", "chat"},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			out, err := execute(t, "route", "--offline", tt.message)
			require.NoError(t, err)
			assert.Equal(t, tt.want, strings.TrimSpace(out))
		})
	}
}

func TestRouteRequiresMessage(t *testing.T) {
	_, err := execute(t, "route", "--offline")
	assert.Error(t, err)
}

func TestKnowledgeIndexRequiresDir(t *testing.T) {
	knowledgeDir = ""
	_, err := execute(t, "knowledge", "index", "notes.txt", "--dir", "")
	assert.Error(t, err)
}
