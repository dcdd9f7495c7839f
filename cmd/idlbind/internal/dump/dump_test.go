package dump

import (
	"bytes"
	"context"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/broady/idlbind/bindgen"
)

func model(t *testing.T) *Model {
	t.Helper()
	m, err := Analyze(context.Background(), []bindgen.Unit{
		{Path: "node.d.ts", Source: "interface Node { new(): void; value: string | number; }"},
		{Path: "window.d.ts", Source: "declare const alert: (message: string) => void;"},
	}, &bindgen.Config{Parallelism: 2})
	require.NoError(t, err)
	return m
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, model(t), "json"))

	var got struct {
		Units []struct {
			Filename string           `json:"filename"`
			Objects  []map[string]any `json:"objects"`
		} `json:"units"`
		Unions  []map[string]any `json:"unions"`
		Defined struct {
			Files []string `json:"files"`
		} `json:"defined"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	require.Len(t, got.Units, 2)
	assert.Equal(t, "node", got.Units[0].Filename)
	assert.Equal(t, "Node", got.Units[0].Objects[0]["name"])
	assert.Equal(t, "interface", got.Units[0].Objects[0]["kind"])
	assert.Equal(t, "function", got.Units[1].Objects[0]["kind"])
	require.Len(t, got.Unions, 1)
	assert.Equal(t, "union", got.Unions[0]["kind"])
	assert.Equal(t, []string{"node"}, got.Defined.Files, "global-only units are not binding files")
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, model(t), "yaml"))

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Contains(t, got, "units")
	assert.Contains(t, buf.String(), "filename: node\n")
	assert.Contains(t, buf.String(), "kind: primitive")
}

func TestWriteUnknownFormat(t *testing.T) {
	assert.ErrorContains(t, Write(&bytes.Buffer{}, &Model{}, "toml"), `unknown format "toml"`)
}
