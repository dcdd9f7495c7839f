package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	cli := &CLI{}
	parser, err := kong.New(cli, kong.Name("idlbind"), kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)
	return cli, kctx
}

func TestParseGen(t *testing.T) {
	cli, kctx := parse(t, "-v", "gen", "core", "events/event.d.ts", "--32bit", "-b", "rust,plugin", "--prefix", "webf", "-w", "-o", "out")
	assert.Equal(t, "gen", kctx.Selected().Name)
	assert.True(t, cli.Verbose)
	assert.Len(t, cli.Gen.Inputs, 2)
	assert.True(t, strings.HasSuffix(cli.Gen.Inputs[1], "event.d.ts"))
	assert.True(t, cli.Gen.Bits32)
	assert.True(t, cli.Gen.Watch)
	assert.Equal(t, []string{"rust", "plugin"}, cli.Gen.Backend)
	assert.Equal(t, "webf", cli.Gen.Prefix)
}

func TestParseDumpFormat(t *testing.T) {
	cli, _ := parse(t, "dump", "--format", "yaml")
	assert.Equal(t, "yaml", cli.Dump.Format)

	parser, err := kong.New(&CLI{})
	require.NoError(t, err)
	_, err = parser.Parse([]string{"dump", "--format", "toml"})
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, (&VersionCmd{}).Run(&out))
	assert.True(t, strings.HasPrefix(out.String(), "idlbind "))
	assert.Contains(t, out.String(), "backends: quickjs, plugin, rust\n")
}

func TestVersionFormats(t *testing.T) {
	bi := BuildInfo{Version: "devel-0.1.0", Revision: "abc1234", Modified: true, GoVersion: "go1.25.3", Backends: []string{"quickjs", "rust"}}
	assert.Equal(t, "devel-0.1.0+abc1234 (modified)", bi.String())
	assert.Equal(t, "v0.1.0", BuildInfo{Version: "v0.1.0"}.String())

	var text bytes.Buffer
	require.NoError(t, (&VersionCmd{}).print(&text, bi))
	assert.Equal(t, "idlbind devel-0.1.0+abc1234 (modified)\nbackends: quickjs, rust\ngo: go1.25.3\n", text.String())

	var js bytes.Buffer
	require.NoError(t, (&VersionCmd{JSON: true}).print(&js, bi))
	var got BuildInfo
	require.NoError(t, json.Unmarshal(js.Bytes(), &got))
	assert.Equal(t, bi, got)
}
