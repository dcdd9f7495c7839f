package main

import (
	_ "embed"
	"fmt"
	"io"
	"runtime/debug"
	"strings"

	"github.com/goccy/go-json"

	"github.com/broady/idlbind/bindgen"
)

//go:embed VERSION
var embeddedVersion string

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version   string   `json:"version"`
	Revision  string   `json:"revision,omitempty"`
	Modified  bool     `json:"modified,omitempty"`
	GoVersion string   `json:"go,omitempty"`
	Backends  []string `json:"backends"`
}

// readBuildInfo combines the embedded VERSION file with the module and
// VCS data stamped by the go command. A tagged module install reports its
// module version; anything else is "devel-<VERSION>".
func readBuildInfo() BuildInfo {
	bi := BuildInfo{
		Version:  strings.TrimSpace(embeddedVersion),
		Backends: bindgen.Backends,
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return bi
	}
	bi.GoVersion = info.GoVersion
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		bi.Version = info.Main.Version
		return bi
	}
	bi.Version = "devel-" + bi.Version
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if len(s.Value) >= 7 {
				bi.Revision = s.Value[:7]
			}
		case "vcs.modified":
			bi.Modified = s.Value == "true"
		}
	}
	return bi
}

// String renders bi as "devel-0.1.0+abc1234 (modified)".
func (bi BuildInfo) String() string {
	s := bi.Version
	if bi.Revision != "" {
		s += "+" + bi.Revision
	}
	if bi.Modified {
		s += " (modified)"
	}
	return s
}

type VersionCmd struct {
	JSON bool `help:"Print build information as JSON."`
}

func (c *VersionCmd) Run(stdout io.Writer) error {
	return c.print(stdout, readBuildInfo())
}

func (c *VersionCmd) print(w io.Writer, bi BuildInfo) error {
	if c.JSON {
		return json.NewEncoder(w).Encode(bi)
	}
	fmt.Fprintf(w, "idlbind %s\n", bi)
	fmt.Fprintf(w, "backends: %s\n", strings.Join(bi.Backends, ", "))
	if bi.GoVersion != "" {
		fmt.Fprintf(w, "go: %s\n", bi.GoVersion)
	}
	return nil
}
