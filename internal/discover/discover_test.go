package discover

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTree(t *testing.T, files ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, f := range files {
		path := filepath.Join(dir, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("interface X { new(): void; }"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func names(units []Unit) string {
	var out []string
	for _, u := range units {
		out = append(out, u.Name)
	}
	return strings.Join(out, ",")
}

func TestFind(t *testing.T) {
	tests := []struct {
		name      string
		files     []string
		inputs    func(dir string) []string
		wantNames string
		wantErr   string
	}{
		{
			name:      "directory is walked recursively",
			files:     []string{"dom/node.d.ts", "dom/element.d.ts", "events/event.d.ts", "README.md"},
			inputs:    func(dir string) []string { return []string{dir} },
			wantNames: "element,node,event",
		},
		{
			name:      "hidden and underscore entries are skipped",
			files:     []string{"node.d.ts", ".cache/node_copy.d.ts", "_old/element.d.ts", "_draft.d.ts"},
			inputs:    func(dir string) []string { return []string{dir} },
			wantNames: "node",
		},
		{
			name:  "explicit files",
			files: []string{"a.d.ts", "b.d.ts"},
			inputs: func(dir string) []string {
				return []string{filepath.Join(dir, "b.d.ts"), filepath.Join(dir, "a.d.ts")}
			},
			wantNames: "a,b",
		},
		{
			name:  "overlapping inputs are deduplicated",
			files: []string{"a.d.ts", "b.d.ts"},
			inputs: func(dir string) []string {
				return []string{dir, filepath.Join(dir, "a.d.ts")}
			},
			wantNames: "a,b",
		},
		{
			name:      "glob pattern",
			files:     []string{"html_element.d.ts", "html_anchor_element.d.ts", "node.d.ts"},
			inputs:    func(dir string) []string { return []string{filepath.Join(dir, "html_*.d.ts")} },
			wantNames: "html_anchor_element,html_element",
		},
		{
			name:    "duplicate unit names",
			files:   []string{"a/node.d.ts", "b/node.d.ts"},
			inputs:  func(dir string) []string { return []string{dir} },
			wantErr: `unit "node" is declared by both`,
		},
		{
			name:    "non idl file",
			files:   []string{"node.ts"},
			inputs:  func(dir string) []string { return []string{filepath.Join(dir, "node.ts")} },
			wantErr: "is not a .d.ts file",
		},
		{
			name:    "empty directory",
			files:   []string{"README.md"},
			inputs:  func(dir string) []string { return []string{dir} },
			wantErr: "no .d.ts files found",
		},
		{
			name:    "missing input",
			inputs:  func(dir string) []string { return []string{filepath.Join(dir, "nope.d.ts")} },
			wantErr: "input",
		},
		{
			name:    "glob without matches",
			files:   []string{"node.d.ts"},
			inputs:  func(dir string) []string { return []string{filepath.Join(dir, "svg_*.d.ts")} },
			wantErr: "matched no files",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeTree(t, tt.files...)
			units, err := Find(tt.inputs(dir)...)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Find() error = %v, want error containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Find() error = %v", err)
			}
			if got := names(units); got != tt.wantNames {
				t.Errorf("Find() names = %s, want %s", got, tt.wantNames)
			}
		})
	}
}

func TestName(t *testing.T) {
	tests := map[string]string{
		"node.d.ts":              "node",
		"dom/html_element.d.ts":  "html_element",
		"webf_event_target.d.ts": "webf_event_target",
	}
	for in, want := range tests {
		if got := Name(in); got != want {
			t.Errorf("Name(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDirs(t *testing.T) {
	units := []Unit{
		{Path: filepath.Join("dom", "node.d.ts")},
		{Path: filepath.Join("dom", "element.d.ts")},
		{Path: filepath.Join("events", "event.d.ts")},
	}
	got := Dirs(units)
	if len(got) != 2 || got[0] != "dom" || got[1] != "events" {
		t.Errorf("Dirs() = %v, want [dom events]", got)
	}
}
