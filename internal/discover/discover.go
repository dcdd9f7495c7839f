// Package discover finds IDL input units.
//
// An input is a .d.ts file, a directory searched recursively for them, or
// a glob pattern. The unit identifier is the basename without ".d.ts" and
// must be unique across all inputs, because it names the generated files.
package discover

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
)

// Ext is the input file extension.
const Ext = ".d.ts"

// Unit is one discovered input file.
type Unit struct {
	Path string // path as found, cleaned
	Name string // unit identifier, e.g. "html_element"
}

// Find expands inputs into units sorted by path. Files and matches of glob
// patterns are taken as given; directories are walked, skipping entries
// whose names start with "." or "_".
func Find(inputs ...string) ([]Unit, error) {
	seen := make(map[string]bool)
	var paths []string
	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for _, in := range inputs {
		matches, err := expand(in)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil {
				return nil, errors.Wrapf(err, "input %s", in)
			}
			if !info.IsDir() {
				if !strings.HasSuffix(m, Ext) {
					return nil, errors.WithHint(
						errors.Newf("input %s is not a %s file", m, Ext),
						"pass .d.ts files or directories containing them")
				}
				add(m)
				continue
			}
			found, err := walk(m)
			if err != nil {
				return nil, err
			}
			for _, f := range found {
				add(f)
			}
		}
	}

	slices.Sort(paths)
	units := make([]Unit, 0, len(paths))
	owner := make(map[string]string, len(paths))
	for _, p := range paths {
		name := Name(p)
		if prev, ok := owner[name]; ok {
			return nil, errors.Newf("unit %q is declared by both %s and %s", name, prev, p)
		}
		owner[name] = p
		units = append(units, Unit{Path: p, Name: name})
	}
	if len(units) == 0 {
		return nil, errors.Newf("no %s files found in %s", Ext, strings.Join(inputs, ", "))
	}
	return units, nil
}

// Name returns the unit identifier of path.
func Name(path string) string {
	return strings.TrimSuffix(filepath.Base(path), Ext)
}

// Dirs returns the sorted, distinct directories containing units.
func Dirs(units []Unit) []string {
	var dirs []string
	for _, u := range units {
		dirs = append(dirs, filepath.Dir(u.Path))
	}
	slices.Sort(dirs)
	return slices.Compact(dirs)
}

func expand(in string) ([]string, error) {
	if !strings.ContainsAny(in, "*?[") {
		return []string{in}, nil
	}
	matches, err := filepath.Glob(in)
	if err != nil {
		return nil, errors.Wrapf(err, "bad pattern %q", in)
	}
	if len(matches) == 0 {
		return nil, errors.Newf("pattern %q matched no files", in)
	}
	return matches, nil
}

func walk(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p != root && (strings.HasPrefix(d.Name(), ".") || strings.HasPrefix(d.Name(), "_")) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), Ext) {
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walking %s", root)
	}
	return out, nil
}
