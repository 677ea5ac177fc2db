package cmd

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/finos/architecture-as-code-sub007/internal/calm"
)

// fileReader is the read half shared by the command I/O interfaces.
type fileReader interface {
	ReadFile(path string) ([]byte, error)
}

// globber expands doublestar patterns.
type globber interface {
	Glob(pattern string) ([]string, error)
}

// isYAML reports whether path names a YAML document by extension.
func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// toJSON returns data as JSON, converting YAML sources first. A YAML syntax
// error makes the whole document unusable and is reported as structural.
func toJSON(path string, data []byte) ([]byte, error) {
	if !isYAML(path) {
		return data, nil
	}
	js, err := calm.YAMLToJSON(data)
	if err != nil {
		return nil, &calm.StructuralError{Reason: err.Error()}
	}
	return js, nil
}

// loadDocument reads and decodes the architecture document at path.
func loadDocument(r fileReader, path string) (*calm.Document, []calm.Diagnostic, error) {
	data, err := r.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	js, err := toJSON(path, data)
	if err != nil {
		return nil, nil, err
	}
	return calm.Decode(js)
}

// loadPattern reads and decodes the pattern document at path.
func loadPattern(r fileReader, path string) (*calm.Pattern, error) {
	data, err := r.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read pattern %s: %w", path, err)
	}
	js, err := toJSON(path, data)
	if err != nil {
		return nil, err
	}
	return calm.DecodePattern(js)
}

// hasGlobMeta reports whether arg uses doublestar pattern syntax.
func hasGlobMeta(arg string) bool {
	return strings.ContainsAny(arg, "*?[{")
}

// expandArgs replaces glob arguments by their sorted matches and removes
// repeats, keeping the first position of each file. A glob matching nothing
// is an error so that a typo does not pass silently.
func expandArgs(g globber, args []string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, arg := range args {
		if !hasGlobMeta(arg) {
			add(arg)
			continue
		}
		matches, err := g.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", arg)
		}
		sort.Strings(matches)
		for _, m := range matches {
			add(m)
		}
	}
	return out, nil
}
