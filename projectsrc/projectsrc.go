// Package projectsrc discovers and reads the Elixir sources of a project:
// glob-based file discovery, content loading with BOM handling, and a
// light scan of mix.exs for project metadata.
package projectsrc

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultPatterns cover the conventional mix project layout.
var DefaultPatterns = []string{
	"lib/**/*.ex",
	"lib/**/*.exs",
	"test/**/*.exs",
	"config/*.exs",
	"mix.exs",
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// File is one discovered source file.
type File struct {
	// Path is repo-relative with forward slashes.
	Path    string
	Size    int64
	ModTime time.Time
}

// Discover expands the glob patterns relative to root and returns the
// matching Elixir files, deduplicated and sorted by path so runs are
// reproducible. Patterns use ** for recursive matching. deps/ and _build/
// are always excluded.
func Discover(root string, patterns []string) ([]File, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}

	seen := make(map[string]File)
	fsys := os.DirFS(root)

	for _, pattern := range patterns {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, match := range matches {
			if skipPath(match) {
				continue
			}
			info, err := os.Stat(filepath.Join(root, filepath.FromSlash(match)))
			if err != nil || info.IsDir() {
				continue
			}
			seen[match] = File{
				Path:    match,
				Size:    info.Size(),
				ModTime: info.ModTime(),
			}
		}
	}

	files := make([]File, 0, len(seen))
	for _, f := range seen {
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func skipPath(path string) bool {
	for _, part := range strings.Split(path, "/") {
		if part == "deps" || part == "_build" || strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

// ReadFile loads a discovered file's content, stripping a UTF-8 BOM if
// present so the parser always sees clean source.
func ReadFile(root, path string) ([]byte, error) {
	content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(path)))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return bytes.TrimPrefix(content, utf8BOM), nil
}

// Project is the metadata scanned from mix.exs.
type Project struct {
	// Name is the app atom, e.g. "my_app".
	Name string

	// Version as declared, e.g. "0.1.0".
	Version string

	// Deps are the declared dependency names.
	Deps []string
}

// ScanMixExs reads project metadata out of root/mix.exs with a line-level
// scan. mix.exs is arbitrary Elixir, so this is best-effort: a missing or
// unconventional file yields zero values, not an error.
func ScanMixExs(root string) Project {
	content, err := os.ReadFile(filepath.Join(root, "mix.exs"))
	if err != nil {
		return Project{}
	}
	return scanMix(string(content))
}

func scanMix(content string) Project {
	var p Project
	inDeps := false

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)

		if p.Name == "" {
			if v, ok := keywordValue(line, "app:"); ok {
				p.Name = strings.TrimPrefix(v, ":")
			}
		}
		if p.Version == "" {
			if v, ok := keywordValue(line, "version:"); ok {
				p.Version = strings.Trim(v, `"`)
			}
		}

		if strings.HasPrefix(line, "defp deps") {
			inDeps = true
			continue
		}
		if inDeps {
			if strings.HasPrefix(line, "end") || strings.HasPrefix(line, "]") && !strings.Contains(line, "{") {
				inDeps = false
				continue
			}
			if name, ok := depName(line); ok {
				p.Deps = append(p.Deps, name)
			}
		}
	}
	return p
}

// keywordValue extracts the value of `key: value,` on one line.
func keywordValue(line, key string) (string, bool) {
	idx := strings.Index(line, key)
	if idx < 0 {
		return "", false
	}
	v := strings.TrimSpace(line[idx+len(key):])
	v = strings.TrimSuffix(v, ",")
	if v == "" {
		return "", false
	}
	return v, true
}

// depName extracts the package atom from a `{:package, ...}` dep entry.
func depName(line string) (string, bool) {
	idx := strings.Index(line, "{:")
	if idx < 0 {
		return "", false
	}
	rest := line[idx+2:]
	end := strings.IndexAny(rest, ",}")
	if end <= 0 {
		return "", false
	}
	name := strings.TrimSpace(rest[:end])
	if name == "" {
		return "", false
	}
	return name, true
}
