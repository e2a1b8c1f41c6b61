// Package discover decides which files are annotated and finds them in a
// directory tree.
package discover

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/phobologic/nginject/internal/lang"
	"github.com/phobologic/nginject/internal/sourcemap"
)

// FileEntry represents a discovered source file.
type FileEntry struct {
	Path string // Relative to the walk root
	Size int64
}

// Filter decides whether a file is eligible for annotation.
type Filter struct {
	// Extensions are matched case-insensitively against the file name.
	Extensions []string
	// SourceMaps also admits files whose content carries an inline
	// source map, whatever their name.
	SourceMaps bool
	// All admits every file. Used for unnamed input.
	All bool
	// Exclude lists directories whose contents are never eligible, such
	// as an output tree nested inside the input.
	Exclude []string
}

// DefaultFilter admits .js files and anything carrying an inline source map.
func DefaultFilter() Filter {
	return Filter{Extensions: []string{".js"}, SourceMaps: true}
}

// MatchName reports whether name alone makes a file eligible.
func (f Filter) MatchName(name string) bool {
	if f.All {
		return true
	}
	lower := strings.ToLower(name)
	for _, ext := range f.Extensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

// Excluded reports whether path is one of the Exclude directories or lies
// below one.
func (f Filter) Excluded(path string) bool {
	if len(f.Exclude) == 0 {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, dir := range f.Exclude {
		dir, err := filepath.Abs(dir)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(dir, abs)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// Match reports whether a file with the given name and content is eligible.
func (f Filter) Match(name string, content []byte) bool {
	return f.MatchName(name) || (f.SourceMaps && sourcemap.HasInline(content))
}

var skipDirs = map[string]struct{}{
	"node_modules":     {},
	"bower_components": {},
	"jspm_packages":    {},
	".git":             {},
	".hg":              {},
	".svn":             {},
	"build":            {},
	"dist":             {},
	"coverage":         {},
}

// SkipDir reports whether a directory with this name is never searched.
func SkipDir(name string) bool {
	_, skip := skipDirs[name]
	return skip || (strings.HasPrefix(name, ".") && name != "." && name != "..")
}

// Files discovers eligible files under root. Files are admitted by name, or,
// for other JavaScript extensions, by sniffing for an inline source map.
func Files(root string, filter Filter) ([]FileEntry, error) {
	gitFiles := gitLsFiles(root)
	var gi *ignore.GitIgnore
	if gitFiles == nil {
		gi = loadGitignore(root)
	}

	var results []FileEntry

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip errors
		}

		name := d.Name()

		if d.IsDir() {
			if path == root {
				return nil
			}
			if SkipDir(name) || filter.Excluded(path) {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") {
			return nil
		}

		// Skip symlinks
		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}

		if gitFiles != nil {
			if _, ok := gitFiles[filepath.ToSlash(rel)]; !ok {
				return nil
			}
		} else if gi != nil && gi.MatchesPath(rel) {
			return nil
		}

		if !filter.MatchName(name) {
			if !filter.SourceMaps || lang.ForExtension(filepath.Ext(name)) == "" {
				return nil
			}
			content, err := os.ReadFile(path)
			if err != nil || !filter.Match(name, content) {
				return nil
			}
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		results = append(results, FileEntry{Path: rel, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Path < results[j].Path
	})

	return results, nil
}

func gitLsFiles(root string) map[string]struct{} {
	gitDir := filepath.Join(root, ".git")
	info, err := os.Stat(gitDir)
	if err != nil || !info.IsDir() {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return nil
	}

	files := make(map[string]struct{})
	for _, line := range strings.Split(strings.TrimRight(string(out), "\n"), "\n") {
		if line != "" {
			files[line] = struct{}{}
		}
	}
	return files
}

func loadGitignore(root string) *ignore.GitIgnore {
	path := filepath.Join(root, ".gitignore")
	gi, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return nil
	}
	return gi
}
