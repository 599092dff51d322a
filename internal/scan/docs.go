// Package scan discovers requirement-tagged tests in Go source and ingests
// per-worker JUnit fragments produced by test runs.
package scan

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"
)

const maxParsers = 8

// TestDoc pairs a test's fully-qualified identity with its doc comment
type TestDoc struct {
	Identity string
	Doc      string
}

// ScanTests parses every test file matching globs under root and returns the
// doc comments of its Test functions. Identity is the package import path
// plus the function name, matching the classname/name pair JUnit reports
// carry for the same test.
func ScanTests(root string, globs []string) ([]TestDoc, error) {
	files, err := matchFiles(root, globs)
	if err != nil {
		return nil, err
	}

	module := modulePath(root)

	var mu sync.Mutex
	perFile := make(map[string][]TestDoc, len(files))

	g := new(errgroup.Group)
	g.SetLimit(maxParsers)
	for _, file := range files {
		file := file
		g.Go(func() error {
			docs, err := parseTestFile(root, file, module)
			if err != nil {
				return err
			}
			mu.Lock()
			perFile[file] = docs
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []TestDoc
	for _, file := range files {
		out = append(out, perFile[file]...)
	}
	return out, nil
}

// matchFiles resolves the doublestar globs to a sorted, deduplicated list
// of file paths relative to root.
func matchFiles(root string, globs []string) ([]string, error) {
	fsys := os.DirFS(root)
	seen := make(map[string]struct{})
	var files []string

	for _, glob := range globs {
		matches, err := doublestar.Glob(fsys, glob)
		if err != nil {
			return nil, fmt.Errorf("invalid test glob %q: %w", glob, err)
		}
		for _, m := range matches {
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}

	sort.Strings(files)
	return files, nil
}

func parseTestFile(root, relPath, module string) ([]TestDoc, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, filepath.Join(root, relPath), nil, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", relPath, err)
	}

	pkgPath := packagePath(module, filepath.Dir(relPath))

	var docs []TestDoc
	for _, decl := range f.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Recv != nil || !strings.HasPrefix(fn.Name.Name, "Test") {
			continue
		}
		doc := ""
		if fn.Doc != nil {
			doc = fn.Doc.Text()
		}
		docs = append(docs, TestDoc{
			Identity: pkgPath + "." + fn.Name.Name,
			Doc:      doc,
		})
	}
	return docs, nil
}

func packagePath(module, dir string) string {
	dir = filepath.ToSlash(dir)
	if dir == "." || dir == "" {
		return module
	}
	if module == "" {
		return dir
	}
	return module + "/" + dir
}

// modulePath reads the module line from go.mod under root. An absent or
// unparsable go.mod just yields an empty module prefix.
func modulePath(root string) string {
	data, err := os.ReadFile(filepath.Join(root, "go.mod"))
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(line, "module "); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}
