// Package sanitize repairs common problems in Django HTML templates: a missing
// {% load static %} and whitespace padding around template tags inside href and src attributes.
package sanitize

import (
	"fmt"
	iofs "io/fs"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/kxue43/djangogen/files"
)

// Func is told about every file that was rewritten.
type Func func(path string)

const loadStatic = "{% load static %}"

var (
	loadStaticRe = regexp.MustCompile(`{%\s*load\s+[^%]*\bstatic\b[^%]*%}`)
	extendsRe    = regexp.MustCompile(`^\s*{%\s*extends\s[^%]*%}[ \t]*\r?\n?`)
	doctypeRe    = regexp.MustCompile(`(?i)^\s*<!doctype html>[ \t]*\r?\n?`)
	paddedAttrRe = regexp.MustCompile(`\b(href|src)="\s*{%\s*(.*?)\s*%}\s*"`)

	skipDirs = map[string]bool{".venv": true, ".git": true, "node_modules": true}
)

// Text returns the repaired template and whether anything changed. Text is idempotent.
func Text(src string) (string, bool) {
	out := paddedAttrRe.ReplaceAllString(src, `$1="{% $2 %}"`)

	if !loadStaticRe.MatchString(out) {
		out = insertLoad(out)
	}

	return out, out != src
}

// insertLoad places the directive after a leading extends tag, which Django requires to come
// first, or else after a leading doctype.
func insertLoad(src string) string {
	for _, re := range []*regexp.Regexp{extendsRe, doctypeRe} {
		if loc := re.FindStringIndex(src); loc != nil {
			head := src[:loc[1]]
			if !strings.HasSuffix(head, "\n") {
				head += "\n"
			}

			return head + loadStatic + "\n" + src[loc[1]:]
		}
	}

	return loadStatic + "\n" + src
}

// Templates repairs every .html file inside a templates directory under root, keeping the
// original next to it as <file>.bak. Environment, VCS and node_modules directories are skipped.
func Templates(fsys files.FS, root string, cb Func) (fixed int, err error) {
	ok, err := files.Exists(fsys, root)
	if err != nil || !ok {
		return 0, err
	}

	err = fsys.WalkDir(root, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != root && skipDirs[d.Name()] {
				return filepath.SkipDir
			}

			return nil
		}

		if !strings.EqualFold(filepath.Ext(path), ".html") || !inTemplatesDir(root, path) {
			return nil
		}

		contents, err := fsys.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %q: %w", path, err)
		}

		out, changed := Text(string(contents))
		if !changed {
			return nil
		}

		if err = fsys.WriteFile(path+".bak", contents, 0644); err != nil {
			return fmt.Errorf("failed to back up %q: %w", path, err)
		}

		if err = fsys.WriteFile(path, []byte(out), 0644); err != nil {
			return fmt.Errorf("failed to write %q: %w", path, err)
		}

		fixed++

		if cb != nil {
			cb(path)
		}

		return nil
	})
	if err != nil {
		return fixed, fmt.Errorf("failed to sanitize templates under %q: %w", root, err)
	}

	return fixed, nil
}

func inTemplatesDir(root, path string) bool {
	rel, err := filepath.Rel(root, filepath.Dir(path))
	if err != nil {
		return false
	}

	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if part == "templates" {
			return true
		}
	}

	return false
}
