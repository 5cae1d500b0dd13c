package scaffold

import (
	"embed"
	"fmt"
	"io"
	iofs "io/fs"
	"path/filepath"
	"strings"
	"text/template"
	"unicode"

	"github.com/kxue43/djangogen/files"
)

type templateData struct {
	ProjectName string
	Apps        []string
	App         string
}

const (
	// NavMarker tags a nav partial as generated, so it may be rewritten when the app list grows.
	NavMarker = "{# generated by djangogen #}"

	tmpltExt = ".tmplt"

	viewsStub = "from django.shortcuts import render # Create your views here."
)

var (
	//go:embed data
	dataFS embed.FS

	tmplt = template.Must(
		template.New("data").Delims("[[", "]]").Funcs(template.FuncMap{"title": title}).ParseFS(
			dataFS,
			"data/*"+tmpltExt,
			"data/app/*"+tmpltExt,
			"data/site/templates/*"+tmpltExt,
			"data/site/templates/partials/*"+tmpltExt,
			"data/site/static/css/*"+tmpltExt,
		),
	)

	siteDefaults = []struct {
		rel  string
		name string
	}{
		{rel: "templates/base.html", name: "base.html.tmplt"},
		{rel: "templates/home.html", name: "home.html.tmplt"},
		{rel: "templates/app_index.html", name: "app_index.html.tmplt"},
		{rel: "static/css/style.css", name: "style.css.tmplt"},
	}
)

func render(name string, data any) WriteHook {
	return func(fd io.Writer) error {
		return tmplt.ExecuteTemplate(fd, name, data)
	}
}

// title turns an identifier such as blog_posts into "Blog Posts".
func title(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == '-' })

	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}

	return strings.Join(words, " ")
}

// WriteTemplates fills templates/ and static/ under the project root. Files from templateDir
// are copied first, then built-in defaults fill whatever is still missing. Nothing that already
// exists is overwritten, except a nav partial that still carries NavMarker.
func (w *Writer) WriteTemplates(p Project, templateDir string) error {
	var created, present int

	if templateDir != "" {
		for _, sub := range []string{"templates", "static"} {
			n, m, err := w.copyTree(filepath.Join(templateDir, sub), filepath.Join(p.Root, sub))
			if err != nil {
				return err
			}

			created, present = created+n, present+m
		}
	}

	data := templateData{ProjectName: p.Name, Apps: p.Apps}

	for _, d := range siteDefaults {
		ok, err := w.writeIfAbsent(filepath.Join(p.Root, filepath.FromSlash(d.rel)), d.name, data)
		if err != nil {
			return err
		}

		created, present = tally(ok, created, present)
	}

	for _, app := range p.Apps {
		path := filepath.Join(p.Root, "templates", app, "index.html")

		ok, err := w.writeIfAbsent(path, "index.html.tmplt", templateData{ProjectName: p.Name, Apps: p.Apps, App: app})
		if err != nil {
			return err
		}

		created, present = tally(ok, created, present)
	}

	if err := w.writeNav(p, data); err != nil {
		return err
	}

	w.logger.Printf("Templates: %d new, %d already present", created, present)

	return nil
}

func (w *Writer) writeNav(p Project, data templateData) error {
	path := filepath.Join(p.Root, "templates", "partials", "nav.html")

	src, found, err := w.readOptional(path)
	if err != nil {
		return err
	}

	if found && !strings.Contains(src, NavMarker) {
		w.logger.Printf("kept customized %s", path)

		return nil
	}

	var b strings.Builder

	if err = render("nav.html.tmplt", data)(&b); err != nil {
		return fmt.Errorf("failed to render nav partial: %w", err)
	}

	if found && b.String() == src {
		return nil
	}

	if err = w.writeFile(path, func(fd io.Writer) error {
		_, err := io.WriteString(fd, b.String())

		return err
	}); err != nil {
		return err
	}

	if found {
		w.report("updated %s", path)
	}

	return nil
}

// copyTree copies regular files from src to dest, skipping targets that exist. A missing src is
// not an error.
func (w *Writer) copyTree(src, dest string) (created, present int, err error) {
	ok, err := files.Exists(w.fsys, src)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to inspect %q: %w", src, err)
	}

	if !ok {
		return 0, 0, nil
	}

	err = w.fsys.WalkDir(src, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return fmt.Errorf("erroneous path %q in template directory: %w", path, err)
		}

		target := filepath.Join(dest, rel)

		exists, err := files.Exists(w.fsys, target)
		if err != nil {
			return fmt.Errorf("failed to inspect %q: %w", target, err)
		}

		if exists {
			present++

			return nil
		}

		contents, err := w.fsys.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %q: %w", path, err)
		}

		if err = w.writeFile(target, func(fd io.Writer) error {
			_, err := fd.Write(contents)

			return err
		}); err != nil {
			return err
		}

		created++

		return nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to copy %q: %w", src, err)
	}

	return created, present, nil
}

// WriteAppFiles gives every app a urls.py and an index view. views.py is only replaced while it
// is still the stub startapp leaves behind.
func (w *Writer) WriteAppFiles(p Project) error {
	for _, app := range p.Apps {
		data := templateData{ProjectName: p.Name, Apps: p.Apps, App: app}
		dir := filepath.Join(p.Root, app)

		if _, err := w.writeIfAbsent(filepath.Join(dir, "urls.py"), "urls.py.tmplt", data); err != nil {
			return err
		}

		path := filepath.Join(dir, "views.py")

		src, found, err := w.readOptional(path)
		if err != nil {
			return err
		}

		if found && strings.Join(strings.Fields(src), " ") != viewsStub {
			w.logger.Printf("kept existing %s", path)

			continue
		}

		if err = w.writeFile(path, render("views.py.tmplt", data)); err != nil {
			return err
		}
	}

	return nil
}

func tally(created bool, n, m int) (int, int) {
	if created {
		return n + 1, m
	}

	return n, m + 1
}
