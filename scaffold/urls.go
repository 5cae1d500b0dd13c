package scaffold

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kxue43/djangogen/files"
)

var (
	docstringRe   = regexp.MustCompile(`^\s*(?s:"""(?:.*?)"""|'''(?:.*?)''')[ \t]*\n?`)
	urlpatternsRe = regexp.MustCompile(`(?m)^urlpatterns\s*=\s*\[`)
	urlpatternsID = regexp.MustCompile(`(?m)^urlpatterns\b`)
	routeRe       = regexp.MustCompile(`\b(?:re_)?path\(\s*['"]([^'"]*)['"]`)
	includeRe     = regexp.MustCompile(`\binclude\(\s*['"]([\w.]+)['"]`)
	importLineRe  = regexp.MustCompile(`(?m)^(?:from|import)[ \t][^\n]*$`)
)

// PatchURLs rewrites the root URL configuration at path so every app is routed under its own
// prefix and, when home is set, the site root renders home.html. A missing file is reported and
// skipped.
func (w *Writer) PatchURLs(path string, apps []string, home bool) error {
	src, found, err := w.readOptional(path)
	if err != nil {
		return err
	}

	if !found {
		if files.IsDry(w.fsys) {
			w.logger.Printf("[dry-run] would patch %s", path)
		} else {
			w.logger.Printf("warning: %s not found, routes not added", path)
		}

		return nil
	}

	out, changed := PatchURLsText(src, apps, home)
	if !changed {
		w.logger.Printf("%s already up to date", path)

		return nil
	}

	if err = w.fsys.WriteFile(path, []byte(out), 0644); err != nil {
		return fmt.Errorf("failed to write %q: %w", path, err)
	}

	w.report("patched %s", path)

	return nil
}

// PatchURLsText returns src with an include route for each app that has none yet, plus a
// TemplateView route for '' when home is set and the root is not routed.
func PatchURLsText(src string, apps []string, home bool) (string, bool) {
	head := docstringRe.FindString(src)
	body := src[len(head):]

	q := "'"
	if strings.Contains(body, `path("`) {
		q = `"`
	}

	routes := make(map[string]bool)
	for _, m := range routeRe.FindAllStringSubmatch(body, -1) {
		routes[m[1]] = true
	}

	includes := make(map[string]bool)
	for _, m := range includeRe.FindAllStringSubmatch(body, -1) {
		includes[m[1]] = true
	}

	var items []string

	if home && !routes[""] {
		items = append(items, fmt.Sprintf("path(%[1]s%[1]s, TemplateView.as_view(template_name=%[1]shome.html%[1]s), name=%[1]shome%[1]s)", q))
		body = ensureImport(body, "django.views.generic", "TemplateView")
	}

	for _, app := range apps {
		if includes[app+".urls"] || routes[app+"/"] {
			continue
		}

		items = append(items, fmt.Sprintf("path(%[1]s%[2]s/%[1]s, include(%[1]s%[2]s.urls%[1]s))", q, app))
	}

	if len(items) == 0 {
		return src, false
	}

	for _, name := range []string{"path", "include"} {
		body = ensureImport(body, "django.urls", name)
	}

	if loc := urlpatternsRe.FindStringIndex(body); loc != nil {
		open := loc[1] - 1

		if end := closingBracket(body, open); end >= 0 {
			body = appendItems(body, open, end, items)

			return head + body, true
		}
	}

	stmt := "urlpatterns = ["
	if urlpatternsID.MatchString(body) {
		stmt = "urlpatterns += ["
	}

	out := head + appendBlock(body, stmt, items)

	return out, out != src
}

// ensureImport makes sure name is imported from module, extending an existing
// "from module import ..." statement when there is one.
func ensureImport(src, module, name string) string {
	re := regexp.MustCompile(`(?m)^from ` + regexp.QuoteMeta(module) + `[ \t]+import[ \t]+([^\n]*)$`)
	word := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`)

	m := re.FindStringSubmatchIndex(src)
	if m == nil {
		return addImportLine(src, "from "+module+" import "+name)
	}

	names := src[m[2]:m[3]]

	if strings.HasSuffix(strings.TrimSpace(names), "(") {
		end := strings.IndexByte(src[m[3]:], ')')
		if end >= 0 && word.MatchString(src[m[2]:m[3]+end]) {
			return src
		}

		return src[:m[3]] + "\n    " + name + "," + src[m[3]:]
	}

	if word.MatchString(names) {
		return src
	}

	code := strings.TrimRight(names, " \t")
	if i := strings.IndexByte(code, '#'); i >= 0 {
		code = strings.TrimRight(code[:i], " \t")
	}

	at := m[2] + len(code)

	return src[:at] + ", " + name + src[at:]
}

// addImportLine inserts line after the last top-level import, or at the top when there is none.
func addImportLine(src, line string) string {
	locs := importLineRe.FindAllStringIndex(src, -1)
	if len(locs) == 0 {
		return line + "\n" + src
	}

	at := locs[len(locs)-1][1]

	if strings.HasSuffix(strings.TrimSpace(src[locs[len(locs)-1][0]:at]), "(") {
		if end := strings.IndexByte(src[at:], ')'); end >= 0 {
			at += end + 1
		}
	}

	return src[:at] + "\n" + line + src[at:]
}
