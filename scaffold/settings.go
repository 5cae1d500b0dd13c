package scaffold

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kxue43/djangogen/files"
)

var (
	installedAppsRe   = regexp.MustCompile(`(?m)^INSTALLED_APPS\s*\+?=\s*[\[(]`)
	installedAppsName = regexp.MustCompile(`(?m)^INSTALLED_APPS\b`)
	listEntryRe       = regexp.MustCompile(`['"]([\w.]+)['"]`)
	dirsRe            = regexp.MustCompile(`['"]DIRS['"]\s*:\s*\[`)
	appDirsRe         = regexp.MustCompile(`(?m)^([ \t]*)['"]APP_DIRS['"]\s*:`)
	pathlibRe         = regexp.MustCompile(`(?m)^from pathlib import [^\n]*\bPath\b`)
	staticURLRe       = regexp.MustCompile(`(?m)^STATIC_URL\s*=`)
	staticDirsRe      = regexp.MustCompile(`(?m)^STATICFILES_DIRS\s*=`)
)

// PatchSettings rewrites the settings module at path so that apps are installed and the project
// templates and static directories are found. A missing file is reported and skipped.
func (w *Writer) PatchSettings(path string, apps []string) error {
	src, found, err := w.readOptional(path)
	if err != nil {
		return err
	}

	if !found {
		if files.IsDry(w.fsys) {
			w.logger.Printf("[dry-run] would patch %s", path)
		} else {
			w.logger.Printf("warning: %s not found, settings not patched", path)
		}

		return nil
	}

	out, changed := PatchSettingsText(src, apps)
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

// PatchSettingsText returns src with the missing apps added to INSTALLED_APPS, the project
// templates directory added to TEMPLATES DIRS and the static settings appended when absent.
func PatchSettingsText(src string, apps []string) (string, bool) {
	q := "'"
	if strings.Contains(src, `"django.contrib`) {
		q = `"`
	}

	out := patchInstalledApps(src, apps, q)
	out = patchTemplateDirs(out, q)
	out = patchStatic(out, q)

	return out, out != src
}

func patchInstalledApps(src string, apps []string, q string) string {
	loc := installedAppsRe.FindStringIndex(src)

	var entries []string

	open, end := -1, -1

	if loc != nil {
		open = loc[1] - 1
		end = closingBracket(src, open)

		if end < 0 {
			return src
		}

		for _, m := range listEntryRe.FindAllStringSubmatch(src[open+1:end], -1) {
			entries = append(entries, m[1])
		}
	}

	var missing []string

	for _, app := range apps {
		if !installed(entries, app) {
			missing = append(missing, q+app+q)
			entries = append(entries, app)
		}
	}

	if len(missing) == 0 {
		return src
	}

	if loc != nil {
		return appendItems(src, open, end, missing)
	}

	op := "="
	if installedAppsName.MatchString(src) {
		op = "+="
	}

	return appendBlock(src, "INSTALLED_APPS "+op+" [", missing)
}

func installed(entries []string, app string) bool {
	for _, e := range entries {
		if e == app || strings.HasPrefix(e, app+".apps.") {
			return true
		}
	}

	return false
}

func patchTemplateDirs(src, q string) string {
	expr := pathExpr(src, "templates", q)

	if loc := dirsRe.FindStringIndex(src); loc != nil {
		open := loc[1] - 1

		end := closingBracket(src, open)
		if end < 0 {
			return src
		}

		body := src[open+1 : end]
		if strings.Contains(body, "templates") {
			return src
		}

		trimmed := strings.TrimRight(body, " \t\r\n")

		switch t := strings.TrimSpace(trimmed); {
		case t == "":
			return src[:open+1] + expr + src[end:]
		case strings.HasSuffix(t, ","):
			return src[:open+1] + trimmed + " " + expr + src[end:]
		default:
			return src[:open+1] + trimmed + ", " + expr + src[end:]
		}
	}

	m := appDirsRe.FindStringSubmatchIndex(src)
	if m == nil {
		return src
	}

	indent := src[m[2]:m[3]]

	return src[:m[0]] + indent + q + "DIRS" + q + ": [" + expr + "],\n" + src[m[0]:]
}

func patchStatic(src, q string) string {
	if !staticURLRe.MatchString(src) {
		src = ensureTrailingNewline(src) + "\nSTATIC_URL = " + q + "/static/" + q + "\n"
	}

	if !staticDirsRe.MatchString(src) {
		src = ensureTrailingNewline(src) + "STATICFILES_DIRS = [" + pathExpr(src, "static", q) + "]\n"
	}

	return src
}

// pathExpr spells BASE_DIR/dir the way the settings module builds paths.
func pathExpr(src, dir, q string) string {
	if pathlibRe.MatchString(src) {
		return "BASE_DIR / " + q + dir + q
	}

	return "os.path.join(BASE_DIR, " + q + dir + q + ")"
}
