package generator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/kxue43/djangogen/venv"
)

var (
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrDuplicateApp      = errors.New("duplicate app name")
	ErrNoDestination     = errors.New("no destination directory given")

	identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

	pythonKeywords = set(
		"False", "None", "True", "and", "as", "assert", "async", "await", "break", "class",
		"continue", "def", "del", "elif", "else", "except", "finally", "for", "from", "global",
		"if", "import", "in", "is", "lambda", "nonlocal", "not", "or", "pass", "raise",
		"return", "try", "while", "with", "yield",
	)

	// Names Django refuses because they shadow an importable module.
	reservedNames = set(
		"django", "test", "site", "os", "sys", "io", "re", "json", "time", "types", "code",
		"email", "html", "http", "logging", "string", "random", "math", "abc", "copy", "queue",
		"select", "signal", "socket", "ssl", "struct", "token", "typing", "uuid", "xml",
		"unittest", "calendar", "array", "collections", "asyncio", "inspect", "operator",
	)
)

// Validate checks every name and the pinned version and returns the parsed version. An unset
// DjangoVersion yields the zero Version, meaning latest.
func (s Spec) Validate() (version venv.Version, err error) {
	if strings.TrimSpace(s.Destination) == "" {
		return version, ErrNoDestination
	}

	if err = ValidateIdentifier("project", s.ProjectName); err != nil {
		return version, err
	}

	seen := map[string]bool{s.ProjectName: true}

	for _, app := range s.Apps {
		if err = ValidateIdentifier("app", app); err != nil {
			return version, err
		}

		if seen[app] {
			return version, fmt.Errorf("%w: %q is used more than once or equals the project name", ErrDuplicateApp, app)
		}

		seen[app] = true
	}

	if s.DjangoVersion != "" {
		if version, err = venv.ParseVersion(s.DjangoVersion); err != nil {
			return venv.Version{}, err
		}
	}

	return version, nil
}

func ValidateIdentifier(kind, name string) error {
	switch {
	case !identifierRe.MatchString(name):
		return fmt.Errorf("%w: %s name %q must start with a letter or underscore and contain only letters, digits and underscores", ErrInvalidIdentifier, kind, name)
	case pythonKeywords[name]:
		return fmt.Errorf("%w: %s name %q is a Python keyword", ErrInvalidIdentifier, kind, name)
	case reservedNames[strings.ToLower(name)]:
		return fmt.Errorf("%w: %s name %q conflicts with an existing Python module", ErrInvalidIdentifier, kind, name)
	}

	return nil
}

func set(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))

	for _, name := range names {
		m[name] = true
	}

	return m
}
