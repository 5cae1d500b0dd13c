package generator

import "strings"

// Spec is everything a single run needs to know. It is not modified during the run.
type Spec struct {
	Destination     string
	ProjectName     string
	Apps            []string
	CreateVenv      bool
	DjangoVersion   string
	PythonExec      string
	InitGit         bool
	DryRun          bool
	CreateTemplates bool
	Gitignore       bool
	TemplateDir     string
	VerifyVersion   bool
}

const (
	DefaultDestination = "./my_django_project"
	DefaultProjectName = "mysite"
)

// Default returns the spec used when the user only names what differs from the defaults.
func Default() Spec {
	return Spec{
		Destination:     DefaultDestination,
		ProjectName:     DefaultProjectName,
		CreateVenv:      true,
		CreateTemplates: true,
	}
}

// ParseApps splits a comma separated list, dropping blanks.
func ParseApps(raw string) []string {
	var apps []string

	for _, app := range strings.Split(raw, ",") {
		if app = strings.TrimSpace(app); app != "" {
			apps = append(apps, app)
		}
	}

	return apps
}
