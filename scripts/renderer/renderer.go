package renderer

import (
	"embed"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

const templateDir = "templates/"

//go:embed templates/*.tmpl
var tplFS embed.FS

// parsed templates, keyed by TemplateName
var tplCache sync.Map

func lookup(name TemplateName) (*template.Template, error) {
	if cached, ok := tplCache.Load(name); ok {
		return cached.(*template.Template), nil
	}

	path := templateDir + string(name)
	t, err := template.New(string(name)).
		Funcs(sprig.TxtFuncMap()).
		Option("missingkey=error").
		ParseFS(tplFS, path)
	if err != nil {
		return nil, fmt.Errorf("parsing template %q: %w", path, err)
	}

	actual, _ := tplCache.LoadOrStore(name, t)
	return actual.(*template.Template), nil
}

// Render executes the named embedded template with data.
func Render(name TemplateName, data any) (string, error) {
	t, err := lookup(name)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("executing template %q: %w", name, err)
	}
	return sb.String(), nil
}
