package notify

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Template names
const (
	TplRegistrationReceived    = "registration_received"
	TplRegistrationAdminNotice = "registration_admin_notice"
	TplRegistrationApproved    = "registration_approved"
	TplRegistrationRejected    = "registration_rejected"
	TplPasswordReset           = "password_reset"
)

// Templates renders the subject and body blocks of each embedded email template
type Templates struct {
	sets map[string]*template.Template
}

// LoadTemplates parses every embedded template
func LoadTemplates() (*Templates, error) {
	files, err := fs.Glob(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, err
	}
	t := &Templates{sets: make(map[string]*template.Template, len(files))}
	for _, f := range files {
		name := strings.TrimSuffix(path.Base(f), ".tmpl")
		set, err := template.New(name).Funcs(sprig.TxtFuncMap()).ParseFS(templateFS, f)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", f, err)
		}
		t.sets[name] = set
	}
	return t, nil
}

// Render executes the named template and returns its subject and body
func (t *Templates) Render(name string, data any) (subject, body string, err error) {
	set, ok := t.sets[name]
	if !ok {
		return "", "", fmt.Errorf("unknown email template %q", name)
	}
	var sb, bb bytes.Buffer
	if err := set.ExecuteTemplate(&sb, "subject", data); err != nil {
		return "", "", err
	}
	if err := set.ExecuteTemplate(&bb, "body", data); err != nil {
		return "", "", err
	}
	return strings.TrimSpace(sb.String()), strings.TrimLeft(bb.String(), "\n"), nil
}
