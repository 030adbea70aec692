package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
	"reflect"
	"strings"
	texttpl "text/template"
	"time"
)

//go:embed *.tmpl
var FS embed.FS

// Each template ships as <name>.subject.tmpl, <name>.text.tmpl and <name>.html.tmpl.
const (
	Welcome        = "welcome"
	AccountDeleted = "account_deleted"
)

// EmailData is what every account email template can reference.
type EmailData struct {
	Name  string
	Email string
	Type  string

	CompanyName string
	AppName     string
	SupportURL  string

	Time   string
	TimeAt time.Time
}

// ToMap flattens d into EmailJob.Data so it survives the queue as JSON.
func ToMap(d EmailData) map[string]any {
	m := map[string]any{
		"Name":        d.Name,
		"Email":       d.Email,
		"Type":        d.Type,
		"CompanyName": d.CompanyName,
		"AppName":     d.AppName,
		"SupportURL":  d.SupportURL,
		"Time":        d.Time,
	}
	if !d.TimeAt.IsZero() {
		m["TimeAt"] = d.TimeAt.Format(time.RFC3339)
	}
	return m
}

// defaultFn supports pipe usage: {{ .Value | default "Fallback" }}
func defaultFn(fallback any, value any) any {
	switch x := value.(type) {
	case string:
		if strings.TrimSpace(x) == "" {
			return fallback
		}
		return x
	case nil:
		return fallback
	default:
		rv := reflect.ValueOf(value)
		if !rv.IsValid() || rv.IsZero() {
			return fallback
		}
		return value
	}
}

var funcs = map[string]any{
	"upper":   strings.ToUpper,
	"default": defaultFn,
}

var (
	textSet = texttpl.Must(texttpl.New("").Funcs(funcs).ParseFS(FS, "*.subject.tmpl", "*.text.tmpl"))
	htmlSet = htmpl.Must(htmpl.New("").Funcs(funcs).ParseFS(FS, "*.html.tmpl"))
)

func execText(file string, data any) (string, error) {
	t := textSet.Lookup(file)
	if t == nil {
		return "", fmt.Errorf("unknown email template %q", file)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("exec %q: %w", file, err)
	}
	return buf.String(), nil
}

func execHTML(file string, data any) (string, error) {
	t := htmlSet.Lookup(file)
	if t == nil {
		return "", fmt.Errorf("unknown email template %q", file)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("exec %q: %w", file, err)
	}
	return buf.String(), nil
}

// Render produces the subject, plain text and HTML bodies for the named template.
func Render(name string, data any) (subject, text, html string, err error) {
	if subject, err = execText(name+".subject.tmpl", data); err != nil {
		return "", "", "", err
	}
	if text, err = execText(name+".text.tmpl", data); err != nil {
		return "", "", "", err
	}
	if html, err = execHTML(name+".html.tmpl", data); err != nil {
		return "", "", "", err
	}
	return strings.TrimSpace(subject), text, html, nil
}
