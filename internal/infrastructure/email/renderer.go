// Package email renders transactional emails from embedded templates and hands
// them to a Mailer for delivery.
package email

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"html/template"
	"slices"
	"strings"
	"time"

	"github.com/fintermediary/backoffice/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Template names
const (
	TemplateOrganizationWelcome    = "organization_welcome"
	TemplateCustomerWelcome        = "customer_welcome"
	TemplateExpenseSubmitted       = "expense_submitted"
	TemplateExpenseApproved        = "expense_approved"
	TemplateExpenseRejected        = "expense_rejected"
	TemplateProfitSharingStatement = "profit_sharing_statement"
)

//go:embed templates/*.html
var templateFS embed.FS

// ErrTemplateNotFound is returned for unknown template names
var ErrTemplateNotFound = fmt.Errorf("email template not found")

// Rendered is a rendered email
type Rendered struct {
	Subject string
	HTML    string
}

// Renderer renders the embedded templates. Each template file defines a
// "subject" and a "body" block and may use the shared "header" and "footer".
type Renderer struct {
	defaultLocale string
	templates     map[string]*template.Template
}

// NewRenderer parses every embedded template
func NewRenderer(defaultLocale string) (*Renderer, error) {
	if defaultLocale == "" {
		defaultLocale = "en-US"
	}
	r := &Renderer{
		defaultLocale: defaultLocale,
		templates:     make(map[string]*template.Template),
	}
	base := localizedFuncs(defaultLocale)
	for _, name := range TemplateNames() {
		t, err := template.New(name).Funcs(base).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse email template %s: %w", name, err)
		}
		for _, block := range []string{"subject", "body"} {
			if t.Lookup(block) == nil {
				return nil, fmt.Errorf("email template %s is missing the %q block", name, block)
			}
		}
		r.templates[name] = t
	}
	return r, nil
}

// TemplateNames lists the available templates in a stable order
func TemplateNames() []string {
	return []string{
		TemplateOrganizationWelcome,
		TemplateCustomerWelcome,
		TemplateExpenseSubmitted,
		TemplateExpenseApproved,
		TemplateExpenseRejected,
		TemplateProfitSharingStatement,
	}
}

// Render executes a template with data. Money, percent and casing helpers follow locale.
func (r *Renderer) Render(name, locale string, data any) (*Rendered, error) {
	t, ok := r.templates[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}
	if locale == "" {
		locale = r.defaultLocale
	}

	// Funcs on a clone rebinds the helpers to this locale without touching the shared set
	clone, err := t.Clone()
	if err != nil {
		return nil, err
	}
	clone.Funcs(localizedFuncs(locale))

	var subject, body bytes.Buffer
	if err := clone.ExecuteTemplate(&subject, "subject", data); err != nil {
		return nil, fmt.Errorf("render %s subject: %w", name, err)
	}
	if err := clone.ExecuteTemplate(&body, "body", data); err != nil {
		return nil, fmt.Errorf("render %s body: %w", name, err)
	}
	return &Rendered{
		Subject: strings.TrimSpace(html.UnescapeString(subject.String())),
		HTML:    strings.TrimSpace(body.String()),
	}, nil
}

func localizedFuncs(locale string) template.FuncMap {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	titler := cases.Title(tag)
	upper := cases.Upper(tag)

	return template.FuncMap{
		"formatMoney": func(amount decimal.Decimal, currency string) string {
			return valueobject.FormatAmount(amount, valueobject.Currency(strings.ToUpper(currency)), locale)
		},
		"formatPercent": func(p decimal.Decimal) string {
			return valueobject.FormatPercent(p, locale)
		},
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("2 Jan 2006")
		},
		"upper": upper.String,
		"title": func(s string) string {
			return titler.String(strings.ReplaceAll(s, "_", " "))
		},
		"default": func(v, def string) string {
			if strings.TrimSpace(v) == "" {
				return def
			}
			return v
		},
	}
}

// HasTemplate reports whether name is a known template
func HasTemplate(name string) bool {
	return slices.Contains(TemplateNames(), name)
}
