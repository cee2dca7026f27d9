package reminder

import (
	"fmt"
	"strings"
	"sync"
	"text/template"

	"github.com/dshills/materialcheck/internal/schema"
)

// messageTemplate is the compiled subject, preview and body of one urgency.
type messageTemplate struct {
	subject *template.Template
	preview *template.Template
	body    *template.Template
}

// TemplateStore holds one message template per urgency.
type TemplateStore struct {
	mu        sync.RWMutex
	templates map[schema.Urgency]messageTemplate
}

// NewTemplateStore seeds the store with the default wording.
func NewTemplateStore() *TemplateStore {
	s := &TemplateStore{templates: make(map[schema.Urgency]messageTemplate)}
	_ = s.Register(schema.UrgencyGentle,
		`Quick reminder: {{.Count}} item{{if ne .Count 1}}s{{end}} still needed`,
		`{{.Client}}, a few items are still needed for your website ({{.Rate}}% complete){{with .First}}, starting with {{.}}{{end}}.`,
		gentleBody)
	_ = s.Register(schema.UrgencyUrgent,
		`Action needed: {{.Count}} website item{{if ne .Count 1}}s{{end}} missing`,
		`{{.Client}}, your website content is behind schedule with {{.Count}} item{{if ne .Count 1}}s{{end}} outstanding ({{.Rate}}% complete).`,
		urgentBody)
	_ = s.Register(schema.UrgencyCritical,
		`Urgent: launch blocked by {{.Count}} missing item{{if ne .Count 1}}s{{end}}`,
		`{{.Client}}, your launch is blocked until we receive {{.Count}} outstanding item{{if ne .Count 1}}s{{end}}{{with .First}}, most importantly {{.}}{{end}}.`,
		criticalBody)
	return s
}

// Register adds or replaces the template set for an urgency.
func (s *TemplateStore) Register(u schema.Urgency, subject, preview, body string) error {
	var mt messageTemplate
	var err error
	if mt.subject, err = template.New(string(u) + "_subject").Parse(subject); err != nil {
		return fmt.Errorf("parse subject template %s: %w", u, err)
	}
	if mt.preview, err = template.New(string(u) + "_preview").Parse(preview); err != nil {
		return fmt.Errorf("parse preview template %s: %w", u, err)
	}
	if mt.body, err = template.New(string(u) + "_body").Parse(body); err != nil {
		return fmt.Errorf("parse body template %s: %w", u, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[u] = mt
	return nil
}

func (s *TemplateStore) lookup(u schema.Urgency) (messageTemplate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mt, ok := s.templates[u]
	return mt, ok
}

func execute(t *template.Template, data any) (string, error) {
	var out strings.Builder
	if err := t.Execute(&out, data); err != nil {
		return "", fmt.Errorf("render template %s: %w", t.Name(), err)
	}
	return out.String(), nil
}

const itemLists = `{{if .Phase1}}
Needed first (brand essentials):
{{range .Phase1}}  - {{.}}
{{end}}{{end}}{{if .Others}}
{{if .Phase1}}Also outstanding{{else}}Outstanding items{{end}}:
{{range .Others}}  - {{.}}
{{end}}{{end}}{{if .More}}  ...and {{.More}} more
{{end}}`

const callToAction = `
Current progress: {{.Rate}}% of your content is approved.
{{if .PortalURL}}
Upload the remaining items here: {{.PortalURL}}
{{else}}
Reply to this message with the remaining items.
{{end}}
{{.SignOff}}
{{.Agency}}
`

const gentleBody = `{{.Greeting}}

We're making good progress on your website and just need a few more things from you.
` + itemLists + callToAction

const urgentBody = `{{.Greeting}}

Your website is waiting on content: {{.Reason}}. To keep the schedule on track we need the following items as soon as possible.
` + itemLists + callToAction

const criticalBody = `{{.Greeting}}

We can't move your website forward without the items below ({{.Reason}}). Please send them today so the launch date does not slip.
` + itemLists + callToAction
