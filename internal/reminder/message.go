package reminder

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dshills/materialcheck/internal/material"
	"github.com/dshills/materialcheck/internal/schema"
)

// Generator renders trigger decisions into client-facing messages.
type Generator struct {
	cfg       Config
	templates *TemplateStore
}

// NewGenerator returns a Generator using cfg (defaults applied). A nil
// store uses the default wording.
func NewGenerator(cfg Config, templates *TemplateStore) *Generator {
	cfg.applyDefaults()
	if templates == nil {
		templates = NewTemplateStore()
	}
	return &Generator{cfg: cfg, templates: templates}
}

// GenerateReminderMessage renders a message with the default wording.
func GenerateReminderMessage(status schema.ProjectMaterialStatus, trigger schema.ReminderTrigger, cfg Config) schema.ReminderMessage {
	return NewGenerator(cfg, nil).Generate(status, trigger)
}

// messageData is the template input.
type messageData struct {
	Client    string
	Count     int
	Rate      int
	Reason    string
	First     string
	Phase1    []string
	Others    []string
	More      int
	Greeting  string
	SignOff   string
	Agency    string
	PortalURL string
}

var urgencyLabels = map[schema.Urgency]string{
	schema.UrgencyGentle:   "friendly reminder",
	schema.UrgencyUrgent:   "action needed",
	schema.UrgencyCritical: "launch blocked",
}

// Generate renders the message for a due reminder. Callers must check
// trigger.ShouldRemind first; when it is false the zero message is returned.
// Output is deterministic for identical inputs.
func (g *Generator) Generate(status schema.ProjectMaterialStatus, trigger schema.ReminderTrigger) schema.ReminderMessage {
	if !trigger.ShouldRemind {
		return schema.ReminderMessage{}
	}
	mt, ok := g.templates.lookup(trigger.Urgency)
	if !ok {
		mt, _ = g.templates.lookup(schema.UrgencyGentle)
	}

	data := g.buildData(status, trigger)
	label, ok := urgencyLabels[trigger.Urgency]
	if !ok {
		label = string(trigger.Urgency)
	}
	// Casers keep state, so each call gets its own.
	msg := schema.ReminderMessage{UrgencyLabel: cases.Title(language.English).String(label)}

	subject, err := execute(mt.subject, data)
	if err != nil {
		subject = "Website content reminder"
	}
	msg.Subject = truncate(singleLine(subject), g.cfg.SubjectBudget)

	preview, err := execute(mt.preview, data)
	if err != nil {
		preview = trigger.Reason
	}
	msg.Preview = singleLine(preview)

	body, err := execute(mt.body, data)
	if err != nil {
		body = msg.Preview
	}
	msg.FullMessage = strings.TrimSpace(body) + "\n"
	return msg
}

func (g *Generator) buildData(status schema.ProjectMaterialStatus, trigger schema.ReminderTrigger) messageData {
	items := material.OutstandingRequired(status)
	if len(items) == 0 {
		for _, it := range status.Items {
			if it.Status.Outstanding() {
				items = append(items, it)
			}
		}
	}

	d := messageData{
		Client:    status.ClientName,
		Count:     len(items),
		Rate:      status.Progress.CompletionRate,
		Reason:    trigger.Reason,
		Agency:    g.cfg.AgencyName,
		PortalURL: g.cfg.PortalURL,
	}
	if d.Client == "" {
		d.Client = "Hello"
	}
	if g.cfg.Tone == ToneFormal {
		d.Greeting = "Dear " + orDefault(status.ClientName, "client") + ","
		d.SignOff = "Kind regards,"
	} else {
		d.Greeting = "Hi " + orDefault(status.ClientName, "there") + ","
		d.SignOff = "Thanks so much!"
	}

	listed := 0
	for _, it := range items {
		if listed == g.cfg.MaxListedItems {
			d.More = len(items) - listed
			break
		}
		label := itemLabel(it)
		if it.Requirement.Phase == schema.Phase1 {
			d.Phase1 = append(d.Phase1, label)
		} else {
			d.Others = append(d.Others, label)
		}
		listed++
	}
	if len(items) > 0 {
		d.First = itemLabel(items[0])
	}
	return d
}

func itemLabel(it schema.ItemStatus) string {
	label := orDefault(it.Requirement.Label, it.Requirement.ID)
	if it.Status == schema.StatusRejected {
		label += " (needs a new version)"
	}
	return label
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate limits s to maxLen runes, ending with an ellipsis when cut.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:maxLen-1])) + "…"
}
