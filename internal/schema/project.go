package schema

import "time"

// Client identifies the customer who owes content for a project.
type Client struct {
	CompanyName  string `json:"company_name" yaml:"company_name"`
	ContactName  string `json:"contact_name" yaml:"contact_name"`
	ContactEmail string `json:"contact_email" yaml:"contact_email"`
	PrimaryColor string `json:"primary_color" yaml:"primary_color"`
}

// Project is the stored record the reminder sweep iterates over.
// LastReminderSentAt is nil until the first reminder goes out.
type Project struct {
	ID                 string     `json:"id" yaml:"id"`
	Name               string     `json:"name" yaml:"name"`
	TemplateID         string     `json:"template_id" yaml:"template_id"`
	ModuleIDs          []string   `json:"module_ids" yaml:"module_ids"`
	Status             string     `json:"status" yaml:"status"`
	Client             Client     `json:"client" yaml:"client"`
	CreatedAt          time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" yaml:"updated_at"`
	LastReminderSentAt *time.Time `json:"last_reminder_sent_at,omitempty" yaml:"last_reminder_sent_at,omitempty"`
}
