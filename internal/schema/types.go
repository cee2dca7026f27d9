package schema

import "time"

// FieldType is the kind of content a requirement expects.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
	FieldImage    FieldType = "image"
	FieldLogo     FieldType = "logo"
	FieldColor    FieldType = "color"
	FieldSelect   FieldType = "select"
)

// IsValidFieldType reports whether t is one of the six defined field types.
func IsValidFieldType(t FieldType) bool {
	switch t {
	case FieldText, FieldTextarea, FieldImage, FieldLogo, FieldColor, FieldSelect:
		return true
	}
	return false
}

// IsFile reports whether values of this type are uploaded files rather than text.
func (t FieldType) IsFile() bool {
	return t == FieldImage || t == FieldLogo
}

// Phase is the collection tier of a requirement: 1 foundational brand data,
// 2 primary content, 3 supplementary.
type Phase int

const (
	Phase1 Phase = 1
	Phase2 Phase = 2
	Phase3 Phase = 3
)

// Status is the review state of one submitted item.
type Status string

const (
	StatusMissing  Status = "missing"
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// IsValidStatus reports whether s is one of the four defined statuses.
func IsValidStatus(s Status) bool {
	switch s {
	case StatusMissing, StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Outstanding reports whether the client still owes content for this status.
// Rejected items count as outstanding: the client has to submit again.
func (s Status) Outstanding() bool {
	return s == StatusMissing || s == StatusRejected || s == ""
}

// ContentRequirement is one addressable content slot of a template.
// ID combines module, section and field as "module.section.field".
type ContentRequirement struct {
	ID        string    `json:"id" yaml:"id"`
	ModuleID  string    `json:"module_id" yaml:"module_id"`
	SectionID string    `json:"section_id" yaml:"section_id"`
	FieldID   string    `json:"field_id" yaml:"field_id"`
	Label     string    `json:"label" yaml:"label"`
	Type      FieldType `json:"type" yaml:"type"`
	Required  bool      `json:"required" yaml:"required"`
	Phase     Phase     `json:"collection_phase" yaml:"collection_phase"`
	Rules     Rules     `json:"rules" yaml:"rules"`
}

// Rules holds the quality constraints applied when a requirement is validated.
// Zero values disable the corresponding check.
type Rules struct {
	MinLength  int      `json:"min_length,omitempty" yaml:"min_length,omitempty"`
	MaxLength  int      `json:"max_length,omitempty" yaml:"max_length,omitempty"`
	AllowEmoji bool     `json:"allow_emoji,omitempty" yaml:"allow_emoji,omitempty"`
	Language   string   `json:"language,omitempty" yaml:"language,omitempty"`
	Options    []string `json:"options,omitempty" yaml:"options,omitempty"`

	Formats          []string `json:"formats,omitempty" yaml:"formats,omitempty"`
	MinWidth         int      `json:"min_width,omitempty" yaml:"min_width,omitempty"`
	MinHeight        int      `json:"min_height,omitempty" yaml:"min_height,omitempty"`
	RecommendedWidth int      `json:"recommended_width,omitempty" yaml:"recommended_width,omitempty"`
	MaxSize          int64    `json:"max_size,omitempty" yaml:"max_size,omitempty"`
}

// SubmittedItem is a client's answer for one requirement.
type SubmittedItem struct {
	RequirementID string    `json:"requirement_id" yaml:"requirement_id"`
	Value         string    `json:"value,omitempty" yaml:"value,omitempty"`
	FileURL       string    `json:"file_url,omitempty" yaml:"file_url,omitempty"`
	SubmittedAt   time.Time `json:"submitted_at" yaml:"submitted_at"`
	Status        Status    `json:"status" yaml:"status"`
}

// Progress holds the aggregate counts of a material status.
// Missing is always Total - Submitted.
type Progress struct {
	Total          int `json:"total"`
	Submitted      int `json:"submitted"`
	Approved       int `json:"approved"`
	Missing        int `json:"missing"`
	CompletionRate int `json:"completion_rate"`
}

// ItemStatus pairs a requirement with its current status. SubmittedAt is nil
// when nothing was ever submitted for the requirement.
type ItemStatus struct {
	Requirement ContentRequirement `json:"requirement"`
	Status      Status             `json:"status"`
	SubmittedAt *time.Time         `json:"submitted_at,omitempty"`
}

// ProjectMaterialStatus is derived from the catalog and the submitted items;
// it is never stored. Items holds exactly one entry per selected requirement.
type ProjectMaterialStatus struct {
	ProjectID  string       `json:"project_id"`
	ClientName string       `json:"client_name"`
	TemplateID string       `json:"template_id"`
	Progress   Progress     `json:"progress"`
	Items      []ItemStatus `json:"items"`
}

// Urgency is the escalation level of a due reminder.
type Urgency string

const (
	UrgencyGentle   Urgency = "gentle"
	UrgencyUrgent   Urgency = "urgent"
	UrgencyCritical Urgency = "critical"
)

// UrgencyOrdinal returns the numeric ordering gentle(0) < urgent(1) < critical(2).
// Returns -1 for an unrecognised urgency.
func UrgencyOrdinal(u Urgency) int {
	switch u {
	case UrgencyGentle:
		return 0
	case UrgencyUrgent:
		return 1
	case UrgencyCritical:
		return 2
	default:
		return -1
	}
}

// ReminderTrigger is the gate decision of whether a reminder is due now.
type ReminderTrigger struct {
	ShouldRemind bool    `json:"should_remind"`
	Urgency      Urgency `json:"urgency"`
	Reason       string  `json:"reason"`
	StalledPhase Phase   `json:"stalled_phase,omitempty"`
}

// ReminderMessage is the client-facing rendering of a due reminder.
type ReminderMessage struct {
	Subject      string `json:"subject"`
	Preview      string `json:"preview"`
	FullMessage  string `json:"full_message"`
	UrgencyLabel string `json:"urgency_label"`
}
