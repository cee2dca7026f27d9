package schema

import "time"

// ExportProject is the project header of an export snapshot.
type ExportProject struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	TemplateID string    `json:"template_id"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ExportField is one field of the export tree. A nil Value means the
// client has not provided it; serializers render that explicitly.
type ExportField struct {
	ID     string    `json:"id"`
	Label  string    `json:"label"`
	Type   FieldType `json:"type"`
	Status Status    `json:"status"`
	Value  any       `json:"value"`
}

// ExportSection groups fields under one section heading.
type ExportSection struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Fields []ExportField `json:"fields"`
}

// ExportModule groups sections under one module heading.
type ExportModule struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Sections []ExportSection `json:"sections"`
}

// FileRecord references an uploaded file belonging to the project.
type FileRecord struct {
	ID         string    `json:"id" yaml:"id"`
	FileName   string    `json:"file_name" yaml:"file_name"`
	FileType   string    `json:"file_type" yaml:"file_type"`
	URL        string    `json:"url" yaml:"url"`
	UploadedAt time.Time `json:"uploaded_at" yaml:"uploaded_at"`
}

// ExportData is a transient denormalized snapshot built for serialization.
type ExportData struct {
	Project    ExportProject  `json:"project"`
	Client     Client         `json:"client"`
	Modules    []ExportModule `json:"modules"`
	Files      []FileRecord   `json:"files"`
	ExportedAt time.Time      `json:"exported_at"`
}

// FileValue is the structured value of an uploaded-file field.
type FileValue struct {
	URL      string `json:"url"`
	FileName string `json:"file_name"`
}
