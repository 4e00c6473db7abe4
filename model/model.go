package model

import "time"

// Closed set of field types a form may use. Options are only
// meaningful for the choice types (dropdown, checkbox, radio).
const (
	FieldText     = "text"
	FieldTextarea = "textarea"
	FieldEmail    = "email"
	FieldNumber   = "number"
	FieldDropdown = "dropdown"
	FieldCheckbox = "checkbox"
	FieldRadio    = "radio"
	FieldDate     = "date"
	FieldFile     = "file"
)

var fieldTypes = map[string]bool{
	FieldText:     true,
	FieldTextarea: true,
	FieldEmail:    true,
	FieldNumber:   true,
	FieldDropdown: true,
	FieldCheckbox: true,
	FieldRadio:    true,
	FieldDate:     true,
	FieldFile:     true,
}

func ValidFieldType(t string) bool {
	return fieldTypes[t]
}

// FormField is one question definition within a form. ID is an opaque
// string assigned once at field creation and kept stable across edits,
// so stored responses keep resolving after the form changes.
type FormField struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Type     string   `json:"type"`
	Required bool     `json:"required"`
	Options  []string `json:"options,omitempty"`
}

type Form struct {
	ID          int         `json:"id,omitempty"`
	Version     int         `json:"version,omitempty"`
	UserID      string      `json:"userId,omitempty"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Fields      []FormField `json:"fields"`
	Color       string      `json:"color,omitempty"`
	Cover       *string     `json:"cover"`
	Logo        *string     `json:"logo"`
	Published   bool        `json:"published"`
	PublishedAt *string     `json:"publishedAt"`
	CreatedAt   time.Time   `json:"createdAt,omitempty"`
	UpdatedAt   time.Time   `json:"updatedAt,omitempty"`
}

// FormPatch is a partial form update. Nil pointers mean "leave as is".
// Cover and Logo may be set to the empty string to clear the image.
// Version must match the stored form or the update is rejected.
type FormPatch struct {
	Version     int          `json:"version"`
	Title       *string      `json:"title"`
	Description *string      `json:"description"`
	Color       *string      `json:"color"`
	Cover       *string      `json:"cover"`
	Logo        *string      `json:"logo"`
	Fields      *[]FormField `json:"fields"`
}

// RawAnswer is one untrusted submitted answer. The public surface may
// address a field either by its id or by its label.
type RawAnswer struct {
	FieldID string `json:"fieldId,omitempty"`
	Label   string `json:"label,omitempty"`
	Value   Value  `json:"value"`
}

// FieldAnswer is a normalized answer as persisted: resolved to the
// field's canonical label, value untouched.
type FieldAnswer struct {
	Label string `json:"label"`
	Value Value  `json:"value"`
}

type Response struct {
	ID        int           `json:"id"`
	FormID    int           `json:"formId"`
	Responses []FieldAnswer `json:"responses"`
	CreatedAt time.Time     `json:"createdAt"`
}
