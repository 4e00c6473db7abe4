package model

import (
	"bytes"
	"encoding/json"
	"strings"
)

type ValueKind int

const (
	KindEmpty ValueKind = iota
	KindText
	KindMultiChoice
	KindFile
)

// FileRef is the stored stand-in for an uploaded file answer, produced
// by the upload collaborator and persisted verbatim.
type FileRef struct {
	URL  string `json:"url"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Value is a submitted answer value: free text, a multi-choice
// selection, a file reference, or nothing. Submissions are dynamically
// typed JSON, so the one runtime type-sniff lives in UnmarshalJSON;
// everything downstream works with the tagged variant.
//
// The original JSON is kept and re-emitted on marshal, so values pass
// through storage untouched.
type Value struct {
	kind    ValueKind
	text    string
	choices []string
	file    *FileRef

	raw json.RawMessage
}

func TextValue(s string) Value {
	return Value{kind: KindText, text: s}
}

func ChoicesValue(choices ...string) Value {
	return Value{kind: KindMultiChoice, choices: choices}
}

func FileValue(ref FileRef) Value {
	return Value{kind: KindFile, file: &ref}
}

func EmptyValue() Value {
	return Value{}
}

func (v Value) Kind() ValueKind { return v.kind }
func (v Value) Text() string    { return v.text }

func (v Value) Choices() []string { return v.choices }

func (v Value) File() *FileRef { return v.file }

// IsEmpty reports whether the value counts as unanswered: no value at
// all, a blank or whitespace-only string, or an empty selection. File
// references are never empty.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindEmpty:
		return true
	case KindText:
		return strings.TrimSpace(v.text) == ""
	case KindMultiChoice:
		return len(v.choices) == 0
	}
	return false
}

// String renders the value for tabular output. Multi-choice values
// join with "; " (deterministic, comma-safe); file references render
// as their URL so exported cells are clickable links.
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindMultiChoice:
		return strings.Join(v.choices, "; ")
	case KindFile:
		return v.file.URL
	}
	return ""
}

func (v *Value) UnmarshalJSON(data []byte) error {
	v.raw = append(json.RawMessage(nil), data...)

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		v.kind = KindEmpty
		return nil
	}

	switch trimmed[0] {
	case '"':
		v.kind = KindText
		return json.Unmarshal(trimmed, &v.text)

	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		v.kind = KindMultiChoice
		v.choices = make([]string, len(items))
		for i, item := range items {
			var s string
			if json.Unmarshal(item, &s) == nil {
				v.choices[i] = s
			} else {
				v.choices[i] = string(item)
			}
		}
		return nil

	case '{':
		var ref FileRef
		if err := json.Unmarshal(trimmed, &ref); err != nil {
			return err
		}
		if ref.URL != "" {
			v.kind = KindFile
			v.file = &ref
			return nil
		}
		// unrecognized object: keep it as opaque text
		v.kind = KindText
		v.text = string(trimmed)
		return nil

	default:
		// number or boolean literal
		v.kind = KindText
		v.text = string(trimmed)
		return nil
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.raw != nil {
		return v.raw, nil
	}
	switch v.kind {
	case KindText:
		return json.Marshal(v.text)
	case KindMultiChoice:
		return json.Marshal(v.choices)
	case KindFile:
		return json.Marshal(v.file)
	}
	return []byte("null"), nil
}
