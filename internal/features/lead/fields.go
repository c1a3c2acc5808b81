package lead

import (
	"strings"
)

// RawField is one entry of a form submission as the ad platform reports it.
// Values are left untyped; the platform sends strings, numbers and booleans.
type RawField struct {
	Name   string `json:"name"`
	Values []any  `json:"values"`
}

type Field struct {
	Name   string   `json:"name" bson:"name"`
	Values []string `json:"values" bson:"values"`
}

// Fields is the ordered, normalized submission payload of a lead.
type Fields []Field

// Get returns the values stored under name, or nil.
func (f Fields) Get(name string) []string {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, field := range f {
		if field.Name == name {
			return field.Values
		}
	}
	return nil
}

func (f Fields) Has(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, field := range f {
		if field.Name == name {
			return true
		}
	}
	return false
}

// First returns the first non-empty value among names, checked in order.
func (f Fields) First(names ...string) string {
	for _, name := range names {
		for _, v := range f.Get(name) {
			if v != "" {
				return v
			}
		}
	}
	return ""
}

func (f Fields) index(name string) int {
	for i, field := range f {
		if field.Name == name {
			return i
		}
	}
	return -1
}
