package lead

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	FieldCity       = "city"
	FieldState      = "state"
	FieldLocation   = "location"
	FieldLeadSource = "lead_source"
)

// Normalizer turns raw form submissions into the CRM's field shape.
type Normalizer struct {
	DefaultSource string
	Country       string
}

func NewNormalizer(defaultSource, country string) *Normalizer {
	if country == "" {
		country = "IN"
	}
	return &Normalizer{DefaultSource: defaultSource, Country: country}
}

// Normalize lower-cases names, merges repeated names and de-duplicates
// values, keeping first-seen order for both. It then derives state and
// location from city and fills in lead_source when they are missing.
func (n *Normalizer) Normalize(raw []RawField) Fields {
	out := make(Fields, 0, len(raw)+3)
	seen := make(map[string]map[string]struct{}, len(raw))

	for _, rf := range raw {
		name := strings.ToLower(strings.TrimSpace(rf.Name))
		if name == "" {
			continue
		}
		idx := out.index(name)
		if idx < 0 {
			out = append(out, Field{Name: name, Values: []string{}})
			idx = len(out) - 1
			seen[name] = make(map[string]struct{})
		}
		for _, v := range rf.Values {
			s, ok := stringify(v)
			if !ok {
				continue
			}
			if _, dup := seen[name][s]; dup {
				continue
			}
			seen[name][s] = struct{}{}
			out[idx].Values = append(out[idx].Values, s)
		}
	}

	// location mirrors city whenever city is present, even with no usable value
	if out.Has(FieldCity) {
		city := out.First(FieldCity)
		if city != "" && !out.Has(FieldState) && !out.Has(FieldLocation) {
			if state, ok := LookupState(n.Country, city); ok {
				out = append(out, Field{Name: FieldState, Values: []string{state}})
			}
		}
		if !out.Has(FieldLocation) {
			values := append([]string{}, out.Get(FieldCity)...)
			out = append(out, Field{Name: FieldLocation, Values: values})
		}
	}

	if !out.Has(FieldLeadSource) && n.DefaultSource != "" {
		out = append(out, Field{Name: FieldLeadSource, Values: []string{n.DefaultSource}})
	}
	return out
}

func stringify(v any) (string, bool) {
	var s string
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		s = t
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		s = strconv.FormatBool(t)
	default:
		s = fmt.Sprint(t)
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

type Contact struct {
	Name  string
	Phone string
	Email string
	City  string
	State string
}

// ExtractContact pulls the convenience columns out of normalized fields,
// accepting the aliases the platform's stock form questions use.
func ExtractContact(f Fields) Contact {
	name := f.First("full_name", "name")
	if name == "" {
		name = strings.TrimSpace(f.First("first_name") + " " + f.First("last_name"))
	}
	return Contact{
		Name:  name,
		Phone: f.First("phone_number", "phone", "mobile_number", "whatsapp_number"),
		Email: strings.ToLower(f.First("email", "email_address", "work_email")),
		City:  f.First(FieldCity),
		State: f.First(FieldState),
	}
}
