package models

import "strings"

// Address is a delivery address as entered at checkout.
type Address struct {
	Street     string `json:"street"`
	Number     string `json:"number,omitempty"`
	City       string `json:"city"`
	Region     string `json:"region,omitempty"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// Missing lists the required fields that are blank.
func (a *Address) Missing() []string {
	if a == nil {
		return []string{"street", "city", "postalCode", "country"}
	}
	var out []string
	for _, f := range []struct{ name, val string }{
		{"street", a.Street},
		{"city", a.City},
		{"postalCode", a.PostalCode},
		{"country", a.Country},
	} {
		if strings.TrimSpace(f.val) == "" {
			out = append(out, f.name)
		}
	}
	return out
}

// Lines renders the address the way operator mail shows it:
// "street number", "city postalCode", "country".
func (a *Address) Lines() []string {
	if a == nil {
		return nil
	}
	return []string{
		strings.TrimSpace(a.Street + " " + a.Number),
		strings.TrimSpace(a.City + " " + a.PostalCode),
		a.Country,
	}
}
