package account

import (
	"acctdesk/internal/element"
	"acctdesk/internal/validation"
)

// Payload is the account data sent to the backend. A nil Data value is sent
// as JSON null.
type Payload struct {
	ID   int64              `json:"id,omitempty"`
	Name string             `json:"name"`
	Data map[string]*string `json:"data"`
}

// Extractor reads a Payload out of a record's name field and detail rows.
type Extractor struct {
	name    element.Element
	details *Details
}

func NewExtractor(name element.Element, details *Details) *Extractor {
	return &Extractor{name: name, details: details}
}

// Extract returns false when the name is blank or no row has a key.
func (x *Extractor) Extract() (Payload, bool) {
	data := x.detailsData()
	if x.name == nil || validation.CheckEmpty(x.name, false, true) {
		return Payload{}, false
	}
	if len(data) == 0 {
		return Payload{}, false
	}
	return Payload{Name: x.name.Value(), Data: data}, true
}

func (x *Extractor) detailsData() map[string]*string {
	data := map[string]*string{}
	if x.details == nil {
		return data
	}
	for _, row := range x.details.Rows() {
		key := validation.ValueOrEmpty(query(row, DetailNameClass))
		if key == "" {
			continue
		}
		if v := validation.ValueOrEmpty(query(row, DetailValueClass)); v != "" {
			data[key] = &v
		} else {
			data[key] = nil
		}
	}
	return data
}
