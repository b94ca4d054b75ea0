package fieldtype

import "strings"

// Category groups palette entries so builder UIs can present the catalog in
// sections. The registry only knows about the three canonical groups.
type Category string

const (
	CategoryInput   Category = "input"
	CategorySelect  Category = "select"
	CategorySpecial Category = "special"
)

// Built-in field type discriminators. FieldDefinition.FieldType always holds
// one of these values for forms authored through the palette; unknown values
// can still appear in stored forms and must degrade to the text contract.
const (
	TypeText         = "text"
	TypeTextarea     = "textarea"
	TypeNumber       = "number"
	TypeSlider       = "slider"
	TypeEmail        = "email"
	TypePhone        = "phone"
	TypeDate         = "date"
	TypeTime         = "time"
	TypeDateTime     = "datetime"
	TypeCheckbox     = "checkbox"
	TypeRadio        = "radio"
	TypeSelect       = "select"
	TypeMultiSelect  = "multiselect"
	TypeExternalList = "external-list"
	TypeFile         = "file"
	TypeImage        = "image"
	TypeSignature    = "signature"
	TypeDrawing      = "drawing"
	TypeTable        = "table"
	TypeCalculation  = "calculation"
	TypeGeolocation  = "geolocation"
	TypeAddress      = "address"
	TypeContact      = "contact"
	TypeFixedText    = "fixed-text"
	TypeFileFixed    = "file-fixed"
	TypeRating       = "rating"
	TypeNFC          = "nfc"
)

// Descriptor is one immutable registry entry describing a field type and its
// capability flags. HasOptions signals that definitions of this type carry an
// options list the builder must let authors edit.
type Descriptor struct {
	Type       string
	Label      string
	Icon       string
	HasOptions bool
	Category   Category
}

var catalog = []Descriptor{
	{Type: TypeText, Label: "Text", Icon: "type", Category: CategoryInput},
	{Type: TypeTextarea, Label: "Long text", Icon: "align-left", Category: CategoryInput},
	{Type: TypeNumber, Label: "Number", Icon: "hash", Category: CategoryInput},
	{Type: TypeSlider, Label: "Slider", Icon: "sliders", Category: CategoryInput},
	{Type: TypeEmail, Label: "Email", Icon: "mail", Category: CategoryInput},
	{Type: TypePhone, Label: "Phone", Icon: "phone", Category: CategoryInput},
	{Type: TypeDate, Label: "Date", Icon: "calendar", Category: CategoryInput},
	{Type: TypeTime, Label: "Time", Icon: "clock", Category: CategoryInput},
	{Type: TypeDateTime, Label: "Date and time", Icon: "calendar-clock", Category: CategoryInput},
	{Type: TypeRating, Label: "Rating", Icon: "star", Category: CategoryInput},
	{Type: TypeCheckbox, Label: "Checkboxes", Icon: "check-square", HasOptions: true, Category: CategorySelect},
	{Type: TypeRadio, Label: "Radio buttons", Icon: "circle-dot", HasOptions: true, Category: CategorySelect},
	{Type: TypeSelect, Label: "Dropdown", Icon: "chevron-down", HasOptions: true, Category: CategorySelect},
	{Type: TypeMultiSelect, Label: "Multi select", Icon: "list-checks", HasOptions: true, Category: CategorySelect},
	{Type: TypeExternalList, Label: "External list", Icon: "database", HasOptions: true, Category: CategorySelect},
	{Type: TypeFile, Label: "File upload", Icon: "paperclip", Category: CategorySpecial},
	{Type: TypeImage, Label: "Image", Icon: "image", Category: CategorySpecial},
	{Type: TypeSignature, Label: "Signature", Icon: "pen-tool", Category: CategorySpecial},
	{Type: TypeDrawing, Label: "Drawing", Icon: "brush", Category: CategorySpecial},
	{Type: TypeTable, Label: "Table", Icon: "table", Category: CategorySpecial},
	{Type: TypeCalculation, Label: "Calculation", Icon: "sigma", Category: CategorySpecial},
	{Type: TypeGeolocation, Label: "Geolocation", Icon: "map-pin", Category: CategorySpecial},
	{Type: TypeAddress, Label: "Address", Icon: "home", Category: CategorySpecial},
	{Type: TypeContact, Label: "Contact", Icon: "user", Category: CategorySpecial},
	{Type: TypeFixedText, Label: "Fixed text", Icon: "text", Category: CategorySpecial},
	{Type: TypeFileFixed, Label: "Fixed file", Icon: "file-down", Category: CategorySpecial},
	{Type: TypeNFC, Label: "NFC tag", Icon: "nfc", Category: CategorySpecial},
}

var index = buildIndex()

func buildIndex() map[string]Descriptor {
	out := make(map[string]Descriptor, len(catalog))
	for _, entry := range catalog {
		out[entry.Type] = entry
	}
	return out
}

// Lookup returns the descriptor for the supplied type. Unknown types return a
// zero Descriptor and false; callers fall back to the generic text contract.
func Lookup(fieldType string) (Descriptor, bool) {
	desc, ok := index[strings.TrimSpace(fieldType)]
	return desc, ok
}

// Known reports whether the supplied type is part of the built-in catalog.
func Known(fieldType string) bool {
	_, ok := Lookup(fieldType)
	return ok
}

// HasOptions reports whether definitions of the supplied type carry an
// editable options list. Unknown types never do.
func HasOptions(fieldType string) bool {
	desc, ok := Lookup(fieldType)
	return ok && desc.HasOptions
}

// ByCategory returns the catalog entries for one category in palette order.
// The returned slice is a copy; mutating it does not affect the registry.
func ByCategory(category Category) []Descriptor {
	var out []Descriptor
	for _, entry := range catalog {
		if entry.Category == category {
			out = append(out, entry)
		}
	}
	return out
}

// All returns the full catalog in palette order.
func All() []Descriptor {
	out := make([]Descriptor, len(catalog))
	copy(out, catalog)
	return out
}
