// Package openapi imports field definitions from OpenAPI documents. The
// request-body schema of one operation becomes an ordered field list that the
// builder can load directly.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formkit/pkg/fieldtype"
	"github.com/goliatone/go-formkit/pkg/model"
)

// ImportOperation loads an OpenAPI document and converts the JSON
// request-body schema of the operation with the given operationId into field
// definitions. Properties map to field types by schema type and format;
// unsupported shapes fall back to text.
func ImportOperation(ctx context.Context, data []byte, operationID string) ([]model.FieldDefinition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}
	operationID = strings.TrimSpace(operationID)
	if operationID == "" {
		return nil, errors.New("openapi: operation id is required")
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("openapi: validate document: %w", err)
	}

	operation := findOperation(doc, operationID)
	if operation == nil {
		return nil, fmt.Errorf("openapi: operation %q not found", operationID)
	}

	schema := requestSchema(operation)
	if schema == nil {
		return nil, fmt.Errorf("openapi: operation %q has no JSON request body schema", operationID)
	}

	return fieldsFromSchema(schema), nil
}

func findOperation(doc *openapi3.T, operationID string) *openapi3.Operation {
	if doc.Paths == nil {
		return nil
	}
	for _, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for _, op := range item.Operations() {
			if op != nil && op.OperationID == operationID {
				return op
			}
		}
	}
	return nil
}

func requestSchema(op *openapi3.Operation) *openapi3.Schema {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	media := op.RequestBody.Value.Content.Get("application/json")
	if media == nil || media.Schema == nil || media.Schema.Value == nil {
		return nil
	}
	schema := media.Schema.Value
	if !schema.Type.Is(openapi3.TypeObject) || len(schema.Properties) == 0 {
		return nil
	}
	return schema
}

// fieldsFromSchema converts object properties into definitions. Property
// iteration order in kin-openapi is map order, so names are sorted for a
// deterministic field sequence before order numbers are assigned.
func fieldsFromSchema(schema *openapi3.Schema) []model.FieldDefinition {
	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}

	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	taken := model.FieldNames(nil)
	fields := make([]model.FieldDefinition, 0, len(names))
	for _, name := range names {
		ref := schema.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		def := fieldFromProperty(name, ref.Value)
		def.Required = required[name]
		def.Order = len(fields)
		if _, dup := taken[def.FieldName]; dup || def.FieldName == model.MetadataKey {
			def.FieldName = model.UniqueFieldName(def.FieldName, taken)
		}
		taken[def.FieldName] = struct{}{}
		fields = append(fields, def)
	}
	return fields
}

func fieldFromProperty(name string, prop *openapi3.Schema) model.FieldDefinition {
	def := model.FieldDefinition{
		FieldName: model.SlugifyFieldName(name),
		Label:     labelFromProperty(name, prop),
		FieldType: fieldTypeFor(prop),
	}

	if len(prop.Enum) > 0 && def.FieldType != fieldtype.TypeMultiSelect {
		def.FieldType = fieldtype.TypeSelect
	}
	switch def.FieldType {
	case fieldtype.TypeSelect:
		def.Options = optionsFromEnum(prop.Enum)
	case fieldtype.TypeMultiSelect:
		if prop.Items != nil && prop.Items.Value != nil {
			def.Options = optionsFromEnum(prop.Items.Value.Enum)
		}
	}

	def.Validation = rulesFromProperty(prop)
	return def
}

func fieldTypeFor(prop *openapi3.Schema) string {
	switch {
	case prop.Type.Is(openapi3.TypeBoolean):
		return fieldtype.TypeCheckbox
	case prop.Type.Is(openapi3.TypeInteger), prop.Type.Is(openapi3.TypeNumber):
		return fieldtype.TypeNumber
	case prop.Type.Is(openapi3.TypeArray):
		return fieldtype.TypeMultiSelect
	case prop.Type.Is(openapi3.TypeString):
		switch prop.Format {
		case "email":
			return fieldtype.TypeEmail
		case "date":
			return fieldtype.TypeDate
		case "date-time":
			return fieldtype.TypeDateTime
		case "time":
			return fieldtype.TypeTime
		}
		if prop.MaxLength != nil && *prop.MaxLength > 255 {
			return fieldtype.TypeTextarea
		}
		return fieldtype.TypeText
	default:
		return fieldtype.TypeText
	}
}

func labelFromProperty(name string, prop *openapi3.Schema) string {
	if title := strings.TrimSpace(prop.Title); title != "" {
		return title
	}
	label := strings.NewReplacer("_", " ", "-", " ").Replace(name)
	label = strings.TrimSpace(label)
	if label == "" {
		return name
	}
	return strings.ToUpper(label[:1]) + label[1:]
}

func optionsFromEnum(enum []any) []model.Option {
	options := make([]model.Option, 0, len(enum))
	for _, raw := range enum {
		text := fmt.Sprintf("%v", raw)
		if strings.TrimSpace(text) == "" {
			continue
		}
		options = append(options, model.Option{Value: text, Label: text})
	}
	return options
}

func rulesFromProperty(prop *openapi3.Schema) model.ValidationRules {
	var rules model.ValidationRules

	if prop.MinLength > 0 {
		value := int(prop.MinLength)
		rules.MinLength = &value
	}
	if prop.MaxLength != nil {
		value := int(*prop.MaxLength)
		rules.MaxLength = &value
	}
	if prop.Pattern != "" {
		rules.Pattern = prop.Pattern
	}
	if prop.Min != nil {
		value := *prop.Min
		rules.Min = &value
	}
	if prop.Max != nil {
		value := *prop.Max
		rules.Max = &value
	}
	if prop.Format == "email" {
		rules.Email = true
	}
	return rules
}
