// Command formkit-cli imports form definitions from OpenAPI documents and
// fills stored forms interactively from the terminal.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/goliatone/go-formkit/pkg/controls"
	"github.com/goliatone/go-formkit/pkg/fieldtype"
	"github.com/goliatone/go-formkit/pkg/fixedcontent"
	"github.com/goliatone/go-formkit/pkg/formfile"
	"github.com/goliatone/go-formkit/pkg/formula"
	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/openapi"
	"github.com/goliatone/go-formkit/pkg/submission"
	"github.com/goliatone/go-formkit/pkg/widgets"
)

var errAborted = errors.New("aborted")

func main() {
	storeDir := flag.String("store", ".formkit", "form store directory")
	formID := flag.String("form", "", "form id to fill")
	importPath := flag.String("import", "", "OpenAPI document to import a form from")
	operation := flag.String("operation", "", "operation ID to import")
	name := flag.String("name", "", "form name when importing")
	output := flag.String("output", "", "submission output file (stdout if empty)")
	flag.Parse()

	store, err := formfile.NewFSStore(*storeDir)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	ctx := context.Background()

	switch {
	case *importPath != "":
		if err := runImport(ctx, store, *importPath, *operation, *name); err != nil {
			log.Fatalf("Failed to import form: %v", err)
		}
	case *formID != "":
		if err := runFill(ctx, store, *formID, *output); err != nil {
			if errors.Is(err, errAborted) {
				os.Exit(1)
			}
			log.Fatalf("Failed to fill form: %v", err)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func runImport(ctx context.Context, store formfile.Store, path, operationID, name string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	fields, err := openapi.ImportOperation(ctx, data, operationID)
	if err != nil {
		return err
	}
	if name == "" {
		name = operationID
	}
	doc := formfile.Document{
		ID:      model.SlugifyFieldName(name),
		Name:    name,
		Version: "1",
		Fields:  fields,
	}
	if err := store.SaveForm(ctx, doc); err != nil {
		return err
	}
	fmt.Printf("Imported %d fields into form %q\n", len(fields), doc.ID)
	return nil
}

func runFill(ctx context.Context, store formfile.Store, formID, output string) error {
	doc, err := store.LoadForm(ctx, formID)
	if err != nil {
		return err
	}

	graph := controls.Build(doc.Fields)
	engine := formula.NewEngine(graph)
	engine.Watch(doc.Fields)
	graph.OnChange(engine.NotifyChange)
	defer engine.Stop()

	fmt.Printf("%s (%d fields)\n\n", doc.Name, len(doc.Fields))
	for _, def := range doc.Fields {
		if err := promptField(def, graph); err != nil {
			return err
		}
	}
	engine.Flush()

	pipeline := submission.New(submission.WithFormVersion(doc.Version))
	if summary := pipeline.Check(graph); !summary.Valid() {
		for field, messages := range summary.Errors {
			for _, message := range messages {
				fmt.Fprintf(os.Stderr, "  %s: %s\n", field, message)
			}
		}
		return fmt.Errorf("form has %d validation errors", summary.Count)
	}
	fmt.Printf("\nCompletion: %.0f%%\n", pipeline.CompletionPercent(doc.Fields, graph))

	record := pipeline.Normalize(doc.Fields, graph)
	if err := store.Submit(ctx, doc.ID, record); err != nil {
		return err
	}

	payload, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}
	if output != "" {
		if err := os.WriteFile(output, payload, 0o644); err != nil {
			return err
		}
		fmt.Printf("Submission written to %s\n", output)
		return nil
	}
	fmt.Println(string(payload))
	return nil
}

func promptField(def model.FieldDefinition, graph *controls.Graph) error {
	switch {
	case fixedcontent.IsFixed(def.FieldType):
		showFixed(def)
		return nil
	case def.FieldType == fieldtype.TypeCalculation:
		// Computed by the formula engine, never prompted.
		return nil
	case controls.IsComposite(def.FieldType):
		return promptComposite(def, graph)
	}

	switch def.FieldType {
	case fieldtype.TypeRadio, fieldtype.TypeSelect, fieldtype.TypeExternalList:
		return promptSelect(def, graph)
	case fieldtype.TypeCheckbox, fieldtype.TypeMultiSelect:
		return promptMultiSelect(def, graph)
	case fieldtype.TypeTextarea:
		return promptMultiline(def, graph)
	case fieldtype.TypeNumber, fieldtype.TypeSlider, fieldtype.TypeRating:
		return promptNumber(def, graph)
	case fieldtype.TypeFile:
		return promptFile(def, graph)
	case fieldtype.TypeSignature, fieldtype.TypeDrawing, fieldtype.TypeTable:
		fmt.Printf("  (skipping %s %q: not capturable in a terminal)\n", def.FieldType, def.Label)
		return nil
	default:
		return promptText(def, graph)
	}
}

func showFixed(def model.FieldDefinition) {
	if def.FieldType == fieldtype.TypeFixedText {
		fmt.Printf("--- %s ---\n%s\n\n", def.Label, fixedcontent.SanitizeText(def.Attribute(model.AttrContent)))
		return
	}
	fmt.Printf("--- %s: %s ---\n\n", def.Label, def.Attribute(model.AttrFileURL))
}

func promptText(def model.FieldDefinition, graph *controls.Graph) error {
	prompt := &survey.Input{Message: message(def), Default: def.Placeholder}
	var out string
	if err := ask(prompt, &out); err != nil {
		return err
	}
	return setAndReport(graph, def.FieldName, out)
}

func promptMultiline(def model.FieldDefinition, graph *controls.Graph) error {
	prompt := &survey.Multiline{Message: message(def)}
	var out string
	if err := ask(prompt, &out); err != nil {
		return err
	}
	return setAndReport(graph, def.FieldName, out)
}

func promptNumber(def model.FieldDefinition, graph *controls.Graph) error {
	prompt := &survey.Input{Message: message(def)}
	var out string
	err := ask(prompt, &out, survey.WithValidator(func(ans interface{}) error {
		text, _ := ans.(string)
		text = strings.TrimSpace(text)
		if text == "" {
			return nil
		}
		if _, err := strconv.ParseFloat(text, 64); err != nil {
			return errors.New("enter a number")
		}
		return nil
	}))
	if err != nil {
		return err
	}
	value := float64(0)
	if trimmed := strings.TrimSpace(out); trimmed != "" {
		value, _ = strconv.ParseFloat(trimmed, 64)
	}
	return setAndReport(graph, def.FieldName, value)
}

func promptSelect(def model.FieldDefinition, graph *controls.Graph) error {
	labels, byLabel := optionNames(def)
	if len(labels) == 0 {
		return promptText(def, graph)
	}
	prompt := &survey.Select{Message: message(def), Options: labels}
	var out string
	if err := ask(prompt, &out); err != nil {
		return err
	}
	return setAndReport(graph, def.FieldName, byLabel[out])
}

func promptMultiSelect(def model.FieldDefinition, graph *controls.Graph) error {
	labels, byLabel := optionNames(def)
	if len(labels) == 0 {
		return nil
	}
	prompt := &survey.MultiSelect{Message: message(def), Options: labels}
	var out []string
	if err := ask(prompt, &out); err != nil {
		return err
	}
	values := make([]string, 0, len(out))
	for _, label := range out {
		values = append(values, byLabel[label])
	}
	return setAndReport(graph, def.FieldName, values)
}

func promptComposite(def model.FieldDefinition, graph *controls.Graph) error {
	fmt.Printf("%s:\n", message(def))
	for _, key := range controls.CompositeSlotNames(def) {
		if key == def.FieldName {
			continue
		}
		part := strings.TrimPrefix(key, def.FieldName+"_")
		prompt := &survey.Input{Message: "  " + part}
		var out string
		if err := ask(prompt, &out); err != nil {
			return err
		}
		if err := setAndReport(graph, key, out); err != nil {
			return err
		}
	}
	return nil
}

func promptFile(def model.FieldDefinition, graph *controls.Graph) error {
	prompt := &survey.Input{Message: message(def) + " (file path, empty to skip)"}
	var path string
	if err := ask(prompt, &path); err != nil {
		return err
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	payload, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "  cannot read %s: %v\n", path, err)
		return nil
	}
	capture := widgets.NewFileCapture(0, widgets.SlotPublisher(graph, def.FieldName))
	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if _, err := capture.Ingest(filepath.Base(path), mimeType, payload); err != nil {
		fmt.Fprintf(os.Stderr, "  %v\n", err)
	}
	return nil
}

func optionNames(def model.FieldDefinition) ([]string, map[string]string) {
	labels := make([]string, 0, len(def.Options))
	byLabel := make(map[string]string, len(def.Options))
	for _, option := range def.Options {
		label := option.Label
		if label == "" {
			label = option.Value
		}
		labels = append(labels, label)
		byLabel[label] = option.Value
	}
	return labels, byLabel
}

func message(def model.FieldDefinition) string {
	label := def.Label
	if label == "" {
		label = def.FieldName
	}
	if def.Required {
		label += " *"
	}
	return label
}

func setAndReport(graph *controls.Graph, key string, value any) error {
	if err := graph.SetValue(key, value); err != nil {
		return err
	}
	if err := graph.Validate(key); err != nil {
		fmt.Fprintf(os.Stderr, "  %v\n", err)
	}
	return nil
}

func ask(prompt survey.Prompt, response interface{}, opts ...survey.AskOpt) error {
	if err := survey.AskOne(prompt, response, opts...); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return errAborted
		}
		return err
	}
	return nil
}
