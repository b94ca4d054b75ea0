package formfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goliatone/go-formkit/pkg/model"
)

// Store is the persistence boundary consumed by the engine. Implementations
// live outside the core; FSStore below is a filesystem-backed reference used
// by the CLI and tests.
type Store interface {
	LoadForm(ctx context.Context, id string) (Document, error)
	SaveForm(ctx context.Context, doc Document) error
	Submit(ctx context.Context, formID string, record model.SubmissionRecord) error
}

// FSStore stores forms as YAML files and submissions as JSON files under a
// root directory.
type FSStore struct {
	root string
}

// NewFSStore constructs a store rooted at dir, creating it when missing.
func NewFSStore(dir string) (*FSStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("formfile: store root is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("formfile: create store root: %w", err)
	}
	return &FSStore{root: dir}, nil
}

// LoadForm reads and parses the form document with the supplied id.
func (s *FSStore) LoadForm(ctx context.Context, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Document{}, fmt.Errorf("formfile: form id is required")
	}
	data, err := os.ReadFile(s.formPath(id))
	if err != nil {
		return Document{}, fmt.Errorf("formfile: load form %q: %w", id, err)
	}
	return Parse(data, nil)
}

// SaveForm writes the document under its id.
func (s *FSStore) SaveForm(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(doc.ID) == "" {
		return fmt.Errorf("formfile: document id is required")
	}
	data, err := Encode(doc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.formPath(doc.ID), data, 0o644); err != nil {
		return fmt.Errorf("formfile: save form %q: %w", doc.ID, err)
	}
	return nil
}

// Submit appends a submission record as a timestamped JSON file next to the
// form.
func (s *FSStore) Submit(ctx context.Context, formID string, record model.SubmissionRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	formID = strings.TrimSpace(formID)
	if formID == "" {
		return fmt.Errorf("formfile: form id is required")
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("formfile: encode submission: %w", err)
	}
	dir := filepath.Join(s.root, "submissions", formID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("formfile: create submission dir: %w", err)
	}
	name := fmt.Sprintf("%d.json", time.Now().UnixNano())
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return fmt.Errorf("formfile: write submission: %w", err)
	}
	return nil
}

func (s *FSStore) formPath(id string) string {
	return filepath.Join(s.root, filepath.Base(id)+".yaml")
}
