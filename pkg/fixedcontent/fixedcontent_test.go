package fixedcontent

import (
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-formkit/pkg/fieldtype"
	"github.com/goliatone/go-formkit/pkg/model"
)

func TestSanitizeTextStripsScripts(t *testing.T) {
	t.Parallel()

	got := SanitizeText(`<p>Read <b>carefully</b></p><script>alert(1)</script>`)
	if strings.Contains(got, "script") || strings.Contains(got, "alert") {
		t.Fatalf("script content survived: %q", got)
	}
	if !strings.Contains(got, "<b>carefully</b>") {
		t.Fatalf("inline formatting should survive: %q", got)
	}
}

func TestAcknowledgementForFixedText(t *testing.T) {
	t.Parallel()

	def := model.FieldDefinition{
		FieldType: fieldtype.TypeFixedText,
		FieldName: "terms",
		Attributes: map[string]string{
			model.AttrContent: "<em>Terms apply</em>",
		},
	}
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	ack := Acknowledgement(def, now)
	if ack["acknowledged"] != true {
		t.Fatalf("expected acknowledged=true")
	}
	if ack["type"] != fieldtype.TypeFixedText {
		t.Fatalf("unexpected type %v", ack["type"])
	}
	if ack["content"] != "<em>Terms apply</em>" {
		t.Fatalf("unexpected content %v", ack["content"])
	}
	if ack["timestamp"] != "2026-03-01T10:00:00Z" {
		t.Fatalf("unexpected timestamp %v", ack["timestamp"])
	}
}

func TestAcknowledgementForFixedFileUsesFileURL(t *testing.T) {
	t.Parallel()

	def := model.FieldDefinition{
		FieldType: fieldtype.TypeFileFixed,
		FieldName: "manual",
		Attributes: map[string]string{
			model.AttrFileURL: "data:application/pdf;base64,JVBERg==",
		},
	}
	ack := Acknowledgement(def, time.Now())
	if ack["fileUrl"] != def.Attribute(model.AttrFileURL) {
		t.Fatalf("expected fileUrl from attributes")
	}
	if _, hasContent := ack["content"]; hasContent {
		t.Fatalf("file acknowledgement should not carry content")
	}
}
