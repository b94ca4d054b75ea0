// Package submission turns a live control graph plus its field definitions
// into the final exportable record. One normalizer per field kind lives in a
// lookup table; unknown kinds pass the raw slot value through. Normalization
// is total: a missing or malformed value degrades to the type's documented
// default and is logged for diagnostics only.
package submission

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-formkit/pkg/controls"
	"github.com/goliatone/go-formkit/pkg/fieldtype"
	"github.com/goliatone/go-formkit/pkg/fixedcontent"
	"github.com/goliatone/go-formkit/pkg/model"
)

// Normalizer shapes one field's slot state into its submission record value.
type Normalizer func(p *Pipeline, def model.FieldDefinition, graph *controls.Graph) any

// Pipeline holds the per-type normalizer table plus the metadata stamped into
// every record.
type Pipeline struct {
	normalizers   map[string]Normalizer
	fallback      Normalizer
	logger        *zap.Logger
	now           func() time.Time
	newID         func() string
	currentUserID func() int
	locale        string
	formVersion   string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger injects a diagnostics logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithClock overrides the timestamp source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// WithIdentity sources the user id stamped into submission metadata. The
// normalizers themselves never consult it.
func WithIdentity(currentUserID func() int) Option {
	return func(p *Pipeline) {
		if currentUserID != nil {
			p.currentUserID = currentUserID
		}
	}
}

// WithLocale records the client locale in submission metadata.
func WithLocale(locale string) Option {
	return func(p *Pipeline) { p.locale = strings.TrimSpace(locale) }
}

// WithFormVersion records the form version in submission metadata.
func WithFormVersion(version string) Option {
	return func(p *Pipeline) { p.formVersion = strings.TrimSpace(version) }
}

// New constructs a pipeline with the built-in normalizer table.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		normalizers: make(map[string]Normalizer),
		fallback:    normalizeRaw,
		logger:      zap.NewNop(),
		now:         time.Now,
		newID:       uuid.NewString,
	}
	p.registerBuiltins()
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Register installs or replaces a normalizer for a field type.
func (p *Pipeline) Register(fieldType string, normalize Normalizer) {
	if normalize == nil {
		return
	}
	fieldType = strings.TrimSpace(fieldType)
	if fieldType == "" {
		return
	}
	p.normalizers[fieldType] = normalize
}

// Normalize produces the submission record for the current graph state.
// Every definition contributes exactly one record key (composites one
// documented composite key); absence is a typed default, never key omission.
// Per-field problems never abort sibling fields.
func (p *Pipeline) Normalize(fields []model.FieldDefinition, graph *controls.Graph) model.SubmissionRecord {
	record := make(model.SubmissionRecord, len(fields)+1)
	for _, def := range fields {
		if def.FieldName == "" || def.FieldName == model.MetadataKey {
			p.logger.Warn("submission: skipping field with invalid name",
				zap.String("fieldName", def.FieldName))
			continue
		}
		normalize, ok := p.normalizers[def.FieldType]
		if !ok {
			normalize = p.fallback
		}
		record[def.FieldName] = normalize(p, def, graph)
	}

	meta := model.SubmissionMetadata{
		SubmissionID: p.newID(),
		Timestamp:    p.now().UTC(),
		Locale:       p.locale,
		FormVersion:  p.formVersion,
	}
	if p.currentUserID != nil {
		meta.UserID = p.currentUserID()
	}
	record[model.MetadataKey] = meta
	return record
}

// Check runs the submit-time aggregate validity gate. It is the only thing
// that blocks a submit; inline per-field errors remain recoverable.
func (p *Pipeline) Check(graph *controls.Graph) controls.Summary {
	return graph.ValidateAll()
}

// CompletionPercent reports how much of the form has been filled, in
// [0,100]. Fixed-content fields are excluded: they carry no user input. A
// checkbox counts as filled only when at least one option is selected.
func (p *Pipeline) CompletionPercent(fields []model.FieldDefinition, graph *controls.Graph) float64 {
	total := 0
	filled := 0
	for _, def := range fields {
		if fixedcontent.IsFixed(def.FieldType) {
			continue
		}
		total++
		if p.fieldFilled(def, graph) {
			filled++
		}
	}
	if total == 0 {
		return 100
	}
	return float64(filled) / float64(total) * 100
}

func (p *Pipeline) fieldFilled(def model.FieldDefinition, graph *controls.Graph) bool {
	if controls.IsComposite(def.FieldType) {
		for _, key := range controls.CompositeSlotNames(def) {
			if value, ok := graph.Value(key); ok && !controls.IsEmptyValue(def.FieldType, value) {
				return true
			}
		}
		return false
	}
	value, ok := graph.Value(def.FieldName)
	if !ok {
		return false
	}
	return !controls.IsEmptyValue(def.FieldType, value)
}

func (p *Pipeline) registerBuiltins() {
	for _, scalar := range []string{
		fieldtype.TypeText, fieldtype.TypeTextarea, fieldtype.TypeEmail,
		fieldtype.TypePhone, fieldtype.TypeDate, fieldtype.TypeTime,
		fieldtype.TypeDateTime, fieldtype.TypeRadio, fieldtype.TypeSelect,
		fieldtype.TypeExternalList, fieldtype.TypeNFC,
	} {
		p.Register(scalar, normalizeString)
	}
	for _, numeric := range []string{
		fieldtype.TypeNumber, fieldtype.TypeSlider, fieldtype.TypeRating,
	} {
		p.Register(numeric, normalizeNumber)
	}
	for _, list := range []string{fieldtype.TypeCheckbox, fieldtype.TypeMultiSelect} {
		p.Register(list, normalizeList)
	}
	for _, fixed := range []string{
		fieldtype.TypeFixedText, fieldtype.TypeFileFixed, fieldtype.TypeImage,
	} {
		p.Register(fixed, normalizeFixed)
	}
	for _, composite := range []string{fieldtype.TypeAddress, fieldtype.TypeContact} {
		p.Register(composite, normalizeComposite)
	}
	p.Register(fieldtype.TypeCalculation, normalizeCalculation)
	p.Register(fieldtype.TypeGeolocation, normalizeGeolocation)
	// file, image uploads, signature, drawing, table publish structured slot
	// values that pass through unchanged.
	for _, raw := range []string{
		fieldtype.TypeFile, fieldtype.TypeSignature, fieldtype.TypeDrawing,
		fieldtype.TypeTable,
	} {
		p.Register(raw, normalizeRaw)
	}
}

func normalizeRaw(p *Pipeline, def model.FieldDefinition, graph *controls.Graph) any {
	value, ok := graph.Value(def.FieldName)
	if !ok {
		p.logger.Debug("submission: missing slot, emitting type default",
			zap.String("fieldName", def.FieldName))
		return controls.DefaultValue(def.FieldType)
	}
	return value
}

func normalizeString(p *Pipeline, def model.FieldDefinition, graph *controls.Graph) any {
	value, ok := graph.Value(def.FieldName)
	if !ok || value == nil {
		return ""
	}
	if s, isString := value.(string); isString {
		return s
	}
	p.logger.Debug("submission: coercing non-string scalar",
		zap.String("fieldName", def.FieldName))
	return stringify(value)
}

func normalizeNumber(p *Pipeline, def model.FieldDefinition, graph *controls.Graph) any {
	value, ok := graph.Value(def.FieldName)
	if !ok || value == nil {
		return float64(0)
	}
	if num, numeric := floatFrom(value); numeric {
		return num
	}
	p.logger.Debug("submission: non-numeric value in numeric field, emitting 0",
		zap.String("fieldName", def.FieldName))
	return float64(0)
}

// normalizeList always emits the list as-is, including empty lists: arrays
// are never replaced by a scalar default.
func normalizeList(p *Pipeline, def model.FieldDefinition, graph *controls.Graph) any {
	value, ok := graph.Value(def.FieldName)
	if !ok || value == nil {
		return []string{}
	}
	switch v := value.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, stringify(item))
		}
		return out
	default:
		p.logger.Debug("submission: scalar in list field, wrapping",
			zap.String("fieldName", def.FieldName))
		return []string{stringify(v)}
	}
}

// normalizeCalculation re-reads the live slot value at normalization time;
// cached results are never trusted. Parseable numbers stay numbers, the
// error sentinel (or any other text) stays a string, anything else is 0.
func normalizeCalculation(p *Pipeline, def model.FieldDefinition, graph *controls.Graph) any {
	value, ok := graph.Value(def.FieldName)
	if !ok || value == nil {
		return float64(0)
	}
	if num, numeric := floatFrom(value); numeric {
		return num
	}
	if s, isString := value.(string); isString && s != "" {
		return s
	}
	return float64(0)
}

func normalizeGeolocation(p *Pipeline, def model.FieldDefinition, graph *controls.Graph) any {
	value, ok := graph.Value(def.FieldName)
	if !ok || value == nil {
		return nil
	}
	if coord, structured := coordinateFromValue(value); structured {
		return coord
	}
	if s, isString := value.(string); isString {
		if coord, parsed := ParseCoordinate(s); parsed {
			return coord
		}
	}
	p.logger.Debug("submission: unusable geolocation value, emitting null",
		zap.String("fieldName", def.FieldName))
	return nil
}

// normalizeComposite assembles address/contact objects from the umbrella
// slot plus the suffixed sibling slots. The result is nil only when every
// constituent part is empty; a partial composite keeps empty-string siblings.
func normalizeComposite(p *Pipeline, def model.FieldDefinition, graph *controls.Graph) any {
	keys := controls.CompositeSlotNames(def)
	out := make(map[string]any, len(keys))

	if umbrella, ok := graph.Value(def.FieldName); ok {
		if m, isMap := umbrella.(map[string]any); isMap {
			for k, v := range m {
				out[k] = v
			}
		}
	}

	allEmpty := true
	for _, key := range keys {
		part := strings.TrimPrefix(key, def.FieldName+"_")
		value, ok := graph.Value(key)
		text := ""
		if ok && value != nil {
			text = stringify(value)
		}
		if text != "" {
			allEmpty = false
		}
		if _, fromUmbrella := out[part]; !fromUmbrella || text != "" {
			out[part] = text
		}
	}
	for _, v := range out {
		if s, isString := v.(string); !isString || s != "" {
			allEmpty = false
		}
	}
	if allEmpty {
		return nil
	}
	return out
}

// normalizeFixed sources the acknowledgement from the definition attributes,
// never the slot: fixed content is form configuration, not user data.
func normalizeFixed(p *Pipeline, def model.FieldDefinition, _ *controls.Graph) any {
	return fixedcontent.Acknowledgement(def, p.now())
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}
