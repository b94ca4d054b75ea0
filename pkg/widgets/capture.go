package widgets

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"sync"

	"github.com/goliatone/go-formkit/pkg/model"
)

// DefaultSizeCeiling caps accepted payloads when the caller does not declare
// a ceiling.
const DefaultSizeCeiling = 5 << 20 // 5 MiB

// CaptureError is a user-facing capture failure (oversized or unsupported
// payload). It is a dismissible notice: the widget stays usable and manual
// entry paths remain open.
type CaptureError struct {
	Filename string
	Size     int64
	Limit    int64
	Reason   string
}

func (e *CaptureError) Error() string {
	if e.Limit > 0 {
		return fmt.Sprintf("widgets: capture of %q rejected: %s (%d bytes, limit %d)",
			e.Filename, e.Reason, e.Size, e.Limit)
	}
	return fmt.Sprintf("widgets: capture of %q rejected: %s", e.Filename, e.Reason)
}

// FileValue is the per-submission slot value of a user upload field.
type FileValue struct {
	DataURL  string `json:"dataUrl"`
	Filename string `json:"filename"`
	Mime     string `json:"mime"`
	Size     int64  `json:"size"`
}

// FileCapture ingests binary payloads for one upload field. Reads are
// asynchronous and not cancellable, so completions are ordered by a sequence
// number taken when the capture starts: a completion older than the latest
// published one is dropped, guaranteeing last-write-wins.
type FileCapture struct {
	mu        sync.Mutex
	limit     int64
	nextSeq   uint64
	published uint64
	publish   PublishFunc
}

// NewFileCapture constructs a capture widget with the supplied size ceiling
// in bytes (0 means DefaultSizeCeiling).
func NewFileCapture(limit int64, publish PublishFunc) *FileCapture {
	if limit <= 0 {
		limit = DefaultSizeCeiling
	}
	if publish == nil {
		publish = discard
	}
	return &FileCapture{limit: limit, publish: publish}
}

// Start reserves a sequence number for a capture about to begin. Completions
// must present it.
func (c *FileCapture) Start() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextSeq++
	return c.nextSeq
}

// Complete finishes the capture identified by seq. Oversized payloads are
// rejected with a CaptureError, never truncated. A completion superseded by a
// newer one publishes nothing and returns the value it would have published.
func (c *FileCapture) Complete(seq uint64, filename, mime string, payload []byte) (FileValue, error) {
	size := int64(len(payload))
	if size > c.limit {
		return FileValue{}, &CaptureError{
			Filename: filename,
			Size:     size,
			Limit:    c.limit,
			Reason:   "file exceeds the size ceiling",
		}
	}
	if len(payload) == 0 {
		return FileValue{}, &CaptureError{Filename: filename, Reason: "empty payload"}
	}

	value := FileValue{
		DataURL:  encodeDataURL(mime, payload),
		Filename: filename,
		Mime:     mime,
		Size:     size,
	}

	c.mu.Lock()
	if seq <= c.published {
		c.mu.Unlock()
		return value, nil
	}
	c.published = seq
	c.mu.Unlock()

	return value, c.publish(value)
}

// Ingest runs a whole synchronous capture: Start plus Complete.
func (c *FileCapture) Ingest(filename, mime string, payload []byte) (FileValue, error) {
	return c.Complete(c.Start(), filename, mime, payload)
}

// AttachFixedAsset stores a form-level fixed asset on the definition's
// attribute map instead of any slot: fixed assets are form configuration
// echoed into every submission as an acknowledgement, not per-submission
// data. The same size ceiling applies.
func AttachFixedAsset(def *model.FieldDefinition, limit int64, filename, mime string, payload []byte) error {
	if def == nil {
		return fmt.Errorf("widgets: nil field definition")
	}
	if limit <= 0 {
		limit = DefaultSizeCeiling
	}
	size := int64(len(payload))
	if size > limit {
		return &CaptureError{
			Filename: filename,
			Size:     size,
			Limit:    limit,
			Reason:   "file exceeds the size ceiling",
		}
	}

	def.SetAttribute(model.AttrFileURL, encodeDataURL(mime, payload))
	def.SetAttribute(model.AttrFileName, filename)
	def.SetAttribute(model.AttrFileMime, mime)
	def.SetAttribute(model.AttrFileSize, strconv.FormatInt(size, 10))
	return nil
}

func encodeDataURL(mime string, payload []byte) string {
	if mime == "" {
		mime = "application/octet-stream"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(payload)
}
