package widgets

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"sync"
)

// Pad is a pointer-driven capture surface over an owned raster buffer with a
// two-state machine: Idle until a pointer goes down, Stroking until it comes
// up or leaves. Signature and free-drawing fields share this shape but each
// pad owns an independent buffer. On every Stroking→Idle transition the
// raster serializes to a PNG data URL and publishes into the owning slot.
type Pad struct {
	mu       sync.Mutex
	width    int
	height   int
	img      *image.RGBA
	stroking bool
	last     image.Point
	inked    bool
	publish  PublishFunc
}

// NewSignaturePad constructs a pad for signature capture.
func NewSignaturePad(width, height int, publish PublishFunc) *Pad {
	return newPad(width, height, publish)
}

// NewDrawingPad constructs a pad for freehand drawing. Same state machine as
// the signature pad, independent raster.
func NewDrawingPad(width, height int, publish PublishFunc) *Pad {
	return newPad(width, height, publish)
}

func newPad(width, height int, publish PublishFunc) *Pad {
	if width <= 0 {
		width = 400
	}
	if height <= 0 {
		height = 200
	}
	if publish == nil {
		publish = discard
	}
	p := &Pad{width: width, height: height, publish: publish}
	p.blank()
	return p
}

// SuppressNativeDrag is a contract of the capture surface: hosts must never
// let it initiate a native drag or text selection. Declared here so renderers
// can assert the behavior instead of hard-coding it.
func (p *Pad) SuppressNativeDrag() bool { return true }

// Stroking reports whether a stroke is in progress.
func (p *Pad) Stroking() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stroking
}

// Empty reports whether anything has been drawn since the last clear.
func (p *Pad) Empty() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.inked
}

// PointerDown enters Stroking at the supplied point. Pointer and touch input
// share this entry point; a down event while already stroking just moves the
// anchor.
func (p *Pad) PointerDown(x, y int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stroking = true
	p.last = image.Point{X: x, Y: y}
	p.plot(p.last)
}

// PointerMove extends the current stroke with a line segment. Ignored while
// idle.
func (p *Pad) PointerMove(x, y int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.stroking {
		return
	}
	next := image.Point{X: x, Y: y}
	p.line(p.last, next)
	p.last = next
}

// PointerUp ends the stroke and publishes the serialized raster.
func (p *Pad) PointerUp() error {
	return p.endStroke()
}

// PointerLeave behaves like PointerUp when a stroke is in progress; leaving
// the surface while idle is a no-op.
func (p *Pad) PointerLeave() error {
	p.mu.Lock()
	if !p.stroking {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()
	return p.endStroke()
}

func (p *Pad) endStroke() error {
	p.mu.Lock()
	if !p.stroking {
		p.mu.Unlock()
		return nil
	}
	p.stroking = false
	encoded, err := p.encode()
	p.mu.Unlock()
	if err != nil {
		return err
	}
	return p.publish(encoded)
}

// Clear resets the raster to a blank canvas and empties the owning slot.
func (p *Pad) Clear() error {
	p.mu.Lock()
	p.blank()
	p.stroking = false
	p.mu.Unlock()
	return p.publish(nil)
}

// DataURL serializes the current raster without a state transition, for
// preview use.
func (p *Pad) DataURL() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.encode()
}

func (p *Pad) blank() {
	p.img = image.NewRGBA(image.Rect(0, 0, p.width, p.height))
	draw.Draw(p.img, p.img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	p.inked = false
}

func (p *Pad) plot(pt image.Point) {
	if pt.X < 0 || pt.Y < 0 || pt.X >= p.width || pt.Y >= p.height {
		return
	}
	p.img.Set(pt.X, pt.Y, color.Black)
	p.inked = true
}

// line draws a Bresenham segment between two points.
func (p *Pad) line(from, to image.Point) {
	dx := abs(to.X - from.X)
	dy := -abs(to.Y - from.Y)
	sx, sy := 1, 1
	if from.X > to.X {
		sx = -1
	}
	if from.Y > to.Y {
		sy = -1
	}
	err := dx + dy

	x, y := from.X, from.Y
	for {
		p.plot(image.Point{X: x, Y: y})
		if x == to.X && y == to.Y {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func (p *Pad) encode() (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, p.img); err != nil {
		return "", fmt.Errorf("widgets: encode pad raster: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
