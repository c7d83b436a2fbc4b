// Package tty implements a simple terminal on top of a console device.
package tty

import "github.com/sureSundar/STEPPPS-sub015/device/video/console"

const (
	defaultFg = console.LightGrey
	defaultBg = console.Black
)

// Vt implements a terminal that can process LF and CR characters. The
// terminal uses a console device for its output and implements io.Writer
// so it can serve as the kernel's log sink. The machine is single-core
// and terminal writes from interrupt handlers run with interrupts masked,
// so no locking is required.
type Vt struct {
	cons console.Console

	width  uint16
	height uint16

	curX    uint16
	curY    uint16
	curAttr console.Attr
}

// NewVt returns a terminal rendering into cons with the cursor at the
// origin and the default lightgrey-on-black attribute.
func NewVt(cons console.Console) *Vt {
	width, height := cons.Dimensions()
	return &Vt{
		cons:    cons,
		width:   width,
		height:  height,
		curAttr: makeAttr(defaultFg, defaultBg),
	}
}

// Clear clears the terminal.
func (t *Vt) Clear() {
	t.cons.Clear(0, 0, t.width, t.height)
	t.curX, t.curY = 0, 0
}

// Position returns the current cursor position (x, y).
func (t *Vt) Position() (uint16, uint16) {
	return t.curX, t.curY
}

// SetPosition sets the current cursor position to (x,y).
func (t *Vt) SetPosition(x, y uint16) {
	if x >= t.width {
		x = t.width - 1
	}

	if y >= t.height {
		y = t.height - 1
	}

	t.curX, t.curY = x, y
}

// Write implements io.Writer.
func (t *Vt) Write(data []byte) (int, error) {
	for _, b := range data {
		switch b {
		case '\r':
			t.cr()
		case '\n':
			t.cr()
			t.lf()
		default:
			t.cons.Write(b, t.curAttr, t.curX, t.curY)
			t.curX++
			if t.curX == t.width {
				t.cr()
				t.lf()
			}
		}
	}

	return len(data), nil
}

// cr resets the x coordinate of the terminal cursor to 0.
func (t *Vt) cr() {
	t.curX = 0
}

// lf advances the y coordinate of the terminal cursor by one line scrolling
// the terminal contents if the end of the last terminal line is reached.
func (t *Vt) lf() {
	if t.curY+1 < t.height {
		t.curY++
		return
	}

	t.cons.Scroll(console.Up, 1)
	t.cons.Clear(0, t.height-1, t.width, 1)
}

func makeAttr(fg, bg console.Attr) console.Attr {
	return (bg << 4) | (fg & 0xF)
}
