package console

import "encoding/binary"

const (
	clearColor = Black
	clearChar  = byte(' ')
)

// FrameBufferBase is the physical address of the VGA text frame buffer.
const FrameBufferBase = 0xB8000

// Default text-mode dimensions.
const (
	DefaultWidth  = 80
	DefaultHeight = 25
)

// Vga implements a VGA text-mode console over a frame buffer region of
// physical memory. Each cell is a little-endian 16-bit word: the character
// in the low byte, its color attribute in the high byte.
type Vga struct {
	width  uint16
	height uint16

	fb []byte
}

// NewVga returns a console rendering into fb, which must hold at least
// width*height 16-bit cells.
func NewVga(fb []byte, width, height uint16) *Vga {
	return &Vga{
		width:  width,
		height: height,
		fb:     fb[:int(width)*int(height)*2],
	}
}

// Dimensions returns the console width and height in characters.
func (cons *Vga) Dimensions() (uint16, uint16) {
	return cons.width, cons.height
}

// Clear clears the specified rectangular region
func (cons *Vga) Clear(x, y, width, height uint16) {
	clr := uint16(clearColor<<4|clearColor)<<8 | uint16(clearChar)

	// clip rectangle
	if x >= cons.width {
		x = cons.width
	}
	if y >= cons.height {
		y = cons.height
	}

	if x+width > cons.width {
		width = cons.width - x
	}
	if y+height > cons.height {
		height = cons.height - y
	}

	for row := y; row < y+height; row++ {
		for col := x; col < x+width; col++ {
			cons.setCell(col, row, clr)
		}
	}
}

// Scroll a particular number of lines to the specified direction.
func (cons *Vga) Scroll(dir ScrollDir, lines uint16) {
	if lines == 0 || lines > cons.height {
		return
	}

	offset := int(lines) * int(cons.width) * 2
	size := int(cons.width) * int(cons.height) * 2

	switch dir {
	case Up:
		copy(cons.fb, cons.fb[offset:])
	case Down:
		copy(cons.fb[offset:size], cons.fb)
	}
}

// Write a char to the specified location.
func (cons *Vga) Write(ch byte, attr Attr, x, y uint16) {
	if x >= cons.width || y >= cons.height {
		return
	}

	cons.setCell(x, y, uint16(attr)<<8|uint16(ch))
}

// Cell returns the character and attribute stored at (x, y).
func (cons *Vga) Cell(x, y uint16) (byte, Attr) {
	cell := binary.LittleEndian.Uint16(cons.fb[cons.cellOffset(x, y):])
	return byte(cell), Attr(cell >> 8)
}

func (cons *Vga) setCell(x, y uint16, cell uint16) {
	binary.LittleEndian.PutUint16(cons.fb[cons.cellOffset(x, y):], cell)
}

func (cons *Vga) cellOffset(x, y uint16) int {
	return (int(y)*int(cons.width) + int(x)) * 2
}
