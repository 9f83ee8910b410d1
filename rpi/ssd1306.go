package rpi

import (
	"zeitschalt.net/powertimer/control"
)

// SSD1306 display geometry: 128x32, four 8-pixel pages.
const (
	displayWidth  = 128
	displayHeight = 32
	displayPages  = displayHeight / 8
)

// Pixel scale per font: the time/message font is the 5x7 base font
// tripled, the symbol font renders the preset marker.
const (
	timeFontScale   = 3
	symbolFontScale = 1
)

// transmitFunc sends bytes to the controller; data selects between a
// data transfer (true) and a command transfer (false).
type transmitFunc func(payload []byte, data bool)

// SSD1306 is the retained-buffer driver for the 128x32 OLED on the SPI
// bus. Draw calls paint into the buffer, SendBuffer pushes all four
// pages out at once.
type SSD1306 struct {
	buf      [displayWidth * displayPages]byte
	font     control.Font
	transmit transmitFunc
}

func newSSD1306(transmit transmitFunc) *SSD1306 {
	return &SSD1306{transmit: transmit}
}

// Init runs the controller power-up sequence and clears the panel.
func (d *SSD1306) Init() {
	seq := []byte{
		0xAE,       // display off
		0xD5, 0x80, // clock divide
		0xA8, 0x1F, // multiplex ratio for 32 rows
		0xD3, 0x00, // display offset
		0x40,       // start line 0
		0x8D, 0x14, // charge pump on
		0x20, 0x02, // page addressing mode
		0xA1,       // segment remap
		0xC8,       // COM scan direction
		0xDA, 0x02, // COM pins for 128x32
		0x81, 0x8F, // contrast
		0xD9, 0xF1, // precharge
		0xDB, 0x40, // VCOM detect
		0xA4,       // resume from RAM
		0xA6,       // normal (non-inverted)
		0xAF,       // display on
	}
	d.transmit(seq, false)
	d.ClearBuffer()
	d.SendBuffer()
}

func (d *SSD1306) ClearBuffer() {
	for i := range d.buf {
		d.buf[i] = 0
	}
}

func (d *SSD1306) SetFont(f control.Font) {
	d.font = f
}

// DrawStr paints text with its baseline at y, like the u8g2-style
// displays this replaces.
func (d *SSD1306) DrawStr(x, y int, text string) {
	scale := timeFontScale
	if d.font == control.FontSymbols {
		scale = symbolFontScale
	}
	top := y - 7*scale
	for _, ch := range text {
		d.drawChar(x, top, ch, scale)
		x += 6 * scale
	}
}

// DrawGlyph paints the preset marker: the negative circled digits
// (U+2780...) become a digit in a filled box.
func (d *SSD1306) DrawGlyph(x, y int, glyph rune) {
	n := int(glyph - 0x2780)
	if n < 0 || n > 9 {
		return
	}
	digit := rune('0' + n)

	const boxW, boxH = 9, 11
	top := y - boxH
	for px := x; px < x+boxW; px++ {
		for py := top; py < top+boxH; py++ {
			d.setPixel(px, py, true)
		}
	}
	// Digit cut out of the filled box.
	cols := glyphColumns(digit)
	for c := 0; c < 5; c++ {
		for r := 0; r < 7; r++ {
			if cols[c]&(1<<r) != 0 {
				d.setPixel(x+2+c, top+2+r, false)
			}
		}
	}
}

func (d *SSD1306) drawChar(x, y int, ch rune, scale int) {
	cols := glyphColumns(ch)
	for c := 0; c < 5; c++ {
		for r := 0; r < 7; r++ {
			if cols[c]&(1<<r) == 0 {
				continue
			}
			for dx := 0; dx < scale; dx++ {
				for dy := 0; dy < scale; dy++ {
					d.setPixel(x+c*scale+dx, y+r*scale+dy, true)
				}
			}
		}
	}
}

func (d *SSD1306) setPixel(x, y int, on bool) {
	if x < 0 || x >= displayWidth || y < 0 || y >= displayHeight {
		return
	}
	idx := x + (y/8)*displayWidth
	mask := byte(1) << (y % 8)
	if on {
		d.buf[idx] |= mask
	} else {
		d.buf[idx] &^= mask
	}
}

// SendBuffer transmits all pages. The controller latches each page
// write, so the panel never shows a half-painted buffer line.
func (d *SSD1306) SendBuffer() {
	for page := 0; page < displayPages; page++ {
		d.transmit([]byte{
			0xB0 | byte(page), // page address
			0x00,              // lower column start
			0x10,              // upper column start
		}, false)
		start := page * displayWidth
		d.transmit(d.buf[start:start+displayWidth], true)
	}
}
