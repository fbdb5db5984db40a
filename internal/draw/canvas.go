package draw

import (
	"io"
	"math"
	"strconv"
	"strings"
)

// Point is a 2D position in canvas pixels.
type Point struct {
	X, Y float64
}

// Level is the brightness of a canvas pixel. Zero is empty.
type Level uint8

const (
	LevelOff Level = iota
	LevelDim
	LevelMid
	LevelBright
)

// grays maps a level to a 256-color palette index.
var grays = [...]int{0, 240, 247, 255}

// Block characters for drawing.
const (
	BlockFull      = '█'
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
)

// maxChunkSize is the maximum bytes to write at once for optimal network flow.
// 1500 bytes matches typical MTU size for smooth SSH/network transmission.
const maxChunkSize = 1400

// Canvas is a drawing buffer with 2x vertical resolution using half-block
// characters. Each pixel carries a brightness level rendered as a shade of gray.
// Render only emits cells that changed since the previous call.
type Canvas struct {
	termWidth      int     // Terminal columns
	termHeight     int     // Terminal rows
	subPixelHeight int     // termHeight * 2
	pixels         []Level // [y * termWidth + x]
	prev           []cell  // What the terminal currently shows, per cell

	// 0-based terminal offsets for centering the render area.
	offsetCol int
	offsetRow int

	renderBuf strings.Builder
	numBuf    [20]byte
}

type cell struct {
	top, bottom Level
	valid       bool
}

// NewCanvas creates a canvas for the given terminal dimensions.
func NewCanvas(width, height int) *Canvas {
	c := &Canvas{}
	c.Resize(width, height)
	return c
}

// Resize reallocates the canvas for new terminal dimensions. It reports
// whether the size changed; a changed canvas redraws every cell.
func (c *Canvas) Resize(termWidth, termHeight int) bool {
	if termWidth == c.termWidth && termHeight == c.termHeight && c.pixels != nil {
		return false
	}
	c.termWidth = termWidth
	c.termHeight = termHeight
	c.subPixelHeight = termHeight * 2
	c.pixels = make([]Level, c.subPixelHeight*termWidth)
	c.prev = make([]cell, termHeight*termWidth)
	return true
}

// SetOffset sets the column and row offset for centering the canvas.
func (c *Canvas) SetOffset(col, row int) {
	if col != c.offsetCol || row != c.offsetRow {
		c.ForceRedraw()
	}
	c.offsetCol = col
	c.offsetRow = row
}

func (c *Canvas) OffsetCol() int { return c.offsetCol }
func (c *Canvas) OffsetRow() int { return c.offsetRow }

// TerminalWidth returns the column count.
func (c *Canvas) TerminalWidth() int { return c.termWidth }

// TerminalHeight returns the row count.
func (c *Canvas) TerminalHeight() int { return c.termHeight }

// PixelWidth and PixelHeight give the drawable area in pixels.
func (c *Canvas) PixelWidth() int  { return c.termWidth }
func (c *Canvas) PixelHeight() int { return c.subPixelHeight }

// Clear resets all pixels. The terminal is untouched until the next Render.
func (c *Canvas) Clear() {
	clear(c.pixels)
}

// ForceRedraw makes the next Render emit every cell, for use after the
// terminal was cleared or overwritten by text.
func (c *Canvas) ForceRedraw() {
	clear(c.prev)
}

// Set lights a pixel. Overlapping draws keep the brightest level.
func (c *Canvas) Set(x, y int, level Level) {
	if x < 0 || x >= c.termWidth || y < 0 || y >= c.subPixelHeight {
		return
	}
	i := y*c.termWidth + x
	if level > c.pixels[i] {
		c.pixels[i] = level
	}
}

// At returns the level of a pixel, LevelOff outside the canvas.
func (c *Canvas) At(x, y int) Level {
	if x < 0 || x >= c.termWidth || y < 0 || y >= c.subPixelHeight {
		return LevelOff
	}
	return c.pixels[y*c.termWidth+x]
}

// DrawLine draws a line using Bresenham's algorithm.
func (c *Canvas) DrawLine(p1, p2 Point, level Level) {
	x1 := int(math.Round(p1.X))
	y1 := int(math.Round(p1.Y))
	x2 := int(math.Round(p2.X))
	y2 := int(math.Round(p2.Y))

	dx := abs(x2 - x1)
	dy := abs(y2 - y1)

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy

	for {
		c.Set(x1, y1, level)

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// Render writes changed cells to w using half-block characters. A cell
// whose halves differ in brightness uses the foreground for the top half
// and the background for the bottom.
func (c *Canvas) Render(w io.Writer) {
	c.renderBuf.Reset()

	for row := 0; row < c.termHeight; row++ {
		topOffset := row * 2 * c.termWidth
		bottomOffset := topOffset + c.termWidth

		for col := 0; col < c.termWidth; col++ {
			cur := cell{
				top:    c.pixels[topOffset+col],
				bottom: c.pixels[bottomOffset+col],
				valid:  true,
			}
			pi := row*c.termWidth + col
			if c.prev[pi] == cur {
				continue
			}
			c.prev[pi] = cur
			c.writeCell(row, col, cur)
		}
	}

	if c.renderBuf.Len() > 0 {
		c.renderBuf.WriteString("\033[0m")
	}

	data := c.renderBuf.String()
	for len(data) > 0 {
		chunk := data
		if len(chunk) > maxChunkSize {
			chunk = data[:maxChunkSize]
		}
		io.WriteString(w, chunk)
		data = data[len(chunk):]
	}
}

func (c *Canvas) writeCell(row, col int, cur cell) {
	b := &c.renderBuf
	b.WriteString("\033[")
	b.Write(strconv.AppendInt(c.numBuf[:0], int64(row+1+c.offsetRow), 10))
	b.WriteByte(';')
	b.Write(strconv.AppendInt(c.numBuf[:0], int64(col+1+c.offsetCol), 10))
	b.WriteByte('H')

	switch {
	case cur.top == LevelOff && cur.bottom == LevelOff:
		b.WriteString("\033[0m ")
	case cur.top == cur.bottom:
		c.writeColor(38, cur.top)
		b.WriteString("\033[49m")
		b.WriteRune(BlockFull)
	case cur.bottom == LevelOff:
		c.writeColor(38, cur.top)
		b.WriteString("\033[49m")
		b.WriteRune(BlockUpperHalf)
	case cur.top == LevelOff:
		c.writeColor(38, cur.bottom)
		b.WriteString("\033[49m")
		b.WriteRune(BlockLowerHalf)
	default:
		c.writeColor(38, cur.top)
		c.writeColor(48, cur.bottom)
		b.WriteRune(BlockUpperHalf)
	}
}

// writeColor emits a 256-color SGR sequence; ground is 38 for foreground
// or 48 for background.
func (c *Canvas) writeColor(ground int, level Level) {
	b := &c.renderBuf
	b.WriteString("\033[")
	b.Write(strconv.AppendInt(c.numBuf[:0], int64(ground), 10))
	b.WriteString(";5;")
	b.Write(strconv.AppendInt(c.numBuf[:0], int64(grays[level]), 10))
	b.WriteByte('m')
}

// RenderBorder draws a box border around the canvas area when the terminal
// exceeds the max render resolution on either axis.
func (c *Canvas) RenderBorder(w io.Writer) {
	hasH := c.offsetCol >= 1 // Room for left/right vertical bars
	hasV := c.offsetRow >= 1 // Room for top/bottom horizontal bars

	left := c.offsetCol
	right := c.offsetCol + c.termWidth + 1
	top := c.offsetRow
	bottom := c.offsetRow + c.termHeight + 1
	bar := strings.Repeat("─", c.termWidth)

	var buf strings.Builder
	at := func(row, col int) {
		buf.WriteString("\033[")
		buf.WriteString(strconv.Itoa(row))
		buf.WriteByte(';')
		buf.WriteString(strconv.Itoa(col))
		buf.WriteByte('H')
	}

	if hasV {
		if hasH {
			at(top, left)
			buf.WriteString("┌" + bar + "┐")
			at(bottom, left)
			buf.WriteString("└" + bar + "┘")
		} else {
			at(top, c.offsetCol+1)
			buf.WriteString(bar)
			at(bottom, c.offsetCol+1)
			buf.WriteString(bar)
		}
	}

	if hasH {
		startRow, endRow := top+1, bottom
		if !hasV {
			startRow = c.offsetRow + 1
			endRow = c.offsetRow + c.termHeight + 1
		}
		for row := startRow; row < endRow; row++ {
			at(row, left)
			buf.WriteString("│")
			at(row, right)
			buf.WriteString("│")
		}
	}

	io.WriteString(w, buf.String())
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
