package tui

import (
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// Braille cells hold 2x4 dots:
//
//	1 4
//	2 5
//	3 6
//	7 8
var pixelMap = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// canvas is a braille dot matrix of width*2 by height*4 pixels.
type canvas struct {
	width, height int
	grid          [][]rune
}

func newCanvas(w, h int) *canvas {
	c := &canvas{width: w, height: h, grid: make([][]rune, h)}
	for i := range c.grid {
		c.grid[i] = make([]rune, w)
	}
	c.clear()
	return c
}

func (c *canvas) set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.width || row >= c.height {
		return
	}
	c.grid[row][col] |= pixelMap[y%4][x%2]
}

func (c *canvas) clear() {
	for i := range c.grid {
		for j := range c.grid[i] {
			c.grid[i][j] = blank
		}
	}
}

// project draws the positions seen down the z axis of a box with the given
// x and y edges.
func (c *canvas) project(positions []r3.Vec, lx, ly float64) {
	c.clear()
	if lx <= 0 || ly <= 0 {
		return
	}
	pw, ph := float64(c.width*2), float64(c.height*4)
	for _, p := range positions {
		x := int(p.X / lx * pw)
		y := int((1 - p.Y/ly) * ph)
		c.set(x, min(y, int(ph)-1))
	}
}

func (c *canvas) String() string {
	var b strings.Builder
	for i, row := range c.grid {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(string(row))
	}
	return b.String()
}
