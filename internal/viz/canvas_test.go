package viz

import (
	"strings"
	"testing"
)

func TestSetLightsBrailleDots(t *testing.T) {
	c := NewCanvas(4, 2)
	c.Set(0, 0)
	if c.Grid[0][0] != 0x2801 {
		t.Errorf("cell = %U, want braille dot 1", c.Grid[0][0])
	}
	c.Set(1, 3)
	if c.Grid[0][0] != 0x2801|0x80 {
		t.Errorf("cell = %U, want dots 1 and 8", c.Grid[0][0])
	}
}

func TestSetIgnoresOutOfRange(t *testing.T) {
	c := NewCanvas(4, 2)
	c.Set(-1, 0)
	c.Set(0, -5)
	c.Set(8, 0) // col 4 of 4
	c.Set(0, 8) // row 2 of 2
	for _, row := range c.Grid {
		for _, r := range row {
			if r != 0x2800 {
				t.Fatalf("out-of-range Set mutated the grid: %U", r)
			}
		}
	}
}

func TestDrawLineEndpoints(t *testing.T) {
	c := NewCanvas(10, 5)
	c.DrawLine(0, 0, 19, 19)
	if c.Grid[0][0] == 0x2800 {
		t.Error("line start not drawn")
	}
	if c.Grid[4][9] == 0x2800 {
		t.Error("line end not drawn")
	}
}

func TestFillCircleCoversCenter(t *testing.T) {
	c := NewCanvas(10, 5)
	c.FillCircle(10, 10, 3)
	if c.Grid[2][5] == 0x2800 {
		t.Error("circle center not filled")
	}
}

func TestStringShape(t *testing.T) {
	c := NewCanvas(3, 2)
	s := c.String()
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	for _, l := range lines {
		if len([]rune(l)) != 3 {
			t.Errorf("line %q has %d runes, want 3", l, len([]rune(l)))
		}
	}
}
