// Package grid lays out fixed-size cells in rows, as used by the desktop
// viewer for the register file.
package grid

// Coords returns the column and row of cell index in a grid cols wide.
func Coords(index, cols int) (x, y int) {
	if cols <= 0 {
		return 0, 0
	}
	return index % cols, index / cols
}

// Layout places cells of CellW x CellH pixels, Cols per row, starting at
// (OriginX, OriginY).
type Layout struct {
	Cols             int
	CellW, CellH     int
	OriginX, OriginY int
}

// Pixel returns the top-left pixel of cell index.
func (l Layout) Pixel(index int) (px, py int) {
	x, y := Coords(index, l.Cols)
	return l.OriginX + x*l.CellW, l.OriginY + y*l.CellH
}

// Rows is the number of rows needed for n cells.
func (l Layout) Rows(n int) int {
	if l.Cols <= 0 || n <= 0 {
		return 0
	}
	return (n + l.Cols - 1) / l.Cols
}

// Height is the pixel height of n cells.
func (l Layout) Height(n int) int {
	return l.Rows(n) * l.CellH
}
