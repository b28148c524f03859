package utils

import (
	"fmt"
	"parkdesk/internal/entities"
	"regexp"
	"strconv"
)

const (
	GridRows = "ABCDEFGH"
	GridCols = 12
)

var slotNumberRe = regexp.MustCompile(`^([A-H])(\d+)`)

// GridCell is one position of the lot layout. Slot is nil for positions the
// parking service does not report.
type GridCell struct {
	Label string
	Slot  *entities.Slot
}

// Class is the CSS status class for the cell.
func (c GridCell) Class() string {
	if c.Slot == nil {
		return "status-unknown"
	}
	switch c.Slot.Status {
	case entities.SlotAvailable:
		return "status-available"
	case entities.SlotOccupied:
		return "status-occupied"
	case entities.SlotMaintenance:
		return "status-maintenance"
	}
	return "status-unknown"
}

type GridRow struct {
	Name  string
	Cells []GridCell
}

// GridPosition parses slot numbers such as "A13", "A13-EV" or "B5(Compact)".
func GridPosition(slotNumber string) (row byte, col int, ok bool) {
	m := slotNumberRe.FindStringSubmatch(slotNumber)
	if m == nil {
		return 0, 0, false
	}
	col, err := strconv.Atoi(m[2])
	if err != nil || col < 1 || col > GridCols {
		return 0, 0, false
	}
	return m[1][0], col, true
}

// BuildGrid lays slots out on the A-H x 1-12 grid. Slots whose number falls
// outside the grid are dropped.
func BuildGrid(slots []entities.Slot) []GridRow {
	byLabel := make(map[string]*entities.Slot, len(slots))
	for i := range slots {
		row, col, ok := GridPosition(slots[i].SlotNumber)
		if !ok {
			continue
		}
		byLabel[fmt.Sprintf("%c%d", row, col)] = &slots[i]
	}

	rows := make([]GridRow, 0, len(GridRows))
	for i := 0; i < len(GridRows); i++ {
		r := GridRow{Name: string(GridRows[i]), Cells: make([]GridCell, 0, GridCols)}
		for col := 1; col <= GridCols; col++ {
			label := fmt.Sprintf("%c%d", GridRows[i], col)
			r.Cells = append(r.Cells, GridCell{Label: label, Slot: byLabel[label]})
		}
		rows = append(rows, r)
	}
	return rows
}
