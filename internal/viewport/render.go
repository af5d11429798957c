package viewport

import "venue-feedback-backend/internal/model"

// RenderInstruction tells the embedding host where and how to draw one
// table: screen-space box, shape and status color.
type RenderInstruction struct {
	TableID int64       `json:"table_id"`
	Number  int         `json:"number"`
	ZoneID  int64       `json:"zone_id"`
	Bounds  Rect        `json:"bounds"`
	Shape   string      `json:"shape"`
	Status  TableStatus `json:"status"`
	Color   string      `json:"color"`
}

// Render projects the tables through the current camera. Tables outside
// the active zone (when one is selected) and tables with unusable
// positions are skipped; bad authored data degrades one table, never
// the whole plan.
func (v *View) Render(tables []model.Table, statuses map[int]TableStatus) []RenderInstruction {
	instructions := make([]RenderInstruction, 0, len(tables))
	for i := range tables {
		t := &tables[i]
		if v.ActiveZone != 0 && t.ZoneID != v.ActiveZone {
			continue
		}
		bounds, err := v.cfg.TableBounds(t)
		if err != nil {
			continue
		}
		status := StatusForTable(statuses, t.Number)
		instructions = append(instructions, RenderInstruction{
			TableID: t.ID,
			Number:  t.Number,
			ZoneID:  t.ZoneID,
			Bounds:  v.ScreenRect(bounds),
			Shape:   t.Shape,
			Status:  status,
			Color:   status.Color(),
		})
	}
	return instructions
}
