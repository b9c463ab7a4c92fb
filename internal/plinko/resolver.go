package plinko

import "math"

// Resolution is the slot a chip settled in, or Missed.
type Resolution struct {
	Index  int    `json:"index"`
	Label  string `json:"label,omitempty"`
	Missed bool   `json:"missed"`
}

// Resolve maps a chip center x to a slot: floor((x - inset) / pitch), so
// each boundary sits on the left edge of a drawn slot band. Any x outside the
// slot row, including NaN and infinities, resolves to Missed.
func Resolve(chipCenterX float64, layout *BoardLayout) Resolution {
	missed := Resolution{Index: -1, Missed: true}
	if layout == nil || len(layout.Slots) == 0 || layout.SlotPitch <= 0 {
		return missed
	}
	pos := math.Floor((chipCenterX - layout.SlotOrigin) / layout.SlotPitch)
	if math.IsNaN(pos) || pos < 0 || pos >= float64(len(layout.Slots)) {
		return missed
	}
	idx := int(pos)
	// keep boundaries on the drawn band edges despite rounding in XStart
	if idx+1 < len(layout.Slots) && chipCenterX >= layout.Slots[idx+1].XStart {
		idx++
	} else if chipCenterX < layout.Slots[idx].XStart {
		idx--
	}
	if idx < 0 {
		return missed
	}
	return Resolution{Index: idx, Label: layout.Slots[idx].Label}
}
