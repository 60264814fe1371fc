package usage

import "fmt"

// StatusView is the presentation of a usage count.
type StatusView struct {
	Icon  string
	Color string
	Text  string
}

// Status maps a count to its indicator using the default thresholds. It is
// pure and independent of storage.
func Status(count int) StatusView {
	return StatusWith(count, DailyLimit, WarnThreshold)
}

// StatusWith maps a count to its indicator for the given limit and warning threshold.
func StatusWith(count, limit, warnAt int) StatusView {
	text := fmt.Sprintf("%d/%d", count, limit)
	switch {
	case count >= limit:
		return StatusView{Icon: "🔴", Color: "red", Text: text}
	case count >= warnAt:
		return StatusView{Icon: "🟡", Color: "orange", Text: text}
	default:
		return StatusView{Icon: "🟢", Color: "green", Text: text}
	}
}

// Status renders the gate's own thresholds.
func (g *Gate) Status(count int) StatusView {
	return StatusWith(count, g.limit, g.warnAt)
}
