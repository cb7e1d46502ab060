package builder

// SummaryLine is one row of the summary sidebar.
type SummaryLine struct {
	SlotKey   string `json:"slotKey"`
	Title     string `json:"title"`
	UnitPrice int    `json:"price"`
	Quantity  int    `json:"quantity"`
	LineTotal int    `json:"line_total"`
}

// Summary is the derived view of a selection set.
type Summary struct {
	Lines      []SummaryLine `json:"lines"`
	GrandTotal int           `json:"total_price"`
	ItemCount  int           `json:"item_count"`
}

// Summarize computes the summary from the selection set alone, in slot
// insertion order. ItemCount is the number of occupied slots, not the
// sum of quantities.
func Summarize(set *SelectionSet) Summary {
	summary := Summary{
		Lines:     make([]SummaryLine, 0, set.Len()),
		ItemCount: set.Len(),
	}
	for _, e := range set.Entries {
		lineTotal := e.UnitPrice * e.Quantity
		summary.Lines = append(summary.Lines, SummaryLine{
			SlotKey:   e.SlotKey,
			Title:     e.Title,
			UnitPrice: e.UnitPrice,
			Quantity:  e.Quantity,
			LineTotal: lineTotal,
		})
		summary.GrandTotal += lineTotal
	}
	return summary
}
