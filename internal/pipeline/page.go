package pipeline

// Page is one pagination window over an ordered item sequence.
type Page struct {
	Items      []Item
	Number     int
	TotalPages int
}

// Paginate slices the ordered items into the requested fixed-size page.
// The page number is clamped into [1, totalPages], where totalPages is at
// least 1 even for an empty input; an out-of-range cursor is never
// preserved beyond clamping.
func Paginate(items []Item, pageSize, pageNumber int) Page {
	if pageSize < 1 {
		pageSize = 1
	}
	totalPages := (len(items) + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if pageNumber < 1 {
		pageNumber = 1
	}
	if pageNumber > totalPages {
		pageNumber = totalPages
	}

	start := (pageNumber - 1) * pageSize
	end := start + pageSize
	if start > len(items) {
		start = len(items)
	}
	if end > len(items) {
		end = len(items)
	}
	return Page{
		Items:      items[start:end],
		Number:     pageNumber,
		TotalPages: totalPages,
	}
}
