package model

// Filter selects which entries are visible.
type Filter int

const (
	FilterAll Filter = iota
	FilterActive
	FilterCompleted
)

// Filters returns every filter in display order.
func Filters() []Filter {
	return []Filter{FilterAll, FilterActive, FilterCompleted}
}

// Fits reports whether e passes the filter.
func (f Filter) Fits(e Entry) bool {
	switch f {
	case FilterActive:
		return !e.Completed
	case FilterCompleted:
		return e.Completed
	default:
		return true
	}
}

func (f Filter) String() string {
	switch f {
	case FilterActive:
		return "Active"
	case FilterCompleted:
		return "Completed"
	default:
		return "All"
	}
}

// Route is the link fragment used for the filter.
func (f Filter) Route() string {
	switch f {
	case FilterActive:
		return "/active"
	case FilterCompleted:
		return "/completed"
	default:
		return "/"
	}
}

// Entry is one task item.
type Entry struct {
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
	Editing     bool   `json:"editing"`
}
