package core

// DrillLevel is the state of the category chart.
type DrillLevel int

const (
	LevelOverview DrillLevel = iota
	LevelCategoryDetail
)

// UncategorizedLabel names the fallback category in titles.
const UncategorizedLabel = "Uncategorized"

func (l DrillLevel) String() string {
	switch l {
	case LevelOverview:
		return "overview"
	case LevelCategoryDetail:
		return "category_detail"
	default:
		return "unknown"
	}
}

// DrillDown is an immutable two-state machine: Overview or
// CategoryDetail(category). The zero value is Overview.
type DrillDown struct {
	level    DrillLevel
	category string
}

// Overview returns the top-level state.
func Overview() DrillDown { return DrillDown{} }

// Select moves Overview to CategoryDetail(category). While a category is
// already selected, Select does nothing.
func (d DrillDown) Select(category string) DrillDown {
	if d.level != LevelOverview {
		return d
	}
	return DrillDown{level: LevelCategoryDetail, category: category}
}

// Back returns to Overview. It is the only way out of CategoryDetail.
func (d DrillDown) Back() DrillDown {
	return DrillDown{}
}

func (d DrillDown) Level() DrillLevel { return d.level }

// Category returns the selected category and whether one is selected.
func (d DrillDown) Category() (string, bool) {
	return d.category, d.level == LevelCategoryDetail
}

// Series returns the chart data for the current state.
func (d DrillDown) Series(receipts []Receipt) []KeyTotal {
	if d.level == LevelCategoryDetail {
		return ByItemInCategory(receipts, d.category)
	}
	return ByCategory(receipts)
}

// Title is the chart heading for the current state.
func (d DrillDown) Title() string {
	if d.level != LevelCategoryDetail {
		return "Spending by Category"
	}
	name := d.category
	if name == "" {
		name = UncategorizedLabel
	}
	return name + " Breakdown"
}
