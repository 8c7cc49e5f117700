package core

import (
	"reflect"
	"testing"
)

func TestDrillDownTransitions(t *testing.T) {
	d := Overview()
	if d.Level() != LevelOverview {
		t.Fatalf("expected overview, got %v", d.Level())
	}
	if _, ok := d.Category(); ok {
		t.Fatalf("overview has no category")
	}

	d = d.Select("Dairy")
	if cat, ok := d.Category(); !ok || cat != "Dairy" {
		t.Fatalf("expected Dairy, got %q %v", cat, ok)
	}

	// a second select while in detail is ignored
	d = d.Select("Bakery")
	if cat, _ := d.Category(); cat != "Dairy" {
		t.Fatalf("select in detail should be a no-op, got %q", cat)
	}

	d = d.Back()
	if d.Level() != LevelOverview {
		t.Fatalf("back should return to overview")
	}
	if Overview().Back() != Overview() {
		t.Fatalf("back from overview should stay in overview")
	}
}

func TestDrillDownSeries(t *testing.T) {
	rs := []Receipt{
		receipt("A", "d", item("milk", "Dairy", 1), item("bread", "Bakery", 2)),
		receipt("B", "d", item("cheese", "Dairy", 3)),
	}
	d := Overview()
	if got := d.Series(rs); len(got) != 2 || got[0].Key != "Dairy" || got[0].Total != 4 {
		t.Fatalf("overview series: %v", got)
	}
	d = d.Select("Dairy")
	got := d.Series(rs)
	if len(got) != 2 || got[0].Key != "milk" || got[1].Key != "cheese" {
		t.Fatalf("detail series: %v", got)
	}
}

func TestDrillDownTitle(t *testing.T) {
	cases := []struct {
		d    DrillDown
		want string
	}{
		{Overview(), "Spending by Category"},
		{Overview().Select("Dairy"), "Dairy Breakdown"},
		{Overview().Select(""), "Uncategorized Breakdown"},
	}
	for _, tc := range cases {
		if got := tc.d.Title(); got != tc.want {
			t.Fatalf("got %q want %q", got, tc.want)
		}
	}
}

func TestDrillLevelString(t *testing.T) {
	if LevelCategoryDetail.String() != "category_detail" || DrillLevel(9).String() != "unknown" {
		t.Fatalf("unexpected level strings")
	}
}

func TestSelectThenBackReproducesByCategory(t *testing.T) {
	rs := []Receipt{
		receipt("A", "d1", item("milk", "Dairy", 1.005), item("bread", "Bakery", 2)),
		receipt("B", "d2", item("cheese", "Dairy", 1.005), item("bag", "", 0.1)),
		receipt("C", "d3", item("apples", "Fruits & Vegetables", 3.49)),
	}
	want := ByCategory(rs)
	for _, kt := range want {
		got := Overview().Select(kt.Key).Back().Series(rs)
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("Select(%q).Back(): got %v want %v", kt.Key, got, want)
		}
	}
	if got := Overview().Series(rs); !reflect.DeepEqual(got, want) {
		t.Fatalf("overview series: got %v want %v", got, want)
	}
}
