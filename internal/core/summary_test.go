package core

import (
	"reflect"
	"testing"
)

func receipt(store, date string, items ...ReceiptItem) Receipt {
	return Receipt{Date: date, StoreName: store, Items: items}
}

func item(name, category string, price float64) ReceiptItem {
	return ReceiptItem{Name: name, Quantity: 1, Price: price, Category: category}
}

func TestByCategory(t *testing.T) {
	rs := []Receipt{
		receipt("A", "2024-01-01", item("milk", "Dairy", 1.005), item("bread", "Bakery", 2)),
		receipt("B", "2024-01-02", item("cheese", "Dairy", 1.005), item("bag", "", 0.1)),
	}
	got := ByCategory(rs)
	want := []KeyTotal{{"Dairy", 2.01}, {"Bakery", 2}, {"", 0.1}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestByCategoryIgnoresQuantity(t *testing.T) {
	rs := []Receipt{receipt("A", "d", ReceiptItem{Name: "eggs", Quantity: 12, Price: 0.5, Category: "Food"})}
	got := ByCategory(rs)
	if len(got) != 1 || got[0].Total != 0.5 {
		t.Fatalf("expected price-only sum, got %v", got)
	}
	if DetailSubtotal(rs[0]) != 6 || Subtotal(rs[0]) != 0.5 {
		t.Fatalf("detail=%v subtotal=%v", DetailSubtotal(rs[0]), Subtotal(rs[0]))
	}
}

func TestByCategoryEmpty(t *testing.T) {
	if got := ByCategory(nil); len(got) != 0 {
		t.Fatalf("expected empty, got %v", got)
	}
	if got := ByStore([]Receipt{}); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil, got %#v", got)
	}
}

func TestByStore(t *testing.T) {
	rs := []Receipt{
		receipt("Small", "d1", item("a", "x", 1)),
		receipt("Big", "d2", item("a", "x", 10), item("b", "x", 5)),
		receipt("Small", "d3", item("c", "x", 2)),
		receipt("Tie", "d4", item("c", "x", 3)),
	}
	got := ByStore(rs)
	want := []KeyTotal{{"Big", 15}, {"Small", 3}, {"Tie", 3}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestByDay(t *testing.T) {
	rs := []Receipt{
		receipt("A", "2024-01-02", item("a", "x", 0.1), item("b", "x", 0.2)),
		receipt("B", "2024-01-01"),
		receipt("C", "2024-01-02", item("c", "x", 4)),
	}
	got := ByDay(rs)
	want := []KeyTotal{{"2024-01-02", 0.3}, {"2024-01-01", 0}, {"2024-01-02", 4}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestByItemInCategory(t *testing.T) {
	rs := []Receipt{
		receipt("A", "d", item("milk", "Dairy", 1), item("bread", "Bakery", 2)),
		receipt("B", "d", item("milk", "Dairy", 1.5), item("yogurt", "Dairy", 0.75)),
	}
	got := ByItemInCategory(rs, "Dairy")
	want := []KeyTotal{{"milk", 2.5}, {"yogurt", 0.75}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
	if got := ByItemInCategory(rs, "Frozen"); len(got) != 0 {
		t.Fatalf("expected empty, got %v", got)
	}
}

func TestSumsMatchAcrossGroupings(t *testing.T) {
	rs := []Receipt{
		receipt("A", "d1", item("a", "x", 1.25), item("b", "y", 3.10)),
		receipt("B", "d2", item("c", "x", 7.65)),
		receipt("A", "d3", item("d", "", 0.99)),
	}
	sum := func(kts []KeyTotal) float64 {
		var s float64
		for _, kt := range kts {
			s += kt.Total
		}
		return Round2(s)
	}
	byCat, byStore, byDay := sum(ByCategory(rs)), sum(ByStore(rs)), sum(ByDay(rs))
	if byCat != byStore || byStore != byDay {
		t.Fatalf("category=%v store=%v day=%v", byCat, byStore, byDay)
	}
}

func TestItemBreakdown(t *testing.T) {
	r := receipt("A", "d",
		item("milk", "Dairy", 1.005),
		ReceiptItem{Name: "eggs", Quantity: 12, Price: 0.5, Category: "Food"},
		item("milk", "Dairy", 1.2),
		item("bread", "", 2),
	)
	got := ItemBreakdown(r)
	want := []KeyTotal{{"milk", 1.2}, {"eggs", 0.5}, {"bread", 2}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
	if got := ItemBreakdown(Receipt{}); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil, got %#v", got)
	}
}
