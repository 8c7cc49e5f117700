package core

import "sort"

// ByCategory sums item prices (quantity is ignored) per item category, in
// order of first occurrence. Items without a category share the "" key.
func ByCategory(receipts []Receipt) []KeyTotal {
	var acc accumulator
	for _, r := range receipts {
		for _, it := range r.Items {
			acc.add(it.Category, it.Price)
		}
	}
	return acc.totals()
}

// ByItemInCategory is the drill-down series: item prices summed per item name,
// scoped to items whose category equals category.
func ByItemInCategory(receipts []Receipt, category string) []KeyTotal {
	var acc accumulator
	for _, r := range receipts {
		for _, it := range r.Items {
			if it.Category == category {
				acc.add(it.Name, it.Price)
			}
		}
	}
	return acc.totals()
}

// ByStore sums per-receipt price subtotals per store name, highest first.
// Stores with equal totals keep the order in which they were first seen.
func ByStore(receipts []Receipt) []KeyTotal {
	var acc accumulator
	for _, r := range receipts {
		acc.add(r.StoreName, Subtotal(r))
	}
	out := acc.totals()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	return out
}

// ByDay returns one entry per receipt, keyed by its date, in input order.
func ByDay(receipts []Receipt) []KeyTotal {
	out := make([]KeyTotal, 0, len(receipts))
	for _, r := range receipts {
		out = append(out, KeyTotal{Key: r.Date, Total: Round2(Subtotal(r))})
	}
	return out
}

// ItemBreakdown is the item distribution of one receipt: each item name
// mapped to its price, in order of first occurrence. A repeated name keeps
// the price of its last line.
func ItemBreakdown(r Receipt) []KeyTotal {
	var acc accumulator
	for _, it := range r.Items {
		acc.set(it.Name, it.Price)
	}
	return acc.totals()
}

// Subtotal is the dashboard formula: the plain sum of item prices.
func Subtotal(r Receipt) float64 {
	var sum float64
	for _, it := range r.Items {
		sum += it.Price
	}
	return sum
}

// LineTotal is the detail view formula for one line: price * quantity.
func LineTotal(it ReceiptItem) float64 {
	return it.Price * it.Quantity
}

// DetailSubtotal sums LineTotal over the receipt. It intentionally differs
// from Subtotal, which the dashboard charts use.
func DetailSubtotal(r Receipt) float64 {
	var sum float64
	for _, it := range r.Items {
		sum += LineTotal(it)
	}
	return sum
}

// accumulator keeps float sums per key in first-insertion order.
type accumulator struct {
	keys []string
	sums map[string]float64
}

func (a *accumulator) add(key string, v float64) {
	if a.sums == nil {
		a.sums = make(map[string]float64)
	}
	if _, ok := a.sums[key]; !ok {
		a.keys = append(a.keys, key)
	}
	a.sums[key] += v
}

func (a *accumulator) set(key string, v float64) {
	if a.sums == nil {
		a.sums = make(map[string]float64)
	}
	if _, ok := a.sums[key]; !ok {
		a.keys = append(a.keys, key)
	}
	a.sums[key] = v
}

func (a *accumulator) totals() []KeyTotal {
	out := make([]KeyTotal, 0, len(a.keys))
	for _, k := range a.keys {
		out = append(out, KeyTotal{Key: k, Total: Round2(a.sums[k])})
	}
	return out
}
