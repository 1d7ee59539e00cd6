package pricing

import (
	"testing"

	"github.com/pasuyo-app/api/internal/enum"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, label string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("%s: got %s, want %s", label, got, want)
	}
}

// =====================
// Unit price resolution
// =====================

func TestCatalogPrice(t *testing.T) {
	tests := []struct {
		name  string
		price string
	}{
		{"Toppings", "55"},            // food catalog
		{"Ballpen", "10"},             // school catalog
		{"Box", "0"},                  // free text, no match
		{"", "0"},                     // empty name
		{"toppings", "0"},             // lookup is exact, not case-folded
		{"Scientific Calculator", "450"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertDecimal(t, "CatalogPrice", CatalogPrice(tt.name), tt.price)
		})
	}
}

func TestPrintingPrice(t *testing.T) {
	tests := []struct {
		size, color string
		price       string
	}{
		{enum.PrintSizeA3, enum.PrintColorColored, "25"},
		{enum.PrintSizeA3, enum.PrintColorPlain, "15"},
		{enum.PrintSizeA4, enum.PrintColorColored, "5"},
		{enum.PrintSizeA4, enum.PrintColorPlain, "2"},
		{enum.PrintSizeA3, "", "0"}, // color unset
		{"", enum.PrintColorColored, "0"}, // size unset
		{"", "", "0"},
		{"A5", enum.PrintColorColored, "0"}, // unknown size
	}
	for _, tt := range tests {
		t.Run(tt.size+"/"+tt.color, func(t *testing.T) {
			assertDecimal(t, "PrintingPrice", PrintingPrice(tt.size, tt.color), tt.price)
		})
	}
}

// =====================
// Delivery fee schedule
// =====================

func TestDeliveryFeeSchedule(t *testing.T) {
	tests := []struct {
		category string
		qty      string
		fee      string
	}{
		{enum.CategoryDeliverItems, "1", "20"},
		{enum.CategoryDeliverItems, "2", "25"},
		{enum.CategoryFoodDelivery, "1", "15"},
		{enum.CategoryFoodDelivery, "4", "30"},
		{enum.CategorySchoolMaterials, "1", "10"},
		{enum.CategoryPrinting, "3", "9"},
		{enum.CategoryPrinting, "0", "5"},     // extra term clamped, base still charged
		{enum.CategoryDeliverItems, "0", "20"},
		{"", "5", "0"},          // no category, no fee
		{"SOMETHING", "5", "0"}, // unrecognized category, no fee
	}
	for _, tt := range tests {
		t.Run(tt.category+"/"+tt.qty, func(t *testing.T) {
			assertDecimal(t, "DeliveryFee", DeliveryFee(tt.category, dec(tt.qty)), tt.fee)
		})
	}
}

func TestDeliveryFeeBaseOnlyAtOrBelowOneUnit(t *testing.T) {
	for _, category := range []string{
		enum.CategoryDeliverItems, enum.CategoryFoodDelivery,
		enum.CategorySchoolMaterials, enum.CategoryPrinting,
	} {
		base, _ := DeliveryFeeRate(category)
		for _, qty := range []string{"0", "0.5", "1"} {
			got := DeliveryFee(category, dec(qty))
			if !got.Equal(base) {
				t.Errorf("%s qty=%s: got %s, want base %s", category, qty, got, base)
			}
		}
	}
}

func TestServiceFeeConstant(t *testing.T) {
	assertDecimal(t, "ServiceFee", ServiceFee(), "11.20")
}

// =====================
// Full breakdowns
// =====================

func TestComputeDeliverItemsUnmatchedName(t *testing.T) {
	// Free-text item prices at zero; fees still apply.
	b := Compute(enum.CategoryDeliverItems, []LineItem{
		{Name: "Box", Quantity: "2"},
	}, PrintingSelection{})

	assertDecimal(t, "subtotal", b.Subtotal, "0")
	assertDecimal(t, "totalQuantity", b.TotalQuantity, "2")
	assertDecimal(t, "deliveryFee", b.DeliveryFee, "25")
	assertDecimal(t, "serviceFee", b.ServiceFee, "11.20")
	assertDecimal(t, "total", b.Total, "36.20")
}

func TestComputeFoodDeliveryCatalogMatch(t *testing.T) {
	b := Compute(enum.CategoryFoodDelivery, []LineItem{
		{Name: "Toppings", Quantity: "1"},
	}, PrintingSelection{})

	assertDecimal(t, "subtotal", b.Subtotal, "55")
	assertDecimal(t, "deliveryFee", b.DeliveryFee, "15")
	assertDecimal(t, "total", b.Total, "81.20")
	if len(b.Rows) != 1 {
		t.Fatalf("rows: got %d, want 1", len(b.Rows))
	}
	assertDecimal(t, "row unit price", b.Rows[0].UnitPrice, "55")
	assertDecimal(t, "row line total", b.Rows[0].LineTotal, "55")
}

func TestComputePrintingA3Colored(t *testing.T) {
	b := Compute(enum.CategoryPrinting, []LineItem{
		{Name: "file.pdf", Quantity: "3"},
	}, PrintingSelection{Size: enum.PrintSizeA3, Color: enum.PrintColorColored})

	assertDecimal(t, "subtotal", b.Subtotal, "75")
	assertDecimal(t, "deliveryFee", b.DeliveryFee, "9")
	assertDecimal(t, "total", b.Total, "95.20")
}

func TestComputePrintingPartialSelection(t *testing.T) {
	// Size chosen, color pending: the file prices at zero until both are set.
	b := Compute(enum.CategoryPrinting, []LineItem{
		{Name: "file.pdf", Quantity: "3"},
	}, PrintingSelection{Size: enum.PrintSizeA3})

	assertDecimal(t, "subtotal", b.Subtotal, "0")
	assertDecimal(t, "deliveryFee", b.DeliveryFee, "9")
	assertDecimal(t, "total", b.Total, "20.20")
}

func TestComputeNamedItemWithBlankQuantity(t *testing.T) {
	// A named item with a blank quantity is excluded from rows and subtotal
	// but still counts as a named item for the quantity sum (contributing 0).
	b := Compute(enum.CategoryFoodDelivery, []LineItem{
		{Name: "Toppings", Quantity: "2"},
		{Name: "Burger", Quantity: ""},
	}, PrintingSelection{})

	if len(b.Rows) != 1 {
		t.Fatalf("rows: got %d, want 1", len(b.Rows))
	}
	assertDecimal(t, "subtotal", b.Subtotal, "110")
	assertDecimal(t, "totalQuantity", b.TotalQuantity, "2")
	// deliveryFee tiers off totalQuantity=2, not the row count
	assertDecimal(t, "deliveryFee", b.DeliveryFee, "20")
}

func TestComputeUnparsableQuantityDegradesToZero(t *testing.T) {
	b := Compute(enum.CategoryFoodDelivery, []LineItem{
		{Name: "Toppings", Quantity: "abc"},
	}, PrintingSelection{})

	assertDecimal(t, "subtotal", b.Subtotal, "0")
	assertDecimal(t, "totalQuantity", b.TotalQuantity, "0")
	assertDecimal(t, "deliveryFee", b.DeliveryFee, "15")
}

func TestComputeNegativeQuantityDegradesToZero(t *testing.T) {
	b := Compute(enum.CategoryFoodDelivery, []LineItem{
		{Name: "Toppings", Quantity: "-3"},
	}, PrintingSelection{})

	assertDecimal(t, "subtotal", b.Subtotal, "0")
	assertDecimal(t, "totalQuantity", b.TotalQuantity, "0")
}

func TestComputeUnnamedItemIgnoredEntirely(t *testing.T) {
	b := Compute(enum.CategoryFoodDelivery, []LineItem{
		{Name: "", Quantity: "5"},
	}, PrintingSelection{})

	if len(b.Rows) != 0 {
		t.Fatalf("rows: got %d, want 0", len(b.Rows))
	}
	assertDecimal(t, "totalQuantity", b.TotalQuantity, "0")
	assertDecimal(t, "deliveryFee", b.DeliveryFee, "15") // base still charged
}

func TestComputeFractionalQuantities(t *testing.T) {
	b := Compute(enum.CategorySchoolMaterials, []LineItem{
		{Name: "Bond Paper (short)", Quantity: "2.5"},
	}, PrintingSelection{})

	assertDecimal(t, "subtotal", b.Subtotal, "5")
	// 10 + 5 × (2.5 − 1)
	assertDecimal(t, "deliveryFee", b.DeliveryFee, "17.5")
}

func TestComputeTotalIsSumOfParts(t *testing.T) {
	cases := []struct {
		category string
		items    []LineItem
		printing PrintingSelection
	}{
		{enum.CategoryDeliverItems, []LineItem{{Name: "Box", Quantity: "2"}}, PrintingSelection{}},
		{enum.CategoryFoodDelivery, []LineItem{{Name: "Toppings", Quantity: "1"}, {Name: "Fries", Quantity: "3"}}, PrintingSelection{}},
		{enum.CategorySchoolMaterials, []LineItem{{Name: "Notebook", Quantity: ""}, {Name: "Ballpen", Quantity: "10"}}, PrintingSelection{}},
		{enum.CategoryPrinting, []LineItem{{Name: "thesis.pdf", Quantity: "120"}}, PrintingSelection{Size: enum.PrintSizeA4, Color: enum.PrintColorPlain}},
		{"", []LineItem{{Name: "anything", Quantity: "9"}}, PrintingSelection{}},
	}
	for _, c := range cases {
		b := Compute(c.category, c.items, c.printing)
		want := b.Subtotal.Add(b.DeliveryFee).Add(b.ServiceFee)
		if !b.Total.Equal(want) {
			t.Errorf("%s: total %s != subtotal+fees %s", c.category, b.Total, want)
		}
		assertDecimal(t, c.category+" service fee", b.ServiceFee, "11.20")
	}
}

// =====================
// Submission gate
// =====================

func TestHasEmptyQuantities(t *testing.T) {
	tests := []struct {
		name  string
		items []LineItem
		want  bool
	}{
		{"all filled", []LineItem{{Name: "Toppings", Quantity: "1"}, {Name: "Fries", Quantity: "2"}}, false},
		{"one blank", []LineItem{{Name: "Toppings", Quantity: "1"}, {Name: "Fries", Quantity: ""}}, true},
		{"whitespace only", []LineItem{{Name: "Toppings", Quantity: "  "}}, true},
		{"no items", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasEmptyQuantities(tt.items); got != tt.want {
				t.Errorf("HasEmptyQuantities: got %v, want %v", got, tt.want)
			}
		})
	}
}
