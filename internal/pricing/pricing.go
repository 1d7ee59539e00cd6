// Package pricing is the order pricing and fee computation engine. Every
// order form, detail view, and repost flow runs the same Compute over plain
// data, so the stored amount_price can always be reproduced from the items
// that produced it. All functions are pure and safe for concurrent use.
package pricing

import (
	"strings"

	"github.com/pasuyo-app/api/internal/enum"
	"github.com/shopspring/decimal"
)

// serviceFeeBase is the fixed platform fee; VAT applies to this base only,
// so the service fee is a constant 11.20 regardless of order size.
var (
	serviceFeeBase = decimal.NewFromInt(10)
	vatMultiplier  = decimal.RequireFromString("1.12")
)

// LineItem is one row of an order form. Quantity stays a string all the way
// to the calculator: it is user-entered text and the empty/unparsable cases
// carry meaning of their own.
type LineItem struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
}

// PrintingSelection is the size/color pair for PRINTING orders. Either field
// may be empty while the user is still choosing.
type PrintingSelection struct {
	Size  string `json:"size"`
	Color string `json:"color"`
}

// Row is a priced line item inside a Breakdown.
type Row struct {
	Name      string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// Breakdown is the full price projection for a draft or persisted order.
// It is recomputed from scratch on every call, never mutated.
type Breakdown struct {
	Rows          []Row
	Subtotal      decimal.Decimal
	TotalQuantity decimal.Decimal
	DeliveryFee   decimal.Decimal
	ServiceFee    decimal.Decimal
	Total         decimal.Decimal
}

// Compute prices an order. Unit prices come from the printing table for
// PRINTING orders and from catalog lookup otherwise. Items degrade silently:
// unmatched names, blank or unparsable quantities, and partial printing
// selections all contribute zero rather than failing.
//
// A row enters Rows and Subtotal only when both name and quantity are
// non-empty. TotalQuantity sums parsed quantities over every named item,
// even those with a blank quantity (contributing zero). The asymmetry is
// deliberate: a named item with a blank quantity still occupies a form row,
// and the delivery-fee tiering has always counted it that way.
func Compute(category string, items []LineItem, printing PrintingSelection) Breakdown {
	b := Breakdown{
		Subtotal:      decimal.Zero,
		TotalQuantity: decimal.Zero,
		ServiceFee:    ServiceFee(),
	}

	for _, item := range items {
		if item.Name == "" {
			continue
		}

		qty := ParseQuantity(item.Quantity)
		b.TotalQuantity = b.TotalQuantity.Add(qty)

		if item.Quantity == "" {
			continue
		}

		unit := UnitPrice(category, item.Name, printing)
		lineTotal := unit.Mul(qty)
		b.Rows = append(b.Rows, Row{
			Name:      item.Name,
			Quantity:  qty,
			UnitPrice: unit,
			LineTotal: lineTotal,
		})
		b.Subtotal = b.Subtotal.Add(lineTotal)
	}

	b.DeliveryFee = DeliveryFee(category, b.TotalQuantity)
	b.Total = b.Subtotal.Add(b.DeliveryFee).Add(b.ServiceFee)
	return b
}

// DeliveryFee is base + perExtra × max(totalQuantity − 1, 0) for the
// category's rate.
func DeliveryFee(category string, totalQuantity decimal.Decimal) decimal.Decimal {
	base, perExtra := DeliveryFeeRate(category)
	extra := totalQuantity.Sub(decimal.NewFromInt(1))
	if extra.IsNegative() {
		extra = decimal.Zero
	}
	return base.Add(perExtra.Mul(extra))
}

// ServiceFee is the fixed platform fee with VAT applied to the base only.
func ServiceFee() decimal.Decimal {
	return serviceFeeBase.Mul(vatMultiplier)
}

// HasEmptyQuantities reports whether any item carries a blank quantity
// string. The calculator tolerates blanks; submission does not.
func HasEmptyQuantities(items []LineItem) bool {
	for _, item := range items {
		if strings.TrimSpace(item.Quantity) == "" {
			return true
		}
	}
	return false
}

// UnitPrice resolves a single item's unit price: the printing table for
// PRINTING orders, catalog lookup for everything else.
func UnitPrice(category, name string, printing PrintingSelection) decimal.Decimal {
	if category == enum.CategoryPrinting {
		return PrintingPrice(printing.Size, printing.Color)
	}
	return CatalogPrice(name)
}

// ParseQuantity turns user-entered quantity text into a non-negative decimal.
// Unparsable input and negatives degrade to zero; a negative must never
// shrink the subtotal or the delivery-fee tier.
func ParseQuantity(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}
