package pricing

import (
	"github.com/pasuyo-app/api/internal/enum"
	"github.com/shopspring/decimal"
)

// CatalogEntry is a fixed name/price pair. Catalogs are static: the forms
// render them as dropdowns and the calculator resolves item names against
// them by exact match.
type CatalogEntry struct {
	Name  string
	Price decimal.Decimal
}

// FoodCatalog lists the food/drinks items orderable under FOOD_DELIVERY.
var FoodCatalog = []CatalogEntry{
	{Name: "Siomai Rice", Price: decimal.NewFromInt(65)},
	{Name: "Burger", Price: decimal.NewFromInt(45)},
	{Name: "Fries", Price: decimal.NewFromInt(35)},
	{Name: "Toppings", Price: decimal.NewFromInt(55)},
	{Name: "Fried Chicken", Price: decimal.NewFromInt(85)},
	{Name: "Spaghetti", Price: decimal.NewFromInt(50)},
	{Name: "Milk Tea", Price: decimal.NewFromInt(75)},
	{Name: "Iced Coffee", Price: decimal.NewFromInt(60)},
	{Name: "Bottled Water", Price: decimal.NewFromInt(20)},
	{Name: "Softdrinks", Price: decimal.NewFromInt(25)},
}

// SchoolCatalog lists the school-supply items orderable under SCHOOL_MATERIALS.
var SchoolCatalog = []CatalogEntry{
	{Name: "Ballpen", Price: decimal.NewFromInt(10)},
	{Name: "Pencil", Price: decimal.NewFromInt(8)},
	{Name: "Notebook", Price: decimal.NewFromInt(35)},
	{Name: "Yellow Pad", Price: decimal.NewFromInt(42)},
	{Name: "Intermediate Pad", Price: decimal.NewFromInt(38)},
	{Name: "Bond Paper (short)", Price: decimal.NewFromInt(2)},
	{Name: "Bond Paper (long)", Price: decimal.NewFromInt(3)},
	{Name: "Folder", Price: decimal.NewFromInt(12)},
	{Name: "Envelope", Price: decimal.NewFromInt(10)},
	{Name: "Correction Tape", Price: decimal.NewFromInt(30)},
	{Name: "Highlighter", Price: decimal.NewFromInt(45)},
	{Name: "Scientific Calculator", Price: decimal.NewFromInt(450)},
}

// printingPrices is the per-page price by (size, color). Both dimensions must
// be set; a partial selection prices at zero until the other is chosen.
var printingPrices = map[[2]string]decimal.Decimal{
	{enum.PrintSizeA3, enum.PrintColorColored}: decimal.NewFromInt(25),
	{enum.PrintSizeA3, enum.PrintColorPlain}:   decimal.NewFromInt(15),
	{enum.PrintSizeA4, enum.PrintColorColored}: decimal.NewFromInt(5),
	{enum.PrintSizeA4, enum.PrintColorPlain}:   decimal.NewFromInt(2),
}

// deliveryFeeSchedule is the flat base plus per-extra-unit charge by category.
// Unknown categories fall through to zero fees.
var deliveryFeeSchedule = map[string]struct{ Base, PerExtra decimal.Decimal }{
	enum.CategoryDeliverItems:    {Base: decimal.NewFromInt(20), PerExtra: decimal.NewFromInt(5)},
	enum.CategoryFoodDelivery:    {Base: decimal.NewFromInt(15), PerExtra: decimal.NewFromInt(5)},
	enum.CategorySchoolMaterials: {Base: decimal.NewFromInt(10), PerExtra: decimal.NewFromInt(5)},
	enum.CategoryPrinting:        {Base: decimal.NewFromInt(5), PerExtra: decimal.NewFromInt(2)},
}

// CatalogPrice resolves an item name against the food catalog first, then the
// school catalog. Names with no match price at zero; that is the product
// behavior for free-text items, not an error.
func CatalogPrice(name string) decimal.Decimal {
	for _, e := range FoodCatalog {
		if e.Name == name {
			return e.Price
		}
	}
	for _, e := range SchoolCatalog {
		if e.Name == name {
			return e.Price
		}
	}
	return decimal.Zero
}

// PrintingPrice returns the per-page price for a size/color pair, or zero if
// either dimension is unset or unrecognized.
func PrintingPrice(size, color string) decimal.Decimal {
	if p, ok := printingPrices[[2]string{size, color}]; ok {
		return p
	}
	return decimal.Zero
}

// DeliveryFeeRate returns the base and per-extra-unit delivery charge for a
// category. Unrecognized categories get zero for both.
func DeliveryFeeRate(category string) (base, perExtra decimal.Decimal) {
	if r, ok := deliveryFeeSchedule[category]; ok {
		return r.Base, r.PerExtra
	}
	return decimal.Zero, decimal.Zero
}
