package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pasuyo-app/api/internal/enum"
	"github.com/pasuyo-app/api/internal/pricing"
)

// CatalogHandler serves the static price catalogs the order forms render.
// Everything here is compiled in, so the handlers are pure lookups.
type CatalogHandler struct{}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

// RegisterRoutes registers catalog endpoints on the given Chi router.
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/catalog/food", h.Food)
	r.Get("/catalog/school", h.School)
	r.Get("/catalog/printing", h.Printing)
	r.Get("/catalog/fees", h.Fees)
}

// --- Response types ---

type catalogEntryResponse struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}

type printingPriceResponse struct {
	Size  string `json:"size"`
	Color string `json:"color"`
	Price string `json:"price"`
}

type feeRateResponse struct {
	Category     string `json:"category"`
	Base         string `json:"base"`
	PerExtraUnit string `json:"per_extra_unit"`
}

type feesResponse struct {
	Delivery   []feeRateResponse `json:"delivery"`
	ServiceFee string            `json:"service_fee"`
}

// --- Handlers ---

// Food handles GET /catalog/food.
func (h *CatalogHandler) Food(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toCatalogResponse(pricing.FoodCatalog))
}

// School handles GET /catalog/school.
func (h *CatalogHandler) School(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toCatalogResponse(pricing.SchoolCatalog))
}

// Printing handles GET /catalog/printing.
func (h *CatalogHandler) Printing(w http.ResponseWriter, r *http.Request) {
	sizes := []string{enum.PrintSizeA3, enum.PrintSizeA4}
	colors := []string{enum.PrintColorColored, enum.PrintColorPlain}

	resp := make([]printingPriceResponse, 0, len(sizes)*len(colors))
	for _, size := range sizes {
		for _, color := range colors {
			resp = append(resp, printingPriceResponse{
				Size:  size,
				Color: color,
				Price: pricing.PrintingPrice(size, color).StringFixed(2),
			})
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Fees handles GET /catalog/fees.
func (h *CatalogHandler) Fees(w http.ResponseWriter, r *http.Request) {
	categories := []string{
		enum.CategoryDeliverItems,
		enum.CategoryFoodDelivery,
		enum.CategorySchoolMaterials,
		enum.CategoryPrinting,
	}

	delivery := make([]feeRateResponse, len(categories))
	for i, c := range categories {
		base, perExtra := pricing.DeliveryFeeRate(c)
		delivery[i] = feeRateResponse{
			Category:     c,
			Base:         base.StringFixed(2),
			PerExtraUnit: perExtra.StringFixed(2),
		}
	}

	writeJSON(w, http.StatusOK, feesResponse{
		Delivery:   delivery,
		ServiceFee: pricing.ServiceFee().StringFixed(2),
	})
}

func toCatalogResponse(entries []pricing.CatalogEntry) []catalogEntryResponse {
	resp := make([]catalogEntryResponse, len(entries))
	for i, e := range entries {
		resp[i] = catalogEntryResponse{
			Name:  e.Name,
			Price: e.Price.StringFixed(2),
		}
	}
	return resp
}
