package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/pasuyo-app/api/internal/handler"
)

func setupCatalogRouter() *chi.Mux {
	h := handler.NewCatalogHandler()
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func getJSON(t *testing.T, router http.Handler, path string, v interface{}) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestCatalogFood(t *testing.T) {
	router := setupCatalogRouter()

	var entries []map[string]string
	getJSON(t, router, "/catalog/food", &entries)

	if len(entries) == 0 {
		t.Fatal("expected food catalog entries")
	}

	prices := map[string]string{}
	for _, e := range entries {
		prices[e["name"]] = e["price"]
	}
	if prices["Toppings"] != "55.00" {
		t.Errorf("Toppings: got %v, want 55.00", prices["Toppings"])
	}
}

func TestCatalogSchool(t *testing.T) {
	router := setupCatalogRouter()

	var entries []map[string]string
	getJSON(t, router, "/catalog/school", &entries)

	prices := map[string]string{}
	for _, e := range entries {
		prices[e["name"]] = e["price"]
	}
	if prices["Ballpen"] != "10.00" {
		t.Errorf("Ballpen: got %v, want 10.00", prices["Ballpen"])
	}
}

func TestCatalogPrinting(t *testing.T) {
	router := setupCatalogRouter()

	var entries []map[string]string
	getJSON(t, router, "/catalog/printing", &entries)

	if len(entries) != 4 {
		t.Fatalf("expected 4 size/color combinations, got %d", len(entries))
	}

	prices := map[string]string{}
	for _, e := range entries {
		prices[e["size"]+"/"+e["color"]] = e["price"]
	}
	want := map[string]string{
		"A3/COLORED":     "25.00",
		"A3/NOT_COLORED": "15.00",
		"A4/COLORED":     "5.00",
		"A4/NOT_COLORED": "2.00",
	}
	for k, v := range want {
		if prices[k] != v {
			t.Errorf("%s: got %v, want %v", k, prices[k], v)
		}
	}
}

func TestCatalogFees(t *testing.T) {
	router := setupCatalogRouter()

	var resp struct {
		Delivery []struct {
			Category     string `json:"category"`
			Base         string `json:"base"`
			PerExtraUnit string `json:"per_extra_unit"`
		} `json:"delivery"`
		ServiceFee string `json:"service_fee"`
	}
	getJSON(t, router, "/catalog/fees", &resp)

	if resp.ServiceFee != "11.20" {
		t.Errorf("service_fee: got %v, want 11.20", resp.ServiceFee)
	}

	rates := map[string][2]string{}
	for _, d := range resp.Delivery {
		rates[d.Category] = [2]string{d.Base, d.PerExtraUnit}
	}
	if rates["DELIVER_ITEMS"] != [2]string{"20.00", "5.00"} {
		t.Errorf("DELIVER_ITEMS rate: got %v", rates["DELIVER_ITEMS"])
	}
	if rates["PRINTING"] != [2]string{"5.00", "2.00"} {
		t.Errorf("PRINTING rate: got %v", rates["PRINTING"])
	}
}
