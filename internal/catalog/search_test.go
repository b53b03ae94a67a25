package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newIDServer serves the id-search endpoint, echoing back a cosmetic for
// every requested ID, and records the batch sizes it saw.
func newIDServer(t *testing.T, batchSizes *[]int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/cosmetics/br/search/ids" {
			t.Errorf("unexpected path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}

		ids := r.URL.Query()["id"]
		*batchSizes = append(*batchSizes, len(ids))

		data := make([]Cosmetic, 0, len(ids))
		for _, id := range ids {
			data = append(data, Cosmetic{
				ID:     id,
				Name:   "Name " + id,
				Type:   TypeInfo{Value: "outfit"},
				Rarity: RarityInfo{Value: "rare"},
			})
		}
		_ = json.NewEncoder(w).Encode(cosmeticsResponse{Status: 200, Data: data})
	}))
}

func TestSearchByIDs_BatchesAtFifty(t *testing.T) {
	var batchSizes []int
	server := newIDServer(t, &batchSizes)
	defer server.Close()

	client := NewClient(ClientOptions{BaseURL: server.URL})

	ids := make([]string, 120)
	for i := range ids {
		ids[i] = fmt.Sprintf("cid_%03d", i)
	}

	cosmetics, err := client.SearchByIDs(context.Background(), ids)
	if err != nil {
		t.Fatalf("SearchByIDs failed: %v", err)
	}

	if len(batchSizes) != 3 {
		t.Fatalf("expected 3 batches, got %d (%v)", len(batchSizes), batchSizes)
	}
	if batchSizes[0] != 50 || batchSizes[1] != 50 || batchSizes[2] != 20 {
		t.Errorf("batch sizes = %v, want [50 50 20]", batchSizes)
	}

	if len(cosmetics) != 120 {
		t.Fatalf("expected 120 cosmetics, got %d", len(cosmetics))
	}
	for i, cosmetic := range cosmetics {
		if want := fmt.Sprintf("cid_%03d", i); cosmetic.ID != want {
			t.Fatalf("result order broken at %d: got %s, want %s", i, cosmetic.ID, want)
		}
	}
}

func TestSearchByIDs_EmptyInput(t *testing.T) {
	client := NewClient(ClientOptions{BaseURL: "http://unused.invalid"})

	cosmetics, err := client.SearchByIDs(context.Background(), nil)
	if err != nil {
		t.Fatalf("SearchByIDs failed: %v", err)
	}
	if len(cosmetics) != 0 {
		t.Errorf("expected empty result, got %d", len(cosmetics))
	}
}

func TestSearchByIDs_MissingIDsAbsentFromResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids := r.URL.Query()["id"]
		var data []Cosmetic
		for _, id := range ids {
			if id == "cid_retired" {
				continue
			}
			data = append(data, Cosmetic{ID: id})
		}
		_ = json.NewEncoder(w).Encode(cosmeticsResponse{Status: 200, Data: data})
	}))
	defer server.Close()

	client := NewClient(ClientOptions{BaseURL: server.URL})

	cosmetics, err := client.SearchByIDs(context.Background(), []string{"cid_alpha", "cid_retired", "cid_bravo"})
	if err != nil {
		t.Fatalf("SearchByIDs failed: %v", err)
	}
	if len(cosmetics) != 2 {
		t.Errorf("expected 2 resolved cosmetics, got %d", len(cosmetics))
	}
}

func TestSearchByIDs_NotFoundBatchIsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status":404,"error":"not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(ClientOptions{BaseURL: server.URL})

	cosmetics, err := client.SearchByIDs(context.Background(), []string{"cid_gone"})
	if err != nil {
		t.Fatalf("a fully unknown batch must not be an error, got: %v", err)
	}
	if len(cosmetics) != 0 {
		t.Errorf("expected empty result, got %d", len(cosmetics))
	}
}

func TestSearchByIDs_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":503,"error":"service unavailable"}`))
	}))
	defer server.Close()

	client := NewClient(ClientOptions{BaseURL: server.URL})

	_, err := client.SearchByIDs(context.Background(), []string{"cid_alpha"})
	if err == nil {
		t.Fatal("expected error for upstream failure")
	}
}

func TestBanners(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/banners" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(bannersResponse{Status: 200, Data: []Banner{
			{ID: "OT11Banner", DevName: "OT11"},
			{ID: "BRSeason01", DevName: "S1"},
		}})
	}))
	defer server.Close()

	client := NewClient(ClientOptions{BaseURL: server.URL})

	banners, err := client.Banners(context.Background())
	if err != nil {
		t.Fatalf("Banners failed: %v", err)
	}
	if len(banners) != 2 {
		t.Fatalf("expected 2 banners, got %d", len(banners))
	}
	if banners[0].ID != "OT11Banner" {
		t.Errorf("unexpected first banner: %s", banners[0].ID)
	}
}

func TestNormalizeID(t *testing.T) {
	if got := NormalizeID("CID_028_Athena_Commando_F"); got != "cid_028_athena_commando_f" {
		t.Errorf("NormalizeID = %s", got)
	}
}
