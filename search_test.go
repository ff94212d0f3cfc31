package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

const sampleSearchBody = `{
	"products": [
		{
			"product_name": "Greek Yogurt",
			"brands": "Fage",
			"nutriments": {
				"energy-kcal_100g": 59,
				"proteins_100g": 10.3,
				"carbohydrates_100g": 3.6,
				"fat_100g": 0.4
			}
		},
		{
			"product_name": "Mystery Bar",
			"brands": "",
			"nutriments": {}
		},
		{
			"product_name": "",
			"brands": "NoName Co",
			"nutriments": {"energy-kcal_100g": 999}
		}
	]
}`

func newTestSearcher(handler http.HandlerFunc) (*foodSearcher, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return newFoodSearcher(srv.URL, nil), srv
}

// TestSearch_MapsProducts verifies the response mapping: named products come
// through with per-100g macros, absent nutrients decode to zero, and nameless
// products are dropped.
func TestSearch_MapsProducts(t *testing.T) {
	var gotQuery string
	searcher, srv := newTestSearcher(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("search_terms")
		w.Write([]byte(sampleSearchBody))
	})
	defer srv.Close()

	results, latest := searcher.Search(context.Background(), "greek yogurt")
	if !latest {
		t.Fatal("expected latest=true for the only search")
	}
	if gotQuery != "greek yogurt" {
		t.Errorf("search_terms = %q, want %q", gotQuery, "greek yogurt")
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results (nameless product dropped), got %d", len(results))
	}

	first := results[0]
	if first.Name != "Greek Yogurt" || first.Brand != "Fage" {
		t.Errorf("first result = %+v", first)
	}
	if first.CaloriesPer100G != 59 || first.ProteinPer100G != 10.3 {
		t.Errorf("first result macros = %+v", first)
	}

	second := results[1]
	if second.Name != "Mystery Bar" {
		t.Errorf("second result = %+v", second)
	}
	if second.CaloriesPer100G != 0 || second.ProteinPer100G != 0 || second.CarbsPer100G != 0 || second.FatPer100G != 0 {
		t.Errorf("missing nutriments should decode to zero, got %+v", second)
	}
}

// TestSearch_ShortQuerySkipsLookup verifies sub-minimum queries return empty
// without hitting the nutrition API at all.
func TestSearch_ShortQuerySkipsLookup(t *testing.T) {
	calls := 0
	searcher, srv := newTestSearcher(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(sampleSearchBody))
	})
	defer srv.Close()

	for _, q := range []string{"", "a", "  a  "} {
		results, latest := searcher.Search(context.Background(), q)
		if !latest {
			t.Errorf("query %q: expected latest=true", q)
		}
		if len(results) != 0 {
			t.Errorf("query %q: expected no results, got %+v", q, results)
		}
	}
	if calls != 0 {
		t.Errorf("short queries reached the API %d times", calls)
	}
}

// TestSearch_FailureDegradesToEmpty verifies every upstream failure mode
// yields an empty result list rather than an error.
func TestSearch_FailureDegradesToEmpty(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"upstream 500", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"upstream 429", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"products": [`))
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			searcher, srv := newTestSearcher(tc.handler)
			defer srv.Close()

			results, latest := searcher.Search(context.Background(), "banana")
			if !latest {
				t.Error("expected latest=true")
			}
			if results == nil || len(results) != 0 {
				t.Errorf("expected empty results, got %#v", results)
			}
		})
	}
}

// TestSearch_UnreachableHost verifies a dead endpoint degrades the same way.
func TestSearch_UnreachableHost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	searcher := newFoodSearcher(srv.URL, nil)
	results, latest := searcher.Search(context.Background(), "banana")
	if !latest || len(results) != 0 {
		t.Errorf("expected empty results and latest=true, got %v / %v", results, latest)
	}
}

// TestSearch_NewerSearchSupersedesOlder verifies last-write-wins: a search
// issued while an earlier one is still in flight cancels it, and the earlier
// call reports superseded.
func TestSearch_NewerSearchSupersedesOlder(t *testing.T) {
	firstArrived := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	searcher, srv := newTestSearcher(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("search_terms") == "slow" {
			once.Do(func() { close(firstArrived) })
			<-release
			return
		}
		w.Write([]byte(sampleSearchBody))
	})
	defer srv.Close()
	defer close(release)

	type outcome struct {
		results []foodSearchResult
		latest  bool
	}
	firstDone := make(chan outcome, 1)
	go func() {
		results, latest := searcher.Search(context.Background(), "slow")
		firstDone <- outcome{results, latest}
	}()

	<-firstArrived
	results, latest := searcher.Search(context.Background(), "greek yogurt")
	if !latest {
		t.Error("newest search should be latest")
	}
	if len(results) != 2 {
		t.Errorf("newest search results = %+v", results)
	}

	first := <-firstDone
	if first.latest {
		t.Error("superseded search reported latest=true")
	}
	if len(first.results) != 0 {
		t.Errorf("superseded search leaked results: %+v", first.results)
	}
}
