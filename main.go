package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

// defaultFoodSearchURL is the Open Food Facts product search endpoint,
// overridable via FOOD_SEARCH_URL for tests and mirrors.
const defaultFoodSearchURL = "https://world.openfoodfacts.org/cgi/search.pl"

func main() {
	log.SetPrefix("calorie-tracker: ")
	log.SetFlags(0)

	// .env is optional; environment variables win either way.
	godotenv.Load()

	store := buildStore()
	tr := newTracker(store, defaultMacroPolicy())

	searchURL := os.Getenv("FOOD_SEARCH_URL")
	if searchURL == "" {
		searchURL = defaultFoodSearchURL
	}
	cache := newSearchCache(os.Getenv("REDIS_ADDR"), 15*time.Minute)
	if cache != nil {
		log.Printf("[main] search cache enabled via redis at %s", os.Getenv("REDIS_ADDR"))
	}

	h := &Handler{
		tracker:  tr,
		searcher: newFoodSearcher(searchURL, cache),
	}

	router := gin.Default()
	router.SetTrustedProxies(nil)
	h.registerRoutes(router)

	// The dashboard UI is served from its own dev server, so the API is
	// wrapped in a permissive CORS layer.
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowedHeaders: []string{"*"},
	}).Handler(router)

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = "localhost:3000"
	}
	log.Printf("[main] listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, corsHandler))
}

// buildStore picks the persistence backend: Postgres when DB_URL is set,
// otherwise JSON files under DATA_DIR (default ./data).
func buildStore() stateStore {
	if dbURL := os.Getenv("DB_URL"); dbURL != "" {
		store, err := newPGStore(context.Background(), dbURL)
		if err != nil {
			log.Fatalf("[main] postgres store: %v", err)
		}
		log.Printf("[main] using postgres-backed state store")
		return store
	}

	dir := os.Getenv("DATA_DIR")
	if dir == "" {
		dir = "data"
	}
	store, err := newFileStore(dir)
	if err != nil {
		log.Fatalf("[main] file store: %v", err)
	}
	log.Printf("[main] using file-backed state store in %s", dir)
	return store
}
