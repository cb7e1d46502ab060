package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/schema"

	"github.com/matst80/slask-builder/pkg/catalog"
	"github.com/matst80/slask-builder/pkg/common"
)

var decoder = schema.NewDecoder()

func init() {
	decoder.IgnoreUnknownKeys(true)
}

type ShaftTypesQuery struct {
	Sport string `schema:"sport,required"`
}

type ShaftSizesQuery struct {
	ShaftType string `schema:"shaftType,required"`
}

type VariantsQuery struct {
	ShaftSize string `schema:"shaftSize,required"`
}

func (ws *BuilderServer) GetSports(w http.ResponseWriter, r *http.Request) {
	publicHeaders(w, r, "600")
	if err := json.NewEncoder(w).Encode(ws.Catalog().Sports()); err != nil {
		log.Printf("Error encoding sports: %v", err)
	}
}

func (ws *BuilderServer) GetShaftTypes(w http.ResponseWriter, r *http.Request) {
	var query ShaftTypesQuery
	if err := decoder.Decode(&query, r.URL.Query()); err != nil {
		http.Error(w, "Invalid query", http.StatusBadRequest)
		return
	}
	publicHeaders(w, r, "600")
	if err := json.NewEncoder(w).Encode(ws.Catalog().ShaftTypesForSport(query.Sport)); err != nil {
		log.Printf("Error encoding shaft types: %v", err)
	}
}

func (ws *BuilderServer) GetShaftSizes(w http.ResponseWriter, r *http.Request) {
	var query ShaftSizesQuery
	if err := decoder.Decode(&query, r.URL.Query()); err != nil {
		http.Error(w, "Invalid query", http.StatusBadRequest)
		return
	}
	publicHeaders(w, r, "600")
	if err := json.NewEncoder(w).Encode(ws.Catalog().ShaftSizesForShaftType(query.ShaftType)); err != nil {
		log.Printf("Error encoding shaft sizes: %v", err)
	}
}

func (ws *BuilderServer) GetShaftVariants(w http.ResponseWriter, r *http.Request) {
	var query VariantsQuery
	if err := decoder.Decode(&query, r.URL.Query()); err != nil {
		http.Error(w, "Invalid query", http.StatusBadRequest)
		return
	}
	publicHeaders(w, r, "600")
	variants := ws.Catalog().ShaftVariantsForSize(query.ShaftSize)
	if variants == nil {
		variants = []catalog.ShaftVariant{}
	}
	if err := json.NewEncoder(w).Encode(variants); err != nil {
		log.Printf("Error encoding shaft variants: %v", err)
	}
}

// CatalogReload carries the four raw feed documents.
type CatalogReload struct {
	Sports     json.RawMessage `json:"sports,omitempty"`
	ShaftTypes json.RawMessage `json:"shaftTypes,omitempty"`
	ShaftSizes json.RawMessage `json:"shaftSizes,omitempty"`
	Labels     json.RawMessage `json:"labels,omitempty"`
}

// ReloadCatalog swaps in a freshly parsed catalog. A malformed feed
// leaves the current catalog in place.
func (ws *BuilderServer) ReloadCatalog(w http.ResponseWriter, r *http.Request) {
	var reload CatalogReload
	if err := json.NewDecoder(r.Body).Decode(&reload); err != nil {
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}
	idx, err := catalog.Load(reload.Sports, reload.ShaftTypes, reload.ShaftSizes, reload.Labels)
	if err != nil {
		log.Printf("catalog reload rejected: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ws.SwapCatalog(idx)
	w.WriteHeader(http.StatusNoContent)
}

// CatalogHandler wires the public catalog queries.
func (ws *BuilderServer) CatalogHandler() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /sports", ws.GetSports)
	mux.HandleFunc("GET /shaft-types", ws.GetShaftTypes)
	mux.HandleFunc("GET /shaft-sizes", ws.GetShaftSizes)
	mux.HandleFunc("GET /variants", ws.GetShaftVariants)
	mux.HandleFunc("OPTIONS /", common.RespondToOptions)
	return mux
}

// AdminHandler wires the protected admin routes.
func (ws *BuilderServer) AdminHandler() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /catalog", ws.AuthMiddleware(ws.ReloadCatalog))
	return mux
}
