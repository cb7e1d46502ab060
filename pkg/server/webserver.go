package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/matst80/slask-builder/pkg/builder"
	"github.com/matst80/slask-builder/pkg/cart"
	"github.com/matst80/slask-builder/pkg/catalog"
	"github.com/matst80/slask-builder/pkg/common"
	"github.com/matst80/slask-builder/pkg/session"
	"github.com/matst80/slask-builder/pkg/tracking"
)

// BuilderServer exposes one configurator per browser session. The
// catalog index is swapped atomically on reload; builder state lives
// in the session storage so any replica can serve any request.
type BuilderServer struct {
	catalog   atomic.Pointer[catalog.Index]
	Storage   session.Storage
	Submitter *cart.Submitter
	Tracking  tracking.Tracking

	// TokenSecret and ApiKey guard the admin endpoints.
	TokenSecret []byte
	ApiKey      string

	submitting sync.Map // sessionId -> struct{}
}

func NewBuilderServer(idx *catalog.Index, storage session.Storage, submitter *cart.Submitter, trk tracking.Tracking) *BuilderServer {
	srv := &BuilderServer{
		Storage:   storage,
		Submitter: submitter,
		Tracking:  trk,
	}
	srv.catalog.Store(idx)
	return srv
}

// Catalog returns the current catalog index.
func (ws *BuilderServer) Catalog() *catalog.Index {
	return ws.catalog.Load()
}

// SwapCatalog replaces the catalog index. In-flight sessions keep the
// index they already resolved; a stale handle simply stops resolving.
func (ws *BuilderServer) SwapCatalog(idx *catalog.Index) {
	ws.catalog.Store(idx)
}

func (ws *BuilderServer) loadBuilder(sessionId int) (*builder.Builder, error) {
	state, err := ws.Storage.GetState(sessionId)
	if err == session.ErrNotFound {
		return builder.New(ws.Catalog()), nil
	}
	if err != nil {
		return nil, err
	}
	return builder.Restore(ws.Catalog(), *state), nil
}

func (ws *BuilderServer) saveBuilder(sessionId int, b *builder.Builder) error {
	return ws.Storage.SaveState(sessionId, &b.State)
}

// BuilderView is the state a presentation layer needs to redraw.
type BuilderView struct {
	Path               builder.SelectionPath  `json:"path"`
	Titles             builder.StepTitles     `json:"titles"`
	Sports             []catalog.Sport        `json:"sports"`
	ShaftTypes         []catalog.ShaftType    `json:"shaftTypes,omitempty"`
	ShaftSizes         []catalog.ShaftSize    `json:"shaftSizes,omitempty"`
	ShaftVariants      []catalog.ShaftVariant `json:"shaftVariants,omitempty"`
	AccessoriesVisible bool                   `json:"accessoriesVisible"`
	Selections         builder.SelectionSet   `json:"selections"`
	Summary            builder.Summary        `json:"summary"`
	Events             []builder.ChangeEvent  `json:"events,omitempty"`
}

func (ws *BuilderServer) viewOf(b *builder.Builder, events []builder.ChangeEvent) *BuilderView {
	idx := ws.Catalog()
	view := &BuilderView{
		Path:               b.Path,
		Titles:             b.Titles,
		Sports:             idx.Sports(),
		AccessoriesVisible: b.AccessoriesVisible(),
		Selections:         b.Selections,
		Summary:            b.Summary(),
		Events:             events,
	}
	if b.Path.Sport != "" {
		view.ShaftTypes = idx.ShaftTypesForSport(b.Path.Sport)
	}
	if b.Path.ShaftType != "" {
		view.ShaftSizes = idx.ShaftSizesForShaftType(b.Path.ShaftType)
	}
	if b.Path.ShaftSize != "" {
		view.ShaftVariants = idx.ShaftVariantsForSize(b.Path.ShaftSize)
	}
	return view
}

func (ws *BuilderServer) GetBuilder(w http.ResponseWriter, r *http.Request) {
	sessionId := common.HandleSessionCookie(ws.Tracking, w, r)
	b, err := ws.loadBuilder(sessionId)
	if err != nil {
		http.Error(w, "Error loading builder", http.StatusInternalServerError)
		return
	}
	writeJson(w, r, ws.viewOf(b, nil))
}

// ChooseRequest selects a value for one of the three dependent steps.
type ChooseRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

const (
	FieldSport     = "sport"
	FieldShaftType = "shaft-type"
	FieldShaftSize = "shaft-size"
)

func (ws *BuilderServer) Choose(w http.ResponseWriter, r *http.Request) {
	sessionId := common.HandleSessionCookie(ws.Tracking, w, r)
	var req ChooseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid choice", http.StatusBadRequest)
		return
	}
	b, err := ws.loadBuilder(sessionId)
	if err != nil {
		http.Error(w, "Error loading builder", http.StatusInternalServerError)
		return
	}
	var events []builder.ChangeEvent
	switch req.Field {
	case FieldSport:
		events = b.ChooseSport(req.Value)
	case FieldShaftType:
		events = b.ChooseShaftType(req.Value)
	case FieldShaftSize:
		events = b.ChooseShaftSize(req.Value)
	default:
		http.Error(w, "Unknown field", http.StatusBadRequest)
		return
	}
	// an empty event list is a rejected choice, state is untouched
	if len(events) > 0 {
		if err := ws.saveBuilder(sessionId, b); err != nil {
			http.Error(w, "Error saving builder", http.StatusInternalServerError)
			return
		}
		if ws.Tracking != nil {
			go ws.Tracking.TrackStepChoice(sessionId, req.Field, req.Value)
		}
	}
	writeJson(w, r, ws.viewOf(b, events))
}

// ToggleRequest toggles the shaft slot or one accessory slot. Shaft
// toggles carry only the variant id, resolved against the chosen
// size; accessory cards carry their own variant payload.
type ToggleRequest struct {
	Slot      string                `json:"slot"`
	Type      string                `json:"type,omitempty"`
	Index     int                   `json:"index,omitempty"`
	VariantId uint                  `json:"variantId,omitempty"`
	Variant   *catalog.ShaftVariant `json:"variant,omitempty"`
}

func (ws *BuilderServer) Toggle(w http.ResponseWriter, r *http.Request) {
	sessionId := common.HandleSessionCookie(ws.Tracking, w, r)
	var req ToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid toggle", http.StatusBadRequest)
		return
	}
	b, err := ws.loadBuilder(sessionId)
	if err != nil {
		http.Error(w, "Error loading builder", http.StatusInternalServerError)
		return
	}
	var events []builder.ChangeEvent
	var slotKey string
	var variantId uint
	switch req.Slot {
	case builder.ShaftSlotKey:
		events = b.ToggleShaft(req.VariantId)
		slotKey = builder.ShaftSlotKey
		variantId = req.VariantId
	case "accessory":
		if req.Variant == nil {
			// stale card reference, treat as a no-op
			break
		}
		events = b.ToggleAccessory(req.Type, req.Index, *req.Variant)
		slotKey = builder.AccessorySlotKey(req.Type, req.Index)
		variantId = req.Variant.Id
	default:
		http.Error(w, "Unknown slot", http.StatusBadRequest)
		return
	}
	if len(events) > 0 {
		if err := ws.saveBuilder(sessionId, b); err != nil {
			http.Error(w, "Error saving builder", http.StatusInternalServerError)
			return
		}
		if ws.Tracking != nil {
			go ws.Tracking.TrackToggle(sessionId, slotKey, variantId)
		}
	}
	writeJson(w, r, ws.viewOf(b, events))
}

type QuantityRequest struct {
	SlotKey  string `json:"slotKey"`
	Quantity int    `json:"quantity"`
}

func (ws *BuilderServer) ChangeQuantity(w http.ResponseWriter, r *http.Request) {
	sessionId := common.HandleSessionCookie(ws.Tracking, w, r)
	var req QuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid quantity", http.StatusBadRequest)
		return
	}
	b, err := ws.loadBuilder(sessionId)
	if err != nil {
		http.Error(w, "Error loading builder", http.StatusInternalServerError)
		return
	}
	events := b.SetQuantity(req.SlotKey, req.Quantity)
	if len(events) > 0 {
		if err := ws.saveBuilder(sessionId, b); err != nil {
			http.Error(w, "Error saving builder", http.StatusInternalServerError)
			return
		}
	}
	writeJson(w, r, ws.viewOf(b, events))
}

func (ws *BuilderServer) Reset(w http.ResponseWriter, r *http.Request) {
	sessionId := common.HandleSessionCookie(ws.Tracking, w, r)
	b, err := ws.loadBuilder(sessionId)
	if err != nil {
		http.Error(w, "Error loading builder", http.StatusInternalServerError)
		return
	}
	events := b.Reset()
	if err := ws.saveBuilder(sessionId, b); err != nil {
		http.Error(w, "Error saving builder", http.StatusInternalServerError)
		return
	}
	writeJson(w, r, ws.viewOf(b, events))
}

func (ws *BuilderServer) Submit(w http.ResponseWriter, r *http.Request) {
	sessionId := common.HandleSessionCookie(ws.Tracking, w, r)
	if _, inFlight := ws.submitting.LoadOrStore(sessionId, struct{}{}); inFlight {
		http.Error(w, "Submission already in progress", http.StatusConflict)
		return
	}
	defer ws.submitting.Delete(sessionId)

	b, err := ws.loadBuilder(sessionId)
	if err != nil {
		http.Error(w, "Error loading builder", http.StatusInternalServerError)
		return
	}
	result := ws.Submitter.Submit(r.Context(), &b.Selections)
	if result.Status == cart.StatusAdded {
		// only a confirmed add resets the builder; on failure the
		// selection stays so the shopper can retry
		b.Reset()
		if err := ws.Storage.DeleteState(sessionId); err != nil && err != session.ErrNotFound {
			log.Printf("error clearing builder after submit: %v", err)
		}
		if ws.Tracking != nil {
			go ws.Tracking.TrackAddToCart(sessionId, result.SubmissionId, result.ItemCount)
		}
	}
	writeJson(w, r, result)
}

// BuilderHandler wires the shopper-facing routes.
func (ws *BuilderServer) BuilderHandler() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", ws.GetBuilder)
	mux.HandleFunc("POST /choose", ws.Choose)
	mux.HandleFunc("POST /toggle", ws.Toggle)
	mux.HandleFunc("PUT /quantity", ws.ChangeQuantity)
	mux.HandleFunc("POST /submit", ws.Submit)
	mux.HandleFunc("POST /reset", ws.Reset)
	mux.HandleFunc("OPTIONS /", common.RespondToOptions)
	return mux
}
