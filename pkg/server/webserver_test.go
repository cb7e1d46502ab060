package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/matst80/slask-builder/pkg/builder"
	"github.com/matst80/slask-builder/pkg/cart"
	"github.com/matst80/slask-builder/pkg/catalog"
	"github.com/matst80/slask-builder/pkg/session"
)

func testIndex(t *testing.T) *catalog.Index {
	t.Helper()
	idx, err := catalog.Load(
		[]byte(`[{"handle":"baseball","label":"Baseball"},{"handle":"softball","label":"Softball"}]`),
		[]byte(`[{"handle":"alloy","name":"Alloy","sportHandles":["baseball","softball"]}]`),
		[]byte(`[{"handle":"31in","name":"31 inch","shaftTypeHandle":"alloy","variants":[{"id":111,"title":"31in","price":29900}]}]`),
		nil,
	)
	if err != nil {
		t.Fatalf("failed to load test catalog: %v", err)
	}
	return idx
}

func testServers(t *testing.T) (*BuilderServer, *httptest.Server, *http.Client) {
	t.Helper()
	cartService := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == "POST" {
			_, _ = w.Write([]byte(`{}`))
			return
		}
		_, _ = w.Write([]byte(`{"item_count":2}`))
	}))
	t.Cleanup(cartService.Close)

	srv := NewBuilderServer(testIndex(t), session.NewMemoryStorage(), &cart.Submitter{
		Client: cart.NewClientWithConfig(cartService.URL, nil),
	}, nil)

	mux := http.NewServeMux()
	mux.Handle("/builder/", http.StripPrefix("/builder", srv.BuilderHandler()))
	mux.Handle("/catalog/", http.StripPrefix("/catalog", srv.CatalogHandler()))
	mux.Handle("/admin/", http.StripPrefix("/admin", srv.AdminHandler()))
	api := httptest.NewServer(mux)
	t.Cleanup(api.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("failed to create cookie jar: %v", err)
	}
	return srv, api, &http.Client{Jar: jar}
}

func postJson(t *testing.T, client *http.Client, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	resp, err := client.Post(url, "application/json", bytes.NewBuffer(data))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func decodeView(t *testing.T, resp *http.Response) *BuilderView {
	t.Helper()
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	var view BuilderView
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatalf("failed to decode view: %v", err)
	}
	return &view
}

func TestBuilderFlow(t *testing.T) {
	_, api, client := testServers(t)

	resp, err := client.Get(api.URL + "/builder/")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	view := decodeView(t, resp)
	if len(view.Sports) != 2 || view.AccessoriesVisible {
		t.Errorf("Expected fresh builder with 2 sports, got %+v", view)
	}

	view = decodeView(t, postJson(t, client, api.URL+"/builder/choose", ChooseRequest{Field: FieldSport, Value: "baseball"}))
	if len(view.ShaftTypes) != 1 || view.ShaftTypes[0].Handle != "alloy" {
		t.Errorf("Expected alloy candidate, got %+v", view.ShaftTypes)
	}
	view = decodeView(t, postJson(t, client, api.URL+"/builder/choose", ChooseRequest{Field: FieldShaftType, Value: "alloy"}))
	if len(view.ShaftSizes) != 1 {
		t.Errorf("Expected one size candidate, got %+v", view.ShaftSizes)
	}
	view = decodeView(t, postJson(t, client, api.URL+"/builder/choose", ChooseRequest{Field: FieldShaftSize, Value: "31in"}))
	if !view.AccessoriesVisible || len(view.ShaftVariants) != 1 {
		t.Errorf("Expected accessories shown and shaft card, got %+v", view)
	}

	view = decodeView(t, postJson(t, client, api.URL+"/builder/toggle", ToggleRequest{Slot: builder.ShaftSlotKey, VariantId: 111}))
	if view.Summary.ItemCount != 1 || view.Summary.GrandTotal != 29900 {
		t.Errorf("Expected one line at 29900, got %+v", view.Summary)
	}

	view = decodeView(t, postJson(t, client, api.URL+"/builder/toggle", ToggleRequest{
		Slot: "accessory", Type: "ball", Index: 0,
		Variant: &catalog.ShaftVariant{Id: 222, Title: "Balls", Price: 500},
	}))
	if view.Summary.ItemCount != 2 || view.Summary.GrandTotal != 30400 {
		t.Errorf("Expected two lines at 30400, got %+v", view.Summary)
	}

	// state must survive across requests via session storage
	resp, err = client.Get(api.URL + "/builder/")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	view = decodeView(t, resp)
	if view.Summary.ItemCount != 2 {
		t.Errorf("Expected persisted selection, got %+v", view.Summary)
	}
}

func TestQuantityEndpoint(t *testing.T) {
	_, api, client := testServers(t)
	postJson(t, client, api.URL+"/builder/choose", ChooseRequest{Field: FieldSport, Value: "baseball"})
	postJson(t, client, api.URL+"/builder/choose", ChooseRequest{Field: FieldShaftType, Value: "alloy"})
	postJson(t, client, api.URL+"/builder/choose", ChooseRequest{Field: FieldShaftSize, Value: "31in"})
	postJson(t, client, api.URL+"/builder/toggle", ToggleRequest{Slot: builder.ShaftSlotKey, VariantId: 111})

	req, _ := http.NewRequest("PUT", api.URL+"/builder/quantity", bytes.NewBufferString(`{"slotKey":"shaft","quantity":3}`))
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	view := decodeView(t, resp)
	if view.Summary.GrandTotal != 3*29900 {
		t.Errorf("Expected total %d, got %d", 3*29900, view.Summary.GrandTotal)
	}

	// rejected quantities leave the line untouched
	req, _ = http.NewRequest("PUT", api.URL+"/builder/quantity", bytes.NewBufferString(`{"slotKey":"shaft","quantity":0}`))
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	view = decodeView(t, resp)
	if view.Summary.GrandTotal != 3*29900 {
		t.Errorf("Expected total unchanged, got %d", view.Summary.GrandTotal)
	}
}

func TestSubmitResetsBuilder(t *testing.T) {
	_, api, client := testServers(t)
	postJson(t, client, api.URL+"/builder/choose", ChooseRequest{Field: FieldSport, Value: "baseball"})
	postJson(t, client, api.URL+"/builder/choose", ChooseRequest{Field: FieldShaftType, Value: "alloy"})
	postJson(t, client, api.URL+"/builder/choose", ChooseRequest{Field: FieldShaftSize, Value: "31in"})
	postJson(t, client, api.URL+"/builder/toggle", ToggleRequest{Slot: builder.ShaftSlotKey, VariantId: 111})

	resp := postJson(t, client, api.URL+"/builder/submit", struct{}{})
	defer resp.Body.Close()
	var result cart.SubmitResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	if result.Status != cart.StatusAdded || result.ItemCount != 2 {
		t.Fatalf("Expected added with item count 2, got %+v", result)
	}

	getResp, err := client.Get(api.URL + "/builder/")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	view := decodeView(t, getResp)
	if view.Summary.ItemCount != 0 || view.Path.Sport != "" {
		t.Errorf("Expected builder reset after submit, got %+v", view)
	}
}

func TestSubmitWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	cartService := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == "POST" {
			started <- struct{}{}
			<-release
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer cartService.Close()

	srv := NewBuilderServer(testIndex(t), session.NewMemoryStorage(), &cart.Submitter{
		Client: cart.NewClientWithConfig(cartService.URL, nil),
	}, nil)
	mux := http.NewServeMux()
	mux.Handle("/builder/", http.StripPrefix("/builder", srv.BuilderHandler()))
	api := httptest.NewServer(mux)
	defer api.Close()

	jar, _ := cookiejar.New(nil)
	client := &http.Client{Jar: jar}

	postJson(t, client, api.URL+"/builder/choose", ChooseRequest{Field: FieldSport, Value: "baseball"})
	postJson(t, client, api.URL+"/builder/choose", ChooseRequest{Field: FieldShaftType, Value: "alloy"})
	postJson(t, client, api.URL+"/builder/choose", ChooseRequest{Field: FieldShaftSize, Value: "31in"})
	postJson(t, client, api.URL+"/builder/toggle", ToggleRequest{Slot: builder.ShaftSlotKey, VariantId: 111})

	done := make(chan struct{})
	go func() {
		defer close(done)
		resp, err := client.Post(api.URL+"/builder/submit", "application/json", bytes.NewBufferString(`{}`))
		if err != nil {
			t.Errorf("submit request failed: %v", err)
			return
		}
		resp.Body.Close()
	}()
	<-started

	resp := postJson(t, client, api.URL+"/builder/submit", struct{}{})
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("Expected 409 while a submission is in flight, got %d", resp.StatusCode)
	}

	close(release)
	<-done
}

func TestSubmitNothingSelected(t *testing.T) {
	_, api, client := testServers(t)
	resp := postJson(t, client, api.URL+"/builder/submit", struct{}{})
	defer resp.Body.Close()
	var result cart.SubmitResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	if result.Status != cart.StatusNothingSelected {
		t.Errorf("Expected nothing-selected, got %+v", result)
	}
}

func TestCatalogQueries(t *testing.T) {
	_, api, client := testServers(t)

	resp, err := client.Get(api.URL + "/catalog/shaft-types?sport=baseball")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	var types []catalog.ShaftType
	if err := json.NewDecoder(resp.Body).Decode(&types); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if len(types) != 1 || types[0].Handle != "alloy" {
		t.Errorf("Expected [alloy], got %+v", types)
	}

	// a missing required parameter is a bad request
	badResp, err := client.Get(api.URL + "/catalog/shaft-types")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	badResp.Body.Close()
	if badResp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", badResp.StatusCode)
	}
}

func TestAdminCatalogReload(t *testing.T) {
	srv, api, client := testServers(t)
	srv.ApiKey = "test-key"

	payload := `{"sports":[{"handle":"cricket","label":"Cricket"}]}`

	req, _ := http.NewRequest("POST", api.URL+"/admin/catalog", bytes.NewBufferString(payload))
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401 without credentials, got %d", resp.StatusCode)
	}

	req, _ = http.NewRequest("POST", api.URL+"/admin/catalog", bytes.NewBufferString(payload))
	req.Header.Set("Authorization", "test-key")
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", resp.StatusCode)
	}
	if _, ok := srv.Catalog().Sport("cricket"); !ok {
		t.Error("Expected reloaded catalog with cricket")
	}

	// malformed feeds keep the current catalog
	req, _ = http.NewRequest("POST", api.URL+"/admin/catalog", bytes.NewBufferString(`{"sports":"nope"}`))
	req.Header.Set("Authorization", "test-key")
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for malformed feed, got %d", resp.StatusCode)
	}
	if _, ok := srv.Catalog().Sport("cricket"); !ok {
		t.Error("Expected catalog unchanged after rejected reload")
	}
}
