package common

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
)

func TestHandleSessionCookieNew(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	id := HandleSessionCookie(nil, w, r)
	if id == 0 {
		t.Error("Expected a nonzero session id")
	}
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "sid" {
		t.Fatalf("Expected a sid cookie, got %v", cookies)
	}
	if cookies[0].Value != strconv.Itoa(id) {
		t.Errorf("Expected cookie value %d, got %s", id, cookies[0].Value)
	}
}

func TestHandleSessionCookieExisting(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.AddCookie(&http.Cookie{Name: "sid", Value: "12345"})
	w := httptest.NewRecorder()

	if id := HandleSessionCookie(nil, w, r); id != 12345 {
		t.Errorf("Expected session id 12345, got %d", id)
	}
	if cookies := w.Result().Cookies(); len(cookies) != 0 {
		t.Errorf("Expected no new cookie for a valid session, got %v", cookies)
	}
}

func TestHandleSessionCookieCorrupt(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.AddCookie(&http.Cookie{Name: "sid", Value: "not-a-number"})
	w := httptest.NewRecorder()

	id := HandleSessionCookie(nil, w, r)
	if id == 0 {
		t.Error("Expected a corrupt cookie to get a fresh session id, got 0")
	}
	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("Expected a replacement cookie, got %v", cookies)
	}
	if cookies[0].Value != strconv.Itoa(id) {
		t.Errorf("Expected the new id %d in the cookie, got %s", id, cookies[0].Value)
	}
}
