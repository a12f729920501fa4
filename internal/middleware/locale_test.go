package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDetectLocaleHeaderWins(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Locale", "pt-BR")
	if got := detectLocale(r, "en", ""); got != "pt" {
		t.Fatalf("expected pt, got %q", got)
	}
}

func TestDetectLocaleAcceptLanguage(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Accept-Language", "pt-BR,pt;q=0.9,en;q=0.8")
	if got := detectLocale(r, "en", ""); got != "pt" {
		t.Fatalf("expected pt, got %q", got)
	}
}

func TestDetectLocaleCountryFallback(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := detectLocale(r, "", "BR"); got != "pt" {
		t.Fatalf("expected pt, got %q", got)
	}
	if got := detectLocale(r, "", "US"); got != "en" {
		t.Fatalf("expected en, got %q", got)
	}
}

func TestResolveCountryHeaderHint(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("CF-IPCountry", "br")
	if got := ResolveCountry(r, nil); got != "BR" {
		t.Fatalf("expected BR, got %q", got)
	}
}

func TestResolveCountryLookup(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "203.0.113.10:1234"
	lookup := func(ip string) (string, error) {
		if ip != "203.0.113.10" {
			t.Fatalf("unexpected ip %q", ip)
		}
		return "br", nil
	}
	if got := ResolveCountry(r, lookup); got != "BR" {
		t.Fatalf("expected BR, got %q", got)
	}
}

func TestLocaleMiddlewareSetsContext(t *testing.T) {
	var gotLocale, gotCountry string
	handler := Locale("en", nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLocale = LocaleFromContext(r.Context())
		gotCountry = CountryFromContext(r.Context())
	}))
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Accept-Language", "pt-BR")
	handler.ServeHTTP(httptest.NewRecorder(), r)
	if gotLocale != "pt" {
		t.Fatalf("expected pt, got %q", gotLocale)
	}
	if gotCountry != "BR" {
		t.Fatalf("expected BR, got %q", gotCountry)
	}
}
