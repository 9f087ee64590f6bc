package config

import (
	"testing"
	"time"
)

func TestLoadRequiresFunctionsBaseURL(t *testing.T) {
	t.Setenv("FUNCTIONS_BASE_URL", "")
	t.Setenv("JWT_SECRET", "secret")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when FUNCTIONS_BASE_URL is missing")
	}
}

func TestLoadRequiresAnAuthMethod(t *testing.T) {
	t.Setenv("FUNCTIONS_BASE_URL", "https://functions.example.com")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("FIREBASE_PROJECT_ID", "")
	t.Setenv("GOOGLE_CLIENT_ID", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when no auth method is configured")
	}
}

func TestLoadBuildsEndpointTable(t *testing.T) {
	t.Setenv("FUNCTIONS_BASE_URL", "https://functions.example.com/")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ENDPOINT_GETDISCOUNT", "https://other.example.com/discount")
	t.Setenv("ENDPOINTS_DISABLED", "searchUser, getShippingIndex")
	t.Setenv("SEARCH_DEBOUNCE", "800ms")
	t.Setenv("DIRECTORY_PAGE_LIMIT", "50")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := cfg.Endpoints[EndpointCreateDiscount]; got != "https://functions.example.com/createDiscount" {
		t.Errorf("createDiscount endpoint = %q", got)
	}
	if got := cfg.Endpoints[EndpointGetDiscount]; got != "https://other.example.com/discount" {
		t.Errorf("override not applied, got %q", got)
	}
	if _, ok := cfg.Endpoints[EndpointSearchUser]; ok {
		t.Error("searchUser should be disabled")
	}
	if _, ok := cfg.Endpoints[EndpointGetShippingIndex]; ok {
		t.Error("getShippingIndex should be disabled")
	}
	if cfg.SearchDebounce != 800*time.Millisecond {
		t.Errorf("debounce = %v", cfg.SearchDebounce)
	}
	if cfg.DirectoryPageLimit != 50 {
		t.Errorf("page limit = %d", cfg.DirectoryPageLimit)
	}
}

func TestGetDurationAcceptsSeconds(t *testing.T) {
	t.Setenv("SOME_TIMEOUT", "12")
	if got := getDuration("SOME_TIMEOUT", time.Second); got != 12*time.Second {
		t.Fatalf("got %v", got)
	}
	t.Setenv("SOME_TIMEOUT", "nonsense")
	if got := getDuration("SOME_TIMEOUT", time.Second); got != time.Second {
		t.Fatalf("fallback not used, got %v", got)
	}
}
