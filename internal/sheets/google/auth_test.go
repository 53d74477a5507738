package google

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

const testClientJSON = `{"installed":{"client_id":"id.apps.googleusercontent.com","client_secret":"secret","auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token","redirect_uris":["http://localhost"]}}`

func TestOAuthConfigFromEnv(t *testing.T) {
	t.Setenv("GOOGLE_OAUTH_CLIENT_JSON", "")
	t.Setenv("GOOGLE_OAUTH_CLIENT_FILE", "")
	if _, err := OAuthConfigFromEnv(); err == nil {
		t.Fatal("expected error without client")
	}

	t.Setenv("GOOGLE_OAUTH_CLIENT_JSON", testClientJSON)
	cfg, err := OAuthConfigFromEnv()
	if err != nil {
		t.Fatalf("OAuthConfigFromEnv: %v", err)
	}
	if cfg.ClientID != "id.apps.googleusercontent.com" {
		t.Fatalf("client id = %q", cfg.ClientID)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	want := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := SaveToken(path, want); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}
	got, err := LoadToken(path)
	if err != nil {
		t.Fatalf("LoadToken: %v", err)
	}
	if got.RefreshToken != want.RefreshToken || !got.Expiry.Equal(want.Expiry) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestTokenFileFromEnv(t *testing.T) {
	t.Setenv("GOOGLE_OAUTH_TOKEN_FILE", "")
	if got := TokenFileFromEnv(); got != "token.json" {
		t.Fatalf("default = %q", got)
	}
	t.Setenv("GOOGLE_OAUTH_TOKEN_FILE", "/tmp/t.json")
	if got := TokenFileFromEnv(); got != "/tmp/t.json" {
		t.Fatalf("override = %q", got)
	}
}

func TestClientOptionsFallBackToServiceAccount(t *testing.T) {
	t.Setenv("GOOGLE_OAUTH_CLIENT_JSON", testClientJSON)
	t.Setenv("GOOGLE_OAUTH_TOKEN_FILE", filepath.Join(t.TempDir(), "missing.json"))
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	if _, err := clientOptionsFromEnv(context.Background()); err == nil {
		t.Fatal("expected missing credentials error")
	}
}
