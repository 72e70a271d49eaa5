package weldapi

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"
)

func TestDecodeCredentials(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("480&CEDEMONEW0314&CEDEMO"))
	creds, err := DecodeCredentials(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if creds.LoginMasterID != "480" || creds.DatabaseName != "CEDEMONEW0314" || creds.OrgID != "CEDEMO" {
		t.Fatalf("got %+v", creds)
	}
}

func TestDecodeCredentialsInvalid(t *testing.T) {
	if _, err := DecodeCredentials("%%%not-base64%%%"); err == nil {
		t.Fatal("expected error for invalid base64")
	}
	tooFew := base64.StdEncoding.EncodeToString([]byte("only&two"))
	if _, err := DecodeCredentials(tooFew); err == nil {
		t.Fatal("expected error for missing fields")
	}
}

func TestGenerateAuthToken(t *testing.T) {
	creds := Credentials{LoginMasterID: "480", DatabaseName: "CEDEMONEW0314", OrgID: "CEDEMO"}
	now := time.Date(2025, 9, 16, 19, 33, 36, 0, time.UTC)

	token := GenerateAuthToken(creds, now)
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		t.Fatal(err)
	}
	parts := strings.Split(string(raw), "&")
	if len(parts) != 5 {
		t.Fatalf("expected 5 token fields, got %d: %q", len(parts), raw)
	}
	if parts[1] != "480" || parts[2] != "CEDEMONEW0314" || parts[4] != "CEDEMO" {
		t.Fatalf("got %q", raw)
	}

	expiry, err := time.Parse(time.RFC3339, parts[0])
	if err != nil {
		t.Fatal(err)
	}
	issued, err := time.Parse(time.RFC3339, parts[3])
	if err != nil {
		t.Fatal(err)
	}
	if !issued.Equal(now) {
		t.Fatalf("issued %v, want %v", issued, now)
	}
	if expiry.Sub(issued) != 24*time.Hour {
		t.Fatalf("expiry window %v", expiry.Sub(issued))
	}
}

func TestAuthTokenRoundTrip(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("1&db&org"))
	token, err := AuthToken(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if token == "" {
		t.Fatal("empty token")
	}
	if _, err := AuthToken("###"); err == nil {
		t.Fatal("expected error for bad credential string")
	}
}
