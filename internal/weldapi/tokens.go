package weldapi

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/gasops/mtr-extract/internal/common"
)

// Credentials are the per-organization fields packed into the configured
// encoded string.
type Credentials struct {
	LoginMasterID string
	DatabaseName  string
	OrgID         string
}

// DecodeCredentials unpacks a base64 "LoginMasterID&Database_Name&OrgID"
// credential string.
func DecodeCredentials(encoded string) (Credentials, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return Credentials{}, common.NewAppError("TOKEN_DECODE", "invalid base64 credential string", err)
	}
	parts := strings.Split(string(raw), "&")
	if len(parts) < 3 {
		return Credentials{}, common.NewAppError("TOKEN_DECODE",
			fmt.Sprintf("expected 3 credential fields, got %d", len(parts)), common.ErrConfig)
	}
	return Credentials{
		LoginMasterID: parts[0],
		DatabaseName:  parts[1],
		OrgID:         parts[2],
	}, nil
}

// GenerateAuthToken builds the short-lived token the weld management APIs
// expect in the auth-token header:
// base64("<now+24h>&<LoginMasterID>&<Database_Name>&<now>&<OrgID>").
func GenerateAuthToken(creds Credentials, now time.Time) string {
	now = now.UTC()
	token := strings.Join([]string{
		now.Add(24 * time.Hour).Format(time.RFC3339),
		creds.LoginMasterID,
		creds.DatabaseName,
		now.Format(time.RFC3339),
		creds.OrgID,
	}, "&")
	return base64.StdEncoding.EncodeToString([]byte(token))
}

// AuthToken decodes the configured credential string and returns a fresh
// auth token.
func AuthToken(encoded string) (string, error) {
	creds, err := DecodeCredentials(encoded)
	if err != nil {
		return "", err
	}
	return GenerateAuthToken(creds, time.Now()), nil
}
