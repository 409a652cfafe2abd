// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package response

import (
	"errors"
	"slices"
	"testing"

	"github.com/bureau-foundation/oidcagent/lib/codec"
	"github.com/bureau-foundation/oidcagent/lib/mytoken"
	"github.com/bureau-foundation/oidcagent/lib/request"
)

func decodeJSON(t *testing.T, document string) codec.Value {
	t.Helper()
	value, err := codec.JSON.Decode([]byte(document))
	if err != nil {
		t.Fatalf("Decode(%s): %v", document, err)
	}
	return value
}

func TestDecodeAccessToken(t *testing.T) {
	value := decodeJSON(t, `{"status":"success","access_token":"abc","issuer":"https://issuer.url","expires_at":1234567890}`)

	response, err := DecodeAccessToken(value)
	if err != nil {
		t.Fatalf("DecodeAccessToken: %v", err)
	}
	defer response.Close()

	if got := response.AccessToken().Secret(); got != "abc" {
		t.Errorf("AccessToken().Secret() = %q, want abc", got)
	}
	if got := response.Issuer(); got != "https://issuer.url" {
		t.Errorf("Issuer() = %q", got)
	}
	if got := response.ExpiresAt(); got != 1234567890 {
		t.Errorf("ExpiresAt() = %d", got)
	}
	if got := response.Expiry().Unix(); got != 1234567890 {
		t.Errorf("Expiry().Unix() = %d", got)
	}
}

func TestDecodeFailure(t *testing.T) {
	tests := []struct {
		name     string
		document string
		want     DaemonError
	}{
		{
			name:     "with description",
			document: `{"status":"failure","error":"invalid_request","error_description":"unknown account"}`,
			want:     DaemonError{Code: "invalid_request", Message: "unknown account"},
		},
		{
			name:     "plain error with info",
			document: `{"status":"failure","error":"No account configured with that short name","info":"run oidc-gen egi"}`,
			want:     DaemonError{Message: "No account configured with that short name", Info: "run oidc-gen egi"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			value := decodeJSON(t, test.document)
			for _, kind := range []request.Kind{request.KindAccessToken, request.KindMyToken, request.KindLoadedAccounts} {
				_, err := Decode(kind, value)
				var daemonError *DaemonError
				if !errors.As(err, &daemonError) {
					t.Fatalf("Decode(%s) error = %v, want *DaemonError", kind, err)
				}
				if *daemonError != test.want {
					t.Errorf("Decode(%s) = %+v, want %+v", kind, *daemonError, test.want)
				}
			}
		})
	}
}

func TestDaemonErrorMessage(t *testing.T) {
	tests := []struct {
		err  DaemonError
		want string
	}{
		{DaemonError{Message: "denied"}, "oidc-agent: denied"},
		{DaemonError{Code: "invalid_request", Message: "unknown account"}, "oidc-agent: unknown account (invalid_request)"},
		{DaemonError{Message: "not loaded", Info: "run oidc-add"}, "oidc-agent: not loaded: run oidc-add"},
	}
	for _, test := range tests {
		if got := test.err.Error(); got != test.want {
			t.Errorf("Error() = %q, want %q", got, test.want)
		}
	}
}

func TestDecodeFieldErrors(t *testing.T) {
	tests := []struct {
		name      string
		kind      request.Kind
		document  string
		wantField string
		wantErr   error
	}{
		{"not an object", request.KindAccessToken, `["success"]`, "", ErrTypeMismatch},
		{"missing status", request.KindAccessToken, `{"access_token":"abc"}`, "status", ErrMissingField},
		{"status not a string", request.KindAccessToken, `{"status":true}`, "status", ErrTypeMismatch},
		{"unknown status", request.KindAccessToken, `{"status":"pending"}`, "status", ErrInvalidValue},
		{"missing token", request.KindAccessToken, `{"status":"success","issuer":"https://i.example","expires_at":1}`, "access_token", ErrMissingField},
		{"token not a string", request.KindAccessToken, `{"status":"success","access_token":5,"issuer":"https://i.example","expires_at":1}`, "access_token", ErrTypeMismatch},
		{"relative issuer", request.KindAccessToken, `{"status":"success","access_token":"a","issuer":"issuer","expires_at":1}`, "issuer", ErrInvalidValue},
		{"float expiry", request.KindAccessToken, `{"status":"success","access_token":"a","issuer":"https://i.example","expires_at":1.5}`, "expires_at", ErrTypeMismatch},
		{"negative expiry", request.KindAccessToken, `{"status":"success","access_token":"a","issuer":"https://i.example","expires_at":-1}`, "expires_at", ErrInvalidValue},
		{"missing mytoken issuer", request.KindMyToken, `{"status":"success","mytoken":"m","oidc_issuer":"https://i.example","expires_at":1}`, "mytoken_issuer", ErrMissingField},
		{"unknown capability", request.KindMyToken, `{"status":"success","mytoken":"m","mytoken_issuer":"https://m.example","oidc_issuer":"https://i.example","expires_at":1,"capabilities":["root"]}`, "capabilities", ErrInvalidValue},
		{"missing info", request.KindLoadedAccounts, `{"status":"success"}`, "info", ErrMissingField},
		{"info not strings", request.KindLoadedAccounts, `{"status":"success","info":["a",1]}`, "info", ErrTypeMismatch},
		{"failure without error", request.KindAccessToken, `{"status":"failure","info":"x"}`, "error", ErrMissingField},
		{"failure info not a string", request.KindAccessToken, `{"status":"failure","error":"e","info":1}`, "info", ErrTypeMismatch},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Decode(test.kind, decodeJSON(t, test.document))
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("Decode error = %v, want %v", err, test.wantErr)
			}
			var fieldError *FieldError
			if !errors.As(err, &fieldError) {
				t.Fatalf("Decode error = %T, want *FieldError", err)
			}
			if fieldError.Field != test.wantField {
				t.Errorf("Field = %q, want %q", fieldError.Field, test.wantField)
			}
		})
	}
}

func TestFieldErrorDoesNotLeakToken(t *testing.T) {
	// A token that arrives with the wrong type must not be echoed back.
	value := decodeJSON(t, `{"status":"success","access_token":["secret-value"],"issuer":"https://i.example","expires_at":1}`)
	_, err := DecodeAccessToken(value)
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); got != "daemon response: access_token: expected string, got array" {
		t.Errorf("Error() = %q", got)
	}
}

func TestDecodeMyToken(t *testing.T) {
	value := decodeJSON(t, `{"status":"success","mytoken":"mt","mytoken_issuer":"https://mytoken.example",`+
		`"oidc_issuer":"https://issuer.example","expires_at":42,"capabilities":["AT","tokeninfo"]}`)

	response, err := Decode(request.KindMyToken, value)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	mytokenResponse, ok := response.(*MyTokenResponse)
	if !ok {
		t.Fatalf("Decode returned %T", response)
	}
	defer mytokenResponse.Close()

	if got := mytokenResponse.MyToken().Secret(); got != "mt" {
		t.Errorf("MyToken() = %q", got)
	}
	if mytokenResponse.MyTokenIssuer() != "https://mytoken.example" || mytokenResponse.OIDCIssuer() != "https://issuer.example" {
		t.Errorf("issuers = %q, %q", mytokenResponse.MyTokenIssuer(), mytokenResponse.OIDCIssuer())
	}
	if mytokenResponse.ExpiresAt() != 42 {
		t.Errorf("ExpiresAt() = %d", mytokenResponse.ExpiresAt())
	}
	want := []mytoken.Capability{mytoken.AT, mytoken.TokenInfo(mytoken.TokenInfoAll)}
	if got := mytokenResponse.Capabilities(); !slices.Equal(got, want) {
		t.Errorf("Capabilities() = %v, want %v", got, want)
	}
}

func TestDecodeMyTokenWithoutCapabilities(t *testing.T) {
	value := decodeJSON(t, `{"status":"success","mytoken":"mt","mytoken_issuer":"https://mytoken.example",`+
		`"oidc_issuer":"https://issuer.example","expires_at":0}`)

	response, err := DecodeMyToken(value)
	if err != nil {
		t.Fatalf("DecodeMyToken: %v", err)
	}
	defer response.Close()
	if response.Capabilities() != nil {
		t.Errorf("Capabilities() = %v, want nil", response.Capabilities())
	}
}

func TestDecodeAccounts(t *testing.T) {
	response, err := DecodeAccounts(decodeJSON(t, `{"status":"success","info":["egi","google"]}`))
	if err != nil {
		t.Fatalf("DecodeAccounts: %v", err)
	}
	if got := response.Accounts(); !slices.Equal(got, []string{"egi", "google"}) {
		t.Errorf("Accounts() = %v", got)
	}
	if response.Kind() != request.KindLoadedAccounts {
		t.Errorf("Kind() = %q", response.Kind())
	}
}

func TestDecodeUnsupportedKind(t *testing.T) {
	if _, err := Decode("revoke", decodeJSON(t, `{"status":"success"}`)); err == nil {
		t.Fatal("expected error for unsupported kind")
	}
}

func TestDecodeIgnoresUnknownFields(t *testing.T) {
	value := decodeJSON(t, `{"status":"success","access_token":"a","issuer":"https://i.example","expires_at":1,"token_type":"Bearer"}`)
	response, err := DecodeAccessToken(value)
	if err != nil {
		t.Fatalf("DecodeAccessToken: %v", err)
	}
	response.Close()
}
