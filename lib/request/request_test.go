// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package request

import (
	"errors"
	"testing"
	"time"

	"github.com/bureau-foundation/oidcagent/lib/codec"
	"github.com/bureau-foundation/oidcagent/lib/mytoken"
)

func encode(t *testing.T, request Request) string {
	t.Helper()
	data, err := codec.JSON.Encode(request.Value())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return string(data)
}

func TestAccessTokenRequestWireForm(t *testing.T) {
	tests := []struct {
		name    string
		builder *AccessTokenRequestBuilder
		want    string
	}{
		{
			name:    "account only",
			builder: NewAccessTokenRequest().Account("egi"),
			want:    `{"request":"access_token","account":"egi"}`,
		},
		{
			name:    "issuer only",
			builder: NewAccessTokenRequest().Issuer("https://issuer.example"),
			want:    `{"request":"access_token","issuer":"https://issuer.example"}`,
		},
		{
			name: "every field",
			builder: NewAccessTokenRequest().
				Audience("api", "storage").
				Scope("openid", "profile").
				ApplicationHint("oidc-token").
				MinValidPeriod(0).
				Issuer("https://issuer.example").
				Account("egi"),
			want: `{"request":"access_token","account":"egi","issuer":"https://issuer.example",` +
				`"min_valid_period":0,"application_hint":"oidc-token","scope":"openid profile","audience":"api storage"}`,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			request, err := test.builder.Build()
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if request.Kind() != KindAccessToken {
				t.Errorf("Kind() = %q", request.Kind())
			}
			if got := encode(t, request); got != test.want {
				t.Errorf("encoded =\n  %s\nwant\n  %s", got, test.want)
			}
		})
	}
}

func TestAccessTokenRequestValidation(t *testing.T) {
	tests := []struct {
		name      string
		builder   *AccessTokenRequestBuilder
		wantField string
		wantErr   error
	}{
		{"no identity", NewAccessTokenRequest(), "account", ErrMissingIdentity},
		{"no identity with options", NewAccessTokenRequest().Scope("openid").MinValidPeriod(10), "account", ErrMissingIdentity},
		{"relative issuer", NewAccessTokenRequest().Issuer("/realms/test"), "issuer", ErrInvalidURL},
		{"issuer without scheme", NewAccessTokenRequest().Issuer("issuer.example"), "issuer", ErrInvalidURL},
		{"unparseable issuer", NewAccessTokenRequest().Account("egi").Issuer("https://[::1"), "issuer", ErrInvalidURL},
		{"scheme without host", NewAccessTokenRequest().Issuer("mailto:admin@example.org"), "issuer", ErrInvalidURL},
		{"negative period", NewAccessTokenRequest().Account("egi").MinValidPeriod(-1), "min_valid_period", ErrInvalidArgument},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := test.builder.Build()
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("Build error = %v, want %v", err, test.wantErr)
			}
			var validationError *ValidationError
			if !errors.As(err, &validationError) {
				t.Fatalf("Build error = %T, want *ValidationError", err)
			}
			if validationError.Field != test.wantField {
				t.Errorf("Field = %q, want %q", validationError.Field, test.wantField)
			}
		})
	}
}

func TestBasicAccessTokenRequest(t *testing.T) {
	request, err := BasicAccessTokenRequest("egi")
	if err != nil {
		t.Fatal(err)
	}
	if got := encode(t, request); got != `{"request":"access_token","account":"egi"}` {
		t.Errorf("encoded = %s", got)
	}

	if _, err := BasicAccessTokenRequest(""); !errors.Is(err, ErrMissingIdentity) {
		t.Errorf("empty account error = %v, want ErrMissingIdentity", err)
	}
}

func TestAccessTokenBuilderReuse(t *testing.T) {
	builder := NewAccessTokenRequest().Account("first")
	first, _ := builder.Build()
	builder.Account("second")

	if first.Account() != "first" {
		t.Errorf("built request changed after builder reuse: %q", first.Account())
	}
}

func TestAccessTokenRequestAccessors(t *testing.T) {
	request, err := NewAccessTokenRequest().
		Account("egi").
		Issuer("https://aai.egi.eu/auth/realms/egi/").
		ApplicationHint("ci").
		Scope("openid", "email").
		Audience("a", "b").
		Build()
	if err != nil {
		t.Fatal(err)
	}

	if request.Kind() != KindAccessToken {
		t.Errorf("Kind() = %v", request.Kind())
	}
	if request.Account() != "egi" || request.Issuer() != "https://aai.egi.eu/auth/realms/egi/" {
		t.Errorf("Account() = %q, Issuer() = %q", request.Account(), request.Issuer())
	}
	if request.ApplicationHint() != "ci" || request.Scope() != "openid email" || request.Audience() != "a b" {
		t.Errorf("ApplicationHint() = %q, Scope() = %q, Audience() = %q",
			request.ApplicationHint(), request.Scope(), request.Audience())
	}
	if _, set := request.MinValidPeriod(); set {
		t.Error("MinValidPeriod reported set without a call to the setter")
	}
}

func TestMyTokenRequestWithoutProfile(t *testing.T) {
	request, err := NewMyTokenRequest("mytoken").Build()
	if err != nil {
		t.Fatal(err)
	}

	object, _ := request.Value().AsObject()
	if object.Has("mytoken_profile") {
		t.Error("request without profile carries a mytoken_profile key")
	}
	if got := encode(t, request); got != `{"request":"mytoken","account":"mytoken"}` {
		t.Errorf("encoded = %s", got)
	}
}

func TestMyTokenRequestWithProfile(t *testing.T) {
	rotation, err := mytoken.NewRotationBuilder().OnAT(true).Lifetime(1000 * time.Second).Build()
	if err != nil {
		t.Fatal(err)
	}
	profile := mytoken.NewProfile()
	profile.AddCapabilities(mytoken.AT)
	profile.AddRestrictions(mytoken.NewRestrictionBuilder().UsagesAT(5).AddGeoIPAllow("pl", "de").Build())
	profile.SetRotation(rotation)

	request, err := NewMyTokenRequest("mytoken").Profile(profile).ApplicationHint("ci").Build()
	if err != nil {
		t.Fatal(err)
	}

	want := `{"request":"mytoken","account":"mytoken","mytoken_profile":` +
		`{"capabilities":["AT"],"restrictions":[{"geoip_allow":["pl","de"],"usages_AT":5}],` +
		`"rotation":{"on_AT":true,"lifetime":1000}},"application_hint":"ci"}`
	if got := encode(t, request); got != want {
		t.Errorf("encoded =\n  %s\nwant\n  %s", got, want)
	}
}

func TestMyTokenRequestEmptyProfile(t *testing.T) {
	request, err := NewMyTokenRequest("mytoken").Profile(mytoken.NewProfile()).Build()
	if err != nil {
		t.Fatal(err)
	}
	if got := encode(t, request); got != `{"request":"mytoken","account":"mytoken","mytoken_profile":{}}` {
		t.Errorf("encoded = %s", got)
	}
}

func TestMyTokenProfileCopiedOnAttach(t *testing.T) {
	profile := mytoken.NewProfile()
	profile.AddCapabilities(mytoken.AT)

	builder := NewMyTokenRequest("mytoken").Profile(profile)
	profile.AddCapabilities(mytoken.CreateMytoken)
	request, err := builder.Build()
	if err != nil {
		t.Fatal(err)
	}
	profile.AddRestrictions(mytoken.NewRestrictionBuilder().UsagesAT(1).Build())

	want := `{"request":"mytoken","account":"mytoken","mytoken_profile":{"capabilities":["AT"]}}`
	if got := encode(t, request); got != want {
		t.Errorf("encoded = %s, want %s", got, want)
	}

	returned := request.Profile()
	returned.AddCapabilities(mytoken.Settings(mytoken.SettingsAll))
	if got := encode(t, request); got != want {
		t.Errorf("mutating Profile() result changed the request: %s", got)
	}
}

func TestMyTokenRequestMissingShortname(t *testing.T) {
	_, err := NewMyTokenRequest("").Profile(mytoken.NewProfile()).Build()
	if !errors.Is(err, ErrMissingShortname) {
		t.Fatalf("Build error = %v, want ErrMissingShortname", err)
	}
	var validationError *ValidationError
	if !errors.As(err, &validationError) || validationError.Kind != KindMyToken {
		t.Errorf("error = %#v, want *ValidationError for mytoken", err)
	}

	if _, err := BasicMyTokenRequest(""); !errors.Is(err, ErrMissingShortname) {
		t.Errorf("BasicMyTokenRequest error = %v", err)
	}
}

func TestLoadedAccountsRequest(t *testing.T) {
	request := NewLoadedAccountsRequest()
	if request.Kind() != KindLoadedAccounts {
		t.Errorf("Kind() = %q", request.Kind())
	}
	if got := encode(t, request); got != `{"request":"loaded_accounts"}` {
		t.Errorf("encoded = %s", got)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	_, err := NewAccessTokenRequest().Build()
	want := "invalid access_token request: account: account or issuer required"
	if err == nil || err.Error() != want {
		t.Errorf("Error() = %v, want %q", err, want)
	}
}
