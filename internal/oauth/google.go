// Package oauth verifies Google Sign-In ID tokens.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const GoogleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

var (
	ErrInvalidToken     = errors.New("invalid google id token")
	ErrAudienceMismatch = errors.New("google id token issued for another client")
	ErrEmailUnverified  = errors.New("google account email is not verified")
)

// GoogleIdentity is the verified subset of an ID token.
type GoogleIdentity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// GoogleVerifier checks ID tokens against the tokeninfo endpoint.
type GoogleVerifier struct {
	clientID   string
	endpoint   string
	httpClient *http.Client
	now        func() time.Time
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{
		clientID:   clientID,
		endpoint:   GoogleTokenInfoURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		now:        time.Now,
	}
}

// WithEndpoint points the verifier at another tokeninfo URL (tests).
func (v *GoogleVerifier) WithEndpoint(endpoint string) *GoogleVerifier {
	v.endpoint = endpoint
	return v
}

// Enabled reports whether a client id is configured.
func (v *GoogleVerifier) Enabled() bool {
	return v != nil && v.clientID != ""
}

type tokenInfo struct {
	Iss           string `json:"iss"`
	Aud           string `json:"aud"`
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	Exp           string `json:"exp"`
}

// IsRejected reports whether err means the token itself was refused, as
// opposed to tokeninfo being unreachable or failing.
func IsRejected(err error) bool {
	return errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrAudienceMismatch) || errors.Is(err, ErrEmailUnverified)
}

// Verify validates idToken and returns the identity it asserts.
func (v *GoogleVerifier) Verify(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	if strings.TrimSpace(idToken) == "" {
		return nil, ErrInvalidToken
	}

	u := v.endpoint + "?" + url.Values{"id_token": {idToken}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tokeninfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest {
		return nil, ErrInvalidToken
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tokeninfo: unexpected status %s", resp.Status)
	}

	var info tokenInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("tokeninfo: %w", err)
	}

	if info.Iss != "accounts.google.com" && info.Iss != "https://accounts.google.com" {
		return nil, ErrInvalidToken
	}
	if info.Aud != v.clientID {
		return nil, ErrAudienceMismatch
	}
	if exp, err := strconv.ParseInt(info.Exp, 10, 64); err != nil || v.now().Unix() >= exp {
		return nil, ErrInvalidToken
	}
	if info.EmailVerified != "true" || info.Email == "" {
		return nil, ErrEmailUnverified
	}

	return &GoogleIdentity{
		Subject: info.Sub,
		Email:   strings.ToLower(info.Email),
		Name:    info.Name,
		Picture: info.Picture,
	}, nil
}
