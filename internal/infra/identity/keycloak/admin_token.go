package keycloak

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"enroll/config"

	"github.com/pkg/errors"
)

// tokenSkew is subtracted from the token lifetime so a token about to lapse
// is never handed to an in-flight request.
const tokenSkew = 10 * time.Second

// adminTokenSource caches the service-account token obtained through the
// client_credentials grant. Safe for concurrent use.
type adminTokenSource struct {
	cfg        config.IdentityProviderConfig
	httpClient *http.Client

	mu        sync.Mutex
	value     string
	expiresAt time.Time
}

func newAdminTokenSource(cfg config.IdentityProviderConfig, httpClient *http.Client) *adminTokenSource {
	return &adminTokenSource{cfg: cfg, httpClient: httpClient}
}

// token returns a valid admin token, refreshing it when the cached one is
// missing or about to expire.
func (s *adminTokenSource) token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.value != "" && time.Now().Before(s.expiresAt) {
		return s.value, nil
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {s.cfg.ClientID},
		"client_secret": {s.cfg.ClientSecret},
	}

	endpoint := s.cfg.BaseURL + "/realms/" + s.cfg.Realm + "/protocol/openid-connect/token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", errors.Wrap(err, "failed to build admin token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "admin token request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("admin token grant: unexpected status %d", resp.StatusCode)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", errors.Wrap(err, "failed to decode admin token response")
	}

	s.value = tok.AccessToken
	s.expiresAt = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - tokenSkew)

	return s.value, nil
}

// realmRepresentation mirrors the public realm descriptor.
type realmRepresentation struct {
	Realm     string `json:"realm"`
	PublicKey string `json:"public_key"`
}

// SigningKey fetches the realm's RSA public key used to sign access tokens.
func (c *Client) SigningKey(ctx context.Context) (*rsa.PublicKey, error) {
	endpoint := c.cfg.BaseURL + "/realms/" + c.cfg.Realm
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build realm request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.unavailable("realm descriptor", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.unexpectedStatus("fetch realm descriptor", resp)
	}

	var realm realmRepresentation
	if err := json.NewDecoder(resp.Body).Decode(&realm); err != nil {
		return nil, errors.Wrap(err, "failed to decode realm descriptor")
	}
	if realm.PublicKey == "" {
		return nil, errors.New("realm descriptor carries no public key")
	}

	return parseRSAPublicKey(realm.PublicKey)
}

// parseRSAPublicKey accepts the base64 DER body Keycloak publishes, with or
// without PEM armor.
func parseRSAPublicKey(key string) (*rsa.PublicKey, error) {
	pemData := key
	if !strings.Contains(key, "BEGIN") {
		pemData = "-----BEGIN PUBLIC KEY-----\n" + key + "\n-----END PUBLIC KEY-----"
	}

	block, _ := pem.Decode([]byte(pemData))
	if block == nil {
		return nil, errors.New("realm public key is not valid PEM")
	}

	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse realm public key")
	}

	rsaKey, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("realm public key is not RSA")
	}

	return rsaKey, nil
}

func millisToTime(ms int64) time.Time {
	return time.UnixMilli(ms)
}
