// Package keycloak adapts the domain's IdentityProvider contract to a
// Keycloak realm: the OIDC token endpoint for password/refresh grants and
// the admin REST API for account management.
package keycloak

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"enroll/config"
	"enroll/internal/domain/entity"
	domainerrors "enroll/internal/domain/errors"
	"enroll/internal/domain/service"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// Params defines the dependencies for the Keycloak client.
type Params struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// Client talks to one Keycloak realm as a confidential client. All requests
// share one http.Client whose timeout bounds every provider call; a timeout
// or transport failure surfaces as provider_unavailable, never a hang.
type Client struct {
	cfg        config.IdentityProviderConfig
	httpClient *http.Client
	logger     *slog.Logger
	admin      *adminTokenSource
}

// NewClient is the constructor for Client.
func NewClient(params Params) (*Client, error) {
	if params.Config.IdentityProvider == nil {
		return nil, errors.New("identity provider configuration is missing")
	}
	cfg := *params.Config.IdentityProvider

	httpClient := &http.Client{Timeout: cfg.Timeout}

	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		logger:     params.Logger,
		admin:      newAdminTokenSource(cfg, httpClient),
	}, nil
}

// AsIdentityProvider exposes the client through the domain contract.
// Used as an fx provider.
func AsIdentityProvider(c *Client) service.IdentityProvider {
	return c
}

// tokenResponse mirrors the provider's token endpoint payload.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// userRepresentation mirrors the admin API's user payload.
type userRepresentation struct {
	ID               string                     `json:"id,omitempty"`
	Username         string                     `json:"username"`
	Email            string                     `json:"email"`
	FirstName        string                     `json:"firstName,omitempty"`
	LastName         string                     `json:"lastName,omitempty"`
	Enabled          bool                       `json:"enabled"`
	EmailVerified    bool                       `json:"emailVerified"`
	CreatedTimestamp int64                      `json:"createdTimestamp,omitempty"`
	Credentials      []credentialRepresentation `json:"credentials,omitempty"`
}

type credentialRepresentation struct {
	Type      string `json:"type"`
	Value     string `json:"value"`
	Temporary bool   `json:"temporary"`
}

// roleRepresentation mirrors the admin API's realm role payload.
type roleRepresentation struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CreateAccount creates an enabled, pre-verified account and assigns the
// requested realm role. Creation and role assignment are two provider calls;
// a role failure after the account exists is reported as a
// PartialCreateError carrying the orphaned account id.
func (c *Client) CreateAccount(ctx context.Context, acc service.NewAccount) (string, error) {
	user := userRepresentation{
		Username:      acc.Email,
		Email:         acc.Email,
		FirstName:     acc.FirstName,
		LastName:      acc.LastName,
		Enabled:       true,
		EmailVerified: true,
		Credentials: []credentialRepresentation{{
			Type:      "password",
			Value:     acc.Password,
			Temporary: false,
		}},
	}

	resp, err := c.adminRequest(ctx, http.MethodPost, c.adminURL("users"), user)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusCreated:
		// Keycloak returns the new account id only in the Location header.
	case http.StatusConflict:
		return "", domainerrors.ErrEmailExists.WrapMessage("identity provider already holds this email")
	default:
		return "", c.unexpectedStatus("create account", resp)
	}

	accountID, err := accountIDFromLocation(resp.Header.Get("Location"))
	if err != nil {
		return "", errors.Wrap(err, "create account response missing usable Location header")
	}

	if err := c.assignRealmRole(ctx, accountID, acc.Role.String()); err != nil {
		return "", &domainerrors.PartialCreateError{AccountID: accountID, Cause: err}
	}

	c.logger.Info("Identity account created",
		slog.String("accountID", accountID),
		slog.String("role", acc.Role.String()))

	return accountID, nil
}

// assignRealmRole resolves the realm role by name and maps it to the account.
func (c *Client) assignRealmRole(ctx context.Context, accountID, role string) error {
	resp, err := c.adminRequest(ctx, http.MethodGet, c.adminURL("roles", role), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return domainerrors.ErrInvalidRole.WrapMessage("realm role " + role + " does not exist")
	default:
		return c.unexpectedStatus("fetch realm role", resp)
	}

	var roleRep roleRepresentation
	if err := json.NewDecoder(resp.Body).Decode(&roleRep); err != nil {
		return errors.Wrap(err, "failed to decode realm role")
	}

	mapResp, err := c.adminRequest(ctx, http.MethodPost,
		c.adminURL("users", accountID, "role-mappings", "realm"), []roleRepresentation{roleRep})
	if err != nil {
		return err
	}
	defer mapResp.Body.Close()

	if mapResp.StatusCode != http.StatusNoContent && mapResp.StatusCode != http.StatusOK {
		return c.unexpectedStatus("assign realm role", mapResp)
	}

	return nil
}

// Login performs a password grant against the realm token endpoint.
func (c *Client) Login(ctx context.Context, email, password string) (*entity.TokenBundle, error) {
	form := url.Values{
		"grant_type":    {"password"},
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
		"username":      {email},
		"password":      {password},
	}

	bundle, err := c.tokenGrant(ctx, form)
	if err != nil {
		if errors.Is(err, errGrantRejected) {
			return nil, domainerrors.ErrInvalidCredentials.WrapMessage("provider rejected the credentials")
		}

		return nil, err
	}

	return bundle, nil
}

// Refresh exchanges a refresh token for a fresh token bundle.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*entity.TokenBundle, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
		"refresh_token": {refreshToken},
	}

	bundle, err := c.tokenGrant(ctx, form)
	if err != nil {
		if errors.Is(err, errGrantRejected) {
			return nil, domainerrors.ErrInvalidToken.WrapMessage("provider rejected the refresh token")
		}

		return nil, err
	}

	return bundle, nil
}

// errGrantRejected marks a 4xx answer from the token endpoint; callers map
// it to the grant-specific domain error.
var errGrantRejected = errors.New("token grant rejected")

func (c *Client) tokenGrant(ctx context.Context, form url.Values) (*entity.TokenBundle, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL(), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.unavailable("token endpoint", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest && resp.StatusCode < http.StatusInternalServerError {
		return nil, errors.WithStack(errGrantRejected)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.unexpectedStatus("token grant", resp)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return nil, errors.Wrap(err, "failed to decode token response")
	}

	return &entity.TokenBundle{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresIn:    tok.ExpiresIn,
		TokenType:    tok.TokenType,
	}, nil
}

// GetAccount fetches an account and its realm roles by provider id.
func (c *Client) GetAccount(ctx context.Context, accountID string) (*entity.Account, error) {
	resp, err := c.adminRequest(ctx, http.MethodGet, c.adminURL("users", accountID), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, domainerrors.ErrAccountNotFound.WrapMessage("no account with id " + accountID)
	default:
		return nil, c.unexpectedStatus("fetch account", resp)
	}

	var user userRepresentation
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, errors.Wrap(err, "failed to decode account")
	}

	roles, err := c.realmRoles(ctx, accountID)
	if err != nil {
		return nil, err
	}

	return toAccountDomain(&user, roles), nil
}

func (c *Client) realmRoles(ctx context.Context, accountID string) ([]string, error) {
	resp, err := c.adminRequest(ctx, http.MethodGet,
		c.adminURL("users", accountID, "role-mappings", "realm"), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.unexpectedStatus("fetch role mappings", resp)
	}

	var roleReps []roleRepresentation
	if err := json.NewDecoder(resp.Body).Decode(&roleReps); err != nil {
		return nil, errors.Wrap(err, "failed to decode role mappings")
	}

	roles := make([]string, 0, len(roleReps))
	for _, r := range roleReps {
		roles = append(roles, r.Name)
	}

	return roles, nil
}

// ExistsByEmail reports whether the realm holds an account with the exact email.
func (c *Client) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := url.Values{"email": {email}, "exact": {"true"}}

	resp, err := c.adminRequest(ctx, http.MethodGet, c.adminURL("users")+"?"+query.Encode(), nil)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, c.unexpectedStatus("search account by email", resp)
	}

	var users []userRepresentation
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		return false, errors.Wrap(err, "failed to decode account search result")
	}

	return len(users) > 0, nil
}

// DeleteAccount removes an account. Deleting an id the provider no longer
// knows is treated as success; compensation depends on this idempotency.
func (c *Client) DeleteAccount(ctx context.Context, accountID string) error {
	resp, err := c.adminRequest(ctx, http.MethodDelete, c.adminURL("users", accountID), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent, http.StatusOK, http.StatusNotFound:
		return nil
	default:
		return c.unexpectedStatus("delete account", resp)
	}
}

// adminRequest performs an authenticated admin API call, fetching or reusing
// the cached service-account token.
func (c *Client) adminRequest(ctx context.Context, method, rawURL string, body any) (*http.Response, error) {
	token, err := c.admin.token(ctx)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal admin request body")
		}
		reader = strings.NewReader(string(payload))
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build admin request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.unavailable("admin API", err)
	}

	return resp, nil
}

func (c *Client) tokenURL() string {
	return c.cfg.BaseURL + "/realms/" + c.cfg.Realm + "/protocol/openid-connect/token"
}

func (c *Client) adminURL(segments ...string) string {
	parts := append([]string{c.cfg.BaseURL, "admin", "realms", c.cfg.Realm}, segments...)

	return strings.Join(parts, "/")
}

func (c *Client) unavailable(op string, err error) error {
	c.logger.Warn("Identity provider unreachable",
		slog.String("op", op),
		slog.Any("error", err))

	return domainerrors.ErrProviderUnavailable.WrapMessage(op + " request failed")
}

func (c *Client) unexpectedStatus(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	c.logger.Warn("Identity provider returned unexpected status",
		slog.String("op", op),
		slog.Int("status", resp.StatusCode),
		slog.String("body", string(body)))

	if resp.StatusCode >= http.StatusInternalServerError {
		return domainerrors.ErrProviderUnavailable.WrapMessage(op + " failed upstream")
	}

	return errors.Errorf("%s: unexpected status %d", op, resp.StatusCode)
}

// accountIDFromLocation extracts the account id from the Location header
// returned by the create-user endpoint.
func accountIDFromLocation(location string) (string, error) {
	if location == "" {
		return "", errors.New("empty Location header")
	}

	id := location[strings.LastIndex(location, "/")+1:]
	if id == "" {
		return "", errors.Errorf("no account id in Location %q", location)
	}

	return id, nil
}

func toAccountDomain(user *userRepresentation, roles []string) *entity.Account {
	acc := &entity.Account{
		ID:            user.ID,
		Email:         user.Email,
		Enabled:       user.Enabled,
		EmailVerified: user.EmailVerified,
		Roles:         roles,
	}
	if user.CreatedTimestamp > 0 {
		acc.CreatedAt = millisToTime(user.CreatedTimestamp)
	}

	return acc
}
