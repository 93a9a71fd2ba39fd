package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"squircle/internal/config"
	"squircle/internal/domain"
)

const (
	defaultHTTPTimeout = 10 * time.Second

	testBaseURL = "https://test.stytch.com"
	liveBaseURL = "https://api.stytch.com"
)

// Client talks to the external identity service's B2B API. It holds no
// per-request state and is safe to share across requests; every decision it
// reports comes from the remote service, nothing is cached locally.
type Client struct {
	baseURL    string
	projectID  string
	secret     string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

func New(cfg config.Config, opts ...Option) (*Client, error) {
	projectID := strings.TrimSpace(cfg.StytchProjectID)
	secret := strings.TrimSpace(cfg.StytchSecret)
	if projectID == "" || secret == "" {
		return nil, errors.New("STYTCH_PROJECT_ID and STYTCH_SECRET are required")
	}
	baseURL := strings.TrimSpace(cfg.StytchBaseURL)
	if baseURL == "" {
		if cfg.StytchEnv == "live" {
			baseURL = liveBaseURL
		} else {
			baseURL = testBaseURL
		}
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		projectID:  projectID,
		secret:     secret,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

var (
	sharedOnce   sync.Once
	sharedClient *Client
	sharedErr    error
)

// Load returns the process-wide client handle, constructing it on first use.
// The handle is read-only after construction; later calls ignore cfg.
func Load(cfg config.Config) (*Client, error) {
	sharedOnce.Do(func() {
		sharedClient, sharedErr = New(cfg)
	})
	return sharedClient, sharedErr
}

// AuthorizationCheck asks the identity service to evaluate a permission as
// part of session authentication.
type AuthorizationCheck struct {
	OrganizationID string `json:"organization_id"`
	ResourceID     string `json:"resource_id"`
	Action         string `json:"action"`
}

type sessionAuthenticateRequest struct {
	SessionToken       string              `json:"session_token"`
	AuthorizationCheck *AuthorizationCheck `json:"authorization_check,omitempty"`
}

type AuthorizationVerdict struct {
	Authorized    bool     `json:"authorized"`
	GrantingRoles []string `json:"granting_roles"`
}

type SessionAuthenticateResponse struct {
	Member        domain.Member         `json:"member"`
	MemberSession domain.MemberSession  `json:"member_session"`
	Verdict       *AuthorizationVerdict `json:"verdict,omitempty"`
}

// AuthenticateSession validates a session token with the identity service.
// Rejection by the service maps to domain.ErrUnauthorized; transport-level
// failures and timeouts map to domain.ErrUpstreamUnavailable.
func (c *Client) AuthenticateSession(ctx context.Context, sessionToken string) (*SessionAuthenticateResponse, error) {
	if strings.TrimSpace(sessionToken) == "" {
		return nil, domain.ErrUnauthorized
	}
	var out SessionAuthenticateResponse
	status, err := c.doJSON(ctx, http.MethodPost, "/v1/b2b/sessions/authenticate",
		sessionAuthenticateRequest{SessionToken: sessionToken}, &out)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusOK:
		return &out, nil
	case status >= 400 && status < 500:
		return nil, domain.ErrUnauthorized
	default:
		return nil, fmt.Errorf("%w: session authenticate status %d", domain.ErrUpstreamUnavailable, status)
	}
}

// CheckPermission evaluates (resourceType, action) for the session's member.
// Denial is (false, nil); only transport or protocol failures return an
// error, and callers are expected to treat those as denial too.
func (c *Client) CheckPermission(ctx context.Context, sessionToken, organizationID, resourceType, action string) (bool, error) {
	if strings.TrimSpace(sessionToken) == "" {
		return false, nil
	}
	var out SessionAuthenticateResponse
	status, err := c.doJSON(ctx, http.MethodPost, "/v1/b2b/sessions/authenticate",
		sessionAuthenticateRequest{
			SessionToken: sessionToken,
			AuthorizationCheck: &AuthorizationCheck{
				OrganizationID: organizationID,
				ResourceID:     resourceType,
				Action:         action,
			},
		}, &out)
	if err != nil {
		return false, err
	}
	switch {
	case status == http.StatusOK:
		if out.Verdict == nil {
			// A 200 without a verdict means the check was not evaluated
			// (the service ignored authorization_check or the response
			// shape drifted). Never admit on an unevaluated check.
			return false, fmt.Errorf("%w: permission check returned no verdict", domain.ErrUpstreamUnavailable)
		}
		return out.Verdict.Authorized, nil
	case status == http.StatusForbidden, status == http.StatusUnauthorized:
		return false, nil
	case status >= 400 && status < 500:
		return false, nil
	default:
		return false, fmt.Errorf("%w: permission check status %d", domain.ErrUpstreamUnavailable, status)
	}
}

type memberResponse struct {
	Member domain.Member `json:"member"`
}

// GetMember fetches a single organization member.
func (c *Client) GetMember(ctx context.Context, organizationID, memberID string) (*domain.Member, error) {
	if organizationID == "" || memberID == "" {
		return nil, domain.ErrNotFound
	}
	path := "/v1/b2b/organizations/" + url.PathEscape(organizationID) + "/members/" + url.PathEscape(memberID)
	var out memberResponse
	status, err := c.doJSON(ctx, http.MethodGet, path, nil, &out)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusOK:
		return &out.Member, nil
	case status == http.StatusNotFound:
		return nil, domain.ErrNotFound
	case status >= 400 && status < 500:
		return nil, domain.ErrNotFound
	default:
		return nil, fmt.Errorf("%w: get member status %d", domain.ErrUpstreamUnavailable, status)
	}
}

type updateMemberRequest struct {
	Roles []string `json:"roles"`
}

// UpdateMemberRoles replaces a member's assigned role set. The identity
// service owns role-mutation policy (e.g. protecting the last remaining
// administrator); its rejection surfaces as domain.ErrUpdateRejected.
func (c *Client) UpdateMemberRoles(ctx context.Context, organizationID, memberID string, roleIDs []string) (*domain.Member, error) {
	if organizationID == "" || memberID == "" {
		return nil, domain.ErrUpdateRejected
	}
	path := "/v1/b2b/organizations/" + url.PathEscape(organizationID) + "/members/" + url.PathEscape(memberID)
	var out memberResponse
	status, err := c.doJSON(ctx, http.MethodPut, path, updateMemberRequest{Roles: roleIDs}, &out)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusOK:
		return &out.Member, nil
	case status >= 400 && status < 500:
		return nil, domain.ErrUpdateRejected
	default:
		return nil, fmt.Errorf("%w: member update status %d", domain.ErrUpstreamUnavailable, status)
	}
}

type inviteRequest struct {
	OrganizationID string `json:"organization_id"`
	EmailAddress   string `json:"email_address"`
}

// InviteByEmail sends an email invitation to join the organization.
func (c *Client) InviteByEmail(ctx context.Context, organizationID, emailAddress string) error {
	if organizationID == "" || emailAddress == "" {
		return errors.New("organization id and email address are required")
	}
	status, err := c.doJSON(ctx, http.MethodPost, "/v1/b2b/magic_links/email/invite",
		inviteRequest{OrganizationID: organizationID, EmailAddress: emailAddress}, nil)
	if err != nil {
		return err
	}
	switch {
	case status == http.StatusOK:
		return nil
	case status >= 400 && status < 500:
		return domain.ErrUpdateRejected
	default:
		return fmt.Errorf("%w: invite status %d", domain.ErrUpstreamUnavailable, status)
	}
}

type searchMembersRequest struct {
	OrganizationIDs []string `json:"organization_ids"`
}

type searchMembersResponse struct {
	Members []domain.Member `json:"members"`
}

// SearchMembers lists the members of an organization.
func (c *Client) SearchMembers(ctx context.Context, organizationID string) ([]domain.Member, error) {
	if organizationID == "" {
		return nil, errors.New("organization id is required")
	}
	var out searchMembersResponse
	status, err := c.doJSON(ctx, http.MethodPost, "/v1/b2b/organizations/members/search",
		searchMembersRequest{OrganizationIDs: []string{organizationID}}, &out)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: member search status %d", domain.ErrUpstreamUnavailable, status)
	}
	return out.Members, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any) (int, error) {
	if c == nil {
		return 0, errors.New("identity client is nil")
	}
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return 0, err
		}
		body = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, err
	}
	req.SetBasicAuth(c.projectID, c.secret)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.StatusCode, fmt.Errorf("%w: decode response: %v", domain.ErrUpstreamUnavailable, err)
		}
	}
	return resp.StatusCode, nil
}
