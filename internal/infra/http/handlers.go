package http

import (
	"errors"
	"net/http"
	"strconv"

	"squircle/internal/domain"
	"squircle/internal/infra/auth/rbac"
	"squircle/internal/usecase"

	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ideaResponse struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	Status    string `json:"status"`
	CreatorID string `json:"creator_id"`
	TeamID    string `json:"team_id"`
}

type addIdeaRequest struct {
	Text   string `json:"text"`
	Status string `json:"status"`
}

type inviteMemberRequest struct {
	EmailAddress string `json:"email_address"`
}

type memberResponse struct {
	MemberID     string   `json:"member_id"`
	EmailAddress string   `json:"email_address"`
	Roles        []string `json:"roles"`
	IsAdmin      bool     `json:"is_admin"`
}

type settingsPermissionsResponse struct {
	SSOJITProvisioning bool `json:"sso_jit_provisioning"`
	EmailInvites       bool `json:"email_invites"`
	AllowedDomains     bool `json:"allowed_domains"`
	AllowedAuthMethods bool `json:"allowed_auth_methods"`
}

func (s *Server) handleListIdeas(c *gin.Context) {
	principal, ok := s.requireSession(c)
	if !ok {
		return
	}
	if s.ideas == nil {
		writeErrorCode(c, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "idea store unavailable")
		return
	}
	ideas, err := s.ideas.List(c.Request.Context(), principal)
	if err != nil {
		s.writeIdeaError(c, err)
		return
	}
	out := make([]ideaResponse, 0, len(ideas))
	for _, idea := range ideas {
		out = append(out, ideaToResponse(idea))
	}
	c.JSON(http.StatusOK, gin.H{"ideas": out})
}

func (s *Server) handleAddIdea(c *gin.Context) {
	principal, ok := s.requireSession(c)
	if !ok {
		return
	}
	if !s.enforceRateLimit(c, routeIdeasWrite, principal.OrganizationID) {
		return
	}
	if s.ideas == nil {
		writeErrorCode(c, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "idea store unavailable")
		return
	}
	var req addIdeaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	idea, err := s.ideas.Add(c.Request.Context(), principal, req.Text, domain.IdeaStatus(req.Status))
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidIdea) {
			writeErrorCode(c, http.StatusBadRequest, "INVALID_IDEA", "invalid idea")
			return
		}
		s.writeIdeaError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"idea": ideaToResponse(idea)})
}

func (s *Server) handleDeleteIdea(c *gin.Context) {
	principal, ok := s.requireSession(c)
	if !ok {
		return
	}
	if !s.enforceRateLimit(c, routeIdeasWrite, principal.OrganizationID) {
		return
	}
	if s.ideas == nil {
		writeErrorCode(c, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "idea store unavailable")
		return
	}
	ideaID, err := strconv.ParseInt(c.Param("idea_id"), 10, 64)
	if err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_IDEA_ID", "invalid idea id")
		return
	}
	idea, err := s.ideas.Delete(c.Request.Context(), principal, ideaID)
	if err != nil {
		s.writeIdeaError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"idea": ideaToResponse(idea)})
}

func (s *Server) handleListMembers(c *gin.Context) {
	principal, ok := s.requireSession(c)
	if !ok {
		return
	}
	if s.membership == nil {
		writeErrorCode(c, http.StatusServiceUnavailable, "IDENTITY_UNAVAILABLE", "identity service unavailable")
		return
	}
	members, err := s.membership.ListMembers(c.Request.Context(), principal)
	if err != nil {
		s.writeMembershipError(c, err)
		return
	}
	out := make([]memberResponse, 0, len(members))
	for _, member := range members {
		out = append(out, memberToResponse(member))
	}
	// The caller's admin standing is a local role-set test, not a delegated
	// permission check; clients use it to decide whether to render controls.
	c.JSON(http.StatusOK, gin.H{
		"members":         out,
		"caller_is_admin": rbac.IsOrgAdmin(principal),
	})
}

func (s *Server) handleInviteMember(c *gin.Context) {
	principal, ok := s.requireSession(c)
	if !ok {
		return
	}
	if !s.requirePermission(c, principal, rbac.ResourceMember, rbac.ActionCreate) {
		return
	}
	if s.membership == nil {
		writeErrorCode(c, http.StatusServiceUnavailable, "IDENTITY_UNAVAILABLE", "identity service unavailable")
		return
	}
	var req inviteMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	if err := s.membership.InviteMember(c.Request.Context(), principal, req.EmailAddress); err != nil {
		if errors.Is(err, usecase.ErrInvalidEmail) {
			writeErrorCode(c, http.StatusBadRequest, "INVALID_EMAIL", "invalid email address")
			return
		}
		s.writeMembershipError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "invited"})
}

func (s *Server) handleToggleAdmin(c *gin.Context) {
	principal, ok := s.requireSession(c)
	if !ok {
		return
	}
	if !s.requirePermission(c, principal, rbac.ResourceMember, rbac.ActionUpdate) {
		return
	}
	if s.membership == nil {
		writeErrorCode(c, http.StatusServiceUnavailable, "IDENTITY_UNAVAILABLE", "identity service unavailable")
		return
	}
	member, err := s.membership.ToggleAdminRole(c.Request.Context(), principal, c.Param("member_id"))
	if err != nil {
		s.writeMembershipError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"member": memberToResponse(*member)})
}

// handleSettingsPermissions mirrors the settings page: one delegated check
// per settings area rather than a single aggregate check, so the client can
// show or hide each control independently.
func (s *Server) handleSettingsPermissions(c *gin.Context) {
	principal, ok := s.requireSession(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	token := sessionToken(c)
	resp := settingsPermissionsResponse{}
	if s.authorizer != nil {
		resp.SSOJITProvisioning = s.authorizer.IsAuthorized(ctx, token, principal, rbac.ResourceOrganization, rbac.ActionUpdateSettingsJIT)
		resp.EmailInvites = s.authorizer.IsAuthorized(ctx, token, principal, rbac.ResourceOrganization, rbac.ActionUpdateSettingsEmailInvites)
		resp.AllowedDomains = s.authorizer.IsAuthorized(ctx, token, principal, rbac.ResourceOrganization, rbac.ActionUpdateSettingsAllowedDomains)
		resp.AllowedAuthMethods = s.authorizer.IsAuthorized(ctx, token, principal, rbac.ResourceOrganization, rbac.ActionUpdateSettingsAllowedAuthMethods)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleNoRoute(c *gin.Context) {
	writeErrorCode(c, http.StatusNotFound, "NOT_FOUND", "route not found")
}

func (s *Server) writeIdeaError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeErrorCode(c, http.StatusNotFound, "NOT_FOUND", "idea not found")
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		writeErrorCode(c, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "idea store unavailable")
	default:
		s.log.Error().Err(err).Msg("idea store error")
		writeErrorCode(c, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}

func (s *Server) writeMembershipError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeErrorCode(c, http.StatusNotFound, "NOT_FOUND", "member not found")
	case errors.Is(err, domain.ErrForbidden):
		writeErrorCode(c, http.StatusForbidden, "FORBIDDEN", "forbidden")
	case errors.Is(err, domain.ErrUpdateRejected):
		writeErrorCode(c, http.StatusConflict, "UPDATE_REJECTED", "update rejected by identity service")
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		writeErrorCode(c, http.StatusServiceUnavailable, "IDENTITY_UNAVAILABLE", "identity service unavailable")
	default:
		s.log.Error().Err(err).Msg("identity service error")
		writeErrorCode(c, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}

func ideaToResponse(idea domain.Idea) ideaResponse {
	return ideaResponse{
		ID:        idea.ID,
		Text:      idea.Text,
		Status:    string(idea.Status),
		CreatorID: idea.CreatorID,
		TeamID:    idea.TeamID,
	}
}

func memberToResponse(member domain.Member) memberResponse {
	return memberResponse{
		MemberID:     member.MemberID,
		EmailAddress: member.EmailAddress,
		Roles:        member.RoleIDs(),
		IsAdmin:      member.IsAdmin(),
	}
}

func writeErrorCode(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, errorResponse{Code: code, Message: message})
}
