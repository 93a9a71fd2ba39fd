package domain

// Authentication factor kinds reported by the identity service on a member
// session. The local session policy requires the knowledge factor plus one
// of the second factors.
const (
	FactorPassword = "password"
	FactorEmailOTP = "email_otp"
	FactorSMSOTP   = "sms_otp"
	FactorTOTP     = "totp"
)

// AdminRoleID is the distinguished organization-administrator role the
// identity service assigns. The local admin check is a set-membership test
// against this identifier.
const AdminRoleID = "stytch_admin"

type AuthenticationFactor struct {
	Type string `json:"type"`
}

type MemberRole struct {
	RoleID string `json:"role_id"`
}

// Member is an organization member as owned by the identity service.
type Member struct {
	MemberID       string       `json:"member_id"`
	OrganizationID string       `json:"organization_id"`
	EmailAddress   string       `json:"email_address"`
	Roles          []MemberRole `json:"roles"`
}

func (m Member) RoleIDs() []string {
	ids := make([]string, 0, len(m.Roles))
	for _, role := range m.Roles {
		if role.RoleID != "" {
			ids = append(ids, role.RoleID)
		}
	}
	return ids
}

func (m Member) IsAdmin() bool {
	for _, role := range m.Roles {
		if role.RoleID == AdminRoleID {
			return true
		}
	}
	return false
}

// MemberSession is the validated session the identity service returns,
// including the factors that established it.
type MemberSession struct {
	MemberSessionID       string                 `json:"member_session_id"`
	MemberID              string                 `json:"member_id"`
	OrganizationID        string                 `json:"organization_id"`
	Roles                 []string               `json:"roles"`
	AuthenticationFactors []AuthenticationFactor `json:"authentication_factors"`
}

func (s MemberSession) FactorKinds() []string {
	kinds := make([]string, 0, len(s.AuthenticationFactors))
	for _, factor := range s.AuthenticationFactors {
		if factor.Type != "" {
			kinds = append(kinds, factor.Type)
		}
	}
	return kinds
}
