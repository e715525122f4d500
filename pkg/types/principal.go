package types

import "github.com/samber/lo"

// Principal is the authenticated caller, computed once per request.
type Principal struct {
	ID          string   `json:"id"`
	TenantID    *string  `json:"tenant_id"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
	IsSuperuser bool     `json:"is_superuser"`
}

func (p *Principal) HasRole(code string) bool {
	if p.IsSuperuser {
		return true
	}
	return lo.Contains(p.Roles, code)
}

// HasAnyRole implements OR semantics over role requirements.
func (p *Principal) HasAnyRole(codes []string) bool {
	if p.IsSuperuser || len(codes) == 0 {
		return true
	}
	return lo.Some(p.Roles, codes)
}

// HasAllPermissions implements AND semantics over permission requirements.
func (p *Principal) HasAllPermissions(perms []string) bool {
	if p.IsSuperuser || len(perms) == 0 {
		return true
	}
	return lo.Every(p.Permissions, perms)
}
