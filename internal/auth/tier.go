package auth

import (
	"catalog/internal/apperrors"
	"catalog/internal/models"
)

// Tier is the minimum authorization level a procedure requires.
type Tier int

const (
	TierPublic Tier = iota
	TierAuthenticated
	TierAdmin
)

func (t Tier) String() string {
	switch t {
	case TierPublic:
		return "public"
	case TierAuthenticated:
		return "authenticated"
	case TierAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// Principal is the caller identity recovered from a valid session.
type Principal struct {
	UserID string      `json:"id"`
	Role   models.Role `json:"role"`
}

// IsAdmin reports whether the principal holds the ADMIN role.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == models.RoleAdmin
}

// Authorize is the single policy check shared by every procedure.
// A nil principal means no valid session was presented.
func Authorize(p *Principal, tier Tier) error {
	switch tier {
	case TierPublic:
		return nil
	case TierAuthenticated:
		if p == nil {
			return apperrors.ErrUnauthorized
		}
		return nil
	case TierAdmin:
		if p == nil {
			return apperrors.ErrUnauthorized
		}
		if !p.IsAdmin() {
			return apperrors.Forbidden("admin role required")
		}
		return nil
	default:
		// unknown tiers fail closed
		return apperrors.Forbidden("unknown access tier")
	}
}
