package auth

import "github.com/miska-voutilainen/wsk-assignments-week3/internal/models"

// CanModify reports whether p may mutate a resource owned by ownerID.
// Admins may modify anything; everyone else only their own records.
func CanModify(p *Principal, ownerID int64) bool {
	if p == nil {
		return false
	}
	return p.Role == models.RoleAdmin || p.UserID == ownerID
}
