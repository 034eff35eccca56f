package policy

import (
	"context"

	"github.com/diewo77/nats-backoffice/auth"
	"github.com/diewo77/nats-backoffice/gate"
	"github.com/diewo77/nats-backoffice/internal/models"
)

// Resource types guarded by the gate.
const (
	ResourceLead      = "lead"
	ResourcePortfolio = "portfolio"
	ResourceUpload    = "upload"
)

// DefaultProfiles maps each role to its permissions.
func DefaultProfiles() map[string]gate.Profile {
	return map[string]gate.Profile{
		models.RoleAdmin: gate.NewStaticProfile(models.RoleAdmin, gate.PermissionSuperAdmin),
		models.RoleStaff: gate.NewStaticProfile(models.RoleStaff,
			ResourceLead+":*",
			ResourcePortfolio+":*",
			gate.NewPermission(ResourceUpload, gate.ActionCreate),
		),
	}
}

// RoleResolver resolves a session to the profile of its role. Unknown roles
// get no profile.
type RoleResolver struct {
	profiles map[string]gate.Profile
}

var _ gate.ProfileResolver[auth.Session] = (*RoleResolver)(nil)

func NewRoleResolver(profiles map[string]gate.Profile) *RoleResolver {
	return &RoleResolver{profiles: profiles}
}

func (r *RoleResolver) Resolve(_ context.Context, s auth.Session) (gate.Profile, error) {
	return r.profiles[s.Role], nil
}
