package portal

import "github.com/seatrans/portal-go/credential"

// RoleGroup classifies a user's roles into the two portal audiences.
// Internal users (company staff) see the operations views; external users
// (customers) see the customer views.
type RoleGroup uint8

const (
	// RoleGroupUnknown means no role matched either marker set. Callers
	// must treat it as "deny both audiences", never as a default group.
	RoleGroupUnknown RoleGroup = iota
	RoleGroupInternal
	RoleGroupExternal
)

func (g RoleGroup) String() string {
	switch g {
	case RoleGroupInternal:
		return "internal"
	case RoleGroupExternal:
		return "external"
	default:
		return "unknown"
	}
}

// Marker roles recognized by the current backend. New backend roles must be
// added here before they classify, which is deliberate: an unrecognized
// role yields RoleGroupUnknown and a role_unmatched event rather than a
// silent misclassification.
var (
	internalRoles = map[string]struct{}{
		"ADMIN":    {},
		"EMPLOYEE": {},
	}
	externalRoles = map[string]struct{}{
		"CUSTOMER": {},
	}
)

// Explicit group names the backend may send in the profile's roleGroup
// field. The backend is authoritative when it names one.
var explicitRoleGroups = map[string]RoleGroup{
	"INTERNAL": RoleGroupInternal,
	"EXTERNAL": RoleGroupExternal,
}

// DeriveProfileRoleGroup classifies a profile. A recognized explicit
// roleGroup field wins; otherwise the role list is matched against the
// marker sets. Pure and side-effect-free, so callers recompute it on every
// read instead of caching the result next to the profile.
func DeriveProfileRoleGroup(profile credential.Profile) RoleGroup {
	if group, ok := explicitRoleGroups[profile.RoleGroup]; ok {
		return group
	}
	return DeriveRoleGroup(rolesOf(profile))
}

// rolesOf flattens the two role representations the backend uses: a role
// list on newer responses, a single role string on older ones.
func rolesOf(profile credential.Profile) []string {
	if len(profile.Roles) > 0 {
		return profile.Roles
	}
	if profile.Role != "" {
		return []string{profile.Role}
	}
	return nil
}

// DeriveRoleGroup classifies a role list. Internal markers win over
// external ones when both appear. The empty list is Unknown.
func DeriveRoleGroup(roles []string) RoleGroup {
	var external bool
	for _, role := range roles {
		if _, ok := internalRoles[role]; ok {
			return RoleGroupInternal
		}
		if _, ok := externalRoles[role]; ok {
			external = true
		}
	}
	if external {
		return RoleGroupExternal
	}
	return RoleGroupUnknown
}
