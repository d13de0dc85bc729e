package credential

import "errors"

// Storage keys per tier. Never more than these two keys belong to this
// subsystem.
const (
	TokenKey   = "auth_token"
	ProfileKey = "auth_user"
)

// ErrKeyNotFound is returned by backends when a key is absent.
var ErrKeyNotFound = errors.New("credential key not found")

// ErrStorageUnavailable wraps backend transport failures.
var ErrStorageUnavailable = errors.New("credential storage unavailable")

// Profile is the cached user profile as returned by the portal backend.
type Profile struct {
	ID        int64    `json:"id"`
	Email     string   `json:"email"`
	FullName  string   `json:"fullName"`
	Phone     string   `json:"phone,omitempty"`
	Company   string   `json:"company,omitempty"`
	Nation    string   `json:"nation,omitempty"`
	Role      string   `json:"role,omitempty"`
	Roles     []string `json:"roles,omitempty"`
	RoleGroup string   `json:"roleGroup,omitempty"`
}

// Credential is the paired token and profile unit. It is persisted and read
// atomically: a credential is never half-written.
type Credential struct {
	Token string
	User  Profile
}

// Tier identifies a storage tier.
type Tier uint8

const (
	// TierDurable survives process restarts (file, Redis).
	TierDurable Tier = iota
	// TierSession lives for the current process only.
	TierSession
)

func (t Tier) String() string {
	switch t {
	case TierDurable:
		return "durable"
	case TierSession:
		return "session"
	default:
		return "unknown"
	}
}
