package rbac

import (
	_ "embed"
	"encoding/json"
	"os"
	"sort"

	"github.com/flexprice/partnerbilling/internal/config"
	ierr "github.com/flexprice/partnerbilling/internal/errors"
	"github.com/flexprice/partnerbilling/internal/types"
)

// Entities guarded by permissions
const (
	EntityPartner       = "partner"
	EntityBillingItem   = "billing_item"
	EntityBillingConfig = "billing_config"
	EntityUsage         = "usage"
	EntityOneTimeFee    = "one_time_fee"
	EntityInvoice       = "invoice"
	EntityReport        = "report"
)

const (
	ActionRead  = "read"
	ActionWrite = "write"
)

//go:embed roles.json
var defaultRoles []byte

// RBACService handles permission checks with set-based lookups
type RBACService struct {
	// role -> entity -> action
	permissions map[types.Role]map[string]map[string]bool

	roles map[types.Role]*Role
}

// Role represents a role with metadata
type Role struct {
	ID          types.Role          `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Permissions map[string][]string `json:"permissions"`
}

// NewRBACService loads the built in role definitions, or the file named by
// rbac.roles_config_path when set
func NewRBACService(cfg *config.Configuration) (*RBACService, error) {
	data := defaultRoles
	if path := cfg.RBAC.RolesConfigPath; path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHintf("Failed to read roles config %s", path).
				Mark(ierr.ErrSystem)
		}
		data = raw
	}
	return newRBACService(data)
}

func newRBACService(data []byte) (*RBACService, error) {
	var rawConfig map[types.Role]*Role
	if err := json.Unmarshal(data, &rawConfig); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to parse roles config").
			Mark(ierr.ErrSystem)
	}

	permissions := make(map[types.Role]map[string]map[string]bool, len(rawConfig))
	for roleID, role := range rawConfig {
		if err := roleID.Validate(); err != nil {
			return nil, err
		}
		role.ID = roleID
		permissions[roleID] = make(map[string]map[string]bool)

		for entity, actions := range role.Permissions {
			permissions[roleID][entity] = make(map[string]bool, len(actions))
			for _, action := range actions {
				permissions[roleID][entity][action] = true
			}
		}
	}

	return &RBACService{
		permissions: permissions,
		roles:       rawConfig,
	}, nil
}

// HasPermission reports whether role grants action on entity. An empty role
// has no permissions.
func (s *RBACService) HasPermission(role types.Role, entity string, action string) bool {
	return s.permissions[role][entity][action]
}

// ValidateRole checks if role exists in definitions
func (s *RBACService) ValidateRole(role types.Role) bool {
	_, exists := s.permissions[role]
	return exists
}

// ListRoles returns all roles sorted by id
func (s *RBACService) ListRoles() []*Role {
	result := make([]*Role, 0, len(s.roles))
	for _, role := range s.roles {
		result = append(result, role)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// GetRole returns a specific role with metadata
func (s *RBACService) GetRole(role types.Role) (*Role, bool) {
	r, exists := s.roles[role]
	return r, exists
}
