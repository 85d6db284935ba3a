package rbac

import (
	"testing"

	"github.com/flexprice/partnerbilling/internal/config"
	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRoles(t *testing.T) {
	svc, err := NewRBACService(config.GetDefaultConfig())
	require.NoError(t, err)

	tests := []struct {
		role    types.Role
		entity  string
		action  string
		allowed bool
	}{
		{types.RoleAdmin, EntityPartner, ActionWrite, true},
		{types.RoleAdmin, EntityInvoice, ActionWrite, true},
		{types.RoleBillingManager, EntityInvoice, ActionWrite, true},
		{types.RoleBillingManager, EntityUsage, ActionWrite, true},
		{types.RoleBillingManager, EntityBillingConfig, ActionWrite, true},
		{types.RoleBillingManager, EntityPartner, ActionWrite, false},
		{types.RoleUser, EntityOneTimeFee, ActionWrite, true},
		{types.RoleUser, EntityPartner, ActionRead, true},
		{types.RoleUser, EntityInvoice, ActionRead, false},
		{types.RoleUser, EntityUsage, ActionWrite, false},
		{types.RoleUser, EntityReport, ActionRead, false},
		{"", EntityOneTimeFee, ActionRead, false},
		{types.RoleAdmin, "unknown", ActionRead, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.allowed, svc.HasPermission(tt.role, tt.entity, tt.action),
			"%s %s %s", tt.role, tt.action, tt.entity)
	}

	roles := svc.ListRoles()
	require.Len(t, roles, 3)
	assert.Equal(t, types.RoleAdmin, roles[0].ID)
	assert.True(t, svc.ValidateRole(types.RoleUser))
	assert.False(t, svc.ValidateRole("auditor"))
}

func TestRolesConfigErrors(t *testing.T) {
	_, err := newRBACService([]byte(`{"auditor": {"permissions": {}}}`))
	assert.Error(t, err)

	_, err = newRBACService([]byte(`not json`))
	assert.Error(t, err)

	cfg := config.GetDefaultConfig()
	cfg.RBAC.RolesConfigPath = "/does/not/exist.json"
	_, err = NewRBACService(cfg)
	assert.Error(t, err)
}
