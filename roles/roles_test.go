package roles_test

import (
	"encoding/json"
	"testing"

	"github.com/jrsteele09/go-session-guard/roles"
	"github.com/stretchr/testify/require"
)

func TestHasPermission(t *testing.T) {
	tests := []struct {
		name       string
		role       roles.Role
		capability roles.Capability
		want       bool
	}{
		{"admin manages users", roles.Admin, roles.CanManageUsers, true},
		{"colaborator cannot manage users", roles.Colaborator, roles.CanManageUsers, false},
		{"unknown role cannot edit", roles.Role("unknown_role"), roles.CanEdit, false},
		{"angajat can edit", roles.Angajat, roles.CanEdit, true},
		{"angajat cannot delete", roles.Angajat, roles.CanDelete, false},
		{"unknown capability on known role", roles.Admin, roles.Capability("canFly"), false},
		{"empty role", roles.Role(""), roles.CanViewAll, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, roles.HasPermission(tt.role, tt.capability))
		})
	}
}

func TestAdminHasEveryCapability(t *testing.T) {
	for _, c := range roles.Capabilities {
		require.True(t, roles.HasPermission(roles.Admin, c), string(c))
		require.False(t, roles.HasPermission(roles.Colaborator, c), string(c))
	}
}

func TestParse(t *testing.T) {
	require.Equal(t, roles.Admin, roles.Parse("admin"))
	require.Equal(t, roles.Angajat, roles.Parse(" ANGAJAT "))
	require.Equal(t, roles.Colaborator, roles.Parse(""))
	require.Equal(t, roles.Colaborator, roles.Parse("superuser"))
}

func TestRole_UnmarshalJSONDefaultsUnknown(t *testing.T) {
	var payload struct {
		Role roles.Role `json:"role"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"role":"root"}`), &payload))
	require.Equal(t, roles.Colaborator, payload.Role)

	require.NoError(t, json.Unmarshal([]byte(`{"role":"admin"}`), &payload))
	require.Equal(t, roles.Admin, payload.Role)
}

func TestTable_IsImmutable(t *testing.T) {
	grants := map[roles.Role]map[roles.Capability]bool{
		roles.Angajat: {roles.CanEdit: true},
	}
	table := roles.NewTable(grants)
	grants[roles.Angajat][roles.CanDelete] = true

	require.False(t, table.HasPermission(roles.Angajat, roles.CanDelete))

	copied := table.Grants(roles.Angajat)
	copied[roles.CanManageUsers] = true
	require.False(t, table.HasPermission(roles.Angajat, roles.CanManageUsers))
	require.Nil(t, table.Grants(roles.Role("ghost")))
}
