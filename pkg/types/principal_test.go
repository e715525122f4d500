package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrincipal_HasAnyRole(t *testing.T) {
	p := &Principal{ID: "u1", Roles: []string{"vet", "manager"}}
	require.True(t, p.HasAnyRole([]string{"manager", "admin"}))
	require.False(t, p.HasAnyRole([]string{"admin"}))
	require.True(t, p.HasAnyRole(nil), "no role requirement admits everyone")
}

func TestPrincipal_HasAllPermissions(t *testing.T) {
	p := &Principal{ID: "u1", Permissions: []string{"inventory.view", "inventory.manage"}}
	require.True(t, p.HasAllPermissions([]string{"inventory.view"}))
	require.True(t, p.HasAllPermissions([]string{"inventory.view", "inventory.manage"}))
	require.False(t, p.HasAllPermissions([]string{"inventory.view", "payments.refund"}))
	require.True(t, p.HasAllPermissions(nil))
}

func TestPrincipal_SuperuserBypassesGrants(t *testing.T) {
	p := &Principal{ID: "root", IsSuperuser: true}
	require.True(t, p.HasRole("anything"))
	require.True(t, p.HasAnyRole([]string{"whatever"}))
	require.True(t, p.HasAllPermissions([]string{"any.permission"}))
}
