package menu

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kisancoop/dairyops/internal/models"
	"github.com/kisancoop/dairyops/pkg/types"
)

func allEnabled(string) bool  { return true }
func allDisabled(string) bool { return false }

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func item(id, code string, parentID *string, opts ...func(*models.MenuItem)) *models.MenuItem {
	it := &models.MenuItem{
		ID:        id,
		Code:      code,
		Label:     code,
		ParentID:  parentID,
		IsActive:  true,
		IsVisible: true,
	}
	for _, opt := range opts {
		opt(it)
	}
	return it
}

func withPath(p string) func(*models.MenuItem) {
	return func(it *models.MenuItem) { it.Path = p }
}

func withRoles(codes ...string) func(*models.MenuItem) {
	return func(it *models.MenuItem) {
		for _, c := range codes {
			it.Roles = append(it.Roles, &models.Role{Code: c})
		}
	}
}

func withPerms(codenames ...string) func(*models.MenuItem) {
	return func(it *models.MenuItem) {
		for _, c := range codenames {
			it.Permissions = append(it.Permissions, &models.Permission{Codename: c})
		}
	}
}

func TestHasItemAccess_FeatureFlagBeatsSuperuser(t *testing.T) {
	it := item("1", "reports", nil)
	it.FeatureFlag = strPtr("reporting")

	root := &types.Principal{ID: "root", IsSuperuser: true}
	ok, reason := HasItemAccess(it, root, allDisabled)
	require.False(t, ok)
	require.Equal(t, "feature not enabled", reason)

	ok, _ = HasItemAccess(it, root, allEnabled)
	require.True(t, ok)
}

func TestHasItemAccess_RolesAreOr(t *testing.T) {
	it := item("1", "billing", nil, withRoles("accountant", "manager"))
	p := &types.Principal{ID: "u1", Roles: []string{"manager"}}
	ok, _ := HasItemAccess(it, p, allEnabled)
	require.True(t, ok)

	stranger := &types.Principal{ID: "u2", Roles: []string{"vet"}}
	ok, reason := HasItemAccess(it, stranger, allEnabled)
	require.False(t, ok)
	require.Equal(t, "missing required role", reason)
}

func TestHasItemAccess_PermissionsAreAnd(t *testing.T) {
	it := item("1", "payouts", nil, withPerms("payments.view", "payments.approve"))
	partial := &types.Principal{ID: "u1", Permissions: []string{"payments.view"}}
	ok, reason := HasItemAccess(it, partial, allEnabled)
	require.False(t, ok)
	require.Equal(t, "missing required permission", reason)

	full := &types.Principal{ID: "u2", Permissions: []string{"payments.view", "payments.approve"}}
	ok, _ = HasItemAccess(it, full, allEnabled)
	require.True(t, ok)
}

func TestHasItemAccess_TenantMismatch(t *testing.T) {
	it := item("1", "dash", nil)
	it.TenantID = strPtr("tenant-a")
	p := &types.Principal{ID: "u1", TenantID: strPtr("tenant-b")}
	ok, reason := HasItemAccess(it, p, allEnabled)
	require.False(t, ok)
	require.Equal(t, "tenant mismatch", reason)
}

func TestAccessibleSet_HiddenPreferenceRemovesItem(t *testing.T) {
	items := []*models.MenuItem{
		item("1", "dash", nil, withPath("/dash")),
		item("2", "reports", nil, withPath("/reports")),
	}
	prefs := map[string]Preference{"reports": {IsHidden: true}}
	p := &types.Principal{ID: "u1"}

	accessible := AccessibleSet(items, p, prefs, allEnabled)
	require.True(t, accessible["1"])
	require.False(t, accessible["2"])
}

func TestAccessibleSet_SkipsInactiveAndInvisible(t *testing.T) {
	inactive := item("1", "old", nil, withPath("/old"))
	inactive.IsActive = false
	invisible := item("2", "internal", nil, withPath("/internal"))
	invisible.IsVisible = false

	accessible := AccessibleSet([]*models.MenuItem{inactive, invisible}, &types.Principal{ID: "u"}, nil, allEnabled)
	require.Empty(t, accessible)
}

func TestBuildTree_DropsChildlessPathlessRoot(t *testing.T) {
	// "admin" groups only role-guarded children; without access to any
	// child the group itself disappears.
	items := []*models.MenuItem{
		item("1", "admin", nil),
		item("2", "users", strPtr("1"), withPath("/admin/users"), withRoles("admin")),
		item("3", "dash", nil, withPath("/dash")),
	}
	p := &types.Principal{ID: "u1", Roles: []string{"member"}}
	accessible := AccessibleSet(items, p, nil, allEnabled)
	tree := BuildTree(items, accessible, nil, nil)

	require.Len(t, tree, 1)
	require.Equal(t, "dash", tree[0].Code)
}

func TestBuildTree_KeepsGroupWithAllowedChild(t *testing.T) {
	items := []*models.MenuItem{
		item("1", "admin", nil),
		item("2", "users", strPtr("1"), withPath("/admin/users"), withRoles("admin")),
	}
	p := &types.Principal{ID: "u1", Roles: []string{"admin"}}
	accessible := AccessibleSet(items, p, nil, allEnabled)
	tree := BuildTree(items, accessible, nil, nil)

	require.Len(t, tree, 1)
	require.Equal(t, "admin", tree[0].Code)
	require.Len(t, tree[0].Children, 1)
	require.Equal(t, "users", tree[0].Children[0].Code)
}

func TestBuildTree_DeniedAncestorExcludesDescendants(t *testing.T) {
	items := []*models.MenuItem{
		item("1", "admin", nil, withRoles("admin")),
		item("2", "users", strPtr("1"), withPath("/admin/users")),
		item("3", "detail", strPtr("2"), withPath("/admin/users/detail")),
	}
	p := &types.Principal{ID: "u1", Roles: []string{"member"}}
	accessible := AccessibleSet(items, p, nil, allEnabled)
	tree := BuildTree(items, accessible, nil, nil)

	// the whole subtree under the denied "admin" node vanishes
	require.Empty(t, tree)
}

func TestBuildTree_HiddenParentExcludesChild(t *testing.T) {
	items := []*models.MenuItem{
		item("1", "admin", nil),
		item("2", "users", strPtr("1"), withPath("/admin/users")),
		item("3", "dash", nil, withPath("/dash")),
	}
	prefs := map[string]Preference{"admin": {IsHidden: true}}
	p := &types.Principal{ID: "u1"}
	accessible := AccessibleSet(items, p, prefs, allEnabled)
	tree := BuildTree(items, accessible, prefs, nil)

	require.Len(t, tree, 1)
	require.Equal(t, "dash", tree[0].Code)
}

func TestBuildTree_SortPinnedThenCustomOrderThenLabel(t *testing.T) {
	items := []*models.MenuItem{
		item("1", "zebra", nil, withPath("/z")),
		item("2", "alpha", nil, withPath("/a")),
		item("3", "mid", nil, withPath("/m")),
		item("4", "pinned", nil, withPath("/p")),
	}
	prefs := map[string]Preference{
		"pinned": {IsPinned: true},
		"zebra":  {CustomOrder: intPtr(1)},
		"mid":    {CustomOrder: intPtr(2)},
	}
	p := &types.Principal{ID: "u1"}
	accessible := AccessibleSet(items, p, prefs, allEnabled)
	tree := BuildTree(items, accessible, prefs, nil)

	codes := make([]string, 0, len(tree))
	for _, n := range tree {
		codes = append(codes, n.Code)
	}
	// pinned first, then custom order 1 and 2, then by label.
	require.Equal(t, []string{"pinned", "zebra", "mid", "alpha"}, codes)
}

func TestBuildTree_BadgeResolverAttachesBadges(t *testing.T) {
	items := []*models.MenuItem{
		item("1", "approvals", nil, withPath("/approvals")),
	}
	p := &types.Principal{ID: "u1"}
	accessible := AccessibleSet(items, p, nil, allEnabled)
	tree := BuildTree(items, accessible, nil, func(it *models.MenuItem) *Badge {
		return &Badge{Count: 7, Color: "red"}
	})

	require.Len(t, tree, 1)
	require.NotNil(t, tree[0].Badge)
	require.Equal(t, int64(7), tree[0].Badge.Count)
}

func TestPaths_SortedUniqueNonEmpty(t *testing.T) {
	items := []*models.MenuItem{
		item("1", "b", nil, withPath("/b")),
		item("2", "a", nil, withPath("/a")),
		item("3", "group", nil),
		item("4", "dup", nil, withPath("/a")),
	}
	accessible := map[string]bool{"1": true, "2": true, "3": true, "4": true}
	require.Equal(t, []string{"/a", "/b"}, Paths(items, accessible))
}

func TestPaths_DeniedAncestorExcludesDescendants(t *testing.T) {
	items := []*models.MenuItem{
		item("1", "admin", nil, withRoles("admin")),
		item("2", "users", strPtr("1"), withPath("/admin/users")),
		item("3", "dash", nil, withPath("/dash")),
	}
	p := &types.Principal{ID: "u1", Roles: []string{"member"}}
	accessible := AccessibleSet(items, p, nil, allEnabled)

	require.Equal(t, []string{"/dash"}, Paths(items, accessible))
}
