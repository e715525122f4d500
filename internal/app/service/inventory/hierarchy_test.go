package inventory

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kisancoop/dairyops/internal/models"
)

func profileWith(userID string, reportsTo, department *string) *models.UserProfile {
	return &models.UserProfile{UserID: userID, ReportsTo: reportsTo, Department: department, IsActive: true}
}

func indexOf(profiles ...*models.UserProfile) profileIndex {
	idx := make(profileIndex, len(profiles))
	for _, p := range profiles {
		idx[p.UserID] = p
	}
	return idx
}

func ref(s string) *string { return &s }

func TestReportsToChain(t *testing.T) {
	// worker -> lead -> head
	idx := indexOf(
		profileWith("head", nil, nil),
		profileWith("lead", ref("head"), nil),
		profileWith("worker", ref("lead"), nil),
	)

	require.True(t, reportsToChain(idx, "lead", "worker", 5))
	require.True(t, reportsToChain(idx, "head", "worker", 5))
	require.False(t, reportsToChain(idx, "worker", "head", 5))
	require.False(t, reportsToChain(idx, "head", "lead", 0))
}

func TestReportsToChain_DepthBound(t *testing.T) {
	idx := indexOf(
		profileWith("u5", nil, nil),
		profileWith("u4", ref("u5"), nil),
		profileWith("u3", ref("u4"), nil),
		profileWith("u2", ref("u3"), nil),
		profileWith("u1", ref("u2"), nil),
		profileWith("u0", ref("u1"), nil),
	)

	// u5 is 5 hops above u0: reachable at depth 5, not at 4.
	require.True(t, reportsToChain(idx, "u5", "u0", 5))
	require.False(t, reportsToChain(idx, "u5", "u0", 4))
}

func TestReportsToChain_MissingProfileStops(t *testing.T) {
	idx := indexOf(profileWith("worker", ref("ghost"), nil))
	require.False(t, reportsToChain(idx, "head", "worker", 5))
}

func TestDepartmentManages(t *testing.T) {
	graph := map[string][]string{
		"operations": {"logistics", "veterinary"},
		"veterinary": {"pharmacy"},
	}

	require.True(t, departmentManages(graph, "operations", "logistics"))
	// transitive: operations -> veterinary -> pharmacy
	require.True(t, departmentManages(graph, "operations", "pharmacy"))
	require.False(t, departmentManages(graph, "pharmacy", "operations"))
	require.False(t, departmentManages(graph, "operations", "operations"))
}

func TestDepartmentManages_CycleTerminates(t *testing.T) {
	graph := map[string][]string{
		"a": {"b"},
		"b": {"a"},
	}
	require.False(t, departmentManages(graph, "a", "c"))
	require.True(t, departmentManages(graph, "a", "b"))
}

func TestSupervises(t *testing.T) {
	graph := map[string][]string{"veterinary": {"pharmacy"}}
	idx := indexOf(
		profileWith("chief", nil, ref("veterinary")),
		profileWith("pharmacist", nil, ref("pharmacy")),
		profileWith("assistant", ref("pharmacist"), ref("pharmacy")),
	)

	// never supervises yourself
	require.False(t, supervises(idx, graph, "chief", "chief", 5))
	// direct report
	require.True(t, supervises(idx, graph, "pharmacist", "assistant", 5))
	// department management reaches users without a reports-to edge
	require.True(t, supervises(idx, graph, "chief", "pharmacist", 5))
	require.True(t, supervises(idx, graph, "chief", "assistant", 5))
	require.False(t, supervises(idx, graph, "assistant", "pharmacist", 5))
}

func TestSupervises_UnknownProfiles(t *testing.T) {
	idx := indexOf(profileWith("known", nil, ref("ops")))
	graph := map[string][]string{"ops": {"field"}}
	require.False(t, supervises(idx, graph, "known", "unknown", 5))
	require.False(t, supervises(idx, graph, "unknown", "known", 5))
}
