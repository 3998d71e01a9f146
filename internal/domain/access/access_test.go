package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowed(t *testing.T) {
	testCases := []struct {
		name       string
		role       Role
		capability Capability
		want       bool
	}{
		{"ViewerReadsFinancialReports", RoleViewer, CapFinancialReports, true},
		{"AuditorReadsFinancialReports", RoleAuditor, CapFinancialReports, true},
		{"AnalystDeniedFinancialReports", RoleDataAnalyst, CapFinancialReports, false},
		{"AnalystReadsTrends", RoleDataAnalyst, CapTrendReport, true},
		{"ViewerDeniedTrends", RoleViewer, CapTrendReport, false},
		{"AccountantDeniedTrends", RoleAccountant, CapTrendReport, false},
		{"ManagerWritesTransactions", RoleFinancialManager, CapWriteTransactions, true},
		{"ManagerDeniedDelete", RoleFinancialManager, CapDeleteTransactions, false},
		{"AuditorReadsTransactions", RoleAuditor, CapReadTransactions, true},
		{"OnlyAdminManagesUsers", RoleAccountant, CapManageUsers, false},
		{"AdminBacksUp", RoleAdmin, CapBackup, true},
		{"UnknownRoleDenied", Role("guest"), CapReadDashboard, false},
		{"UnknownCapabilityDenied", RoleAdmin, Capability("nuke"), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Allowed(tc.role, tc.capability))
		})
	}
}

func TestRolesFor_ReturnsCopy(t *testing.T) {
	roles := RolesFor(CapManageUsers)
	roles[0] = RoleViewer
	assert.True(t, Allowed(RoleAdmin, CapManageUsers))
	assert.False(t, Allowed(RoleViewer, CapManageUsers))
}

func TestRole_Valid(t *testing.T) {
	for _, r := range Roles {
		assert.True(t, r.Valid(), string(r))
	}
	assert.False(t, Role("root").Valid())
}
