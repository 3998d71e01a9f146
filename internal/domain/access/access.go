// Package access holds the role model and the capability table that decides
// which roles may perform which operations.
package access

// Role is the job function assigned to a user
type Role string

const (
	RoleAdmin            Role = "admin"
	RoleAccountant       Role = "accountant"
	RoleViewer           Role = "viewer"
	RoleDataAnalyst      Role = "data_analyst"
	RoleFinancialManager Role = "financial_manager"
	RoleAuditor          Role = "auditor"
)

// Roles lists every known role
var Roles = []Role{
	RoleAdmin,
	RoleAccountant,
	RoleViewer,
	RoleDataAnalyst,
	RoleFinancialManager,
	RoleAuditor,
}

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// Capability names a guarded operation
type Capability string

const (
	CapFinancialReports   Capability = "reports.financial"
	CapTrendReport        Capability = "reports.trends"
	CapReadTransactions   Capability = "transactions.read"
	CapWriteTransactions  Capability = "transactions.write"
	CapDeleteTransactions Capability = "transactions.delete"
	CapExportData         Capability = "data.export"
	CapReadUsers          Capability = "users.read"
	CapManageUsers        Capability = "users.manage"
	CapReadActivity       Capability = "activity.read"
	CapMaintenance        Capability = "system.maintenance"
	CapBackup             Capability = "system.backup"
	CapReadDashboard      Capability = "dashboard.read"
)

var capabilities = map[Capability][]Role{
	CapFinancialReports:   {RoleAdmin, RoleAccountant, RoleFinancialManager, RoleAuditor, RoleViewer},
	CapTrendReport:        {RoleAdmin, RoleDataAnalyst, RoleFinancialManager},
	CapReadTransactions:   Roles,
	CapWriteTransactions:  {RoleAdmin, RoleAccountant, RoleFinancialManager},
	CapDeleteTransactions: {RoleAdmin, RoleAccountant},
	CapExportData:         {RoleAdmin, RoleAccountant, RoleFinancialManager},
	CapReadUsers:          {RoleAdmin, RoleDataAnalyst},
	CapManageUsers:        {RoleAdmin},
	CapReadActivity:       {RoleAdmin, RoleDataAnalyst},
	CapMaintenance:        {RoleAdmin},
	CapBackup:             {RoleAdmin},
	CapReadDashboard:      Roles,
}

// Allowed reports whether role holds capability. Unknown capabilities are denied.
func Allowed(role Role, capability Capability) bool {
	for _, r := range capabilities[capability] {
		if r == role {
			return true
		}
	}
	return false
}

// RolesFor returns a copy of the roles granted capability
func RolesFor(capability Capability) []Role {
	return append([]Role(nil), capabilities[capability]...)
}
