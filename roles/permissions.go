package roles

// Capability names a single permission flag.
type Capability string

const (
	CanViewAll        Capability = "canViewAll"
	CanEdit           Capability = "canEdit"
	CanDelete         Capability = "canDelete"
	CanManageUsers    Capability = "canManageUsers"
	CanViewSecretPage Capability = "canViewSecretPage"
	CanViewFinancials Capability = "canViewFinancials"
	CanExportData     Capability = "canExportData"
)

// Capabilities lists every capability in a stable order.
var Capabilities = []Capability{
	CanViewAll,
	CanEdit,
	CanDelete,
	CanManageUsers,
	CanViewSecretPage,
	CanViewFinancials,
	CanExportData,
}

// Table is an immutable role -> capability matrix.
type Table struct {
	grants map[Role]map[Capability]bool
}

// NewTable copies grants into a new Table. Later changes to grants are not observed.
func NewTable(grants map[Role]map[Capability]bool) *Table {
	t := &Table{grants: make(map[Role]map[Capability]bool, len(grants))}
	for role, caps := range grants {
		copied := make(map[Capability]bool, len(caps))
		for c, granted := range caps {
			copied[c] = granted
		}
		t.grants[role] = copied
	}
	return t
}

// HasPermission reports whether role is granted capability. Unknown roles and unknown
// capabilities are not granted.
func (t *Table) HasPermission(role Role, capability Capability) bool {
	caps, ok := t.grants[role]
	if !ok {
		return false
	}
	return caps[capability]
}

// Grants returns a copy of the capability set for role, or nil for an unknown role.
func (t *Table) Grants(role Role) map[Capability]bool {
	caps, ok := t.grants[role]
	if !ok {
		return nil
	}
	out := make(map[Capability]bool, len(caps))
	for c, granted := range caps {
		out[c] = granted
	}
	return out
}

var defaultTable = NewTable(map[Role]map[Capability]bool{
	Admin: {
		CanViewAll:        true,
		CanEdit:           true,
		CanDelete:         true,
		CanManageUsers:    true,
		CanViewSecretPage: true,
		CanViewFinancials: true,
		CanExportData:     true,
	},
	Angajat: {
		CanViewAll:        true,
		CanEdit:           true,
		CanDelete:         false,
		CanManageUsers:    false,
		CanViewSecretPage: true,
		CanViewFinancials: false,
		CanExportData:     true,
	},
	Colaborator: {
		CanViewAll:        false,
		CanEdit:           false,
		CanDelete:         false,
		CanManageUsers:    false,
		CanViewSecretPage: false,
		CanViewFinancials: false,
		CanExportData:     false,
	},
})

// DefaultTable returns the process-wide permission table.
func DefaultTable() *Table {
	return defaultTable
}

// HasPermission checks capability against the default table.
func HasPermission(role Role, capability Capability) bool {
	return defaultTable.HasPermission(role, capability)
}
