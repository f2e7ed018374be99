package roles

import "strings"

// Role is an application role. Roles are a closed set and are only ever compared by
// equality or through the permission table, never by privilege order.
type Role string

const (
	Admin       Role = "admin"       // Full access, manages users
	Angajat     Role = "angajat"     // Employee
	Colaborator Role = "colaborator" // Collaborator, lowest privilege
)

// Default is the role assigned whenever a role is unknown or missing.
const Default = Colaborator

var all = []Role{Admin, Angajat, Colaborator}

// All returns every known role.
func All() []Role {
	out := make([]Role, len(all))
	copy(out, all)
	return out
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	for _, known := range all {
		if r == known {
			return true
		}
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// Parse maps a raw role string onto a known role. Matching ignores case and
// surrounding whitespace. Anything unrecognised becomes Default.
func Parse(raw string) Role {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	if !role.Valid() {
		return Default
	}
	return role
}

// UnmarshalText implements encoding.TextUnmarshaler so that persisted profiles can
// never carry an elevated role they were not explicitly given.
func (r *Role) UnmarshalText(text []byte) error {
	*r = Parse(string(text))
	return nil
}
