package model

import "time"

// Admin roles carried in the JWT "role" claim.
const (
	RoleSuperAdmin     = "superadmin"
	RoleSecondaryAdmin = "admin_secondaire"
)

// Admin account statuses.
const (
	AdminActive    = "actif"
	AdminSuspended = "suspendu"
)

// Privileges a secondary admin may hold.
const (
	PrivRead   = "READ"
	PrivWrite  = "WRITE"
	PrivUpdate = "UPDATE"
	PrivDelete = "DELETE"
)

// SectionApartments is the dashboard section guarding apartment and
// reservation management.
const SectionApartments = "apartments"

// PrivAll is the wildcard granted to superadmins in their tokens.
const PrivAll = "ALL"

// Admin represents a row in the `admins` table.  Superadmins have every
// right; secondary admins are limited to Privileges within Sections.
//
// Fields:
//  ID           – UUID primary key.
//  LastName     – family name.
//  FirstName    – given name.
//  Email        – unique login.
//  PasswordHash – bcrypt hash.
//  Gender       – "Homme" or "Femme" (nullable for superadmins).
//  Role         – superadmin or admin_secondaire.
//  Privileges   – granted privileges (JSON array column).
//  Sections     – granted dashboard sections (JSON array column).
//  Status       – actif or suspendu.
//  LastLoginAt  – last successful login (nullable).
type Admin struct {
	ID           string     // admins.id
	LastName     string     // admins.last_name
	FirstName    string     // admins.first_name
	Email        string     // admins.email
	PasswordHash string     // admins.password_hash
	Gender       string     // admins.gender
	Role         string     // admins.role
	Privileges   []string   // admins.privileges
	Sections     []string   // admins.sections
	Status       string     // admins.status
	LastLoginAt  *time.Time // admins.last_login_at (nullable)
	CreatedAt    time.Time  // admins.created_at
	UpdatedAt    time.Time  // admins.updated_at
}
