package account

import "time"

// State is the account lifecycle state. Accounts start Pending and move
// to Active exactly once, when mobile verification succeeds.
type State string

const (
	StatePending State = "pending"
	StateActive  State = "active"
)

// Role is the account's capability tier.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

// Account is the persisted account record. The credential is only ever
// stored as a one-way hash.
type Account struct {
	ID                  string
	MobileNumber        string
	Name                string
	Email               string
	CredentialHash      []byte
	State               State
	Role                Role
	CredentialUpdatedAt time.Time
	CreatedAt           time.Time
}

// Profile carries the mutable non-credential fields supplied at
// registration.
type Profile struct {
	Name  string
	Email string
}
