package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserID is the immutable aggregate identity, generated once at registration.
type UserID struct {
	value uuid.UUID
}

// NewUserID generates a fresh random identifier.
func NewUserID() UserID {
	return UserID{value: uuid.New()}
}

// ParseUserID parses an identifier from its string form.
func ParseUserID(s string) (UserID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return UserID{}, err
	}
	return UserID{value: id}, nil
}

// Value returns the canonical string form.
func (id UserID) Value() string {
	return id.value.String()
}

func (id UserID) String() string {
	return id.value.String()
}

// User is the user aggregate. All mutation goes through its methods, which
// also refresh updatedAt. Equality is by id alone.
type User struct {
	id        UserID
	email     Email
	password  EncodedPassword
	roles     map[Role]struct{}
	status    Status
	createdAt time.Time
	updatedAt time.Time
}

// Register creates a new user with a fresh id, ACTIVE status, and a single
// initial role. createdAt and updatedAt start equal.
func Register(email Email, password EncodedPassword, role Role) *User {
	now := time.Now().UTC()
	return &User{
		id:        NewUserID(),
		email:     email,
		password:  password,
		roles:     map[Role]struct{}{role: {}},
		status:    StatusActive,
		createdAt: now,
		updatedAt: now,
	}
}

// Reconstitute rehydrates a user from storage. Invariants enforced at the
// original creation are trusted and not re-derived.
func Reconstitute(id UserID, email Email, password EncodedPassword, roles []Role, status Status, createdAt, updatedAt time.Time) *User {
	roleSet := make(map[Role]struct{}, len(roles))
	for _, r := range roles {
		roleSet[r] = struct{}{}
	}
	return &User{
		id:        id,
		email:     email,
		password:  password,
		roles:     roleSet,
		status:    status,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (u *User) ID() UserID                { return u.id }
func (u *User) Email() Email              { return u.email }
func (u *User) Password() EncodedPassword { return u.password }
func (u *User) Status() Status            { return u.status }
func (u *User) CreatedAt() time.Time      { return u.createdAt }
func (u *User) UpdatedAt() time.Time      { return u.updatedAt }

// Roles returns a copy of the role set so callers cannot alias internal state.
func (u *User) Roles() []Role {
	roles := make([]Role, 0, len(u.roles))
	for r := range u.roles {
		roles = append(roles, r)
	}
	return roles
}

// ChangePassword replaces the stored password hash.
func (u *User) ChangePassword(password EncodedPassword) {
	u.password = password
	u.touch()
}

// AddRole adds a role to the set. Adding a role the user already holds is a
// no-op and does not bump updatedAt.
func (u *User) AddRole(role Role) {
	if _, ok := u.roles[role]; ok {
		return
	}
	u.roles[role] = struct{}{}
	u.touch()
}

// RemoveRole removes a role. It fails if the user does not hold the role, or
// if removal would leave the role set empty.
func (u *User) RemoveRole(role Role) error {
	if _, ok := u.roles[role]; !ok {
		return RoleRequired("user does not have role " + string(role))
	}
	if len(u.roles) == 1 {
		return RoleRequired("user must have at least one role")
	}
	delete(u.roles, role)
	u.touch()
	return nil
}

// Activate sets the account status to ACTIVE. Safe to call repeatedly.
func (u *User) Activate() {
	u.status = StatusActive
	u.touch()
}

// Deactivate sets the account status to INACTIVE. Safe to call repeatedly.
func (u *User) Deactivate() {
	u.status = StatusInactive
	u.touch()
}

// IsActive reports whether the account status is ACTIVE.
func (u *User) IsActive() bool {
	return u.status == StatusActive
}

// HasRole reports whether the user holds the given role.
func (u *User) HasRole(role Role) bool {
	_, ok := u.roles[role]
	return ok
}

// IsBuyer reports whether the user holds the BUYER role.
func (u *User) IsBuyer() bool {
	return u.HasRole(RoleBuyer)
}

// IsSeller reports whether the user holds the SELLER role.
func (u *User) IsSeller() bool {
	return u.HasRole(RoleSeller)
}

// IsAdmin reports whether the user holds the ADMIN role.
func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// Equals reports logical identity: two users with the same id are the same
// entity even if other fields diverge.
func (u *User) Equals(other *User) bool {
	if other == nil {
		return false
	}
	return u.id == other.id
}

func (u *User) touch() {
	u.updatedAt = time.Now().UTC()
}
