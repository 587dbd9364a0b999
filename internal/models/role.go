package models

import (
	"sort"
	"strings"
)

type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleOwner  Role = "OWNER"
	RoleTenant Role = "TENANT"
)

// RoleClaimPrefix is prepended to every role tag written into a token.
const RoleClaimPrefix = "ROLE_"

var allRoles = []Role{RoleAdmin, RoleOwner, RoleTenant}

func (r Role) Valid() bool {
	for _, known := range allRoles {
		if r == known {
			return true
		}
	}
	return false
}

func (r Role) Claim() string {
	return RoleClaimPrefix + string(r)
}

// ParseRole accepts a role tag in any case, with or without the claim prefix.
func ParseRole(s string) (Role, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, RoleClaimPrefix)
	r := Role(s)
	return r, r.Valid()
}

// RoleSet is a value set of role tags.
type RoleSet map[Role]struct{}

func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

func (s RoleSet) Clone() RoleSet {
	out := make(RoleSet, len(s))
	for r := range s {
		out[r] = struct{}{}
	}
	return out
}

func (s RoleSet) Has(r Role) bool {
	_, ok := s[r]
	return ok
}

// Slice returns the roles sorted by tag.
func (s RoleSet) Slice() []Role {
	out := make([]Role, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s RoleSet) Claims() []string {
	roles := s.Slice()
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = r.Claim()
	}
	return out
}
