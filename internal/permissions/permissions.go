// Package permissions resolves a user's group memberships into the capability
// set the handlers act on. Policy lives here, in one enforcer; the workflow
// validator never sees authorization concerns.
package permissions

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	casbinmodel "github.com/casbin/casbin/v2/model"
	"github.com/jhstephenson/callingtrack/internal/models"
)

// Permission group names
const (
	GroupStakePresident = "Stake President"
	GroupBishop         = "Bishop"
	GroupClerk          = "Clerk"
	GroupStakeClerk     = "Stake Clerk"
	GroupLeadership     = "Leadership"
)

// AllGroups lists every permission group the system knows about.
var AllGroups = []string{
	GroupStakePresident,
	GroupBishop,
	GroupClerk,
	GroupStakeClerk,
	GroupLeadership,
}

// Objects and actions used in the policy table
const (
	objectCallings  = "callings"
	objectStructure = "structure"

	actionEdit    = "edit"
	actionApprove = "approve"
	actionDelete  = "delete"
	actionManage  = "manage"
)

// Capabilities is the per-request capability set resolved from a user's
// groups. Resolved once by the middleware and passed along explicitly.
type Capabilities struct {
	CanEditCallings    bool `json:"can_edit_callings"`
	CanApproveCallings bool `json:"can_approve_callings"`
	CanDeleteCallings  bool `json:"can_delete_callings"`
	CanManageStructure bool `json:"can_manage_structure"`
}

const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// Resolver answers capability questions from an in-memory casbin enforcer.
type Resolver struct {
	enforcer *casbin.Enforcer
}

// NewResolver builds the enforcer with the static policy table.
func NewResolver() (*Resolver, error) {
	m, err := casbinmodel.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("failed to build permission model: %w", err)
	}

	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to build permission enforcer: %w", err)
	}

	policies := [][]string{
		{GroupLeadership, objectCallings, actionEdit},
		{GroupClerk, objectCallings, actionEdit},
		{GroupStakePresident, objectCallings, actionApprove},
		{GroupBishop, objectCallings, actionApprove},
		{GroupStakePresident, objectCallings, actionDelete},
		{GroupStakePresident, objectStructure, actionManage},
		{GroupClerk, objectStructure, actionManage},
	}
	if _, err := enforcer.AddPolicies(policies); err != nil {
		return nil, fmt.Errorf("failed to load policies: %w", err)
	}

	groupings := [][]string{
		{GroupStakePresident, GroupLeadership},
		{GroupBishop, GroupLeadership},
		{GroupStakeClerk, GroupClerk},
	}
	if _, err := enforcer.AddGroupingPolicies(groupings); err != nil {
		return nil, fmt.Errorf("failed to load group inheritance: %w", err)
	}

	return &Resolver{enforcer: enforcer}, nil
}

// Resolve computes the capability set for a user. Superusers get everything.
func (r *Resolver) Resolve(user *models.User) (Capabilities, error) {
	if user.IsSuperuser {
		return Capabilities{
			CanEditCallings:    true,
			CanApproveCallings: true,
			CanDeleteCallings:  true,
			CanManageStructure: true,
		}, nil
	}

	caps := Capabilities{}
	for _, group := range user.GroupNames() {
		var err error
		if !caps.CanEditCallings {
			if caps.CanEditCallings, err = r.enforce(group, objectCallings, actionEdit); err != nil {
				return Capabilities{}, err
			}
		}
		if !caps.CanApproveCallings {
			if caps.CanApproveCallings, err = r.enforce(group, objectCallings, actionApprove); err != nil {
				return Capabilities{}, err
			}
		}
		if !caps.CanDeleteCallings {
			if caps.CanDeleteCallings, err = r.enforce(group, objectCallings, actionDelete); err != nil {
				return Capabilities{}, err
			}
		}
		if !caps.CanManageStructure {
			if caps.CanManageStructure, err = r.enforce(group, objectStructure, actionManage); err != nil {
				return Capabilities{}, err
			}
		}
	}
	return caps, nil
}

func (r *Resolver) enforce(sub, obj, act string) (bool, error) {
	ok, err := r.enforcer.Enforce(sub, obj, act)
	if err != nil {
		return false, fmt.Errorf("failed to enforce %s/%s/%s: %w", sub, obj, act, err)
	}
	return ok, nil
}
