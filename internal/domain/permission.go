package domain

import (
	"encoding/json"
)

// Resource names a permission group.
type Resource string

const (
	ResourceUsers     Resource = "users"
	ResourceTickets   Resource = "tickets"
	ResourceUserRules Resource = "userRules"
	ResourceStations  Resource = "stations"
)

// Action names a capability inside a permission group.
type Action string

const (
	ActionAdd        Action = "add"
	ActionEdit       Action = "edit"
	ActionDelete     Action = "delete"
	ActionList       Action = "list"
	ActionListAssign Action = "listAssign"
)

// Visibility flags are dashboard toggles stored beside the resource groups.
type Visibility string

const (
	VisibilityDashboard Visibility = "dashboard"
	VisibilityTrack     Visibility = "track"
	VisibilityReport    Visibility = "report"
)

var crudActions = []Action{ActionAdd, ActionEdit, ActionDelete, ActionList}

// permissionCatalog is the closed set of resource/action pairs a role can hold.
var permissionCatalog = map[Resource][]Action{
	ResourceUsers:     crudActions,
	ResourceTickets:   append(append([]Action{}, crudActions...), ActionListAssign),
	ResourceUserRules: crudActions,
	ResourceStations:  crudActions,
}

var visibilityFlags = []Visibility{VisibilityDashboard, VisibilityTrack, VisibilityReport}

// Resources returns the permission groups in a stable order.
func Resources() []Resource {
	return []Resource{ResourceUsers, ResourceTickets, ResourceUserRules, ResourceStations}
}

// ActionsFor returns the actions defined for resource, or nil when unknown.
func ActionsFor(resource Resource) []Action {
	actions, ok := permissionCatalog[resource]
	if !ok {
		return nil
	}
	return append([]Action{}, actions...)
}

// Grants is the mutable builder form of a PermissionSet.
type Grants map[Resource]map[Action]bool

// PermissionSet is an immutable resource×action matrix plus dashboard visibility flags.
// The zero value denies everything and shows every dashboard.
type PermissionSet struct {
	grants map[Resource]map[Action]bool
	hidden map[Visibility]bool
}

// NewPermissionSet copies the known pairs out of grants. Pairs outside the catalog are dropped.
func NewPermissionSet(grants Grants, visibility map[Visibility]bool) PermissionSet {
	ps := PermissionSet{
		grants: make(map[Resource]map[Action]bool, len(permissionCatalog)),
		hidden: make(map[Visibility]bool),
	}
	for resource, actions := range permissionCatalog {
		row := make(map[Action]bool, len(actions))
		for _, action := range actions {
			row[action] = grants[resource][action]
		}
		ps.grants[resource] = row
	}
	for _, flag := range visibilityFlags {
		if shown, ok := visibility[flag]; ok && !shown {
			ps.hidden[flag] = true
		}
	}
	return ps
}

// FullPermissionSet grants every catalogued capability.
func FullPermissionSet() PermissionSet {
	grants := Grants{}
	for resource, actions := range permissionCatalog {
		grants[resource] = map[Action]bool{}
		for _, action := range actions {
			grants[resource][action] = true
		}
	}
	return NewPermissionSet(grants, nil)
}

// Allowed reports the stored bit for resource/action. Unknown pairs are false.
func (p PermissionSet) Allowed(resource Resource, action Action) bool {
	row, ok := p.grants[resource]
	if !ok {
		return false
	}
	return row[action]
}

// Visible reports a dashboard flag; absent flags are visible.
func (p PermissionSet) Visible(flag Visibility) bool {
	return !p.hidden[flag]
}

// IsFull reports whether every catalogued capability is granted.
func (p PermissionSet) IsFull() bool {
	for resource, actions := range permissionCatalog {
		for _, action := range actions {
			if !p.Allowed(resource, action) {
				return false
			}
		}
	}
	return true
}

// Grants returns a copy of the matrix in builder form.
func (p PermissionSet) Grants() Grants {
	out := Grants{}
	for resource, actions := range permissionCatalog {
		out[resource] = map[Action]bool{}
		for _, action := range actions {
			out[resource][action] = p.Allowed(resource, action)
		}
	}
	return out
}

// MarshalJSON emits the wire payload: resource groups plus top-level visibility booleans.
func (p PermissionSet) MarshalJSON() ([]byte, error) {
	payload := make(map[string]any, len(permissionCatalog)+len(visibilityFlags))
	for resource, row := range p.Grants() {
		actions := make(map[string]bool, len(row))
		for action, allowed := range row {
			actions[string(action)] = allowed
		}
		payload[string(resource)] = actions
	}
	for _, flag := range visibilityFlags {
		payload[string(flag)] = p.Visible(flag)
	}
	return json.Marshal(payload)
}

// UnmarshalJSON accepts the wire payload. Missing bits are false, missing
// visibility flags are true, and non-boolean values deny.
func (p *PermissionSet) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	grants := Grants{}
	for resource := range permissionCatalog {
		body, ok := raw[string(resource)]
		if !ok {
			continue
		}
		var row map[string]any
		if err := json.Unmarshal(body, &row); err != nil {
			continue
		}
		grants[resource] = map[Action]bool{}
		for key, val := range row {
			if allowed, isBool := val.(bool); isBool {
				grants[resource][Action(key)] = allowed
			}
		}
	}
	visibility := map[Visibility]bool{}
	for _, flag := range visibilityFlags {
		body, ok := raw[string(flag)]
		if !ok {
			continue
		}
		var shown bool
		if err := json.Unmarshal(body, &shown); err == nil {
			visibility[flag] = shown
		}
	}
	*p = NewPermissionSet(grants, visibility)
	return nil
}
