package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/internal/domain"
)

func TestPermissionSetUnmarshalDefaults(t *testing.T) {
	var ps domain.PermissionSet
	payload := `{"tickets":{"edit":true,"listAssign":true,"fly":true},"users":{"list":"yes"},"report":false}`
	require.NoError(t, json.Unmarshal([]byte(payload), &ps))

	assert.True(t, ps.Allowed(domain.ResourceTickets, domain.ActionEdit))
	assert.True(t, ps.Allowed(domain.ResourceTickets, domain.ActionListAssign))
	assert.False(t, ps.Allowed(domain.ResourceTickets, domain.ActionDelete))
	assert.False(t, ps.Allowed(domain.ResourceTickets, "fly"))
	assert.False(t, ps.Allowed(domain.ResourceUsers, domain.ActionList))
	assert.False(t, ps.Allowed(domain.ResourceStations, domain.ActionAdd))
	assert.False(t, ps.Allowed("billing", domain.ActionAdd))
	assert.False(t, ps.Allowed(domain.ResourceUsers, domain.ActionListAssign))

	assert.True(t, ps.Visible(domain.VisibilityDashboard))
	assert.True(t, ps.Visible(domain.VisibilityTrack))
	assert.False(t, ps.Visible(domain.VisibilityReport))
}

func TestPermissionSetWireShape(t *testing.T) {
	ps := domain.NewPermissionSet(domain.Grants{
		domain.ResourceStations: {domain.ActionList: true},
	}, map[domain.Visibility]bool{domain.VisibilityTrack: false})

	raw, err := json.Marshal(ps)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Len(t, decoded, 7)
	assert.Equal(t, true, decoded["dashboard"])
	assert.Equal(t, false, decoded["track"])
	assert.Equal(t, true, decoded["report"])

	tickets, ok := decoded["tickets"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, tickets, 5)
	assert.Contains(t, tickets, "listAssign")

	stations, ok := decoded["stations"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, stations["list"])
	assert.Equal(t, false, stations["add"])

	var roundTrip domain.PermissionSet
	require.NoError(t, json.Unmarshal(raw, &roundTrip))
	assert.Equal(t, ps.Grants(), roundTrip.Grants())
}

func TestZeroPermissionSetDeniesEverything(t *testing.T) {
	var ps domain.PermissionSet
	for _, resource := range domain.Resources() {
		for _, action := range domain.ActionsFor(resource) {
			assert.False(t, ps.Allowed(resource, action))
		}
	}
	assert.True(t, ps.Visible(domain.VisibilityDashboard))
	assert.False(t, ps.IsFull())
}

func TestFullPermissionSet(t *testing.T) {
	ps := domain.FullPermissionSet()
	assert.True(t, ps.IsFull())
	assert.True(t, ps.Allowed(domain.ResourceUserRules, domain.ActionDelete))
	assert.False(t, ps.Allowed(domain.ResourceUserRules, domain.ActionListAssign))
}

func TestPrincipalVerified(t *testing.T) {
	assert.True(t, (&domain.Principal{VerificationCode: 0}).Verified())
	assert.False(t, (&domain.Principal{VerificationCode: 481516}).Verified())
	var missing *domain.Principal
	assert.False(t, missing.Verified())
}
