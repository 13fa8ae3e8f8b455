package accounts

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanViewProfileOpen(t *testing.T) {
	profile := &Profile{ID: uuid.New(), Privacy: PrivacyOpen}

	ok, err := CanViewProfile(context.Background(), profile, AnonymousViewer(), nil)
	require.NoError(t, err)
	assert.True(t, ok, "open profiles are visible to anonymous viewers")
}

func TestCanViewProfileRegistered(t *testing.T) {
	profile := &Profile{ID: uuid.New(), Privacy: PrivacyRegistered}

	ok, err := CanViewProfile(context.Background(), profile, AnonymousViewer(), nil)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = CanViewProfile(context.Background(), profile, AuthenticatedViewer(uuid.New()), nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCanViewProfileClosed(t *testing.T) {
	ownerID := uuid.New()
	profile := &Profile{ID: uuid.New(), Privacy: PrivacyClosed}

	registry := NewPermissionRegistry()
	owner := AuthenticatedViewer(ownerID)
	require.NoError(t, registry.Grant(context.Background(), owner, ViewProfilePermission, profile.PermissionKey()))

	// signed in but not granted
	ok, err := CanViewProfile(context.Background(), profile, AuthenticatedViewer(uuid.New()), registry)
	require.NoError(t, err)
	assert.False(t, ok)

	// owner holds an explicit grant
	ok, err = CanViewProfile(context.Background(), profile, owner, registry)
	require.NoError(t, err)
	assert.True(t, ok)

	// admins see everything
	admin := AuthenticatedViewer(uuid.New())
	registry.MakeAdmin(admin)
	ok, err = CanViewProfile(context.Background(), profile, admin, registry)
	require.NoError(t, err)
	assert.True(t, ok)

	// no checker configured means default deny
	ok, err = CanViewProfile(context.Background(), profile, AuthenticatedViewer(uuid.New()), nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCanViewProfileNil(t *testing.T) {
	ok, err := CanViewProfile(context.Background(), nil, AuthenticatedViewer(uuid.New()), nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestViewer(t *testing.T) {
	anon := AnonymousViewer()
	assert.False(t, anon.Authenticated())
	assert.Equal(t, uuid.Nil, anon.ID())
	assert.Equal(t, "anonymous", anon.Key())

	id := uuid.New()
	signed := AuthenticatedViewer(id)
	assert.True(t, signed.Authenticated())
	assert.Equal(t, id, signed.ID())
	assert.Equal(t, id.String(), signed.Key())
}

func TestPermissionRegistryGrantIdempotent(t *testing.T) {
	registry := NewPermissionRegistry()
	viewer := AuthenticatedViewer(uuid.New())

	require.NoError(t, registry.Grant(context.Background(), viewer, ViewProfilePermission, "profile:x"))
	require.NoError(t, registry.Grant(context.Background(), viewer, ViewProfilePermission, "profile:x"))

	perms, err := registry.PermissionsOf(context.Background(), viewer, "profile:x")
	require.NoError(t, err)
	assert.Equal(t, []string{ViewProfilePermission}, perms)
}
