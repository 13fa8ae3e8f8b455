package accounts

import (
	"context"
	"sync"

	goerrors "github.com/goliatone/go-errors"
)

// CanViewProfile decides whether viewer may see the profile. Checks run
// cheapest first so the permission collaborator is only queried when the
// privacy setting alone cannot decide. Default deny: closed profiles
// and unrecognized viewers fall through to false.
func CanViewProfile(ctx context.Context, profile *Profile, viewer Viewer, checker PermissionChecker) (bool, error) {
	if profile == nil {
		return false, nil
	}

	if profile.Privacy == PrivacyOpen {
		return true, nil
	}

	if profile.Privacy == PrivacyRegistered && viewer.Authenticated() {
		return true, nil
	}

	// owner and admin grants live in the permission collaborator
	if checker != nil {
		perms, err := checker.PermissionsOf(ctx, viewer, profile.PermissionKey())
		if err != nil {
			return false, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to query profile permissions")
		}
		for _, p := range perms {
			if p == ViewProfilePermission {
				return true, nil
			}
		}
	}

	return false, nil
}

// PermissionRegistry is an in-memory PermissionChecker for tests and
// single-process deployments. Hosts with a real permission system
// implement PermissionChecker against it instead.
type PermissionRegistry struct {
	mu     sync.RWMutex
	grants map[string]map[string][]string
	admins map[string]bool
}

// NewPermissionRegistry returns an empty registry.
func NewPermissionRegistry() *PermissionRegistry {
	return &PermissionRegistry{
		grants: map[string]map[string][]string{},
		admins: map[string]bool{},
	}
}

// Grant implements PermissionChecker.
func (r *PermissionRegistry) Grant(ctx context.Context, viewer Viewer, permission, resource string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	byResource, ok := r.grants[viewer.Key()]
	if !ok {
		byResource = map[string][]string{}
		r.grants[viewer.Key()] = byResource
	}

	for _, p := range byResource[resource] {
		if p == permission {
			return nil
		}
	}

	byResource[resource] = append(byResource[resource], permission)
	return nil
}

// MakeAdmin marks a viewer as holding every permission on every resource.
func (r *PermissionRegistry) MakeAdmin(viewer Viewer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.admins[viewer.Key()] = true
}

// PermissionsOf implements PermissionChecker.
func (r *PermissionRegistry) PermissionsOf(ctx context.Context, viewer Viewer, resource string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.admins[viewer.Key()] {
		return []string{ViewProfilePermission}, nil
	}

	byResource, ok := r.grants[viewer.Key()]
	if !ok {
		return nil, nil
	}

	perms := byResource[resource]
	out := make([]string, len(perms))
	copy(out, perms)
	return out, nil
}

var _ PermissionChecker = (*PermissionRegistry)(nil)
