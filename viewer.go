package accounts

import "github.com/google/uuid"

// Viewer is whoever is looking at a profile: either anonymous or an
// authenticated identity. An explicit sum type instead of a nilable
// user pointer, so visibility checks cannot confuse "not signed in"
// with "unknown".
type Viewer struct {
	id            uuid.UUID
	authenticated bool
}

// AnonymousViewer returns the unauthenticated viewer.
func AnonymousViewer() Viewer {
	return Viewer{}
}

// AuthenticatedViewer returns a viewer for a signed in identity.
func AuthenticatedViewer(id uuid.UUID) Viewer {
	return Viewer{id: id, authenticated: true}
}

// Authenticated reports whether the viewer is a recognized signed in
// identity.
func (v Viewer) Authenticated() bool {
	return v.authenticated
}

// ID returns the identity id, uuid.Nil for anonymous viewers.
func (v Viewer) ID() uuid.UUID {
	if !v.authenticated {
		return uuid.Nil
	}
	return v.id
}

// Key is the viewer's stable identifier used by permission stores.
func (v Viewer) Key() string {
	if !v.authenticated {
		return "anonymous"
	}
	return v.id.String()
}
