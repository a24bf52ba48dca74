package identity

// Kind discriminates the two ways a visitor can be identified.
type Kind string

const (
	// KindAuthenticated is a user id resolved by the external auth provider,
	// stable across devices.
	KindAuthenticated Kind = "authenticated"
	// KindAnonymous is a device-scoped pseudo-id, lost when the device key
	// is discarded.
	KindAnonymous Kind = "anonymous"
)

// Identity is the single abstraction over "logged-in user" versus "guest
// device". Storage picks a sink from Kind in exactly one place; nothing else
// should branch on the login state.
type Identity struct {
	kind Kind
	id   string
}

// Authenticated wraps a user id issued by the auth provider.
func Authenticated(userID string) Identity {
	return Identity{kind: KindAuthenticated, id: userID}
}

// Anonymous wraps a device-scoped key.
func Anonymous(deviceKey string) Identity {
	return Identity{kind: KindAnonymous, id: deviceKey}
}

func (i Identity) Kind() Kind { return i.kind }

// ID returns the user id or device key, depending on Kind.
func (i Identity) ID() string { return i.id }

func (i Identity) IsAuthenticated() bool { return i.kind == KindAuthenticated }

// Valid reports whether the identity carries a usable id.
func (i Identity) Valid() bool { return i.id != "" && i.kind != "" }
