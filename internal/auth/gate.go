package auth

// Authorize reports whether identity may proceed given the allowed user
// types.  A nil identity is unauthenticated.  An empty role list admits any
// authenticated caller.  Roles are compared as a flat set.
func Authorize(identity *Identity, roles ...string) error {
	if identity == nil {
		return ErrUnauthenticated
	}
	if len(roles) == 0 {
		return nil
	}
	if !InSet(identity.UserType, roles...) {
		return ErrForbidden
	}
	return nil
}

// InSet reports whether v is one of set.
func InSet(v string, set ...string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
