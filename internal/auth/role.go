package auth

type Role int

const (
	RoleNone Role = iota
	RoleViewer
	RoleEditor
	RoleAdmin
)

func ParseRole(s string) Role {
	switch s {
	case "viewer":
		return RoleViewer
	case "editor":
		return RoleEditor
	case "admin":
		return RoleAdmin
	default:
		return RoleNone
	}
}

func (r Role) String() string {
	switch r {
	case RoleViewer:
		return "viewer"
	case RoleEditor:
		return "editor"
	case RoleAdmin:
		return "admin"
	default:
		return "none"
	}
}

// Allows reports whether a caller holding r may access an endpoint
// requiring at least min.
func (r Role) Allows(min Role) bool {
	return r >= min && r != RoleNone
}
