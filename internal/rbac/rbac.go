package rbac

type Role string
type Action string

const (
	RoleMember  Role = "member"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

const (
	ActionRead   Action = "read"
	ActionWrite  Action = "write"
	ActionManage Action = "manage"
	ActionAdmin  Action = "admin"
)

// Can reports whether a workspace role may perform an action. Managers run
// projects and see workload reports; only admins touch HR and payroll.
func Can(role Role, action Action) bool {
	switch role {
	case RoleAdmin:
		return true
	case RoleManager:
		return action == ActionRead || action == ActionWrite || action == ActionManage
	case RoleMember:
		return action == ActionRead || action == ActionWrite
	default:
		return false
	}
}

func Normalize(role string) Role {
	switch Role(role) {
	case RoleMember, RoleManager, RoleAdmin:
		return Role(role)
	default:
		return RoleMember
	}
}
