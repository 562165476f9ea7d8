package rbac

// Default policy. A student owns the study flow; admin additionally wipes
// data and reads the event log.
var RolePermissions = map[string][]string{
	"student": {
		"material:create",
		"material:view",
		"material:update",
		"material:delete",
		"material:chat",
		"artifact:generate",
		"quiz:take",
		"quiz:view",
		"dashboard:view",
	},
	"admin": {
		"*", // everything
	},
}
