package model

const (
	RoleAdmin      = "admin"
	RoleEngineer   = "engineer"
	RoleTechnician = "technician"
	RoleViewer     = "viewer"
)

const (
	DocTypeSOP        = "sop"
	DocTypeManual     = "manual"
	DocTypeCompliance = "compliance"
	DocTypeOther      = "other"
)

const (
	PermUploadDocs  = "upload_docs"
	PermDeleteDocs  = "delete_docs"
	PermManageUsers = "manage_users"
	PermQueryAll    = "query_all"
	PermViewAll     = "view_all"
	PermQuerySOPs   = "query_sops"
	PermViewSOPs    = "view_sops"
	PermQueryLtd    = "query_limited"
	PermViewLtd     = "view_limited"
)

var rolePermissions = map[string][]string{
	RoleAdmin:      {PermUploadDocs, PermDeleteDocs, PermManageUsers, PermQueryAll, PermViewAll},
	RoleEngineer:   {PermUploadDocs, PermQueryAll, PermViewAll},
	RoleTechnician: {PermQuerySOPs, PermViewSOPs},
	RoleViewer:     {PermQueryLtd, PermViewLtd},
}

// roleVisibleDocTypes drives retrieval and listing filters alike.
// A nil entry means the role sees every document type.
var roleVisibleDocTypes = map[string][]string{
	RoleAdmin:      nil,
	RoleEngineer:   nil,
	RoleTechnician: {DocTypeSOP},
	RoleViewer:     {DocTypeSOP, DocTypeManual},
}

func ValidRole(role string) bool {
	_, ok := rolePermissions[role]
	return ok
}

func ValidDocType(docType string) bool {
	switch docType {
	case DocTypeSOP, DocTypeManual, DocTypeCompliance, DocTypeOther:
		return true
	}
	return false
}

func HasPermission(role, permission string) bool {
	for _, p := range rolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}

// VisibleDocTypes returns the document types the role may see,
// or nil when the role is unrestricted.
func VisibleDocTypes(role string) []string {
	return roleVisibleDocTypes[role]
}
