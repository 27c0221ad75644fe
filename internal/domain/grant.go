package domain

// AccessLevel is a collection-level permission on an admin set.
type AccessLevel string

const (
	AccessManage  AccessLevel = "manage"
	AccessDeposit AccessLevel = "deposit"
	AccessView    AccessLevel = "view"
)

// AccessLevelPriority orders levels from most to least privileged. Session
// responses list grants in this order.
var AccessLevelPriority = []AccessLevel{AccessManage, AccessDeposit, AccessView}

// AdminSetGrant is a named admin-set permission held by a user.
type AdminSetGrant struct {
	AdminSet string
	Access   AccessLevel
}
