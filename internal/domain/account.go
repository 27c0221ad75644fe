package domain

import "time"

// Account is a tenant record in the multi-tenant deployment. Accounts are
// owned by the tenant directory; this service only reads them.
type Account struct {
	ID          int64
	Tenant      string // stable external identifier (uuid)
	Name        string
	Cname       string
	FrontendURL string // domain used for cookie scoping; may be empty
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
