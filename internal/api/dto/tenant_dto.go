package dto

import "github.com/spec-kit/repository-api/internal/domain"

// TenantResponse is the public tenant record.
type TenantResponse struct {
	ID     int64  `json:"id"`
	Tenant string `json:"tenant"`
	Name   string `json:"name"`
	Cname  string `json:"cname"`
}

// NewTenantResponse maps an account to its public shape.
func NewTenantResponse(account domain.Account) TenantResponse {
	return TenantResponse{
		ID:     account.ID,
		Tenant: account.Tenant,
		Name:   account.Name,
		Cname:  account.Cname,
	}
}
