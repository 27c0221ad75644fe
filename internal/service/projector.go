package service

import (
	"context"

	"github.com/spec-kit/repository-api/internal/domain"
	"github.com/spec-kit/repository-api/internal/tenancy"
)

// Projection is the session body returned by login, refresh and current.
// Participants and Type are re-derived on every call, never cached in tokens.
type Projection struct {
	Email        string              `json:"email"`
	Participants []map[string]string `json:"participants"`
	Type         []string            `json:"type"`
}

func (s *SessionService) project(ctx context.Context, tc tenancy.Context, user *domain.User) (Projection, error) {
	grants, err := s.grants.ListForUser(ctx, tc.Schema(), user.ID)
	if err != nil {
		return Projection{}, err
	}

	return Projection{
		Email:        user.Email,
		Participants: projectParticipants(grants),
		Type:         user.VisibleRoles(),
	}, nil
}

// projectParticipants flattens admin-set grants into the wire shape, walking
// access levels from most to least privileged. An admin set appears once, at
// its highest level.
func projectParticipants(grants []domain.AdminSetGrant) []map[string]string {
	participants := make([]map[string]string, 0, len(grants))
	seen := make(map[string]struct{}, len(grants))

	for _, level := range domain.AccessLevelPriority {
		for _, grant := range grants {
			if grant.Access != level || grant.AdminSet == "" {
				continue
			}
			if _, ok := seen[grant.AdminSet]; ok {
				continue
			}
			seen[grant.AdminSet] = struct{}{}
			participants = append(participants, map[string]string{grant.AdminSet: string(grant.Access)})
		}
	}
	return participants
}
