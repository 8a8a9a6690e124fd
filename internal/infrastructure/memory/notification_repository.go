package memory

import (
	"context"
	"sort"

	"flowfunds/internal/domain/notification"
)

type NotificationRepository struct {
	s *Store
}

func (r *NotificationRepository) UpsertDeviceToken(ctx context.Context, params notification.RegisterDeviceParams) (*notification.DeviceToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	dt, ok := r.s.devices[params.Token]
	if !ok {
		dt = &notification.DeviceToken{
			ID:        params.ID,
			Token:     params.Token,
			CreatedAt: now,
		}
		r.s.devices[params.Token] = dt
	}
	dt.UserID = params.UserID
	dt.Platform = params.Platform
	dt.Active = true
	dt.UpdatedAt = now

	out := *dt
	return &out, nil
}

func (r *NotificationRepository) GetActiveTokensByUserID(ctx context.Context, userID int64) ([]*notification.DeviceToken, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var tokens []*notification.DeviceToken
	for _, dt := range r.s.devices {
		if dt.UserID == userID && dt.Active {
			out := *dt
			tokens = append(tokens, &out)
		}
	}
	sort.Slice(tokens, func(i, j int) bool { return tokens[i].CreatedAt.Before(tokens[j].CreatedAt) })
	return tokens, nil
}

func (r *NotificationRepository) ListUserIDsWithActiveTokens(ctx context.Context) ([]int64, error) {
	r.s.mu.RLock()
	seen := make(map[int64]struct{})
	for _, dt := range r.s.devices {
		if dt.Active {
			seen[dt.UserID] = struct{}{}
		}
	}
	r.s.mu.RUnlock()

	ids := make([]int64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *NotificationRepository) DeactivateToken(ctx context.Context, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	dt, ok := r.s.devices[token]
	if !ok {
		return notification.ErrDeviceTokenNotFound
	}
	dt.Active = false
	dt.UpdatedAt = r.s.now()
	return nil
}
