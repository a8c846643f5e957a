package queries

import (
	"context"
	"database/sql"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListStaleOrdersQueryHandler reads stuck orders straight from the orders
// table. Orders are only surfaced, never reassigned.
type ListStaleOrdersQueryHandler struct {
	db *gorm.DB
}

func NewListStaleOrdersQueryHandler(db *gorm.DB) ListStaleOrdersQueryHandler {
	return ListStaleOrdersQueryHandler{db: db}
}

// Handle returns the stale orders, longest silent first.
func (h ListStaleOrdersQueryHandler) Handle(
	ctx context.Context,
	query ListStaleOrdersQuery,
) ([]ListStaleOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	cutoff := now.Add(-query.Threshold())
	active := []string{order.Accepted.String(), order.PickedUp.String()}

	stale := make([]ListStaleOrdersQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			partner_id,
			status,
			accepted_at,
			last_location_update
		FROM orders
		WHERE status IN ?
			AND (
				(last_location_update IS NULL AND accepted_at < ?)
				OR last_location_update < ?
			)
		ORDER BY COALESCE(last_location_update, accepted_at), id
	`, active, cutoff, cutoff).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, partnerID uuid.UUID
			status        string
			acceptedAt    sql.NullTime
			lastUpdate    sql.NullTime
		)
		if err = rows.Scan(&id, &partnerID, &status, &acceptedAt, &lastUpdate); err != nil {
			return nil, err
		}

		orderID, idErr := kernel.UUIDFromGoogle(id)
		if idErr != nil {
			return nil, idErr
		}
		partner, idErr := kernel.UUIDFromGoogle(partnerID)
		if idErr != nil {
			return nil, idErr
		}

		resp := ListStaleOrdersQueryResponse{
			ID:         orderID,
			PartnerID:  partner,
			Status:     status,
			AcceptedAt: acceptedAt.Time.UTC(),
		}
		since := resp.AcceptedAt
		if lastUpdate.Valid {
			last := lastUpdate.Time.UTC()
			resp.LastLocationUpdate = &last
			since = last
		}
		resp.Age = max(now.Sub(since), 0)

		stale = append(stale, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return stale, nil
}
