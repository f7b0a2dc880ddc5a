package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/medrecruit/onboard-api/internal/model"
	"github.com/medrecruit/onboard-api/internal/repository"
)

type adminActionRepository struct {
	BaseRepository
}

func NewAdminActionRepository(base BaseRepository) repository.AdminActionRepository {
	return &adminActionRepository{base}
}

const insertAdminActionQuery = `
	INSERT INTO admin_actions (
		id, admin_id, target_id, target_type, action, reason, metadata, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

func (r *adminActionRepository) Create(ctx context.Context, action *model.AdminAction) error {
	prepareAdminAction(action)
	_, err := r.db.ExecContext(ctx, insertAdminActionQuery,
		action.ID,
		action.AdminID,
		action.TargetID,
		action.TargetType,
		action.Action,
		action.Reason,
		action.Metadata,
		action.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create admin action: %w", err)
	}
	return nil
}

// createAdminActionTx writes the audit row inside an open transaction so a
// status change and its audit record commit together.
func createAdminActionTx(ctx context.Context, tx *sqlx.Tx, action *model.AdminAction) error {
	prepareAdminAction(action)
	_, err := tx.ExecContext(ctx, insertAdminActionQuery,
		action.ID,
		action.AdminID,
		action.TargetID,
		action.TargetType,
		action.Action,
		action.Reason,
		action.Metadata,
		action.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create admin action: %w", err)
	}
	return nil
}

func prepareAdminAction(action *model.AdminAction) {
	if action.ID == uuid.Nil {
		action.ID = uuid.New()
	}
	if action.CreatedAt.IsZero() {
		action.CreatedAt = time.Now()
	}
}

func (r *adminActionRepository) List(ctx context.Context, filters *model.AdminActionFilters) ([]*model.AdminAction, int64, error) {
	filters.Normalize()

	where := " WHERE 1=1"
	args := []interface{}{}

	if filters.AdminID != uuid.Nil {
		args = append(args, filters.AdminID)
		where += fmt.Sprintf(" AND admin_id = $%d", len(args))
	}
	if filters.TargetID != uuid.Nil {
		args = append(args, filters.TargetID)
		where += fmt.Sprintf(" AND target_id = $%d", len(args))
	}
	if filters.Action != "" {
		args = append(args, filters.Action)
		where += fmt.Sprintf(" AND action = $%d", len(args))
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM admin_actions"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count admin actions: %w", err)
	}

	args = append(args, filters.PageSize, filters.Offset())
	query := fmt.Sprintf(
		"SELECT * FROM admin_actions%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		where, len(args)-1, len(args),
	)

	actions := []*model.AdminAction{}
	if err := r.db.SelectContext(ctx, &actions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list admin actions: %w", err)
	}

	return actions, total, nil
}
