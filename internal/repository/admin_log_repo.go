package repository

import (
	"context"

	"creatememe/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AdminLogRepository persists the admin audit trail.
type AdminLogRepository struct {
	db *pgxpool.Pool
}

func NewAdminLogRepository(db *pgxpool.Pool) *AdminLogRepository {
	return &AdminLogRepository{db: db}
}

func (r *AdminLogRepository) Create(ctx context.Context, l *domain.AdminLog) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO admin_logs (admin_id, action, target_id, details)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		l.AdminID, l.Action, l.TargetID, l.Details,
	).Scan(&l.ID, &l.CreatedAt)
}

// List returns the newest entries first.
func (r *AdminLogRepository) List(ctx context.Context, page domain.Page) ([]domain.AdminLog, int64, error) {
	limit, offset := clampPage(page.Limit, page.Offset)
	rows, err := r.db.Query(ctx, `
		SELECT id, admin_id, action, target_id, details, created_at, COUNT(*) OVER()
		FROM admin_logs
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []domain.AdminLog{}
	var total int64
	for rows.Next() {
		var l domain.AdminLog
		if err := rows.Scan(&l.ID, &l.AdminID, &l.Action, &l.TargetID, &l.Details, &l.CreatedAt, &total); err != nil {
			return nil, 0, err
		}
		out = append(out, l)
	}
	return out, total, rows.Err()
}
