package repository

import (
	"context"
	"time"

	"uleaf-admin/internal/db"
	"uleaf-admin/internal/domain"
)

// ActivityLogRepository stores the admin audit trail in Postgres.
type ActivityLogRepository struct {
	DB *db.Postgres
}

func (r ActivityLogRepository) Record(ctx context.Context, entry domain.ActivityLog) error {
	_, err := r.Create(ctx, entry)
	return err
}

func (r ActivityLogRepository) Create(ctx context.Context, in domain.ActivityLog) (int64, error) {
	if in.LoggedAt.IsZero() {
		in.LoggedAt = time.Now().UTC()
	}
	if in.Type == "" {
		in.Type = domain.LogInfo
	}
	var id int64
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO admin_activity_logs (title, message, actor, type, logged_at, created_at)
		VALUES ($1,$2,$3,$4,$5, now())
		RETURNING id
	`, in.Title, in.Message, in.Actor, string(in.Type), in.LoggedAt).Scan(&id)
	return id, err
}

func (r ActivityLogRepository) List(ctx context.Context, actor string, limit int) ([]domain.ActivityLog, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, title, message, actor, type, logged_at
		FROM admin_activity_logs
		WHERE ($1 = '' OR actor = $1)
		ORDER BY logged_at DESC, id DESC
		LIMIT $2
	`, actor, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ActivityLog
	for rows.Next() {
		var l domain.ActivityLog
		var typ string
		if err := rows.Scan(&l.ID, &l.Title, &l.Message, &l.Actor, &typ, &l.LoggedAt); err != nil {
			return nil, err
		}
		l.Type = domain.ActivityLogType(typ)
		out = append(out, l)
	}
	return out, rows.Err()
}
