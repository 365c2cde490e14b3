package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/fekuna/omnipos-salesinsight-service/internal/action/dto"
	"github.com/fekuna/omnipos-salesinsight-service/internal/apperror"
	"github.com/fekuna/omnipos-salesinsight-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, a *model.Action) error {
	query := `
        INSERT INTO sales_actions (id, customer_id, description, created_by, status, date_accepted, review_date, updated_at)
        VALUES (:id, :customer_id, :description, :created_by, :status, :date_accepted, :review_date, :updated_at)
    `
	_, err := r.DB.NamedExecContext(ctx, query, a)
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Action, error) {
	var a model.Action
	query := `SELECT * FROM sales_actions WHERE id = $1 LIMIT 1`
	err := r.DB.GetContext(ctx, &a, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.ActionFilters) ([]model.Action, error) {
	actions := []model.Action{}

	conditions := []string{}
	args := map[string]interface{}{}

	if f != nil {
		if f.CustomerID != "" {
			conditions = append(conditions, "customer_id = :customer_id")
			args["customer_id"] = f.CustomerID
		}
		if f.Status != "" {
			conditions = append(conditions, "status = :status")
			args["status"] = string(f.Status)
		}
		if f.OverdueAt != nil {
			conditions = append(conditions, "review_date < :overdue_at AND status <> :complete")
			args["overdue_at"] = *f.OverdueAt
			args["complete"] = string(model.ActionComplete)
		}
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}
	query := "SELECT * FROM sales_actions" + whereClause + " ORDER BY date_accepted ASC, id ASC"

	q, bound, err := sqlx.Named(query, args)
	if err != nil {
		return nil, err
	}
	if err := r.DB.SelectContext(ctx, &actions, r.DB.Rebind(q), bound...); err != nil {
		return nil, err
	}
	return actions, nil
}

func (r *PGRepository) UpdateStatus(ctx context.Context, id string, status model.ActionStatus, updatedAt time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE sales_actions SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), updatedAt, id,
	)
	if err != nil {
		return err
	}
	return requireAffected(res, id)
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM sales_actions WHERE id = $1", id)
	if err != nil {
		return err
	}
	return requireAffected(res, id)
}

func (r *PGRepository) CountByStatus(ctx context.Context) (map[model.ActionStatus]int, error) {
	var rows []struct {
		Status model.ActionStatus `db:"status"`
		N      int                `db:"n"`
	}
	if err := r.DB.SelectContext(ctx, &rows, `SELECT status, count(*) AS n FROM sales_actions GROUP BY status`); err != nil {
		return nil, err
	}

	counts := make(map[model.ActionStatus]int, len(model.ActionStatuses))
	for _, s := range model.ActionStatuses {
		counts[s] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.N
	}
	return counts, nil
}

func requireAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.NewNotFound("action", id)
	}
	return nil
}
