package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"helio/pharmacy/domain"
)

const medicineColumns = `id, name, category, manufacturer, stock, expiry_date, batch_number, description, created_at, updated_at`

// SQLiteRepository stores medicines in the medicines table.
type SQLiteRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewSQLiteRepository(db *sqlx.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

func (r *SQLiteRepository) List(ctx context.Context) ([]domain.Medicine, error) {
	items := []domain.Medicine{}
	if err := r.db.SelectContext(ctx, &items, `SELECT `+medicineColumns+` FROM medicines ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list medicines: %w", err)
	}
	return items, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id int64) (domain.Medicine, error) {
	var m domain.Medicine
	err := r.db.GetContext(ctx, &m, `SELECT `+medicineColumns+` FROM medicines WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Medicine{}, ErrNotFound
	}
	if err != nil {
		return domain.Medicine{}, fmt.Errorf("get medicine %d: %w", id, err)
	}
	return m, nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, m domain.Medicine) (domain.Medicine, error) {
	now := r.now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now
	res, err := r.db.NamedExecContext(ctx, `INSERT INTO medicines (name, category, manufacturer, stock, expiry_date, batch_number, description, created_at, updated_at)
                VALUES (:name, :category, :manufacturer, :stock, :expiry_date, :batch_number, :description, :created_at, :updated_at)`, m)
	if err != nil {
		return domain.Medicine{}, fmt.Errorf("insert medicine: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Medicine{}, fmt.Errorf("insert medicine: %w", err)
	}
	m.ID = id
	return m, nil
}

func (r *SQLiteRepository) Replace(ctx context.Context, m domain.Medicine) (domain.Medicine, error) {
	current, err := r.Get(ctx, m.ID)
	if err != nil {
		return domain.Medicine{}, err
	}
	m.CreatedAt = current.CreatedAt
	m.UpdatedAt = r.now().UTC()
	_, err = r.db.NamedExecContext(ctx, `UPDATE medicines SET name = :name, category = :category, manufacturer = :manufacturer,
                stock = :stock, expiry_date = :expiry_date, batch_number = :batch_number, description = :description, updated_at = :updated_at
                WHERE id = :id`, m)
	if err != nil {
		return domain.Medicine{}, fmt.Errorf("update medicine %d: %w", m.ID, err)
	}
	return m, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM medicines WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete medicine %d: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM medicines`); err != nil {
		return 0, fmt.Errorf("count medicines: %w", err)
	}
	return n, nil
}
