package prescriptions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"helio/pharmacy/domain"
)

type SQLiteRepository struct {
	db *sqlx.DB
}

func NewSQLiteRepository(db *sqlx.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

type medicineRow struct {
	PrescriptionID int64  `db:"prescription_id"`
	Name           string `db:"name"`
}

func (r *SQLiteRepository) List(ctx context.Context) ([]domain.Prescription, error) {
	items := []domain.Prescription{}
	if err := r.db.SelectContext(ctx, &items, `SELECT id, patient, doctor, date, status FROM prescriptions ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list prescriptions: %w", err)
	}
	var rows []medicineRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT prescription_id, name FROM prescription_medicines ORDER BY prescription_id, position`); err != nil {
		return nil, fmt.Errorf("load prescription medicines: %w", err)
	}
	byID := make(map[int64][]string)
	for _, row := range rows {
		byID[row.PrescriptionID] = append(byID[row.PrescriptionID], row.Name)
	}
	for i := range items {
		items[i].Medicines = byID[items[i].ID]
		if items[i].Medicines == nil {
			items[i].Medicines = []string{}
		}
	}
	return items, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id int64) (domain.Prescription, error) {
	var p domain.Prescription
	err := r.db.GetContext(ctx, &p, `SELECT id, patient, doctor, date, status FROM prescriptions WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Prescription{}, ErrNotFound
	}
	if err != nil {
		return domain.Prescription{}, fmt.Errorf("get prescription %d: %w", id, err)
	}
	p.Medicines = []string{}
	if err := r.db.SelectContext(ctx, &p.Medicines, `SELECT name FROM prescription_medicines WHERE prescription_id = ? ORDER BY position`, id); err != nil {
		return domain.Prescription{}, fmt.Errorf("load prescription medicines: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, p domain.Prescription) (domain.Prescription, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.Prescription{}, fmt.Errorf("begin prescription insert: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `INSERT INTO prescriptions (patient, doctor, date, status) VALUES (?, ?, ?, ?)`,
		p.Patient, p.Doctor, p.Date, p.Status)
	if err != nil {
		return domain.Prescription{}, fmt.Errorf("insert prescription: %w", err)
	}
	if p.ID, err = res.LastInsertId(); err != nil {
		return domain.Prescription{}, fmt.Errorf("insert prescription: %w", err)
	}
	for i, name := range p.Medicines {
		if _, err := tx.ExecContext(ctx, `INSERT INTO prescription_medicines (prescription_id, position, name) VALUES (?, ?, ?)`, p.ID, i, name); err != nil {
			return domain.Prescription{}, fmt.Errorf("insert prescription medicine: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return domain.Prescription{}, fmt.Errorf("commit prescription: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) SetStatus(ctx context.Context, id int64, status domain.PrescriptionStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE prescriptions SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("update prescription %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
