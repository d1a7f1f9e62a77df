package requests

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"helio/pharmacy/domain"
)

const (
	requestColumns = `id, patient_id, patient_name, contact_number, email, request_date, status, urgency, notes, completed_at, updated_at`
	lineColumns    = `id, request_id, medicine_name, image_url, description, strength, manufacturer, quantity, notes, found_in_stock, alternative_available, estimated_cost`
)

type SQLiteRepository struct {
	db *sqlx.DB
}

func NewSQLiteRepository(db *sqlx.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) List(ctx context.Context) ([]domain.PatientRequest, error) {
	reqs := []domain.PatientRequest{}
	if err := r.db.SelectContext(ctx, &reqs, `SELECT `+requestColumns+` FROM patient_requests ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list patient requests: %w", err)
	}
	if len(reqs) == 0 {
		return reqs, nil
	}

	ids := make([]int64, len(reqs))
	for i, req := range reqs {
		ids[i] = req.ID
	}
	query, args, err := sqlx.In(`SELECT `+lineColumns+` FROM requested_medicines WHERE request_id IN (?) ORDER BY id`, ids)
	if err != nil {
		return nil, fmt.Errorf("prepare requested medicines query: %w", err)
	}
	var lines []domain.RequestedMedicine
	if err := r.db.SelectContext(ctx, &lines, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("load requested medicines: %w", err)
	}
	byRequest := make(map[int64][]domain.RequestedMedicine)
	for _, line := range lines {
		byRequest[line.RequestID] = append(byRequest[line.RequestID], line)
	}
	for i := range reqs {
		reqs[i].Medicines = byRequest[reqs[i].ID]
		if reqs[i].Medicines == nil {
			reqs[i].Medicines = []domain.RequestedMedicine{}
		}
	}
	return reqs, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id int64) (domain.PatientRequest, error) {
	var req domain.PatientRequest
	err := r.db.GetContext(ctx, &req, `SELECT `+requestColumns+` FROM patient_requests WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.PatientRequest{}, ErrNotFound
	}
	if err != nil {
		return domain.PatientRequest{}, fmt.Errorf("get patient request %d: %w", id, err)
	}
	req.Medicines = []domain.RequestedMedicine{}
	if err := r.db.SelectContext(ctx, &req.Medicines, `SELECT `+lineColumns+` FROM requested_medicines WHERE request_id = ? ORDER BY id`, id); err != nil {
		return domain.PatientRequest{}, fmt.Errorf("load requested medicines: %w", err)
	}
	return req, nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, req domain.PatientRequest) (domain.PatientRequest, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.PatientRequest{}, fmt.Errorf("begin request insert: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.NamedExecContext(ctx, `INSERT INTO patient_requests (patient_id, patient_name, contact_number, email, request_date, status, urgency, notes, completed_at, updated_at)
                VALUES (:patient_id, :patient_name, :contact_number, :email, :request_date, :status, :urgency, :notes, :completed_at, :updated_at)`, req)
	if err != nil {
		return domain.PatientRequest{}, fmt.Errorf("insert patient request: %w", err)
	}
	if req.ID, err = res.LastInsertId(); err != nil {
		return domain.PatientRequest{}, fmt.Errorf("insert patient request: %w", err)
	}

	lines := make([]domain.RequestedMedicine, len(req.Medicines))
	for i, line := range req.Medicines {
		line.RequestID = req.ID
		res, err := tx.NamedExecContext(ctx, `INSERT INTO requested_medicines (request_id, medicine_name, image_url, description, strength, manufacturer, quantity, notes, found_in_stock, alternative_available, estimated_cost)
                VALUES (:request_id, :medicine_name, :image_url, :description, :strength, :manufacturer, :quantity, :notes, :found_in_stock, :alternative_available, :estimated_cost)`, line)
		if err != nil {
			return domain.PatientRequest{}, fmt.Errorf("insert requested medicine: %w", err)
		}
		if line.ID, err = res.LastInsertId(); err != nil {
			return domain.PatientRequest{}, fmt.Errorf("insert requested medicine: %w", err)
		}
		lines[i] = line
	}
	req.Medicines = lines

	if err := tx.Commit(); err != nil {
		return domain.PatientRequest{}, fmt.Errorf("commit patient request: %w", err)
	}
	return req, nil
}

func (r *SQLiteRepository) SetStatus(ctx context.Context, id int64, status domain.RequestStatus, completedAt *time.Time, updatedAt time.Time) (domain.PatientRequest, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE patient_requests SET status = ?, completed_at = ?, updated_at = ? WHERE id = ?`,
		status, completedAt, updatedAt, id)
	if err != nil {
		return domain.PatientRequest{}, fmt.Errorf("update patient request %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.PatientRequest{}, ErrNotFound
	}
	return r.Get(ctx, id)
}
