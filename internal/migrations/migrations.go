package migrations

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Run creates the database schema required by the pharmacy backend.
func Run(db *sqlx.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS medicines (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            category TEXT NOT NULL DEFAULT '',
            manufacturer TEXT NOT NULL DEFAULT '',
            stock INTEGER NOT NULL CHECK (stock >= 0),
            expiry_date TEXT NOT NULL,
            batch_number TEXT NOT NULL DEFAULT '',
            description TEXT NOT NULL DEFAULT '',
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS patient_requests (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            patient_id TEXT NOT NULL,
            patient_name TEXT NOT NULL,
            contact_number TEXT NOT NULL DEFAULT '',
            email TEXT NOT NULL DEFAULT '',
            request_date TEXT NOT NULL,
            status TEXT NOT NULL,
            urgency TEXT NOT NULL,
            notes TEXT NOT NULL DEFAULT '',
            completed_at DATETIME,
            updated_at DATETIME NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS requested_medicines (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            request_id INTEGER NOT NULL,
            medicine_name TEXT NOT NULL DEFAULT '',
            image_url TEXT NOT NULL DEFAULT '',
            description TEXT NOT NULL DEFAULT '',
            strength TEXT NOT NULL DEFAULT '',
            manufacturer TEXT NOT NULL DEFAULT '',
            quantity INTEGER NOT NULL,
            notes TEXT NOT NULL DEFAULT '',
            found_in_stock BOOLEAN NOT NULL DEFAULT 0,
            alternative_available BOOLEAN NOT NULL DEFAULT 0,
            estimated_cost TEXT,
            FOREIGN KEY(request_id) REFERENCES patient_requests(id)
        );`,
		`CREATE TABLE IF NOT EXISTS prescriptions (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            patient TEXT NOT NULL,
            doctor TEXT NOT NULL,
            date TEXT NOT NULL,
            status TEXT NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS prescription_medicines (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            prescription_id INTEGER NOT NULL,
            position INTEGER NOT NULL,
            name TEXT NOT NULL,
            FOREIGN KEY(prescription_id) REFERENCES prescriptions(id)
        );`,
		`CREATE INDEX IF NOT EXISTS idx_requested_medicines_request ON requested_medicines(request_id);`,
		`CREATE INDEX IF NOT EXISTS idx_prescription_medicines_prescription ON prescription_medicines(prescription_id);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
