package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"helio/pharmacy/internal/inventory"
)

var catalogHeader = []string{"name", "category", "manufacturer", "stock", "expiry_date", "batch_number", "description"}

// LoadMedicinesFile seeds the inventory from a CSV catalog. It does nothing
// when the inventory already holds medicines.
func LoadMedicinesFile(ctx context.Context, svc *inventory.Service, csvPath string, log zerolog.Logger) (int, error) {
	existing, err := svc.Count(ctx)
	if err != nil {
		return 0, err
	}
	if existing > 0 {
		log.Debug().Int("medicines", existing).Msg("inventory already populated, skipping catalog seed")
		return 0, nil
	}

	file, err := os.Open(csvPath)
	if err != nil {
		return 0, fmt.Errorf("open medicine catalog %s: %w", csvPath, err)
	}
	defer file.Close()

	return LoadMedicines(ctx, svc, file, log)
}

// LoadMedicines adds every valid catalog row to the inventory. Rows that
// fail validation are logged and skipped.
func LoadMedicines(ctx context.Context, svc *inventory.Service, r io.Reader, log zerolog.Logger) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read medicine header: %w", err)
	}
	cols, err := columnIndex(header)
	if err != nil {
		return 0, err
	}

	rows := 0
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			log.Warn().Err(err).Int("line", line).Msg("unable to read medicine row")
			continue
		}
		field := func(name string) string {
			i := cols[name]
			if i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		qty, err := strconv.ParseInt(field("stock"), 10, 64)
		if err != nil {
			log.Warn().Int("line", line).Str("stock", field("stock")).Msg("skipping medicine with invalid stock")
			continue
		}
		m, err := svc.Add(ctx, inventory.NewMedicine{
			Name:         field("name"),
			Category:     field("category"),
			Manufacturer: field("manufacturer"),
			Stock:        qty,
			ExpiryDate:   field("expiry_date"),
			BatchNumber:  field("batch_number"),
			Description:  field("description"),
		})
		if err != nil {
			if inventory.IsValidation(err) {
				log.Warn().Err(err).Int("line", line).Msg("skipping invalid medicine")
				continue
			}
			return rows, fmt.Errorf("insert medicine on line %d: %w", line, err)
		}
		log.Debug().Int64("medicine_id", m.ID).Str("name", m.Name).Msg("seeded medicine")
		rows++
	}

	log.Info().Int("rows", rows).Msg("seeded medicine catalog")
	return rows, nil
}

func columnIndex(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, want := range catalogHeader {
		if _, ok := cols[want]; !ok {
			return nil, fmt.Errorf("medicine catalog is missing column %q", want)
		}
	}
	return cols, nil
}
