// Package calibdb persists calibration runs to SQLite so converged
// coefficients and their quality numbers can be compared across
// sessions and scanners.
package calibdb

import (
	"database/sql"
	_ "embed"
	"log"

	_ "modernc.org/sqlite"
)

type CalibDB struct {
	*sql.DB
}

// schema.sql defines the calibration_runs and calibration_run_surfaces
// tables.
//
//go:embed schema.sql
var schemaSQL string

// NewCalibDB opens (creating if needed) the calibration database at path
// and applies the schema.
func NewCalibDB(path string) (*CalibDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, err
	}

	log.Println("initialized calibration database schema")

	return &CalibDB{db}, nil
}
