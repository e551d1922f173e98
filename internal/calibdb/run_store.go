package calibdb

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run is one persisted calibration run: the inputs that shaped it, the
// converged coefficients, and the optimizer's own account of the search.
type Run struct {
	RunID                string          `json:"run_id"`
	CreatedAt            int64           `json:"created_at"`
	PhantomRadius        float64         `json:"phantom_radius"`
	AngleSteps           int             `json:"angle_steps"`
	BandWidth            float64         `json:"band_width"`
	RandomSeed           int64           `json:"random_seed"`
	SurfaceCount         int             `json:"surface_count"`
	SurfacePathsJSON     json.RawMessage `json:"surface_paths_json,omitempty"`
	CoefficientsJSON     json.RawMessage `json:"coefficients_json"`
	FinalLoss            float64         `json:"final_loss"`
	Status               string          `json:"status"`
	Iterations           int             `json:"iterations"`
	Evaluations          int             `json:"evaluations"`
	UndefinedEvaluations int             `json:"undefined_evaluations"`
}

// SurfaceStats records how measurable one scan was at the converged
// coefficients.
type SurfaceStats struct {
	RunID         string `json:"run_id"`
	SurfaceIndex  int    `json:"surface_index"`
	SurfacePath   string `json:"surface_path"`
	PointCount    int    `json:"point_count"`
	ValidSections int    `json:"valid_sections"`
	TotalSections int    `json:"total_sections"`
}

// RunStore provides persistence for calibration runs.
type RunStore struct {
	db *sql.DB
}

// NewRunStore creates a RunStore over an open calibration database.
func NewRunStore(db *sql.DB) *RunStore {
	return &RunStore{db: db}
}

// Insert persists a run. If RunID is empty a UUID is generated; if
// CreatedAt is zero the current time is used.
func (s *RunStore) Insert(run *Run) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = time.Now().UnixNano()
	}

	var pathsStr interface{}
	if len(run.SurfacePathsJSON) > 0 {
		pathsStr = string(run.SurfacePathsJSON)
	}

	_, err := s.db.Exec(`
		INSERT INTO calibration_runs (
			run_id, created_at, phantom_radius, angle_steps, band_width,
			random_seed, surface_count, surface_paths_json,
			coefficients_json, final_loss, status,
			iterations, evaluations, undefined_evaluations
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.CreatedAt, run.PhantomRadius, run.AngleSteps, run.BandWidth,
		run.RandomSeed, run.SurfaceCount, pathsStr,
		string(run.CoefficientsJSON), run.FinalLoss, run.Status,
		run.Iterations, run.Evaluations, run.UndefinedEvaluations,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// InsertSurfaceStats persists the per-surface section statistics of a run.
func (s *RunStore) InsertSurfaceStats(stats []SurfaceStats) error {
	for _, st := range stats {
		_, err := s.db.Exec(`
			INSERT INTO calibration_run_surfaces (
				run_id, surface_index, surface_path,
				point_count, valid_sections, total_sections
			) VALUES (?, ?, ?, ?, ?, ?)`,
			st.RunID, st.SurfaceIndex, st.SurfacePath,
			st.PointCount, st.ValidSections, st.TotalSections,
		)
		if err != nil {
			return fmt.Errorf("insert surface stats %d: %w", st.SurfaceIndex, err)
		}
	}
	return nil
}

// Get returns one run by ID.
func (s *RunStore) Get(runID string) (*Run, error) {
	row := s.db.QueryRow(`
		SELECT run_id, created_at, phantom_radius, angle_steps, band_width,
		       random_seed, surface_count, surface_paths_json,
		       coefficients_json, final_loss, status,
		       iterations, evaluations, undefined_evaluations
		FROM calibration_runs WHERE run_id = ?`, runID)
	return scanRun(row)
}

// List returns the most recent runs, newest first.
func (s *RunStore) List(limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT run_id, created_at, phantom_radius, angle_steps, band_width,
		       random_seed, surface_count, surface_paths_json,
		       coefficients_json, final_loss, status,
		       iterations, evaluations, undefined_evaluations
		FROM calibration_runs
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// SurfaceStatsFor returns the per-surface statistics for a run in
// surface order.
func (s *RunStore) SurfaceStatsFor(runID string) ([]SurfaceStats, error) {
	rows, err := s.db.Query(`
		SELECT run_id, surface_index, surface_path,
		       point_count, valid_sections, total_sections
		FROM calibration_run_surfaces
		WHERE run_id = ?
		ORDER BY surface_index`, runID)
	if err != nil {
		return nil, fmt.Errorf("query surface stats: %w", err)
	}
	defer rows.Close()

	var stats []SurfaceStats
	for rows.Next() {
		var st SurfaceStats
		var path sql.NullString
		if err := rows.Scan(&st.RunID, &st.SurfaceIndex, &path,
			&st.PointCount, &st.ValidSections, &st.TotalSections); err != nil {
			return nil, fmt.Errorf("scan surface stats: %w", err)
		}
		st.SurfacePath = path.String
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*Run, error) {
	var r Run
	var paths sql.NullString
	var coeffs string
	err := row.Scan(&r.RunID, &r.CreatedAt, &r.PhantomRadius, &r.AngleSteps, &r.BandWidth,
		&r.RandomSeed, &r.SurfaceCount, &paths,
		&coeffs, &r.FinalLoss, &r.Status,
		&r.Iterations, &r.Evaluations, &r.UndefinedEvaluations)
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}
	if paths.Valid {
		r.SurfacePathsJSON = json.RawMessage(paths.String)
	}
	r.CoefficientsJSON = json.RawMessage(coeffs)
	return &r, nil
}
