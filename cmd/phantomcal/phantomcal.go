// Command phantomcal estimates OCT field-distortion correction
// coefficients from scans of a spherical reference phantom. It loads
// pre-extracted surface point clouds, minimizes the sphericity loss
// with Nelder-Mead, persists the run to SQLite and optionally renders
// diagnostic charts.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/MaDolling/OCT-Field-Distortion-Correction/internal/calib"
	"github.com/MaDolling/OCT-Field-Distortion-Correction/internal/calibdb"
	"github.com/MaDolling/OCT-Field-Distortion-Correction/internal/config"
	"github.com/MaDolling/OCT-Field-Distortion-Correction/internal/phantom"
	"github.com/MaDolling/OCT-Field-Distortion-Correction/internal/report"
)

var (
	surfaceGlob = flag.String("surfaces", "", "Glob of surface files (.xyz text or .json), one per phantom scan")
	radius      = flag.Float64("radius", 0, "True phantom radius (same length units as the scans)")
	configPath  = flag.String("config", "", "Optional JSON tuning file")
	angleSteps  = flag.Int("angle-steps", 0, "Angular sections per surface (overrides config)")
	bandWidth   = flag.Float64("band-width", 0, "Section band width (overrides config)")
	maxIter     = flag.Int("max-iter", 0, "Maximum optimizer iterations (overrides config)")
	maxEvals    = flag.Int("max-evals", 0, "Maximum loss evaluations (overrides config)")
	funcTol     = flag.Float64("ftol", 0, "Function-value convergence tolerance (overrides config)")
	seed        = flag.Int64("seed", 0, "Angle-jitter random seed; 0 means time-seeded (overrides config)")
	dbFile      = flag.String("db", "calibration.db", "Path to the SQLite run database; empty disables persistence")
	reportDir   = flag.String("report-dir", "", "Directory for diagnostic charts; empty disables rendering")
	jsonOut     = flag.Bool("json-out", false, "Print the run record as JSON on stdout")
)

// runOutput is the -json-out schema.
type runOutput struct {
	RunID                string             `json:"run_id,omitempty"`
	Coefficients         calib.Coefficients `json:"coefficients"`
	FinalLoss            float64            `json:"final_loss"`
	Status               string             `json:"status"`
	Iterations           int                `json:"iterations"`
	Evaluations          int                `json:"evaluations"`
	UndefinedEvaluations int                `json:"undefined_evaluations"`
	SurfaceCount         int                `json:"surface_count"`
}

func main() {
	flag.Parse()

	if *surfaceGlob == "" {
		log.Fatal("missing -surfaces glob")
	}
	if !(*radius > 0) {
		log.Fatal("missing or non-positive -radius")
	}

	cfg := config.EmptyCalibrationConfig()
	if *configPath != "" {
		loaded, err := config.LoadCalibrationConfig(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		cfg = loaded
		log.Printf("loaded tuning config from %s", *configPath)
	}

	steps := pickInt(*angleSteps, cfg.GetAngleSteps())
	band := pickFloat(*bandWidth, cfg.GetBandWidth())
	iterations := pickInt(*maxIter, cfg.GetMaxIterations())
	evaluations := pickInt(*maxEvals, cfg.GetMaxEvaluations())
	tolerance := pickFloat(*funcTol, cfg.GetFuncTolerance())
	jitterSeed := *seed
	if jitterSeed == 0 {
		jitterSeed = cfg.GetRandomSeed()
	}

	surfaces, paths, err := phantom.LoadSurfaces(*surfaceGlob)
	if err != nil {
		log.Fatalf("load surfaces: %v", err)
	}
	for i, s := range surfaces {
		valid := len(s.DropInvalid())
		log.Printf("surface %d: %s (%d points, %d valid)", i, paths[i], len(s), valid)
	}

	loss := calib.NewLoss(surfaces, *radius, steps, band)
	if jitterSeed != 0 {
		loss.Rand = rand.New(rand.NewSource(jitterSeed))
		log.Printf("angle jitter seeded with %d", jitterSeed)
	}

	log.Printf("calibrating: radius=%g steps=%d band=%g max-iter=%d max-evals=%d ftol=%g",
		*radius, steps, band, iterations, evaluations, tolerance)

	result, err := calib.Calibrate(loss, calib.Config{
		FuncTolerance:  tolerance,
		ConvergeWindow: cfg.GetConvergeWindow(),
		MaxIterations:  iterations,
		MaxEvaluations: evaluations,
	})
	if err != nil {
		log.Fatalf("calibration: %v", err)
	}

	log.Printf("finished: status=%s loss=%g iterations=%d evaluations=%d undefined=%d",
		result.Status, result.Loss, result.Iterations, result.Evaluations, result.UndefinedEvaluations)
	if result.Status != calib.Converged {
		log.Printf("warning: optimizer did not converge; best coefficients so far are reported")
	}

	// Section statistics and charts come from one final radius matrix at
	// the converged coefficients.
	matrix := loss.RadiusMatrix(result.Coefficients)

	out := runOutput{
		Coefficients:         result.Coefficients,
		FinalLoss:            result.Loss,
		Status:               result.Status.String(),
		Iterations:           result.Iterations,
		Evaluations:          result.Evaluations,
		UndefinedEvaluations: result.UndefinedEvaluations,
		SurfaceCount:         len(surfaces),
	}

	if *dbFile != "" {
		runID, err := persistRun(&out, cfg, paths, surfaces, matrix, band, steps, jitterSeed)
		if err != nil {
			log.Fatalf("persist run: %v", err)
		}
		out.RunID = runID
		log.Printf("run %s stored in %s", runID, *dbFile)
	}

	if *reportDir != "" {
		if err := renderReports(matrix, out.RunID); err != nil {
			log.Fatalf("render reports: %v", err)
		}
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			log.Fatalf("encode result: %v", err)
		}
	}
}

func persistRun(out *runOutput, cfg *config.CalibrationConfig, paths []string,
	surfaces []phantom.Surface, matrix [][]float64, band float64, steps int, jitterSeed int64,
) (string, error) {
	db, err := calibdb.NewCalibDB(*dbFile)
	if err != nil {
		return "", err
	}
	defer db.Close()

	coeffsJSON, err := json.Marshal(out.Coefficients)
	if err != nil {
		return "", err
	}
	pathsJSON, err := json.Marshal(paths)
	if err != nil {
		return "", err
	}

	store := calibdb.NewRunStore(db.DB)
	run := &calibdb.Run{
		PhantomRadius:        *radius,
		AngleSteps:           steps,
		BandWidth:            band,
		RandomSeed:           jitterSeed,
		SurfaceCount:         len(surfaces),
		SurfacePathsJSON:     pathsJSON,
		CoefficientsJSON:     coeffsJSON,
		FinalLoss:            out.FinalLoss,
		Status:               out.Status,
		Iterations:           out.Iterations,
		Evaluations:          out.Evaluations,
		UndefinedEvaluations: out.UndefinedEvaluations,
	}
	if err := store.Insert(run); err != nil {
		return "", err
	}

	stats := make([]calibdb.SurfaceStats, len(matrix))
	for i, row := range matrix {
		valid := 0
		for _, r := range row {
			if !math.IsNaN(r) {
				valid++
			}
		}
		stats[i] = calibdb.SurfaceStats{
			RunID:         run.RunID,
			SurfaceIndex:  i,
			SurfacePath:   paths[i],
			PointCount:    len(surfaces[i]),
			ValidSections: valid,
			TotalSections: len(row),
		}
	}
	if err := store.InsertSurfaceStats(stats); err != nil {
		return "", err
	}
	return run.RunID, nil
}

func renderReports(matrix [][]float64, runID string) error {
	if err := os.MkdirAll(*reportDir, 0o755); err != nil {
		return err
	}
	pngPath := filepath.Join(*reportDir, "profile.png")
	if err := report.SaveProfilePlot(pngPath, matrix, *radius); err != nil {
		return err
	}
	log.Printf("wrote %s", pngPath)

	htmlPath := filepath.Join(*reportDir, "report.html")
	subtitle := fmt.Sprintf("%d surfaces, true radius %g", len(matrix), *radius)
	if runID != "" {
		subtitle += ", run " + runID
	}
	if err := report.SaveHTMLReport(htmlPath, matrix, *radius, subtitle); err != nil {
		return err
	}
	log.Printf("wrote %s", htmlPath)
	return nil
}

// pickInt prefers a positive flag override to the config value.
func pickInt(flagVal, cfgVal int) int {
	if flagVal > 0 {
		return flagVal
	}
	return cfgVal
}

func pickFloat(flagVal, cfgVal float64) float64 {
	if flagVal > 0 {
		return flagVal
	}
	return cfgVal
}
