package cache

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/njchilds90/gosymbol"

	"github.com/kmurari/springpend/internal/dynamo"
	"github.com/kmurari/springpend/internal/lagrange"
	"github.com/kmurari/springpend/internal/model"
)

// Store is a content-addressed flat-file cache. Equation sets live
// under equations/ as expression-tree JSON, trajectories under runs/
// as metadata plus a CSV state table. Setting Recompute makes every
// lookup miss, forcing fresh computation while still writing back.
type Store struct {
	baseDir   string
	Recompute bool
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	if err := os.MkdirAll(filepath.Join(s.baseDir, "equations"), 0755); err != nil {
		return err
	}
	return os.MkdirAll(filepath.Join(s.baseDir, "runs"), 0755)
}

type equationFile struct {
	Coords []string          `json:"coords"`
	Mass   [][]json.RawMessage `json:"mass"`
	Force  []json.RawMessage `json:"force"`
}

func encodeExpr(e gosymbol.Expr) (json.RawMessage, error) {
	str, err := gosymbol.ToJSON(e)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(str), nil
}

func decodeExpr(raw json.RawMessage) (gosymbol.Expr, error) {
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return gosymbol.FromJSON(m)
}

// SaveEquations writes a derived equation set under its fingerprint.
func (s *Store) SaveEquations(key EquationKey, eqs *lagrange.Equations) error {
	n := len(eqs.Coords)
	file := equationFile{
		Coords: make([]string, n),
		Mass:   make([][]json.RawMessage, n),
		Force:  make([]json.RawMessage, n),
	}

	for i, c := range eqs.Coords {
		file.Coords[i] = c.Name
	}
	for i := 0; i < n; i++ {
		file.Mass[i] = make([]json.RawMessage, n)
		for j := 0; j < n; j++ {
			raw, err := encodeExpr(eqs.M.Get(i, j))
			if err != nil {
				return fmt.Errorf("encode mass[%d][%d]: %w", i, j, err)
			}
			file.Mass[i][j] = raw
		}
		raw, err := encodeExpr(eqs.F[i])
		if err != nil {
			return fmt.Errorf("encode force[%d]: %w", i, err)
		}
		file.Force[i] = raw
	}

	b, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}

	path := filepath.Join(s.baseDir, "equations", key.Fingerprint()+".json")
	return os.WriteFile(path, b, 0644)
}

// LoadEquations returns the cached equation set for key, reporting a
// miss when absent, invalid, or when Recompute is set. A corrupt file
// is treated as a miss rather than an error so a damaged cache never
// blocks a derivation.
func (s *Store) LoadEquations(key EquationKey) (*lagrange.Equations, bool) {
	if s.Recompute {
		return nil, false
	}

	path := filepath.Join(s.baseDir, "equations", key.Fingerprint()+".json")
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var file equationFile
	if err := json.Unmarshal(b, &file); err != nil {
		return nil, false
	}

	n := len(file.Coords)
	if n == 0 || len(file.Mass) != n || len(file.Force) != n {
		return nil, false
	}

	eqs := &lagrange.Equations{
		Coords: make([]lagrange.Coord, n),
		M:      gosymbol.NewMatrix(n, n),
		F:      make([]gosymbol.Expr, n),
	}
	for i, name := range file.Coords {
		eqs.Coords[i] = lagrange.Coord{Name: name}
	}
	for i := 0; i < n; i++ {
		if len(file.Mass[i]) != n {
			return nil, false
		}
		for j := 0; j < n; j++ {
			e, err := decodeExpr(file.Mass[i][j])
			if err != nil {
				return nil, false
			}
			eqs.M.Set(i, j, e)
		}
		e, err := decodeExpr(file.Force[i])
		if err != nil {
			return nil, false
		}
		eqs.F[i] = e
	}

	return eqs, true
}

type RunMetadata struct {
	ID          string       `json:"id"`
	Model       string       `json:"model"`
	Timestamp   time.Time    `json:"timestamp"`
	Params      model.Params `json:"params"`
	Dt          float64      `json:"dt"`
	Duration    float64      `json:"duration"`
	Integrator  string       `json:"integrator"`
	EnergyDrift float64      `json:"energy_drift"`
	StepsTaken  int          `json:"steps_taken"`
}

// SaveRun writes a trajectory under its fingerprint and returns the run ID.
func (s *Store) SaveRun(key RunKey, result *dynamo.Result) (string, error) {
	runID := key.Fingerprint()
	runDir := filepath.Join(s.baseDir, "runs", runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Model:       key.Model,
		Timestamp:   time.Now(),
		Params:      key.Params,
		Dt:          key.Dt,
		Duration:    key.Duration,
		Integrator:  key.Integrator,
		EnergyDrift: result.EnergyDrift,
		StepsTaken:  result.StepsTaken,
	}

	metaPath := filepath.Join(runDir, "metadata.json")
	metaFile, err := os.Create(metaPath)
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvPath := filepath.Join(runDir, "states.csv")
	csvFile, err := os.Create(csvPath)
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if len(result.States) == 0 {
		return runID, nil
	}

	header := []string{"time"}
	for i := range result.States[0] {
		header = append(header, fmt.Sprintf("x%d", i))
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	for i := range result.States {
		row := []string{strconv.FormatFloat(result.Times[i], 'g', 17, 64)}
		for _, val := range result.States[i] {
			row = append(row, strconv.FormatFloat(val, 'g', 17, 64))
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

// LoadRun returns the cached trajectory for key, reporting a miss when
// absent or when Recompute is set.
func (s *Store) LoadRun(key RunKey) (*dynamo.Result, *RunMetadata, bool) {
	if s.Recompute {
		return nil, nil, false
	}

	result, meta, err := s.LoadRunByID(key.Fingerprint())
	if err != nil || len(result.States) == 0 {
		return nil, nil, false
	}
	return result, meta, true
}

// LoadRunByID retrieves a stored trajectory by its run ID, for
// commands that operate on past runs rather than keys.
func (s *Store) LoadRunByID(runID string) (*dynamo.Result, *RunMetadata, error) {
	meta, err := s.loadMetadata(runID)
	if err != nil {
		return nil, nil, err
	}

	states, times, err := s.loadStates(runID)
	if err != nil {
		return nil, nil, err
	}

	result := &dynamo.Result{
		States:      make([]dynamo.State, len(states)),
		Times:       times,
		EnergyDrift: meta.EnergyDrift,
		StepsTaken:  meta.StepsTaken,
	}
	for i, st := range states {
		result.States[i] = dynamo.State(st)
	}
	return result, meta, nil
}

func (s *Store) loadMetadata(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, "runs", runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) loadStates(runID string) ([][]float64, []float64, error) {
	csvPath := filepath.Join(s.baseDir, "runs", runID, "states.csv")
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	if len(records) < 2 {
		return [][]float64{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	states := make([][]float64, 0, len(records)-1)

	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) < 2 {
			continue
		}

		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: %w", i, err)
		}

		state := make([]float64, 0, len(record)-1)
		for j := 1; j < len(record); j++ {
			val, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("row %d col %d: %w", i, j, err)
			}
			state = append(state, val)
		}

		times = append(times, t)
		states = append(states, state)
	}

	return states, times, nil
}

// List returns metadata for every cached run, newest first left to the caller.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(filepath.Join(s.baseDir, "runs"))
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.loadMetadata(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	return runs, nil
}
