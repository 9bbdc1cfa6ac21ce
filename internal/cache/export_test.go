package cache

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/kmurari/springpend/internal/dynamo"
)

func sampleResult() *dynamo.Result {
	return &dynamo.Result{
		States:      []dynamo.State{{0.1, 0.2}, {0.3, 0.4}},
		Times:       []float64{0.0, 0.01},
		EnergyDrift: 1e-8,
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportJSON(&buf, "spring_double_pendulum", "rk4", 0.01, 1.0, sampleResult()); err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if data.Model != "spring_double_pendulum" || data.Steps != 2 {
		t.Errorf("bad export: model=%q steps=%d", data.Model, data.Steps)
	}
}

func TestExportJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")

	if err := ExportJSONFile(path, "spring_double_pendulum", "rk4", 0.01, 1.0, sampleResult()); err != nil {
		t.Fatalf("ExportJSONFile failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(raw, &data); err != nil {
		t.Fatalf("file is not valid JSON: %v", err)
	}
	if data.Integrator != "rk4" || len(data.States) != 2 {
		t.Errorf("bad export: integrator=%q states=%d", data.Integrator, len(data.States))
	}
}
