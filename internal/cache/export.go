package cache

import (
	"encoding/json"
	"io"
	"os"

	"github.com/kmurari/springpend/internal/dynamo"
)

type ExportData struct {
	Model       string      `json:"model"`
	Integrator  string      `json:"integrator"`
	Dt          float64     `json:"dt"`
	Duration    float64     `json:"duration"`
	Steps       int         `json:"steps"`
	EnergyDrift float64     `json:"energy_drift"`
	Times       []float64   `json:"times"`
	States      [][]float64 `json:"states"`
}

func buildExport(model, integrator string, dt, duration float64, result *dynamo.Result) ExportData {
	data := ExportData{
		Model:       model,
		Integrator:  integrator,
		Dt:          dt,
		Duration:    duration,
		Steps:       len(result.Times),
		EnergyDrift: result.EnergyDrift,
		Times:       result.Times,
		States:      make([][]float64, len(result.States)),
	}
	for i, s := range result.States {
		data.States[i] = s
	}
	return data
}

func ExportJSON(w io.Writer, model, integrator string, dt, duration float64, result *dynamo.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(buildExport(model, integrator, dt, duration, result))
}

func ExportJSONFile(path string, model, integrator string, dt, duration float64, result *dynamo.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return ExportJSON(file, model, integrator, dt, duration, result)
}
