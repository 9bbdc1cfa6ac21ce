package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/kmurari/springpend/internal/model"
)

// schemaVersion invalidates every cached artifact when the on-disk
// format changes.
const schemaVersion = 1

// EquationKey identifies a derived equation set. Equations are fully
// symbolic, so the key depends only on the model structure.
type EquationKey struct {
	Model  string   `json:"model"`
	Coords []string `json:"coords"`
	Schema int      `json:"schema"`
}

// RunKey identifies one integrated trajectory.
type RunKey struct {
	Model      string       `json:"model"`
	Params     model.Params `json:"params"`
	X0         []float64    `json:"x0"`
	Dt         float64      `json:"dt"`
	Duration   float64      `json:"duration"`
	Integrator string       `json:"integrator"`
	Schema     int          `json:"schema"`
}

// Fingerprint returns the content address for an equation set.
func (k EquationKey) Fingerprint() string {
	k.Schema = schemaVersion
	return digest(k)
}

// Fingerprint returns the content address for a trajectory.
func (k RunKey) Fingerprint() string {
	k.Schema = schemaVersion
	return digest(k)
}

// digest hashes the canonical JSON encoding of a key. Struct fields
// marshal in declaration order, which keeps the encoding stable.
func digest(key interface{}) string {
	b, err := json.Marshal(key)
	if err != nil {
		// Keys are plain structs of numbers and strings.
		panic("cache: cannot encode key: " + err.Error())
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:8])
}
