package cache

import (
	"math"
	"testing"

	"github.com/kmurari/springpend/internal/dynamo"
	"github.com/kmurari/springpend/internal/lagrange"
	"github.com/kmurari/springpend/internal/model"
)

func testRunKey() RunKey {
	return RunKey{
		Model:      "spring-double",
		Params:     model.DefaultParams(),
		X0:         []float64{2.0, 0.2, 2.0, 0.1, 0, 0, 0, 0},
		Dt:         0.001,
		Duration:   10.0,
		Integrator: "rk4",
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	a := testRunKey().Fingerprint()
	b := testRunKey().Fingerprint()
	if a != b {
		t.Errorf("same key hashed differently: %s vs %s", a, b)
	}
	if len(a) != 16 {
		t.Errorf("unexpected fingerprint length: %q", a)
	}
}

func TestFingerprintSensitivity(t *testing.T) {
	base := testRunKey()

	mutations := map[string]RunKey{}

	k := testRunKey()
	k.Dt = 0.002
	mutations["dt"] = k

	k = testRunKey()
	k.Params.K1 = 41
	mutations["stiffness"] = k

	k = testRunKey()
	k.X0[0] += 1e-9
	mutations["initial state"] = k

	k = testRunKey()
	k.Integrator = "rk45"
	mutations["integrator"] = k

	for name, mutated := range mutations {
		if mutated.Fingerprint() == base.Fingerprint() {
			t.Errorf("%s change did not alter fingerprint", name)
		}
	}
}

func TestEquationsRoundTrip(t *testing.T) {
	m, err := model.BuildSpring()
	if err != nil {
		t.Fatalf("build model: %v", err)
	}

	store := New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}

	key := EquationKey{Model: m.Name, Coords: m.StateNames()[:4]}
	if err := store.SaveEquations(key, m.Eqs); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, ok := store.LoadEquations(key)
	if !ok {
		t.Fatal("expected cache hit")
	}

	if len(loaded.Coords) != len(m.Eqs.Coords) {
		t.Fatalf("coord count mismatch: %d vs %d", len(loaded.Coords), len(m.Eqs.Coords))
	}

	for i := range m.Eqs.Coords {
		for j := range m.Eqs.Coords {
			if !lagrange.Equivalent(loaded.M.Get(i, j), m.Eqs.M.Get(i, j)) {
				t.Errorf("mass entry (%d,%d) changed across round trip", i, j)
			}
		}
		if !lagrange.Equivalent(loaded.F[i], m.Eqs.F[i]) {
			t.Errorf("force entry %d changed across round trip", i)
		}
	}
}

func TestLoadEquationsMissAndRecompute(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}

	key := EquationKey{Model: "absent"}
	if _, ok := store.LoadEquations(key); ok {
		t.Error("expected miss for absent key")
	}

	m, err := model.BuildSpring()
	if err != nil {
		t.Fatalf("build model: %v", err)
	}
	key = EquationKey{Model: m.Name, Coords: m.StateNames()[:4]}
	if err := store.SaveEquations(key, m.Eqs); err != nil {
		t.Fatalf("save: %v", err)
	}

	store.Recompute = true
	if _, ok := store.LoadEquations(key); ok {
		t.Error("Recompute should force a miss")
	}
}

func TestRunRoundTrip(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}

	result := &dynamo.Result{
		States: []dynamo.State{
			{2.0, 0.2, 2.0, 0.1, 0, 0, 0, 0},
			{1.999, 0.21, 1.998, 0.11, -0.1, 0.02, -0.2, 0.03},
		},
		Times:       []float64{0, 0.001},
		EnergyDrift: 1.5e-7,
		StepsTaken:  1,
	}

	key := testRunKey()
	runID, err := store.SaveRun(key, result)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if runID != key.Fingerprint() {
		t.Errorf("run ID %q is not the fingerprint %q", runID, key.Fingerprint())
	}

	loaded, meta, ok := store.LoadRun(key)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if meta.Model != key.Model || meta.Integrator != key.Integrator {
		t.Errorf("metadata mismatch: %+v", meta)
	}
	if math.Abs(meta.EnergyDrift-result.EnergyDrift) > 1e-20 {
		t.Errorf("energy drift changed: %v vs %v", meta.EnergyDrift, result.EnergyDrift)
	}

	if len(loaded.States) != len(result.States) {
		t.Fatalf("state count mismatch: %d vs %d", len(loaded.States), len(result.States))
	}
	for i := range result.States {
		if loaded.Times[i] != result.Times[i] {
			t.Errorf("time %d not bit-exact: %v vs %v", i, loaded.Times[i], result.Times[i])
		}
		for j := range result.States[i] {
			if loaded.States[i][j] != result.States[i][j] {
				t.Errorf("state (%d,%d) not bit-exact: %v vs %v", i, j, loaded.States[i][j], result.States[i][j])
			}
		}
	}
}

func TestLoadRunMiss(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}

	if _, _, ok := store.LoadRun(testRunKey()); ok {
		t.Error("expected miss on empty cache")
	}
}

func TestList(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}

	runs, err := store.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected empty list, got %d", len(runs))
	}

	result := &dynamo.Result{
		States: []dynamo.State{{1, 0}},
		Times:  []float64{0},
	}

	k1 := testRunKey()
	k2 := testRunKey()
	k2.Dt = 0.002

	if _, err := store.SaveRun(k1, result); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := store.SaveRun(k2, result); err != nil {
		t.Fatalf("save: %v", err)
	}

	runs, err = store.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}
