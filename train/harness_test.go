package train

import (
	"encoding/json"
	"math"
	"os"
	"strings"
	"testing"

	"priceflow/config"
	"priceflow/internal/frame"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Storage.ArtifactsDir = t.TempDir()
	cfg.Training.Boosting.Estimators = 10
	return cfg
}

func regressionFrame(n int) *frame.Frame {
	f := frame.New(n)
	x := frame.NewColumn("x", frame.Float, n)
	y := frame.NewColumn("final_price", frame.Float, n)
	for i := 0; i < n; i++ {
		x.SetFloat(i, float64(i))
		y.SetFloat(i, 2*float64(i)+5)
	}
	f.SetColumn(x)
	f.SetColumn(y)
	return f
}

func classificationFrame(n, positives int) *frame.Frame {
	f := frame.New(n)
	x := frame.NewColumn("x", frame.Float, n)
	y := frame.NewColumn("sold", frame.Bool, n)
	for i := 0; i < n; i++ {
		x.SetFloat(i, float64(i))
		y.SetBool(i, i < positives)
	}
	f.SetColumn(x)
	f.SetColumn(y)
	return f
}

func TestTrainRegressionWritesArtifacts(t *testing.T) {
	cfg := testConfig(t)
	h := NewHarness(cfg)

	result, err := h.TrainRegression(regressionFrame(10), "final_price")
	if err != nil {
		t.Fatal(err)
	}
	if result.RunID == "" {
		t.Error("run id missing")
	}

	for _, name := range []string{RegColumnsFile, RegLinearFile, RegBoostedFile, RegMetricsFile} {
		if !h.Store().Exists(name) {
			t.Errorf("artifact %s not written", name)
		}
	}

	var manifest []string
	if err := h.Store().LoadJSON(RegColumnsFile, &manifest); err != nil {
		t.Fatal(err)
	}
	for _, col := range manifest {
		if col == "final_price" {
			t.Error("target leaked into the column manifest")
		}
	}
	if len(manifest) != 1 || manifest[0] != "x" {
		t.Errorf("manifest = %v", manifest)
	}

	linear := result.Reports["linear"]
	if linear.Skipped != "" {
		t.Fatalf("linear skipped: %s", linear.Skipped)
	}
	if linear.Metrics["mae"] > 1e-3 {
		t.Errorf("linear mae = %v on an exactly linear target", linear.Metrics["mae"])
	}
}

func TestTrainRegressionTinyDatasetSkipsBoosting(t *testing.T) {
	cfg := testConfig(t)
	h := NewHarness(cfg)

	result, err := h.TrainRegression(regressionFrame(1), "final_price")
	if err != nil {
		t.Fatal(err)
	}
	if result.Reports["linear"].Skipped != "" {
		t.Error("linear baseline should still fit a single row")
	}
	if got := result.Reports["gbrt"].Skipped; got != "skipped: training set < 2 rows" {
		t.Errorf("gbrt status = %q", got)
	}
	if h.Store().Exists(RegBoostedFile) {
		t.Error("no boosted artifact should be written when skipped")
	}

	raw, err := os.ReadFile(h.Store().Path(RegMetricsFile))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), "skipped: training set < 2 rows") {
		t.Errorf("metrics artifact missing skip status: %s", raw)
	}
}

func TestTrainRegressionMissingTarget(t *testing.T) {
	h := NewHarness(testConfig(t))
	if _, err := h.TrainRegression(regressionFrame(5), "nope"); err == nil {
		t.Fatal("expected error for missing target column")
	}
}

func TestTrainClassificationWritesArtifacts(t *testing.T) {
	cfg := testConfig(t)
	h := NewHarness(cfg)

	result, err := h.TrainClassification(classificationFrame(20, 10), "sold")
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{ClfColumnsFile, ClfLogitFile, ClfBoostedFile, ClfMetricsFile} {
		if !h.Store().Exists(name) {
			t.Errorf("artifact %s not written", name)
		}
	}
	logit := result.Reports["logit"]
	if logit.Skipped != "" {
		t.Fatalf("logit skipped: %s", logit.Skipped)
	}
	if acc := logit.Metrics["accuracy"]; acc < 0.5 {
		t.Errorf("accuracy = %v on separable data", acc)
	}
}

func TestTrainClassificationOneClass(t *testing.T) {
	cfg := testConfig(t)
	h := NewHarness(cfg)

	result, err := h.TrainClassification(classificationFrame(5, 5), "sold")
	if err != nil {
		t.Fatal(err)
	}
	if got := result.Reports["logit"].Skipped; got != "skipped: one class" {
		t.Errorf("logit status = %q", got)
	}
	if got := result.Reports["gbrt"].Skipped; got != "skipped: one class" {
		t.Errorf("gbrt status = %q", got)
	}
	if h.Store().Exists(ClfLogitFile) || h.Store().Exists(ClfBoostedFile) {
		t.Error("no model artifacts should be written for a one-class dataset")
	}
	if !h.Store().Exists(ClfMetricsFile) {
		t.Error("metrics artifact with skip statuses must still be written")
	}
}

func TestMetricValueMarshalsNaNAsNull(t *testing.T) {
	raw, err := json.Marshal(map[string]MetricValue{
		"roc_auc": MetricValue(math.NaN()),
		"mae":     MetricValue(1.5),
	})
	if err != nil {
		t.Fatal(err)
	}
	s := string(raw)
	if !strings.Contains(s, `"roc_auc":null`) {
		t.Errorf("NaN not marshaled as null: %s", s)
	}
	if !strings.Contains(s, `"mae":1.5`) {
		t.Errorf("finite value mangled: %s", s)
	}
}

func TestModelReportMarshal(t *testing.T) {
	skip, err := json.Marshal(ModelReport{Skipped: "skipped: one class"})
	if err != nil {
		t.Fatal(err)
	}
	if string(skip) != `"skipped: one class"` {
		t.Errorf("skip report = %s", skip)
	}

	rep, err := json.Marshal(ModelReport{Metrics: map[string]float64{
		"rmse": 2, "mae": 1, "r2": math.NaN(),
	}})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"mae":1,"rmse":2,"r2":null}`
	if string(rep) != want {
		t.Errorf("metric report = %s, want %s", rep, want)
	}
}
