package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/souschef-ml/souschef/recipe"
	"github.com/souschef-ml/souschef/results"
)

func sampleTable() *results.Table {
	table := results.NewTable()
	table.Append(results.Row{
		RecipeID: 1,
		Keys: map[recipe.StepName]string{
			recipe.StepScale: "standard",
			recipe.StepModel: "logit",
		},
		Metrics:     map[string]float64{"roc_auc": 0.81, "accuracy": 0.9},
		Importances: map[string]float64{"a": 0.7, "b": 0.3},
		Params:      map[string]any{"c": 1.0},
	})
	table.Append(results.Row{
		RecipeID: 2,
		Keys: map[recipe.StepName]string{
			recipe.StepScale: "minmax",
			recipe.StepModel: "logit",
		},
		Failed:        true,
		FailedStep:    recipe.StepScale,
		FailureReason: "scaler exploded",
	})
	return table
}

func TestNewExporterCreatesRunDir(t *testing.T) {
	root := t.TempDir()

	a, err := NewExporter(root)
	if err != nil {
		t.Fatalf("NewExporter() error = %v", err)
	}
	b, err := NewExporter(root)
	if err != nil {
		t.Fatalf("NewExporter() error = %v", err)
	}

	if a.RunID == b.RunID {
		t.Errorf("two runs share id %q", a.RunID)
	}
	info, err := os.Stat(a.Dir())
	if err != nil || !info.IsDir() {
		t.Errorf("run directory missing: %v", err)
	}
}

func TestWriteResults(t *testing.T) {
	e, err := NewExporter(t.TempDir())
	if err != nil {
		t.Fatalf("NewExporter() error = %v", err)
	}

	path, err := e.WriteResults(sampleTable())
	if err != nil {
		t.Fatalf("WriteResults() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening results: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d csv lines, want header and 2 rows", len(records))
	}

	header := strings.Join(records[0], ",")
	want := "recipe_id,scale,model,accuracy,roc_auc,failed,failed_step,failure_reason"
	if header != want {
		t.Errorf("header = %q, want %q", header, want)
	}

	// failed row keeps its place with empty metric cells
	failed := records[2]
	if failed[0] != "2" || failed[3] != "" || failed[4] != "" {
		t.Errorf("failed row = %v, want empty metrics", failed)
	}
	if failed[5] != "true" || failed[6] != "scale" || failed[7] != "scaler exploded" {
		t.Errorf("failure columns = %v", failed[5:])
	}

	ok := records[1]
	if ok[1] != "standard" || ok[2] != "logit" {
		t.Errorf("step columns = %v, want [standard logit]", ok[1:3])
	}
	if ok[3] != "0.9" || ok[4] != "0.81" {
		t.Errorf("metric columns = %v, want [0.9 0.81]", ok[3:5])
	}
}

func TestWriteRecipeArtifact(t *testing.T) {
	e, err := NewExporter(t.TempDir())
	if err != nil {
		t.Fatalf("NewExporter() error = %v", err)
	}

	rows := sampleTable().Rows()
	path, err := e.WriteRecipeArtifact(rows[0])
	if err != nil {
		t.Fatalf("WriteRecipeArtifact() error = %v", err)
	}
	if filepath.Base(path) != "recipe_1.json" {
		t.Errorf("artifact path = %s, want recipe_1.json", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading artifact: %v", err)
	}
	var art struct {
		RecipeID int                `json:"recipe_id"`
		Steps    map[string]string  `json:"steps"`
		Metrics  map[string]float64 `json:"metrics"`
	}
	if err := json.Unmarshal(data, &art); err != nil {
		t.Fatalf("decoding artifact: %v", err)
	}
	if art.RecipeID != 1 || art.Steps["scale"] != "standard" {
		t.Errorf("artifact = %+v", art)
	}
	if art.Metrics["roc_auc"] != 0.81 {
		t.Errorf("metrics = %v", art.Metrics)
	}
}

func TestWriteBest(t *testing.T) {
	e, err := NewExporter(t.TempDir())
	if err != nil {
		t.Fatalf("NewExporter() error = %v", err)
	}

	table := sampleTable()
	best, err := table.Best("roc_auc")
	if err != nil {
		t.Fatalf("Best() error = %v", err)
	}

	path, err := e.WriteBest(best, "roc_auc")
	if err != nil {
		t.Fatalf("WriteBest() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading summary: %v", err)
	}
	var summary struct {
		Metric   string  `json:"metric"`
		Score    float64 `json:"score"`
		RecipeID int     `json:"recipe_id"`
	}
	if err := json.Unmarshal(data, &summary); err != nil {
		t.Fatalf("decoding summary: %v", err)
	}
	if summary.Metric != "roc_auc" || summary.Score != 0.81 || summary.RecipeID != 1 {
		t.Errorf("summary = %+v", summary)
	}
}
