package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pgEdge/pgedge-sales/internal/logging"
	"github.com/pgEdge/pgedge-sales/internal/sales"
	"github.com/pgEdge/pgedge-sales/internal/store"

	_ "github.com/pgEdge/pgedge-sales/internal/store/sqlite"
)

const salesFile = `transactions_id,sale_date,sale_time,customer_id,gender,age,category,quantiy,price_per_unit,cogs,total_sale
1,2022-11-05,09:00:00,10,Female,34,Clothing,4,50,15,200
2,2022-11-05,13:00:00,11,Male,,Beauty,1,30,9,30
3,2022-12-01,18:00:00,10,Female,34,Electronics,2,500,150,1000
`

// execute runs the command tree with args against the given SQLite file
// and returns what it wrote to stdout.
func execute(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() { logging.Init(logging.DefaultConfig()) })

	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--backend", "sqlite", "--connection", db, "--log-level", "error"}, args...))

	err := cmd.Execute()
	return stdout.String(), err
}

func writeSalesFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write sales file: %v", err)
	}
	return path
}

func newDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "sales.db")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, newDB(t), "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, "pgedge-sales") {
		t.Errorf("Expected version output to name pgedge-sales, got %q", out)
	}
}

func TestQueriesList(t *testing.T) {
	out, err := execute(t, newDB(t), "queries")
	if err != nil {
		t.Fatalf("queries failed: %v", err)
	}
	for _, name := range []string{"record_count", "best_months", "top_customers", "shift_orders"} {
		if !strings.Contains(out, name) {
			t.Errorf("Expected query %s in list, got %q", name, out)
		}
	}
}

func TestProfilesList(t *testing.T) {
	out, err := execute(t, newDB(t), "profiles")
	if err != nil {
		t.Fatalf("profiles failed: %v", err)
	}
	for _, name := range []string{"high-street", "store-regional", "store-global", "uniform"} {
		if !strings.Contains(out, name) {
			t.Errorf("Expected profile %s in list, got %q", name, out)
		}
	}
}

func TestUnknownBackend(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--backend", "oracle", "--connection", "x", "init"})

	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "unknown backend") {
		t.Errorf("Expected unknown backend error, got %v", err)
	}
}

func TestLoadRequiresInit(t *testing.T) {
	_, err := execute(t, newDB(t), "load", writeSalesFile(t, salesFile))
	if err == nil || !strings.Contains(err.Error(), "init") {
		t.Errorf("Expected not initialized error, got %v", err)
	}
}

func TestInitLoadCleanQuery(t *testing.T) {
	db := newDB(t)
	path := writeSalesFile(t, salesFile)

	if _, err := execute(t, db, "init"); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if _, err := execute(t, db, "load", path); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	out, err := execute(t, db, "query", "record_count", "--format", "csv")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if out != "total_sale\n3\n" {
		t.Errorf("Expected 3 records before clean, got %q", out)
	}

	out, err = execute(t, db, "clean")
	if err != nil {
		t.Fatalf("clean failed: %v", err)
	}
	if !strings.Contains(out, "Removed 1 incomplete records") {
		t.Errorf("Expected one record removed, got %q", out)
	}

	out, err = execute(t, db, "query", "record_count", "--format", "csv")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if out != "total_sale\n2\n" {
		t.Errorf("Expected 2 records after clean, got %q", out)
	}
}

func TestLoadWithClean(t *testing.T) {
	db := newDB(t)
	path := writeSalesFile(t, strings.ReplaceAll(salesFile, ",", ";"))

	if _, err := execute(t, db, "init"); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	out, err := execute(t, db, "load", path, "--delimiter", ";", "--clean", "--batch-size", "2")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !strings.Contains(out, "Removed 1 incomplete records") {
		t.Errorf("Expected one record removed, got %q", out)
	}
}

func TestLoadMalformed(t *testing.T) {
	db := newDB(t)
	path := writeSalesFile(t, salesFile+"4,not-a-date,09:00:00,1,Male,20,Beauty,1,10,3,10\n")

	if _, err := execute(t, db, "init"); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	_, err := execute(t, db, "load", path)
	if !errors.Is(err, sales.ErrLoad) {
		t.Fatalf("Expected load error, got %v", err)
	}

	out, err := execute(t, db, "query", "record_count", "--format", "csv")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if out != "total_sale\n0\n" {
		t.Errorf("Expected empty store after failed load, got %q", out)
	}
}

func TestQueryParams(t *testing.T) {
	db := newDB(t)
	path := writeSalesFile(t, salesFile)

	if _, err := execute(t, db, "init"); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if _, err := execute(t, db, "load", path, "--clean"); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	out, err := execute(t, db, "query", "high_value_sales", "--threshold", "500", "--format", "json")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}

	var doc struct {
		Name string  `json:"name"`
		Rows [][]any `json:"rows"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("Expected JSON output, got %q: %v", out, err)
	}
	if doc.Name != "high_value_sales" {
		t.Errorf("Expected name high_value_sales, got %s", doc.Name)
	}
	if len(doc.Rows) != 1 || doc.Rows[0][0] != float64(3) {
		t.Errorf("Expected only transaction 3 above 500, got %v", doc.Rows)
	}

	// A threshold of zero is a real value, not "unset"
	out, err = execute(t, db, "query", "high_value_sales", "--threshold", "0", "--format", "csv")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if lines := strings.Count(out, "\n"); lines != 3 {
		t.Errorf("Expected header and 2 rows, got %q", out)
	}
}

func TestQueryErrors(t *testing.T) {
	db := newDB(t)
	if _, err := execute(t, db, "init"); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	_, err := execute(t, db, "query", "no_such_query")
	if err == nil {
		t.Error("Expected error for unknown query")
	}

	_, err = execute(t, db, "query", "sales_on_date", "--date", "2022-13-40")
	if !errors.Is(err, sales.ErrQuery) {
		t.Errorf("Expected query error for invalid date, got %v", err)
	}

	_, err = execute(t, db, "query", "top_customers", "--limit", "0")
	if !errors.Is(err, sales.ErrQuery) {
		t.Errorf("Expected query error for zero limit, got %v", err)
	}

	_, err = execute(t, db, "query", "record_count", "--format", "xml")
	if err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestReport(t *testing.T) {
	db := newDB(t)
	path := writeSalesFile(t, salesFile)

	if _, err := execute(t, db, "init"); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if _, err := execute(t, db, "load", path, "--clean"); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	out, err := execute(t, db, "report",
		"--queries", "shift_orders,record_count", "--parallelism", "2", "--format", "json")
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}

	var docs []struct {
		Name string  `json:"name"`
		Rows [][]any `json:"rows"`
	}
	if err := json.Unmarshal([]byte(out), &docs); err != nil {
		t.Fatalf("Expected JSON array output, got %q: %v", out, err)
	}
	if len(docs) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(docs))
	}
	if docs[0].Name != "shift_orders" || docs[1].Name != "record_count" {
		t.Errorf("Expected results in requested order, got %s, %s", docs[0].Name, docs[1].Name)
	}
	if len(docs[0].Rows) != 3 {
		t.Errorf("Expected one row per shift, got %v", docs[0].Rows)
	}
}

func TestRunPipeline(t *testing.T) {
	out, err := execute(t, newDB(t), "run", writeSalesFile(t, salesFile),
		"--queries", "record_count", "--format", "csv")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if out != "total_sale\n2\n" {
		t.Errorf("Expected 2 records after run, got %q", out)
	}
}

func TestRunInMemory(t *testing.T) {
	out, err := execute(t, ":memory:", "run", writeSalesFile(t, salesFile),
		"--queries", "category_totals", "--format", "csv")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.HasPrefix(out, "category,net_sale,total_orders\n") {
		t.Errorf("Unexpected category_totals output %q", out)
	}
	if !strings.Contains(out, "Clothing,200,1") || !strings.Contains(out, "Electronics,1000,1") {
		t.Errorf("Expected Clothing and Electronics totals, got %q", out)
	}
	if strings.Contains(out, "Beauty") {
		t.Errorf("Beauty sale was incomplete and should be cleaned, got %q", out)
	}
}

func TestGenerateAndRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "generated.csv")

	out, err := execute(t, newDB(t), "generate", path,
		"--rows", "50", "--seed", "7", "--null-probability", "0", "--profile", "high-street")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if !strings.Contains(out, "Wrote 50 sales rows") {
		t.Errorf("Unexpected generate output %q", out)
	}

	out, err = execute(t, newDB(t), "run", path, "--queries", "record_count", "--format", "csv")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if out != "total_sale\n50\n" {
		t.Errorf("Expected 50 complete records, got %q", out)
	}
}

func TestGenerateInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "generated.csv")

	_, err := execute(t, newDB(t), "generate", path, "--start", "2023-01-01", "--end", "2022-01-01")
	if err == nil {
		t.Error("Expected error for end before start")
	}

	_, err = execute(t, newDB(t), "generate", path, "--profile", "nope")
	if err == nil {
		t.Error("Expected error for unknown profile")
	}
}

func TestStatus(t *testing.T) {
	db := newDB(t)

	out, err := execute(t, db, "status")
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if !strings.Contains(out, "not been initialized") {
		t.Errorf("Expected not initialized, got %q", out)
	}

	if _, err := execute(t, db, "init"); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if _, err := execute(t, db, "load", writeSalesFile(t, salesFile), "--clean"); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	out, err = execute(t, db, "status")
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	for _, want := range []string{
		store.MetaBackend, "sqlite",
		store.MetaLastLoadRows, store.MetaLastCleanRemoved,
		"records",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in status output, got %q", want, out)
		}
	}
}

func TestInitDropExisting(t *testing.T) {
	db := newDB(t)

	if _, err := execute(t, db, "init"); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if _, err := execute(t, db, "load", writeSalesFile(t, salesFile)); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	// Re-running init keeps existing data
	if _, err := execute(t, db, "init"); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	out, err := execute(t, db, "query", "record_count", "--format", "csv")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if out != "total_sale\n3\n" {
		t.Errorf("Expected records kept, got %q", out)
	}

	if _, err := execute(t, db, "init", "--drop-existing"); err != nil {
		t.Fatalf("init --drop-existing failed: %v", err)
	}
	out, err = execute(t, db, "query", "record_count", "--format", "csv")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if out != "total_sale\n0\n" {
		t.Errorf("Expected empty store after drop, got %q", out)
	}
}
