package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestApp() *app {
	return &app{v: newViper(), log: zap.NewNop()}
}

func run(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(a)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestVersion(t *testing.T) {
	out, err := run(t, newTestApp(), "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if out != "agencydash version dev\n" {
		t.Errorf("got %q", out)
	}
}

func TestSummary(t *testing.T) {
	out, err := run(t, newTestApp(), "summary", "--width", "120")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	for _, want := range []string{
		"Agency DA Dashboard",
		"Total DA Unsigned",
		"3,782",
		"Total EHR Signed",
		"(aggregate row excluded)",
		"█",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "7,564") {
		t.Error("aggregate row should not be summed by default")
	}
}

func TestSummary_IncludeAggregateRow(t *testing.T) {
	out, err := run(t, newTestApp(), "summary", "--include-aggregate-row", "--width", "120")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !strings.Contains(out, "7,564") || !strings.Contains(out, "(aggregate row included)") {
		t.Errorf("expected doubled totals:\n%s", out)
	}
}

func TestSummary_EnvAndConfigFile(t *testing.T) {
	t.Setenv("AGENCYDASH_INCLUDE_AGGREGATE_ROW", "true")
	out, err := run(t, newTestApp(), "summary", "--width", "120")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !strings.Contains(out, "7,564") {
		t.Errorf("env var not applied:\n%s", out)
	}

	t.Setenv("AGENCYDASH_INCLUDE_AGGREGATE_ROW", "")
	cfg := writeFile(t, "agencydash.yaml", "title: Regional Dashboard\n")
	out, err = run(t, newTestApp(), "summary", "--config", cfg, "--width", "120")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !strings.HasPrefix(out, "Regional Dashboard\n") {
		t.Errorf("config title not applied:\n%s", out)
	}
}

func TestSummary_Errors(t *testing.T) {
	if _, err := run(t, newTestApp(), "summary", "--metric", "bogus"); err == nil {
		t.Error("expected error for unknown metric")
	}
	if _, err := run(t, newTestApp(), "summary", "--data", "missing.json"); err == nil {
		t.Error("expected error for missing dataset")
	}
	if _, err := run(t, newTestApp(), "summary", "--config", "missing.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoadTable_Warnings(t *testing.T) {
	data := writeFile(t, "agencies.csv", "agency,da_unsigned\nAcme,1\n\"ACME, Inc.\",2\nTotal,5\n")

	core, logs := observer.New(zap.WarnLevel)
	a := &app{v: newViper(), log: zap.New(core)}
	if _, err := run(t, a, "summary", "--data", data); err != nil {
		t.Fatalf("summary: %v", err)
	}

	if n := logs.FilterMessage("aggregate row disagrees with agency rows").Len(); n != 1 {
		t.Errorf("aggregate mismatch warnings = %d, want 1", n)
	}
	if n := logs.FilterMessage("possible duplicate agency").Len(); n != 1 {
		t.Errorf("duplicate warnings = %d, want 1", n)
	}
}

func TestExport(t *testing.T) {
	out, err := run(t, newTestApp(), "export", "--json", "-")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	var rows []map[string]any
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(rows) != 11 {
		t.Errorf("got %d rows, want 11", len(rows))
	}

	csvPath := filepath.Join(t.TempDir(), "agencies.csv")
	if _, err := run(t, newTestApp(), "export", "--csv", csvPath); err != nil {
		t.Fatalf("export csv: %v", err)
	}
	out, err = run(t, newTestApp(), "summary", "--data", csvPath, "--width", "120")
	if err != nil {
		t.Fatalf("summary of exported csv: %v", err)
	}
	if !strings.Contains(out, "3,782") {
		t.Errorf("exported csv lost data:\n%s", out)
	}

	if _, err := run(t, newTestApp(), "export"); err == nil {
		t.Error("expected error without --json or --csv")
	}
}

func TestRender(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, newTestApp(), "render", "--out", dir, "--format", "png")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, id := range []string{"da-unsigned", "da-prepared-3m", "rpa-found", "totals", "ehr-signed", "da-filed"} {
		path := filepath.Join(dir, id+".png")
		data, err := os.ReadFile(path)
		if err != nil {
			t.Errorf("%s: %v", id, err)
			continue
		}
		if !bytes.HasPrefix(data, []byte("\x89PNG")) {
			t.Errorf("%s is not a PNG", path)
		}
		if !strings.Contains(out, path) {
			t.Errorf("output does not list %s", path)
		}
	}

	if _, err := run(t, newTestApp(), "render", "--out", dir, "--format", "gif"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestReportAndInspect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard.pdf")
	out, err := run(t, newTestApp(), "report", "--out", path)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if !strings.Contains(out, "(7 pages)") {
		t.Errorf("report output = %q", out)
	}

	out, err = run(t, newTestApp(), "inspect", path)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if !strings.Contains(out, ": 7 pages") || strings.Contains(out, "empty pages") {
		t.Errorf("inspect output = %q", out)
	}

	if _, err := run(t, newTestApp(), "inspect"); err == nil {
		t.Error("expected error without a file argument")
	}
}

func TestHBar(t *testing.T) {
	tests := []struct {
		v, peak float64
		width   int
		want    string
	}{
		{10, 10, 4, "████"},
		{5, 10, 4, "██"},
		{0, 10, 4, ""},
		{-3, 10, 4, ""},
		{1, 1000, 4, "▏"},
		{3, 8, 2, "▊"},
		{20, 10, 4, "████"},
	}
	for _, tt := range tests {
		if got := hbar(tt.v, tt.peak, tt.width); got != tt.want {
			t.Errorf("hbar(%v, %v, %d) = %q, want %q", tt.v, tt.peak, tt.width, got, tt.want)
		}
	}
}

func TestClip(t *testing.T) {
	if got := clip("Omega Homecare Systems, Inc", 12); got != "Omega Hom..." {
		t.Errorf("got %q", got)
	}
	if got := clip("Total", 12); got != "Total" {
		t.Errorf("got %q", got)
	}
}
