package renderer

import (
	"embed"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"text/template"

	"github.com/etnz/statement"
	"github.com/etnz/statement/sbroker"
	"github.com/google/go-cmp/cmp"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

//go:embed testdata
var testcasesFS embed.FS

var fixPartials = flag.Bool("fix-partials", false, "if true, update failing partial test case .md files with the received output")

func TestFixPartialsIsOff(t *testing.T) {
	if *fixPartials {
		t.Fatal("-fix-partials is enabled. This flag should only be used for updating test fixtures and must be disabled for regular tests.")
	}
}

func loadReport(t *testing.T, file string) *Report {
	t.Helper()
	data, err := testcasesFS.ReadFile(file)
	if err != nil {
		t.Fatalf("failed to read %s: %v", file, err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		t.Fatalf("failed to decode %s: %v", file, err)
	}
	return &r
}

// checkGolden compares got with the golden file, or rewrites it with -fix-partials.
func checkGolden(t *testing.T, goldenFile, got string) {
	t.Helper()
	want, err := testcasesFS.ReadFile(goldenFile)
	if err != nil {
		t.Fatalf("failed to read golden file %s: %v", goldenFile, err)
	}
	if got == string(want) {
		return
	}
	if *fixPartials {
		if err := os.WriteFile(filepath.FromSlash(goldenFile), []byte(got), 0644); err != nil {
			t.Fatalf("failed to update %s: %v", goldenFile, err)
		}
		t.Logf("updated golden file %s", goldenFile)
		return
	}
	t.Errorf("output mismatch for %s (-want +got):\n%s", goldenFile, cmp.Diff(string(want), got))
}

func TestTemplatePartials(t *testing.T) {
	testCases := []string{"report_title", "report_items", "report_warnings", "report_failures"}

	// every partial has a test case.
	entries, err := templates.ReadDir(".")
	if err != nil {
		t.Fatalf("failed to read embedded templates: %v", err)
	}
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), ".md")
		if name == "report" {
			continue
		}
		found := false
		for _, tc := range testCases {
			found = found || tc == name
		}
		if !found {
			t.Errorf("untested template partial found: %s. Please add a test case to TestTemplatePartials.", e.Name())
		}
	}

	report := loadReport(t, "testdata/report.json")
	for _, name := range testCases {
		t.Run(name, func(t *testing.T) {
			content, err := templates.ReadFile(name + ".md")
			if err != nil {
				t.Fatalf("failed to read template: %v", err)
			}
			tmpl, err := template.New(name).Funcs(funcs).Parse(string(content))
			if err != nil {
				t.Fatalf("failed to parse template: %v", err)
			}
			var b strings.Builder
			if err := tmpl.Execute(&b, report); err != nil {
				t.Fatalf("failed to execute template: %v", err)
			}
			checkGolden(t, "testdata/"+name+".md", b.String())
		})
	}
}

func TestRenderReport(t *testing.T) {
	report := loadReport(t, "testdata/report.json")
	got := RenderReport(report)
	checkGolden(t, "testdata/report_assembly.md", got)

	// the table is a valid GFM table, escaped pipes included.
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	src := []byte(got)
	doc := md.Parser().Parse(text.NewReader(src))
	rows, cells := 0, 0
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case east.KindTableRow:
			rows++
		case east.KindTableCell:
			cells++
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		t.Fatalf("ast.Walk() unexpected error: %v", err)
	}
	if rows != len(report.Items) {
		t.Errorf("got %d table rows, want %d", rows, len(report.Items))
	}
	// 7 header cells and 7 per row.
	if want := 7 * (len(report.Items) + 1); cells != want {
		t.Errorf("got %d table cells, want %d", cells, want)
	}
}

func TestRenderReport_Empty(t *testing.T) {
	got := RenderReport(&Report{Source: "empty.txt"})
	want := "# empty.txt\n\nNo transaction found.\n\n"
	if got != want {
		t.Errorf("RenderReport() = %q, want %q", got, want)
	}
}

func TestNewReport(t *testing.T) {
	doc := statement.NewRawDocument("dividend.txt", strings.Join([]string{
		"Sparkasse",
		"Dividendengutschrift",
		"Gattungsbezeichnung ISIN",
		"APPLE INC. US0378331005",
		"STK 16,000 17.11.2014 17.11.2014 USD 0,47",
		"ausländische Dividende USD 52,36",
		"davon anrechenbare US-Quellensteuer 15% USD 7,85",
		"15.12.2014 12/3456/789 EUR/USD 1,24495 EUR 35,75",
	}, "\n"))
	res, err := sbroker.New(statement.NewSecurities()).Extract(doc)
	if err != nil {
		t.Fatalf("Extract() unexpected error: %v", err)
	}
	got := NewReport(res)
	want := &Report{
		Source: "dividend.txt",
		Items: []Row{{
			Kind:     "dividend",
			Date:     "2014-11-17",
			Security: "APPLE INC. (US0378331005)",
			Shares:   "16",
			Amount:   "42.06 EUR",
			Tax:      "6.31 EUR",
		}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("NewReport() mismatch (-want +got):\n%s", diff)
	}
}
