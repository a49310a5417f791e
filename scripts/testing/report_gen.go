// Copyright 2026 The OpenTrusty Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command report_gen turns `go test -json` output into JSON, Markdown and
// HTML reports, annotated with the TestPurpose/Scope/Security/Expected/
// Test Case ID comments found above each test function.
//
// Usage:
//
//	go test -json ./... > test-output.json
//	go run ./scripts/testing -input test-output.json -out-html reports/tests.html
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// TestMetadata is what the doc comment of one test function declares.
type TestMetadata struct {
	Name        string `json:"name"`
	Purpose     string `json:"purpose"`
	Scope       string `json:"scope"`
	Security    string `json:"security,omitempty"`
	Permissions string `json:"permissions,omitempty"`
	Expected    string `json:"expected"`
	TestCaseID  string `json:"test_case_id"`
	Package     string `json:"package"`
	Category    string `json:"category"`
	Type        string `json:"type"`
}

// GoTestEvent is one line of `go test -json`.
type GoTestEvent struct {
	Time    time.Time `json:"Time"`
	Action  string    `json:"Action"`
	Package string    `json:"Package"`
	Test    string    `json:"Test"`
	Output  string    `json:"Output"`
	Elapsed float64   `json:"Elapsed"`
}

type FinalTestResult struct {
	Name        string       `json:"name"`
	Package     string       `json:"package"`
	Status      string       `json:"status"`
	Elapsed     float64      `json:"elapsed"`
	Failure     string       `json:"failure,omitempty"`
	Annotations TestMetadata `json:"annotations"`
}

type ReportSummary struct {
	GeneratedAt time.Time         `json:"generated_at"`
	Total       int               `json:"total"`
	Passed      int               `json:"passed"`
	Failed      int               `json:"failed"`
	Skipped     int               `json:"skipped"`
	Results     []FinalTestResult `json:"results"`
}

// PassRate is the share of passed tests in percent.
func (s ReportSummary) PassRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Passed) / float64(s.Total) * 100
}

// categoryOrder fixes the section order of the rendered reports.
var categoryOrder = []string{
	"Clients", "Groups", "Associations", "Tenant Initialization", "Events",
	"Identity", "Storage", "API", "Config", "Observability",
	"SYSTEM Tests", "E2E Tests", "Other", "Uncategorized",
}

// packageCategories maps a module-relative package prefix to its category.
// The first match wins.
var packageCategories = []struct{ prefix, category string }{
	{"internal/client", "Clients"},
	{"internal/clientgroup", "Groups"},
	{"internal/association", "Associations"},
	{"internal/tenant", "Tenant Initialization"},
	{"internal/event", "Events"},
	{"internal/messaging", "Events"},
	{"internal/identity", "Identity"},
	{"internal/store", "Storage"},
	{"internal/transport/http", "API"},
	{"internal/config", "Config"},
	{"internal/observability", "Observability"},
	{"internal/audit", "Observability"},
}

func main() {
	inputPath := flag.String("input", "test-output.json", "Path to go test -json output")
	outputJSON := flag.String("out-json", "reports/test-report.json", "Path to save JSON report")
	outputMD := flag.String("out-md", "reports/test-report.md", "Path to save Markdown report")
	outputHTML := flag.String("out-html", "", "Path to save HTML report")
	title := flag.String("title", "Client Management Test Report", "Title of the report")
	filterCats := flag.String("filter-categories", "", "Comma-separated categories to include")
	excludeCats := flag.String("exclude-categories", "", "Comma-separated categories to exclude")
	filterType := flag.String("filter-type", "", "Only include this test type (UT, SYSTEM, E2E)")
	excludeType := flag.String("exclude-type", "", "Exclude this test type")
	flag.Parse()

	module, err := modulePath("go.mod")
	if err != nil {
		fmt.Fprintf(os.Stderr, "report_gen: %v\n", err)
		os.Exit(2)
	}

	results, err := parseTestOutput(*inputPath, module, scanMetadata(module))
	if err != nil {
		fmt.Fprintf(os.Stderr, "report_gen: %v\n", err)
		os.Exit(2)
	}

	results = filterResults(results, func(r FinalTestResult) bool {
		cat := r.Annotations.Category
		typ := r.Annotations.Type
		return (*filterCats == "" || inList(*filterCats, cat)) &&
			(*excludeCats == "" || !inList(*excludeCats, cat)) &&
			(*filterType == "" || strings.EqualFold(typ, *filterType)) &&
			(*excludeType == "" || !strings.EqualFold(typ, *excludeType))
	})
	sort.Slice(results, func(i, j int) bool {
		if results[i].Annotations.TestCaseID != results[j].Annotations.TestCaseID {
			return results[i].Annotations.TestCaseID < results[j].Annotations.TestCaseID
		}
		return results[i].Name < results[j].Name
	})

	summary := generateSummary(results)
	writeOrExit(*outputJSON, func() ([]byte, error) { return json.MarshalIndent(summary, "", "  ") })
	writeOrExit(*outputMD, func() ([]byte, error) { return []byte(renderMarkdown(summary, *title)), nil })
	if *outputHTML != "" {
		writeOrExit(*outputHTML, func() ([]byte, error) { return renderHTML(summary, *title) })
	}

	// failing the command keeps CI gates honest
	if summary.Failed > 0 {
		fmt.Printf("\n❌ Test Reporting: %d tests failed. Exiting with error.\n", summary.Failed)
		os.Exit(1)
	}
}

func modulePath(goMod string) (string, error) {
	f, err := os.Open(goMod)
	if err != nil {
		return "", fmt.Errorf("run from the repository root: %w", err)
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if rest, ok := strings.CutPrefix(strings.TrimSpace(scanner.Text()), "module "); ok {
			return strings.TrimSpace(rest), nil
		}
	}
	return "", fmt.Errorf("%s has no module directive", goMod)
}

func inList(csv, value string) bool {
	for _, item := range strings.Split(csv, ",") {
		if strings.TrimSpace(item) == value {
			return true
		}
	}
	return false
}

func filterResults(results []FinalTestResult, keep func(FinalTestResult) bool) []FinalTestResult {
	out := results[:0]
	for _, r := range results {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func scanMetadata(module string) map[string]TestMetadata {
	metadataMap := make(map[string]TestMetadata)
	fset := token.NewFileSet()

	_ = filepath.WalkDir(".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			switch d.Name() {
			case "vendor", ".git", "_examples", "node_modules":
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, "_test.go") {
			return nil
		}

		node, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
		if err != nil {
			return nil
		}

		pkgPath := packagePath(module, path)
		for _, decl := range node.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || fn.Recv != nil || !strings.HasPrefix(fn.Name.Name, "Test") || fn.Name.Name == "TestMain" {
				continue
			}
			meta := TestMetadata{
				Name:     fn.Name.Name,
				Package:  pkgPath,
				Type:     determineType(module, pkgPath),
				Category: determineCategory(module, pkgPath),
			}
			if fn.Doc != nil {
				applyAnnotations(&meta, fn.Doc)
			}
			metadataMap[pkgPath+"."+fn.Name.Name] = meta
		}
		return nil
	})

	return metadataMap
}

func applyAnnotations(meta *TestMetadata, doc *ast.CommentGroup) {
	fields := []struct {
		label string
		dst   *string
	}{
		{"TestPurpose:", &meta.Purpose},
		{"Scope:", &meta.Scope},
		{"Security:", &meta.Security},
		{"Permissions:", &meta.Permissions},
		{"Expected:", &meta.Expected},
		{"Test Case ID:", &meta.TestCaseID},
	}
	for _, line := range doc.List {
		text := strings.TrimSpace(strings.TrimPrefix(line.Text, "//"))
		for _, f := range fields {
			if v, ok := strings.CutPrefix(text, f.label); ok {
				*f.dst = strings.TrimSpace(v)
				break
			}
		}
	}
}

func packagePath(module, filePath string) string {
	dir := filepath.ToSlash(filepath.Dir(filePath))
	if dir == "." {
		return module
	}
	return module + "/" + strings.TrimPrefix(dir, "./")
}

func determineType(module, pkgPath string) string {
	rel := strings.TrimPrefix(strings.TrimPrefix(pkgPath, module), "/")
	if rest, ok := strings.CutPrefix(rel, "tests/"); ok {
		return strings.ToUpper(strings.SplitN(rest, "/", 2)[0])
	}
	return "UT"
}

func determineCategory(module, pkgPath string) string {
	rel := strings.TrimPrefix(strings.TrimPrefix(pkgPath, module), "/")
	for _, pc := range packageCategories {
		if rel == pc.prefix || strings.HasPrefix(rel, pc.prefix+"/") {
			return pc.category
		}
	}
	if t := determineType(module, pkgPath); t != "UT" {
		return t + " Tests"
	}
	return "Other"
}

func parseTestOutput(path, module string, meta map[string]TestMetadata) ([]FinalTestResult, error) {
	// every annotated test is reported, even when it never ran
	testStates := make(map[string]*FinalTestResult, len(meta))
	for key, m := range meta {
		testStates[key] = &FinalTestResult{Name: m.Name, Package: m.Package, Status: "not run", Annotations: m}
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open test output: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var ev GoTestEvent
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil || ev.Test == "" {
			continue
		}

		key := ev.Package + "." + ev.Test
		res, ok := testStates[key]
		if !ok {
			res = &FinalTestResult{Name: ev.Test, Package: ev.Package, Annotations: subtestMetadata(module, ev, meta)}
			testStates[key] = res
		}

		switch ev.Action {
		case "pass", "fail":
			res.Status = ev.Action
			res.Elapsed = ev.Elapsed
		case "skip":
			res.Status = "skip"
		case "run":
			res.Status = ""
		case "output":
			if res.Status == "" || res.Status == "fail" {
				res.Failure += ev.Output
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read test output: %w", err)
	}

	list := make([]FinalTestResult, 0, len(testStates))
	for _, v := range testStates {
		if v.Status != "fail" {
			v.Failure = ""
		}
		list = append(list, *v)
	}
	return list, nil
}

// subtestMetadata inherits the parent's annotations for TestParent/case.
func subtestMetadata(module string, ev GoTestEvent, meta map[string]TestMetadata) TestMetadata {
	parentName, _, isSubtest := strings.Cut(ev.Test, "/")
	if parent, found := meta[ev.Package+"."+parentName]; isSubtest && found {
		parent.Name = ev.Test
		parent.Purpose += " (Subtest: " + ev.Test + ")"
		return parent
	}
	return TestMetadata{
		Name:     ev.Test,
		Package:  ev.Package,
		Type:     determineType(module, ev.Package),
		Category: "Other",
	}
}

func generateSummary(results []FinalTestResult) ReportSummary {
	summary := ReportSummary{GeneratedAt: time.Now(), Results: results}
	for _, r := range results {
		summary.Total++
		switch r.Status {
		case "pass":
			summary.Passed++
		case "fail":
			summary.Failed++
		case "skip":
			summary.Skipped++
		}
	}
	return summary
}

// section is one category block of a rendered report.
type section struct {
	Category string
	Tests    []FinalTestResult
}

func sections(summary ReportSummary) []section {
	byCategory := make(map[string][]FinalTestResult)
	for _, r := range summary.Results {
		cat := r.Annotations.Category
		if cat == "" {
			cat = "Uncategorized"
		}
		byCategory[cat] = append(byCategory[cat], r)
	}
	var out []section
	for _, cat := range categoryOrder {
		if tests := byCategory[cat]; len(tests) > 0 {
			out = append(out, section{Category: cat, Tests: tests})
		}
	}
	return out
}

func statusIcon(status string) string {
	switch status {
	case "pass":
		return "✅"
	case "fail":
		return "❌"
	case "skip":
		return "⏭️"
	default:
		return "⚪"
	}
}

func writeOrExit(path string, render func() ([]byte, error)) {
	data, err := render()
	if err == nil {
		if err = os.MkdirAll(filepath.Dir(path), 0o755); err == nil {
			err = os.WriteFile(path, data, 0o644)
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "report_gen: failed to write %s: %v\n", path, err)
		os.Exit(2)
	}
}

func renderMarkdown(summary ReportSummary, title string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)
	fmt.Fprintf(&sb, "**Generated:** %s  \n", summary.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	status := "✅ PASSED"
	if summary.Failed > 0 {
		status = "❌ FAILED"
	}
	fmt.Fprintf(&sb, "**Status:** %s\n\n", status)

	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Total | Passed | Failed | Skipped | Pass Rate |\n")
	sb.WriteString("|-------|--------|--------|---------|-----------|\n")
	fmt.Fprintf(&sb, "| %d | %d | %d | %d | %.1f%% |\n\n",
		summary.Total, summary.Passed, summary.Failed, summary.Skipped, summary.PassRate())

	sb.WriteString("## Test Results by Category\n\n")
	for _, sec := range sections(summary) {
		fmt.Fprintf(&sb, "### %s\n\n", sec.Category)
		sb.WriteString("| ID | Test Name | Status | Purpose | Security |\n")
		sb.WriteString("|----|-----------|--------|---------|----------|\n")
		for _, t := range sec.Tests {
			security := t.Annotations.Security
			if security != "" {
				security = "**" + security + "**"
			}
			fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s |\n",
				t.Annotations.TestCaseID, t.Name, statusIcon(t.Status), t.Annotations.Purpose, security)
		}
		sb.WriteString("\n")
	}

	if summary.Failed > 0 {
		sb.WriteString("## Failure Details\n\n")
		for _, t := range summary.Results {
			if t.Status == "fail" {
				fmt.Fprintf(&sb, "### %s (%s)\n```\n%s\n```\n\n", t.Name, t.Package, t.Failure)
			}
		}
	}
	return sb.String()
}

var htmlReport = template.Must(template.New("report").Funcs(template.FuncMap{
	"icon": statusIcon,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; background: #f8fafc; color: #1e293b; margin: 0; padding: 2rem; }
.container { max-width: 1000px; margin: 0 auto; background: white; padding: 2rem; border-radius: 8px; }
.badge { padding: 0.25rem 0.75rem; border-radius: 9999px; font-weight: 600; }
.pass { background: #dcfce7; color: #166534; }
.fail { background: #fee2e2; color: #991b1b; }
.grid { display: grid; grid-template-columns: repeat(5, 1fr); gap: 1rem; margin: 2rem 0; text-align: center; }
.card { border: 1px solid #e2e8f0; border-radius: 6px; padding: 1rem; }
.card b { display: block; font-size: 1.5rem; }
table { width: 100%; border-collapse: collapse; }
th, td { text-align: left; padding: 0.5rem; border-bottom: 1px solid #e2e8f0; font-size: 0.875rem; vertical-align: top; }
.cat { margin-top: 2rem; border-left: 4px solid #2563eb; padding-left: 0.75rem; font-weight: 600; }
.security { color: #b45309; font-weight: 600; }
pre { background: #0f172a; color: #f8fafc; padding: 1rem; overflow-x: auto; font-size: 0.75rem; }
</style>
</head>
<body>
<div class="container">
<h1>{{.Title}}</h1>
<p>Generated at {{.Summary.GeneratedAt.Format "2006-01-02 15:04:05 MST"}} |
{{if gt .Summary.Failed 0}}<span class="badge fail">FAILED</span>{{else}}<span class="badge pass">PASSED</span>{{end}}</p>
<div class="grid">
<div class="card"><b>{{.Summary.Total}}</b>Total</div>
<div class="card"><b>{{.Summary.Passed}}</b>Passed</div>
<div class="card"><b>{{.Summary.Failed}}</b>Failed</div>
<div class="card"><b>{{.Summary.Skipped}}</b>Skipped</div>
<div class="card"><b>{{printf "%.1f%%" .Summary.PassRate}}</b>Pass Rate</div>
</div>
{{range .Sections}}
<div class="cat">{{.Category}}</div>
<table>
<thead><tr><th>ID</th><th>Test Name</th><th>Status</th><th>Purpose</th><th>Security</th></tr></thead>
<tbody>
{{range .Tests}}<tr>
<td>{{.Annotations.TestCaseID}}</td>
<td><code>{{.Name}}</code></td>
<td>{{icon .Status}}</td>
<td>{{.Annotations.Purpose}}</td>
<td>{{with .Annotations.Security}}<span class="security">🛡️ {{.}}</span>{{end}}</td>
</tr>{{end}}
</tbody>
</table>
{{end}}
{{if gt .Summary.Failed 0}}<h2>Failure Details</h2>
{{range .Summary.Results}}{{if eq .Status "fail"}}<h3>{{.Name}}</h3><pre>{{.Failure}}</pre>{{end}}{{end}}
{{end}}
</div>
</body>
</html>
`))

func renderHTML(summary ReportSummary, title string) ([]byte, error) {
	var sb strings.Builder
	err := htmlReport.Execute(&sb, struct {
		Title    string
		Summary  ReportSummary
		Sections []section
	}{title, summary, sections(summary)})
	return []byte(sb.String()), err
}
