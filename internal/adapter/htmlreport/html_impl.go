package htmlreport

import (
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/user/report-service/internal/entity"
	"github.com/user/report-service/internal/repository"
)

// Exporter provides a concrete implementation for the HTMLExporter
// interface. It renders one flat document per report into the public
// directory and returns the URL it is served under.
type Exporter struct {
	dir     string
	baseURL string
}

// NewExporter creates an HTML exporter publishing into dir under baseURL.
func NewExporter(dir, baseURL string) *Exporter {
	return &Exporter{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

type rowView struct {
	Keyword  string
	Wordstat string
	Cells    []string
}

type documentView struct {
	ReportID    int64
	GeneratedAt string
	Summary     *entity.StatisticsSummary
	Dates       []string
	Rows        []rowView
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Position report #{{.ReportID}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 4px 8px; text-align: right; }
th:first-child, td:first-child { text-align: left; }
.meta { color: #666; margin-bottom: 1em; }
</style>
</head>
<body>
<h1>Position report #{{.ReportID}}</h1>
<p class="meta">Generated at {{.GeneratedAt}}{{if .Summary}} &middot; {{.Summary.TotalKeywords}} keywords &middot; {{.Summary.TotalRecords}} records{{end}}</p>
<table>
<thead>
<tr><th>Keyword</th><th>Search volume</th>{{range .Dates}}<th>{{.}}</th>{{end}}</tr>
</thead>
<tbody>
{{range .Rows}}<tr><td>{{.Keyword}}</td><td>{{.Wordstat}}</td>{{range .Cells}}<td>{{.}}</td>{{end}}</tr>
{{end}}</tbody>
</table>
</body>
</html>
`))

// Export renders the finished aggregation and returns the public URL of
// the published document.
func (e *Exporter) Export(ctx context.Context, report *entity.Report, data *entity.ReportData) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create public dir: %w", err)
	}

	view := documentView{
		ReportID:    report.ID,
		GeneratedAt: data.GeneratedAt.Format(time.RFC3339),
		Summary:     data.Summary,
		Dates:       data.Dates,
		Rows:        make([]rowView, 0, len(data.Rows)),
	}
	for _, row := range data.Rows {
		view.Rows = append(view.Rows, buildRowView(row, data.Dates))
	}

	fileName := fmt.Sprintf("report_%d.html", report.ID)
	path := filepath.Join(e.dir, fileName)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := reportTemplate.Execute(f, view); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		return "", fmt.Errorf("%w: %s", repository.ErrEmptyArtifact, path)
	}

	return e.baseURL + "/" + fileName, nil
}

// buildRowView precomputes the table cells so the template does not have
// to dereference nullable positions.
func buildRowView(row entity.KeywordRow, dates []string) rowView {
	v := rowView{Keyword: row.Keyword, Cells: make([]string, 0, len(dates))}
	if row.Wordstat != nil {
		v.Wordstat = strconv.Itoa(*row.Wordstat)
	}
	for _, date := range dates {
		position, ok := row.Positions[date]
		if !ok || position == nil {
			v.Cells = append(v.Cells, "")
			continue
		}
		v.Cells = append(v.Cells, strconv.Itoa(*position))
	}
	return v
}
