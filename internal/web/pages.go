package web

import (
	"html/template"
	"strings"

	"github.com/pkg/errors"

	"github.com/askiada/procdash/internal/dashboard"
	"github.com/askiada/procdash/pkg/bagel"
	"github.com/askiada/procdash/pkg/chart"
)

type indexPage struct {
	Datasets []*dashboard.Dataset
	Error    string
}

type option struct {
	Value    string
	Selected bool
}

type pipelineFilter struct {
	Name    string
	Param   string
	Options []option
}

type header struct {
	Name        string
	SortURL     string
	SortMark    string
	Filterable  bool
	FilterParam string
	FilterValue string
}

type datasetPage struct {
	View        *dashboard.View
	Headers     []header
	Sessions    []option
	OperatorAND bool
	Pipelines   []pipelineFilter
	Sort        string

	ExportURL            string
	RecordsChartURL      string
	ParticipantsChartURL string
	PrevURL              string
	NextURL              string
}

func newDatasetPage(v *dashboard.View) datasetPage {
	ds, q := v.Dataset, v.Query
	base := "/datasets/" + ds.ID

	disabled := map[string]struct{}{}
	for _, col := range v.DisabledColumns {
		disabled[col] = struct{}{}
	}

	page := datasetPage{
		View:        v,
		OperatorAND: q.Filter.Operator != bagel.OperatorOR,
		ExportURL:   queryURL(base+"/export.csv", withPage(q, 0)),
	}

	if len(q.Sort) > 0 {
		keys := make([]string, len(q.Sort))
		for i, k := range q.Sort {
			keys[i] = k.String()
		}
		page.Sort = strings.Join(keys, ",")
	}

	for _, col := range v.Table.Columns {
		h := header{Name: col, SortURL: queryURL(base, withSort(q, toggleSort(q.Sort, col)))}
		if len(q.Sort) > 0 && q.Sort[0].Column == col {
			h.SortMark = "▲"
			if q.Sort[0].Descending {
				h.SortMark = "▼"
			}
		}
		if _, ok := disabled[col]; !ok {
			h.Filterable = true
			h.FilterParam = prefixFilter + col
			h.FilterValue = q.ColumnFilters[col]
		}
		page.Headers = append(page.Headers, h)
	}

	selected := map[string]struct{}{}
	for _, s := range q.Filter.Sessions {
		selected[s] = struct{}{}
	}
	for _, s := range ds.Sessions {
		_, ok := selected[s]
		page.Sessions = append(page.Sessions, option{Value: s, Selected: ok})
	}

	for _, name := range sortedKeys(v.PipelineOptions) {
		pf := pipelineFilter{Name: name, Param: prefixStatus + name}
		for _, status := range v.PipelineOptions[name] {
			pf.Options = append(pf.Options, option{Value: status, Selected: q.Filter.Statuses[name] == status})
		}
		page.Pipelines = append(page.Pipelines, pf)
	}

	if ds.HasCharts() {
		page.RecordsChartURL = queryURL(base+"/charts/"+string(dashboard.ChartRecords)+".svg", dashboard.Query{Filter: q.Filter})
		page.ParticipantsChartURL = base + "/charts/" + string(dashboard.ChartParticipants) + ".svg"
	}

	if v.Page.Page > 1 {
		page.PrevURL = queryURL(base, withPage(q, v.Page.Page-1))
	}
	if v.Page.Page < v.Page.Pages {
		page.NextURL = queryURL(base, withPage(q, v.Page.Page+1))
	}

	return page
}

func withPage(q dashboard.Query, page int) dashboard.Query {
	q.Page = page

	return q
}

func withSort(q dashboard.Query, keys []bagel.SortKey) dashboard.Query {
	q.Sort = keys
	q.Page = 0

	return q
}

func statusClass(value string) string {
	switch value {
	case bagel.StatusSuccess, bagel.StatusFail, bagel.StatusIncomplete, bagel.StatusUnavailable:
		return "status-" + strings.ToLower(value)
	default:
		return ""
	}
}

func statusColor(status string) template.CSS {
	col, err := chart.StatusColor(status)
	if err != nil {
		return ""
	}

	return template.CSS(col)
}

// statusRule styles the table cells holding status.
func statusRule(status string) template.CSS {
	return template.CSS("." + statusClass(status) + " { background: " + string(statusColor(status)) + "; }")
}

func parsePages() (*template.Template, error) {
	tpl, err := template.New("pages").Funcs(template.FuncMap{
		"statusClass": statusClass,
		"statusColor": statusColor,
		"statusRule":  statusRule,
		"statuses":    bagel.Statuses,
		"formatTime":  formatTime,
	}).Parse(pagesTemplate)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse templates")
	}

	return tpl, nil
}
