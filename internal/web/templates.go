package web

import "time"

func formatTime(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

//nolint:lll //this is a template
const pagesTemplate = `{{define "head"}}<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Neuroimaging Derivatives Status Dashboard</title>
  <style>
    body { font-family: sans-serif; margin: 0; background: #f7f7f7; color: #333; }
    nav { background: #343a40; color: #fff; padding: 12px 24px; }
    nav a { color: #fff; text-decoration: none; font-weight: 600; }
    main { padding: 16px 24px; }
    .card { background: #fff; border: 1px solid #ddd; border-radius: 4px; padding: 12px 16px; margin-bottom: 16px; }
    .error { color: #d90202; font-weight: 600; }
    .summary { white-space: pre-line; }
    table { border-collapse: collapse; width: 100%; background: #fff; }
    th, td { border: 1px solid #ddd; padding: 4px 8px; text-align: left; font-size: 13px; }
    th a { color: inherit; text-decoration: none; }
    th input { width: 100%; box-sizing: border-box; }
{{range .}}    {{statusRule .}}
{{end}}    .charts img { max-width: 100%; }
    .legend span { display: inline-block; width: 12px; height: 12px; margin-right: 6px; }
  </style>
</head>
<body>
<nav><a href="/">Neuroimaging Derivatives Status Dashboard</a></nav>
<main>
{{end}}

{{define "foot"}}</main>
</body>
</html>
{{end}}

{{define "index"}}{{template "head" statuses}}
<div class="card">
  <h2>Upload a bagel</h2>
  <form method="post" action="/upload" enctype="multipart/form-data">
    <p><input type="file" name="file" accept=".csv" required /></p>
    <p>
      <label><input type="radio" name="schema" value="imaging" checked /> Imaging</label>
      <label><input type="radio" name="schema" value="phenotypic" /> Phenotypic</label>
    </p>
    <p><label>Dataset name <input type="text" name="name" placeholder="Dataset" /></label></p>
    <p><button type="submit">Upload</button></p>
  </form>
  {{with .Error}}<p class="error">{{.}}</p>{{end}}
</div>
{{if .Datasets}}<div class="card">
  <h2>Datasets</h2>
  <ul>
  {{range .Datasets}}<li><a href="/datasets/{{.ID}}">{{.Name}}</a> ({{.Filename}}, {{.Schema.Name}}, uploaded {{formatTime .UploadedAt}})</li>
  {{end}}</ul>
</div>{{end}}
{{template "foot"}}{{end}}

{{define "dataset"}}{{template "head" statuses}}{{$v := .View}}
<div class="card">
  <h2>{{$v.Dataset.Name}}</h2>
  <form method="post" action="/datasets/{{$v.Dataset.ID}}/name">
    <input type="text" name="name" value="{{$v.Dataset.Name}}" />
    <button type="submit">Rename</button>
  </form>
  <form method="post" action="/datasets/{{$v.Dataset.ID}}/delete">
    <button type="submit">Delete</button>
  </form>
  <p class="summary">{{$v.Summary}}</p>
  <p>Total number of columns: {{$v.TotalColumns}}</p>
  <p>Input file: {{$v.Dataset.Filename}}</p>
  {{if $v.Legend}}<div class="legend">
  {{range $v.Legend}}<div><span style="background: {{statusColor .Status}}"></span><b>{{.Status}}</b>: {{.Description}}</div>
  {{end}}</div>{{end}}
</div>
<form method="get" action="/datasets/{{$v.Dataset.ID}}">
<div class="card">
  <h3>Filter</h3>
  <p>Sessions:
  {{range .Sessions}}<label><input type="checkbox" name="session" value="{{.Value}}"{{if .Selected}} checked{{end}} /> {{.Value}}</label>
  {{end}}</p>
  <p>Operator:
    <label><input type="radio" name="operator" value="AND"{{if .OperatorAND}} checked{{end}} /> AND</label>
    <label><input type="radio" name="operator" value="OR"{{if not .OperatorAND}} checked{{end}} /> OR</label>
  </p>
  {{range .Pipelines}}<label>{{.Name}}
    <select name="{{.Param}}">
      <option value="">any</option>
      {{range .Options}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Value}}</option>
      {{end}}</select>
  </label>
  {{end}}
  {{with .Sort}}<input type="hidden" name="sort" value="{{.}}" />{{end}}
  <p><button type="submit">Apply</button> <a href="{{.ExportURL}}">Download CSV</a></p>
  {{range $v.Counts}}<p>{{.}}</p>
  {{end}}
</div>
<table>
  <thead>
    <tr>{{range .Headers}}<th><a href="{{.SortURL}}">{{.Name}} {{.SortMark}}</a></th>{{end}}</tr>
    <tr>{{range .Headers}}<th>{{if .Filterable}}<input type="text" name="{{.FilterParam}}" value="{{.FilterValue}}" placeholder="filter" />{{end}}</th>{{end}}</tr>
  </thead>
  <tbody>
  {{range $v.Table.Rows}}<tr>{{range .}}<td class="{{statusClass .}}">{{.}}</td>{{end}}</tr>
  {{end}}</tbody>
</table>
</form>
<p>Page {{$v.Page.Page}} of {{$v.Page.Pages}} ({{$v.Page.Total}} rows)
  {{with .PrevURL}}<a href="{{.}}">previous</a>{{end}}
  {{with .NextURL}}<a href="{{.}}">next</a>{{end}}
</p>
{{if .RecordsChartURL}}<div class="card charts">
  <img src="{{.RecordsChartURL}}" alt="{{$v.Dataset.Name}} records chart" />
  <img src="{{.ParticipantsChartURL}}" alt="{{$v.Dataset.Name}} participants chart" />
</div>{{end}}
{{template "foot"}}{{end}}
`
