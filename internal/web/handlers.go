package web

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/askiada/procdash/internal/dashboard"
	"github.com/askiada/procdash/pkg/bagel"
)

// statusOf maps service errors to HTTP status codes.
func statusOf(err error) int {
	var vErr *bagel.ValidationError

	switch {
	case errors.Is(err, dashboard.ErrDatasetNotFound), errors.Is(err, dashboard.ErrUnknownChart), errors.Is(err, dashboard.ErrNoChart):
		return http.StatusNotFound
	case errors.As(err, &vErr),
		errors.Is(err, bagel.ErrUnknownSchema),
		errors.Is(err, bagel.ErrUnknownColumn),
		errors.Is(err, bagel.ErrUnknownOperator),
		errors.Is(err, bagel.ErrInvalidDataURL):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		http.Error(w, http.StatusText(status), status)

		return
	}

	http.Error(w, err.Error(), status)
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer

	err := s.pages.ExecuteTemplate(&buf, name, data)
	if err != nil {
		s.logger.Error("unable to render page", zap.String("page", name), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	s.render(w, http.StatusOK, "index", indexPage{Datasets: s.svc.List()})
}

// uploadBody returns the uploaded file, either a multipart "file" or a data URL in the "contents" field.
func uploadBody(r *http.Request) (string, io.Reader, func(), error) {
	file, header, err := r.FormFile("file")
	if err == nil {
		return header.Filename, file, func() { _ = file.Close() }, nil
	}
	if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		return "", nil, nil, errors.Wrap(err, "unable to read uploaded file")
	}

	contents := r.FormValue("contents")
	if contents == "" {
		return "", nil, nil, errors.Wrap(bagel.ErrInvalidDataURL, "no file uploaded")
	}

	data, err := bagel.DecodeDataURL(contents)
	if err != nil {
		return "", nil, nil, err
	}

	return r.FormValue("filename"), bytes.NewReader(data), func() {}, nil
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		status := http.StatusBadRequest

		var mbErr *http.MaxBytesError
		if errors.As(err, &mbErr) || r.ContentLength > s.maxUploadBytes {
			status = http.StatusRequestEntityTooLarge
		}

		s.render(w, status, "index", indexPage{
			Datasets: s.svc.List(),
			Error:    "Error: The selected file could not be read. Please try again.",
		})

		return
	}

	filename, body, closeBody, err := uploadBody(r)
	if err == nil {
		defer closeBody()

		var ds *dashboard.Dataset

		ds, err = s.svc.Upload(r.Context(), dashboard.UploadRequest{
			Filename: filename,
			Schema:   r.FormValue("schema"),
			Name:     r.FormValue("name"),
			Body:     body,
		})
		if err == nil {
			http.Redirect(w, r, "/datasets/"+ds.ID, http.StatusSeeOther)

			return
		}
	}

	status := statusOf(err)
	if status == http.StatusNotFound {
		status = http.StatusBadRequest
	}

	s.render(w, status, "index", indexPage{Datasets: s.svc.List(), Error: bagel.UserMessage(err)})
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r.URL.Query())
	if err != nil {
		s.fail(w, r, err)

		return
	}

	view, err := s.svc.View(r.PathValue("id"), q)
	if err != nil {
		s.fail(w, r, err)

		return
	}

	s.render(w, http.StatusOK, "dataset", newDatasetPage(view))
}

func (s *Server) handleRename(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	_, err := s.svc.Rename(id, r.FormValue("name"))
	if err != nil {
		s.fail(w, r, err)

		return
	}

	http.Redirect(w, r, "/datasets/"+id, http.StatusSeeOther)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	err := s.svc.Delete(r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)

		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r.URL.Query())
	if err != nil {
		s.fail(w, r, err)

		return
	}

	var buf bytes.Buffer

	err = s.svc.Export(r.PathValue("id"), q, &buf)
	if err != nil {
		s.fail(w, r, err)

		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="bagel.csv"`)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	kind, ok := strings.CutSuffix(r.PathValue("file"), ".svg")
	if !ok {
		http.NotFound(w, r)

		return
	}

	q, err := parseQuery(r.URL.Query())
	if err != nil {
		s.fail(w, r, err)

		return
	}

	c, err := s.svc.Chart(r.PathValue("id"), dashboard.ChartKind(kind), q)
	if err != nil {
		s.fail(w, r, err)

		return
	}

	var buf bytes.Buffer

	err = c.WriteSVG(&buf)
	if err != nil {
		s.fail(w, r, err)

		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = buf.WriteTo(w)
}

type apiDataset struct {
	ID                   string              `json:"id"`
	Name                 string              `json:"name"`
	Schema               string              `json:"schema"`
	Summary              string              `json:"summary"`
	Sessions             []string            `json:"sessions"`
	Pipelines            []string            `json:"pipelines"`
	MatchingParticipants int                 `json:"matching_participants"`
	MatchingRecords      int                 `json:"matching_records"`
	TotalColumns         int                 `json:"total_columns"`
	Page                 int                 `json:"page"`
	Pages                int                 `json:"pages"`
	Total                int                 `json:"total"`
	Columns              []string            `json:"columns"`
	Rows                 []map[string]string `json:"rows"`
}

func (s *Server) handleAPIDataset(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r.URL.Query())
	if err != nil {
		s.fail(w, r, err)

		return
	}

	view, err := s.svc.View(r.PathValue("id"), q)
	if err != nil {
		s.fail(w, r, err)

		return
	}

	ds := view.Dataset
	res := apiDataset{
		ID:                   ds.ID,
		Name:                 ds.Name,
		Schema:               ds.Schema.Name,
		Summary:              view.Summary,
		Sessions:             ds.Sessions,
		Pipelines:            bagel.PipelineNames(ds.Pipelines),
		MatchingParticipants: view.MatchingParticipants,
		MatchingRecords:      view.MatchingRecords,
		TotalColumns:         view.TotalColumns,
		Page:                 view.Page.Page,
		Pages:                view.Page.Pages,
		Total:                view.Page.Total,
		Columns:              view.Table.Columns,
		Rows:                 view.Table.Records(),
	}

	w.Header().Set("Content-Type", "application/json")

	err = json.NewEncoder(w).Encode(res)
	if err != nil {
		s.logger.Warn("unable to write response", zap.Error(err))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok\n")
}
