package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/Tocma/Engineer-system-sub000/internal/engineer"
	"github.com/Tocma/Engineer-system-sub000/internal/logging"
	"github.com/Tocma/Engineer-system-sub000/internal/service"
	"github.com/Tocma/Engineer-system-sub000/internal/store"
	"github.com/google/uuid"
)

// MaxImportSize is the maximum allowed import file size (10MB).
const MaxImportSize = 10 * 1024 * 1024

// recordView is the JSON shape of one engineer record.
type recordView struct {
	ID                   string   `json:"id"`
	Name                 string   `json:"name"`
	NameKana             string   `json:"nameKana"`
	BirthDate            string   `json:"birthDate"`
	JoinDate             string   `json:"joinDate"`
	CareerYears          int      `json:"careerYears"`
	ProgrammingLanguages []string `json:"programmingLanguages"`
	CareerHistory        string   `json:"careerHistory,omitempty"`
	TrainingHistory      string   `json:"trainingHistory,omitempty"`
	TechnicalSkill       *float64 `json:"technicalSkill"`
	LearningAttitude     *float64 `json:"learningAttitude"`
	CommunicationSkill   *float64 `json:"communicationSkill"`
	Leadership           *float64 `json:"leadership"`
	Note                 string   `json:"note,omitempty"`
	RegisteredDate       string   `json:"registeredDate,omitempty"`
}

func toView(r engineer.Record) recordView {
	v := recordView{
		ID:                   r.ID,
		Name:                 r.Name,
		NameKana:             r.NameKana,
		BirthDate:            r.BirthDate.Format(engineer.DateLayout),
		JoinDate:             r.JoinDate.Format(engineer.DateLayout),
		CareerYears:          r.CareerYears,
		ProgrammingLanguages: r.ProgrammingLanguages,
		CareerHistory:        r.CareerHistory,
		TrainingHistory:      r.TrainingHistory,
		TechnicalSkill:       r.TechnicalSkill,
		LearningAttitude:     r.LearningAttitude,
		CommunicationSkill:   r.CommunicationSkill,
		Leadership:           r.Leadership,
		Note:                 r.Note,
	}
	if !r.RegisteredDate.IsZero() {
		v.RegisteredDate = r.RegisteredDate.Format(engineer.DateLayout)
	}
	return v
}

// handleHealth reports process liveness and store activity.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":            "ok",
		"active_operations": s.service.ActiveOperations(),
	})
}

// handleListEngineers loads the engineer file and returns a sorted page.
//
// Query parameters: page (default 1), per_page (default 50), sort
// (id|name|join), dir (asc|desc).
func (s *Server) handleListEngineers(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.Load(r.Context(), s.cfg.Store.FilePath())
	if err != nil {
		respondError(w, r, err, dispatchStatus(err), "STORE_BUSY")
		return
	}
	// A store that has never been written to is an empty roster, not an error.
	if res.NotFound {
		respondJSON(w, http.StatusOK, map[string]any{
			"records": []recordView{},
			"total":   0,
		})
		return
	}
	if res.FatalError {
		respondError(w, r, errors.New(res.FatalMessage), http.StatusInternalServerError, "STORE_READ")
		return
	}

	sorted := engineer.SortRecords(res.Successes,
		r.URL.Query().Get("sort"),
		r.URL.Query().Get("dir") == "desc",
	)
	page := parseIntParam(r, "page", 1)
	perPage := parseIntParam(r, "per_page", 50)

	views := make([]recordView, 0, perPage)
	for _, rec := range engineer.Page(sorted, page, perPage) {
		views = append(views, toView(rec))
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"records":      views,
		"total":        len(sorted),
		"page":         page,
		"perPage":      perPage,
		"rowErrors":    res.RowErrors,
		"duplicateIds": res.DuplicateIDs,
	})
}

// createRequest carries the raw field values for one new engineer.
// Values are validated by the record builder, not here.
type createRequest struct {
	ID                   string   `json:"id"`
	Name                 string   `json:"name"`
	NameKana             string   `json:"nameKana"`
	BirthDate            string   `json:"birthDate"`
	JoinDate             string   `json:"joinDate"`
	CareerYears          string   `json:"careerYears"`
	ProgrammingLanguages []string `json:"programmingLanguages"`
	CareerHistory        string   `json:"careerHistory"`
	TrainingHistory      string   `json:"trainingHistory"`
	TechnicalSkill       string   `json:"technicalSkill"`
	LearningAttitude     string   `json:"learningAttitude"`
	CommunicationSkill   string   `json:"communicationSkill"`
	Leadership           string   `json:"leadership"`
	Note                 string   `json:"note"`

	// Overwrite confirms replacing an existing record with the same ID.
	Overwrite bool `json:"overwrite"`
}

// handleCreateEngineer validates and appends one record. A duplicate ID
// without the overwrite flag returns 409 so the client can ask the user
// for confirmation before retrying.
func (s *Server) handleCreateEngineer(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err, http.StatusBadRequest, "BAD_REQUEST")
		return
	}

	rec, err := engineer.NewBuilder().
		ID(req.ID).
		Name(req.Name).
		NameKana(req.NameKana).
		BirthDate(req.BirthDate).
		JoinDate(req.JoinDate).
		CareerYears(req.CareerYears).
		Languages(joinLanguages(req.ProgrammingLanguages)).
		CareerHistory(req.CareerHistory).
		TrainingHistory(req.TrainingHistory).
		TechnicalSkill(req.TechnicalSkill).
		LearningAttitude(req.LearningAttitude).
		CommunicationSkill(req.CommunicationSkill).
		Leadership(req.Leadership).
		Note(req.Note).
		Build()
	if err != nil {
		respondError(w, r, err, http.StatusUnprocessableEntity, "VALIDATION")
		return
	}

	err = s.service.Append(r.Context(), s.cfg.Store.FilePath(), rec, req.Overwrite)
	switch {
	case errors.Is(err, service.ErrDuplicateID):
		respondError(w, r, err, http.StatusConflict, "DUPLICATE_ID")
		return
	case err != nil:
		respondError(w, r, err, dispatchStatus(err), "STORE_WRITE")
		return
	}

	logging.FromContext(r.Context()).Info("engineer record saved", "id", rec.ID)
	respondJSON(w, http.StatusCreated, toView(rec))
}

// handleImport accepts a multipart CSV upload and merges it into the
// store file. IDs that collide with existing records are rejected with
// 409 unless force=true, mirroring the duplicate-confirmation flow.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxImportSize)
	if err := r.ParseMultipartForm(MaxImportSize); err != nil {
		respondError(w, r, fmt.Errorf("parse upload: %w", err), http.StatusBadRequest, "BAD_UPLOAD")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, fmt.Errorf("missing file field: %w", err), http.StatusBadRequest, "BAD_UPLOAD")
		return
	}
	defer file.Close()

	// Stage the upload so the store's line-by-line reader can process it.
	tmp, err := os.CreateTemp("", "engineer-import-*.csv")
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError, "IMPORT")
		return
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	_, copyErr := io.Copy(tmp, file)
	closeErr := tmp.Close()
	if copyErr != nil || closeErr != nil {
		respondError(w, r, fmt.Errorf("stage upload: copy=%v close=%v", copyErr, closeErr),
			http.StatusInternalServerError, "IMPORT")
		return
	}

	importID := uuid.NewString()
	logger := logging.WithFields(r.Context(), "import_id", importID)

	uploaded, err := s.service.Load(r.Context(), tmpPath)
	if err != nil {
		respondError(w, r, err, dispatchStatus(err), "STORE_BUSY")
		return
	}
	if uploaded.FatalError {
		respondError(w, r, errors.New(uploaded.FatalMessage), http.StatusBadRequest, "IMPORT_READ")
		return
	}

	merged, conflicts, err := s.mergeImport(r, uploaded)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError, "IMPORT")
		return
	}
	force := r.URL.Query().Get("force") == "true"
	if len(conflicts) > 0 && !force {
		respondJSON(w, http.StatusConflict, map[string]any{
			"importId":     importID,
			"conflicts":    conflicts,
			"error":        "ids already exist; retry with force=true to overwrite",
			"rowErrors":    uploaded.RowErrors,
			"duplicateIds": uploaded.DuplicateIDs,
		})
		return
	}

	out, err := s.service.Save(r.Context(), s.cfg.Store.FilePath(), merged, false)
	if err != nil {
		respondError(w, r, err, dispatchStatus(err), "STORE_BUSY")
		return
	}
	if out.FatalMessage != "" {
		respondError(w, r, errors.New(out.FatalMessage), http.StatusInternalServerError, "STORE_WRITE")
		return
	}

	logger.Info("import complete",
		"imported", len(uploaded.Successes),
		"row_errors", len(uploaded.RowErrors),
		"conflicts_overwritten", len(conflicts),
	)
	respondJSON(w, http.StatusOK, map[string]any{
		"importId":     importID,
		"imported":     len(uploaded.Successes),
		"total":        len(merged),
		"rowErrors":    uploaded.RowErrors,
		"duplicateIds": uploaded.DuplicateIDs,
		"overwritten":  conflicts,
	})
}

// mergeImport combines uploaded records with the current file contents.
// Within the upload itself the last occurrence of an ID wins; conflicts
// against existing records are returned for the confirmation flow.
func (s *Server) mergeImport(r *http.Request, uploaded store.AccessResult) ([]engineer.Record, []string, error) {
	var existing []engineer.Record
	res, err := s.service.Load(r.Context(), s.cfg.Store.FilePath())
	switch {
	case err != nil:
		return nil, nil, err
	case res.NotFound:
		// Nothing on disk yet; the import becomes the whole roster.
	case res.FatalError:
		return nil, nil, errors.New(res.FatalMessage)
	default:
		existing = res.Successes
	}

	byID := make(map[string]int, len(existing))
	merged := make([]engineer.Record, len(existing))
	copy(merged, existing)
	for i, rec := range existing {
		byID[rec.ID] = i
	}

	var conflicts []string
	conflictSeen := make(map[string]bool)
	for _, rec := range uploaded.Successes {
		if i, ok := byID[rec.ID]; ok {
			if !conflictSeen[rec.ID] && i < len(existing) {
				conflictSeen[rec.ID] = true
				conflicts = append(conflicts, rec.ID)
			}
			merged[i] = rec
			continue
		}
		byID[rec.ID] = len(merged)
		merged = append(merged, rec)
	}
	return merged, conflicts, nil
}

// handleExport streams the current roster as a CSV download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.Load(r.Context(), s.cfg.Store.FilePath())
	if err != nil {
		respondError(w, r, err, dispatchStatus(err), "STORE_BUSY")
		return
	}
	if res.NotFound {
		respondError(w, r, errors.New("no engineer file to export"), http.StatusNotFound, "NOT_FOUND")
		return
	}
	if res.FatalError {
		respondError(w, r, errors.New(res.FatalMessage), http.StatusInternalServerError, "STORE_READ")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="engineers.csv"`)
	w.WriteHeader(http.StatusOK)

	fmt.Fprintln(w, engineer.JoinRow(engineer.Header()))
	for _, rec := range res.Successes {
		fmt.Fprintln(w, engineer.JoinRow(rec.Row()))
	}
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// dispatchStatus maps service dispatch errors to HTTP status codes.
func dispatchStatus(err error) int {
	if errors.Is(err, service.ErrTooManyOperations) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func joinLanguages(langs []string) string {
	return strings.Join(langs, engineer.LanguageDelimiter)
}
