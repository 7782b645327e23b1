package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/samber/lo"

	"github.com/eslsoft/wordladder/internal/entity"
	"github.com/eslsoft/wordladder/internal/repository"
	"github.com/eslsoft/wordladder/internal/usecase"
)

const (
	_maxPageSize = 1000
	_maxBodySize = 1 << 20
)

// Handler serves the JSON API over a TrainerUsecase.
type Handler struct {
	uc  usecase.TrainerUsecase
	mux *runtime.ServeMux
}

func NewHandler(uc usecase.TrainerUsecase) *Handler {
	h := &Handler{
		uc:  uc,
		mux: runtime.NewServeMux(runtime.WithRoutingErrorHandler(routingError)),
	}
	routes := []struct {
		method  string
		pattern string
		handler runtime.HandlerFunc
	}{
		{http.MethodGet, "/v1/due", h.due},
		{http.MethodGet, "/v1/stats", h.stats},
		{http.MethodGet, "/v1/words", h.listWords},
		{http.MethodPost, "/v1/words", h.addWord},
		{http.MethodGet, "/v1/words/{word}", h.getWord},
		{http.MethodDelete, "/v1/words/{word}", h.removeWord},
		{http.MethodPost, "/v1/words/{word}/rename", h.renameWord},
		{http.MethodGet, "/v1/words/{word}/plan", h.plan},
		{http.MethodPost, "/v1/attempts", h.attempt},
	}
	for _, rt := range routes {
		lo.Must0(h.mux.HandlePath(rt.method, rt.pattern, rt.handler))
	}
	return h
}

// routingError answers requests that match no route.
func routingError(_ context.Context, _ *runtime.ServeMux, _ runtime.Marshaler, w http.ResponseWriter, r *http.Request, status int) {
	code := "not_found"
	if status == http.StatusMethodNotAllowed {
		code = "method_not_allowed"
	} else if status != http.StatusNotFound {
		code = "invalid_argument"
	}
	writeJSON(w, status, errorBody{Error: fmt.Sprintf("no route for %s %s", r.Method, r.URL.Path), Code: code})
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

type dueResponse struct {
	Day entity.Day `json:"day"`
	usecase.Queues
}

func (h *Handler) due(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	queues, err := h.uc.Due(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dueResponse{Day: h.uc.Today(), Queues: queues})
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	report, err := h.uc.Report(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type listWordsResponse struct {
	Words    []usecase.WordSummary `json:"words"`
	Total    int64                 `json:"total"`
	PageNo   int32                 `json:"page_no"`
	PageSize int32                 `json:"page_size"`
}

func (h *Handler) listWords(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	q := r.URL.Query()
	query := &repository.ListWordsQuery{
		FilterOrder: repository.FilterOrder{Filter: q.Get("filter"), OrderBy: q.Get("order_by")},
	}
	var err error
	if query.PageNo, err = parseInt32(q.Get("page_no")); err != nil {
		writeError(w, err)
		return
	}
	if query.PageSize, err = parseInt32(q.Get("page_size")); err != nil {
		writeError(w, err)
		return
	}
	query.PageSize = min(query.PageSize, _maxPageSize)

	rows, total, err := h.uc.ListWords(r.Context(), query)
	if err != nil {
		writeError(w, err)
		return
	}
	if rows == nil {
		rows = []usecase.WordSummary{}
	}
	writeJSON(w, http.StatusOK, listWordsResponse{Words: rows, Total: total, PageNo: query.PageNo, PageSize: query.PageSize})
}

type addWordRequest struct {
	Word string `json:"word"`
	// State is one of known, trash, to_learn. Empty means to_learn.
	State   string   `json:"state"`
	ToLearn []string `json:"to_learn"`
	Learned []string `json:"learned"`
}

func (req addWordRequest) disposition() (entity.Disposition, error) {
	switch req.State {
	case "", "to_learn":
		return entity.DispositionLearn(req.ToLearn, req.Learned), nil
	case "known":
		return entity.DispositionKnown(), nil
	case "trash":
		return entity.DispositionTrash(), nil
	default:
		return entity.Disposition{}, fmt.Errorf("%w: %q", entity.ErrInvalidDisposition, req.State)
	}
}

type wordResponse struct {
	Word    string          `json:"word"`
	Records []entity.Record `json:"records"`
}

func (h *Handler) addWord(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req addWordRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	d, err := req.disposition()
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.uc.AddWord(r.Context(), req.Word, d); err != nil {
		writeError(w, err)
		return
	}
	h.writeWord(w, r, http.StatusCreated, strings.TrimSpace(req.Word))
}

func (h *Handler) getWord(w http.ResponseWriter, r *http.Request, params map[string]string) {
	h.writeWord(w, r, http.StatusOK, params["word"])
}

func (h *Handler) writeWord(w http.ResponseWriter, r *http.Request, status int, word string) {
	records, err := h.uc.Records(r.Context(), word)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, status, wordResponse{Word: word, Records: records})
}

func (h *Handler) removeWord(w http.ResponseWriter, r *http.Request, params map[string]string) {
	if err := h.uc.RemoveWord(r.Context(), params["word"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type renameRequest struct {
	NewWord string `json:"new_word"`
	// Translation selects a single translation to rename instead of the word.
	Translation string `json:"translation,omitempty"`
}

func (h *Handler) renameWord(w http.ResponseWriter, r *http.Request, params map[string]string) {
	var req renameRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	word := params["word"]
	var err error
	if req.Translation != "" {
		err = h.uc.RenameTranslation(r.Context(), word, req.Translation, req.NewWord)
	} else {
		err = h.uc.RenameWord(r.Context(), word, req.NewWord)
		word = req.NewWord
	}
	if err != nil {
		writeError(w, err)
		return
	}
	h.writeWord(w, r, http.StatusOK, word)
}

type planResponse struct {
	Word              string   `json:"word"`
	Known             []string `json:"known"`
	ToType            []string `json:"to_type"`
	GuessCount        int      `json:"guess_count"`
	AttemptsRemaining uint64   `json:"attempts_remaining"`
	OverdueDays       uint64   `json:"overdue_days"`
}

func (h *Handler) plan(w http.ResponseWriter, r *http.Request, params map[string]string) {
	word := params["word"]
	plan, err := h.uc.Plan(r.Context(), word)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, planResponse{
		Word:              word,
		Known:             orEmpty(plan.Known),
		ToType:            orEmpty(plan.ToType),
		GuessCount:        len(plan.ToGuess),
		AttemptsRemaining: plan.AttemptsRemaining,
		OverdueDays:       plan.OverdueDays,
	})
}

type attemptRequest struct {
	Word        string `json:"word"`
	Translation string `json:"translation"`
	Correct     bool   `json:"correct"`
}

func (h *Handler) attempt(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req attemptRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Word == "" || req.Translation == "" {
		writeError(w, fmt.Errorf("%w: word and translation are required", errBadRequest))
		return
	}
	if err := h.uc.RegisterAttempt(r.Context(), req.Word, req.Translation, req.Correct); err != nil {
		writeError(w, err)
		return
	}
	h.writeWord(w, r, http.StatusOK, req.Word)
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, _maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: decode body: %v", errBadRequest, err)
	}
	return nil
}

func parseInt32(s string) (int32, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", errBadRequest, s)
	}
	return int32(v), nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
