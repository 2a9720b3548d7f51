package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hshy1839/seongji-erp-server/internal/config"
	"github.com/hshy1839/seongji-erp-server/internal/models"
	"github.com/hshy1839/seongji-erp-server/internal/services"
)

// statusFor maps an error kind to its HTTP status.
func statusFor(kind services.Kind) int {
	switch kind {
	case services.KindStructural, services.KindValidation, services.KindInvalidID:
		return http.StatusBadRequest
	case services.KindUnauthorized:
		return http.StatusUnauthorized
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	OK      bool          `json:"ok"`
	Type    services.Kind `json:"type"`
	Message string        `json:"message"`
}

// writeError renders err as {ok:false,type,message}. Internal errors are logged and their
// message is not echoed.
func writeError(w http.ResponseWriter, log logrus.FieldLogger, op string, err error) {
	kind := services.KindOf(err)
	msg := err.Error()
	if kind == services.KindInternal {
		config.LogError(log, "handlers", op, err, nil)
		msg = "internal server error"
	}
	writeJSON(w, statusFor(kind), errorBody{OK: false, Type: kind, Message: msg})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{OK: false, Type: services.KindValidation, Message: msg})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// reserved list parameters; anything else is a field filter.
var listParams = map[string]bool{"q": true, "from": true, "to": true, "page": true, "limit": true, "sort": true}

// parseListQuery reads filters, search, date range, paging and sort from the query string.
func parseListQuery(r *http.Request) (models.ListQuery, error) {
	values := r.URL.Query()
	q := models.ListQuery{
		Filters: map[string]string{},
		Search:  values.Get("q"),
		Sort:    values.Get("sort"),
	}
	for key, vs := range values {
		if listParams[key] || len(vs) == 0 {
			continue
		}
		q.Filters[key] = vs[0]
	}

	var err error
	if q.Page, err = optionalInt(values.Get("page")); err != nil {
		return q, fmt.Errorf("invalid page: %w", err)
	}
	if q.Limit, err = optionalInt(values.Get("limit")); err != nil {
		return q, fmt.Errorf("invalid limit: %w", err)
	}
	if q.From, err = optionalDate(values.Get("from")); err != nil {
		return q, fmt.Errorf("invalid from: %w", err)
	}
	if q.To, err = optionalDate(values.Get("to")); err != nil {
		return q, fmt.Errorf("invalid to: %w", err)
	}
	q.Normalize()
	return q, nil
}

func optionalInt(s string) (int, error) {
	if s = strings.TrimSpace(s); s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

// optionalDate accepts YYYY-MM-DD or RFC 3339.
func optionalDate(s string) (*time.Time, error) {
	if s = strings.TrimSpace(s); s == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, errors.New("expected YYYY-MM-DD")
	}
	t = t.UTC()
	return &t, nil
}
