package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"rentbroker/internal/apperrors"
	"rentbroker/internal/middleware"
	"rentbroker/internal/query"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

// respondWithError maps err onto the error taxonomy. Anything outside it is logged and
// answered with a generic 500.
func respondWithError(w http.ResponseWriter, r *http.Request, logger zerolog.Logger, err error) {
	status, code := apperrors.HTTPStatus(err)
	message := apperrors.Message(err, err.Error())
	if status == http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("request_id", middleware.RequestID(r)).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("Unexpected error")
		message = "An unexpected error occurred"
	}

	respondWithJSON(w, status, middleware.ErrorResponse{Code: code, Message: message})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.InvalidArgument("Request body is required")
		}
		return apperrors.InvalidArgument("Invalid request body")
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.InvalidArgument("Invalid id %q", mux.Vars(r)["id"])
	}
	return id, nil
}

// params reads optional query parameters. The first parse failure is kept and reported by err.
type params struct {
	values url.Values
	err    error
}

func newParams(r *http.Request) *params {
	return &params{values: r.URL.Query()}
}

func (p *params) raw(key string) (string, bool) {
	v := strings.TrimSpace(p.values.Get(key))
	return v, v != ""
}

func (p *params) fail(key, v string) {
	if p.err == nil {
		p.err = apperrors.InvalidArgument("Invalid value %q for %s", v, key)
	}
}

func (p *params) String(key string) *string {
	if v, ok := p.raw(key); ok {
		return &v
	}
	return nil
}

func (p *params) Int(key string) *int {
	v, ok := p.raw(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, v)
		return nil
	}
	return &n
}

func (p *params) Int64(key string) *int64 {
	v, ok := p.raw(key)
	if !ok {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		p.fail(key, v)
		return nil
	}
	return &n
}

func (p *params) Float(key string) *float64 {
	v, ok := p.raw(key)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(key, v)
		return nil
	}
	return &f
}

func (p *params) Bool(key string) *bool {
	v, ok := p.raw(key)
	if !ok {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(key, v)
		return nil
	}
	return &b
}

// Time accepts RFC 3339 timestamps and plain dates.
func (p *params) Time(key string) *time.Time {
	v, ok := p.raw(key)
	if !ok {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			t = t.UTC()
			return &t
		}
	}
	p.fail(key, v)
	return nil
}

func (p *params) Page() query.PageParams {
	return query.PageParams{
		Page:          p.Int("page"),
		PageSize:      p.Int("pageSize"),
		SortBy:        p.values.Get("sortBy"),
		SortDirection: p.values.Get("sortDirection"),
	}
}

// enumParam reads an upper-cased enumeration value and rejects tags valid reports as unknown.
func enumParam[T ~string](p *params, key string, valid func(T) bool) *T {
	v, ok := p.raw(key)
	if !ok {
		return nil
	}
	t := T(strings.ToUpper(v))
	if !valid(t) {
		p.fail(key, v)
		return nil
	}
	return &t
}
