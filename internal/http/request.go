package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads a JSON body into dst, rejecting unknown fields so
// typos surface as errors instead of silently dropped input.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	// A body with trailing content is malformed
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("unexpected content after JSON body")
	}
	return nil
}

// pathID parses the {id} path segment of a route.
func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// Pagination holds page/limit query params with sane bounds.
type Pagination struct {
	Page  int
	Limit int
}

// parsePagination reads page and limit, defaulting to page 1 with 20
// items and capping limit at 100.
func parsePagination(query url.Values) Pagination {
	p := Pagination{Page: 1, Limit: 20}
	if v := strings.TrimSpace(query.Get("page")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.Page = n
		}
	}
	if v := strings.TrimSpace(query.Get("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.Limit = n
		}
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	return p
}

// parseYear reads the year query param, defaulting to the current year.
func parseYear(query url.Values, now time.Time) int {
	if v := strings.TrimSpace(query.Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil && y > 0 {
			return y
		}
	}
	return now.Year()
}

// parseMonth reads the month query param: 0 when absent, -1 when
// out of range.
func parseMonth(query url.Values) int {
	v := strings.TrimSpace(query.Get("month"))
	if v == "" {
		return 0
	}
	m, err := strconv.Atoi(v)
	if err != nil || m < 1 || m > 12 {
		return -1
	}
	return m
}
