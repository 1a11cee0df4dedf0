package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"guidetrack/internal/core"
	"guidetrack/internal/finance"
)

// maxBodyBytes bounds JSON bodies. Backups can be large.
const (
	maxBodyBytes   = 1 << 20
	maxBackupBytes = 16 << 20
)

var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// decodeJSON reads one JSON value from the body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest("request body is required")
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return badRequest("request body too large")
		}
		return badRequest("malformed JSON: %v", err)
	}
	if dec.More() {
		return badRequest("request body must hold a single JSON value")
	}
	return nil
}

func readBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, badRequest("request body too large")
		}
		return nil, badRequest("read body: %v", err)
	}
	if len(data) == 0 {
		return nil, badRequest("request body is required")
	}
	return data, nil
}

// parsePeriod reads ?period=all|year|month with optional year and month.
// Without period, the numbers alone decide: year and month select a month,
// year alone a year, neither all time. period=year or month without
// numbers means the current one.
func parsePeriod(q url.Values, now time.Time) (finance.Period, error) {
	year, err := intParam(q, "year")
	if err != nil {
		return finance.Period{}, err
	}
	month, err := intParam(q, "month")
	if err != nil {
		return finance.Period{}, err
	}

	var p finance.Period
	switch kind := strings.ToLower(strings.TrimSpace(q.Get("period"))); kind {
	case "":
		p = finance.Period{Year: year, Month: month}
	case "all":
		p = finance.AllTime()
	case "year":
		p = finance.YearOf(now)
		if year != 0 {
			p.Year = year
		}
	case "month":
		p = finance.MonthOf(now)
		if year != 0 {
			p.Year = year
		}
		if month != 0 {
			p.Month = month
		}
	default:
		return finance.Period{}, badRequest("unknown period %q", kind)
	}

	if err := p.Validate(); err != nil {
		return finance.Period{}, badRequest("%v", err)
	}
	return p, nil
}

func intParam(q url.Values, key string) (int, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, badRequest("%s must be a number", key)
	}
	return n, nil
}

func tourStatusParam(q url.Values) (*core.TourStatus, error) {
	v := strings.ToUpper(strings.TrimSpace(q.Get("status")))
	if v == "" {
		return nil, nil
	}
	s := core.TourStatus(v)
	switch s {
	case core.Upcoming, core.Current, core.Past:
		return &s, nil
	}
	return nil, badRequest("unknown status %q", v)
}

func dateParam(raw string) (core.Date, error) {
	d, err := core.ParseDate(strings.TrimSpace(raw))
	if err != nil {
		return "", badRequest("invalid date %q", raw)
	}
	return d, nil
}

// sanitizeInput trims and drops control characters other than tab and
// newlines.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}
