package middleware

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const journalPrefix = "/api/journal/"

// AuditEntry records one journal read: which journal, which patient search
// and from where.
type AuditEntry struct {
	Journal           string
	PatientIdentifier string
	DateFrom          string
	DateTo            string
	Status            string
	Department        string
	IPAddress         string
	UserAgent         string
	Path              string
	RequestID         string
	StatusCode        int
	Timestamp         time.Time
}

// AuditRecorder persists audit entries.
type AuditRecorder interface {
	RecordAccess(entry AuditEntry) error
}

// AuditRecorderFunc is a function adapter for AuditRecorder.
type AuditRecorderFunc func(entry AuditEntry) error

func (f AuditRecorderFunc) RecordAccess(entry AuditEntry) error {
	return f(entry)
}

// Audit logs every journal request after it is handled. Entries go to the
// given recorders, or to the logger when none are configured.
func Audit(logger zerolog.Logger, recorders ...AuditRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			journal, ok := journalFromPath(req.URL.Path)
			if !ok {
				return next(c)
			}

			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			rid, _ := c.Get("request_id").(string)

			entry := AuditEntry{
				Journal:           journal,
				PatientIdentifier: c.QueryParam("patient_identifier"),
				DateFrom:          c.QueryParam("date_from"),
				DateTo:            c.QueryParam("date_to"),
				Status:            c.QueryParam("status"),
				Department:        c.QueryParam("department"),
				IPAddress:         c.RealIP(),
				UserAgent:         req.UserAgent(),
				Path:              req.URL.Path,
				RequestID:         rid,
				StatusCode:        status,
				Timestamp:         time.Now().UTC(),
			}

			if len(recorders) == 0 {
				logEntry(logger, entry)
				return err
			}
			for _, r := range recorders {
				if rerr := r.RecordAccess(entry); rerr != nil {
					logger.Error().Err(rerr).Str("request_id", rid).Msg("failed to record journal access")
				}
			}
			return err
		}
	}
}

func logEntry(logger zerolog.Logger, e AuditEntry) {
	logger.Info().
		Str("event", "journal_access").
		Str("journal", e.Journal).
		Str("patient_identifier", MaskIdentifier(e.PatientIdentifier)).
		Str("date_from", e.DateFrom).
		Str("date_to", e.DateTo).
		Str("status", e.Status).
		Str("department", e.Department).
		Str("remote_ip", e.IPAddress).
		Str("request_id", e.RequestID).
		Int("status_code", e.StatusCode).
		Time("timestamp", e.Timestamp).
		Msg("journal access")
}

// journalFromPath returns the journal slug of /api/journal/<kind>.
func journalFromPath(path string) (string, bool) {
	if !strings.HasPrefix(path, journalPrefix) {
		return "", false
	}
	kind := strings.Trim(strings.TrimPrefix(path, journalPrefix), "/")
	if kind == "" || strings.Contains(kind, "/") {
		return "", false
	}
	return kind, true
}

// MaskIdentifier keeps the last four runes of an IIN or name so log lines can
// be correlated without storing the full identifier.
func MaskIdentifier(s string) string {
	r := []rune(s)
	if len(r) <= 4 {
		return strings.Repeat("*", len(r))
	}
	return strings.Repeat("*", len(r)-4) + string(r[len(r)-4:])
}
