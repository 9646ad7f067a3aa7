package journal

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/orkendeu/bg-journal/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the journals on api, which is expected at /api/journal.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("", h.ListJournals)
	api.GET("/:kind", h.GetJournal)
}

func (h *Handler) ListJournals(c echo.Context) error {
	descs := Descriptors()
	out := make([]Summary, len(descs))
	for i, d := range descs {
		out[i] = d.Summary()
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"hospital_name": h.svc.HospitalName(),
		"journals":      out,
		"sort_keys":     SortKeys,
	})
}

func (h *Handler) GetJournal(c echo.Context) error {
	d, ok := Lookup(Kind(c.Param("kind")))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "journal not found")
	}

	f, err := ParseFilter(c, d)
	if err != nil {
		return err
	}

	resp := h.svc.GetData(c.Request().Context(), d.Kind, f)
	return c.JSON(http.StatusOK, resp)
}

// ParseFilter reads and validates the journal query parameters.
func ParseFilter(c echo.Context, d *Descriptor) (Filter, error) {
	f := Filter{
		PatientIdentifier: c.QueryParam("patient_identifier"),
		DateFrom:          c.QueryParam("date_from"),
		DateTo:            c.QueryParam("date_to"),
		Department:        c.QueryParam("department"),
		Status:            c.QueryParam("status"),
		DeliveryStatus:    c.QueryParam("delivery_status"),
		SortBy:            SortKey(c.QueryParam("sort_by")),
	}

	pg, err := pagination.FromContext(c)
	if err != nil {
		return f, echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	f.Page, f.Limit = pg.Page, pg.Limit

	f = f.WithDefaults()
	if err := f.Validate(d); err != nil {
		return f, echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return f, nil
}

func validSortKey(k SortKey) bool {
	for _, s := range SortKeys {
		if s == k {
			return true
		}
	}
	return false
}
