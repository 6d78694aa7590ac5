// Package http provides http transport for bulk ingestion and reports
package http

import (
	stdhttp "net/http"
	"strconv"
	"strings"

	"rowkeeper/internal/modkit/httpkit"
	perr "rowkeeper/internal/platform/errors"
	"rowkeeper/internal/services/ingest/domain"
	rows "rowkeeper/internal/services/rows/domain"
)

// Register mounts the ingest endpoints on a router already scoped to /rows
// maxBody caps the bulk request body in bytes
func Register(r httpkit.Router, s domain.ServicePort, maxBody int64) {
	h := &handlers{svc: s}

	httpkit.PostJSONSlice(r, "/bulk", stdhttp.StatusAccepted, h.bulk,
		httpkit.BodyLimit{MaxBytes: maxBody, DisallowUnknown: true})
	httpkit.Get(r, "/bulk/{jobId}", h.job)

	httpkit.Post(r, "/reports/generate", stdhttp.StatusAccepted, h.report(domain.ReportGenerate))
	httpkit.Post(r, "/reports/monthly", stdhttp.StatusAccepted, h.report(domain.ReportMonthly))
	httpkit.Post(r, "/export/excel", stdhttp.StatusAccepted, h.report(domain.ReportExcel))
}

type handlers struct{ svc domain.ServicePort }

// @Summary Create rows in the background
// @Tags Bulk
// @Accept json
// @Produce json
// @Param payload body []domain.CreateRowRequest true "rows"
// @Success 202 {object} domain.BulkAccepted
// @Failure 503 {object} httpkit.Envelope
// @Router /rows/bulk [post]
func (h *handlers) bulk(r *stdhttp.Request, in []rows.CreateRowRequest) (any, error) {
	return h.svc.Accept(r.Context(), in)
}

// @Summary Bulk job status
// @Tags Bulk
// @Produce json
// @Param jobId path string true "job id"
// @Success 200 {object} domain.JobView
// @Failure 404 {object} httpkit.Envelope
// @Router /rows/bulk/{jobId} [get]
func (h *handlers) job(r *stdhttp.Request) (any, error) {
	return h.svc.Job(r.Context(), httpkit.URLParam(r, "jobId"))
}

// DefaultUserID is used when a report request has no userId
const DefaultUserID int64 = 1

// report serves the three placeholders, all keyed by ?userId
func (h *handlers) report(kind domain.ReportKind) func(*stdhttp.Request) (any, error) {
	return func(r *stdhttp.Request) (any, error) {
		raw := strings.TrimSpace(r.URL.Query().Get("userId"))
		if raw == "" {
			return h.svc.Report(r.Context(), kind, DefaultUserID)
		}
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, perr.WithField(perr.Validationf("userId must be an integer"), "userId")
		}
		return h.svc.Report(r.Context(), kind, userID)
	}
}
