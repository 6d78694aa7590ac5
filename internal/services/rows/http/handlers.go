// Package http provides http transport for rows
package http

import (
	stdhttp "net/http"
	"strconv"
	"strings"

	"rowkeeper/internal/modkit/httpkit"
	perr "rowkeeper/internal/platform/errors"
	"rowkeeper/internal/services/rows/domain"
)

// Register mounts the row endpoints on a router already scoped to /rows
func Register(r httpkit.Router, s domain.ServicePort) {
	h := &handlers{svc: s}

	httpkit.Get(r, "/", h.list)
	httpkit.PostJSON(r, "/", stdhttp.StatusOK, h.create)
	httpkit.Delete(r, "/{id}", stdhttp.StatusNoContent, h.delete)
	httpkit.Get(r, "/export", h.export)
}

type handlers struct{ svc domain.ServicePort }

// @Summary List rows
// @Tags Rows
// @Produce json
// @Param page query int false "zero based page" default(0)
// @Param size query int false "page size 1..100" default(10)
// @Success 200 {object} domain.RowPage
// @Router /rows [get]
func (h *handlers) list(r *stdhttp.Request) (any, error) {
	page, err := queryInt(r, "page", 0)
	if err != nil {
		return nil, err
	}
	size, err := queryInt(r, "size", domain.DefaultPageSize)
	if err != nil {
		return nil, err
	}
	return h.svc.List(r.Context(), domain.PageQuery{Page: int(page), Size: int(size)})
}

// @Summary Create a row
// @Tags Rows
// @Accept json
// @Produce json
// @Param payload body domain.CreateRowRequest true "row"
// @Success 200 {object} domain.Row
// @Router /rows [post]
func (h *handlers) create(r *stdhttp.Request, in domain.CreateRowRequest) (any, error) {
	return h.svc.Create(r.Context(), in)
}

// @Summary Delete a row
// @Tags Rows
// @Param id path int true "row id"
// @Success 204
// @Router /rows/{id} [delete]
func (h *handlers) delete(r *stdhttp.Request) (any, error) {
	id, err := strconv.ParseInt(httpkit.URLParam(r, "id"), 10, 64)
	if err != nil {
		return nil, perr.WithField(perr.Validationf("id must be an integer"), "id")
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		return nil, err
	}
	return httpkit.NoContent(), nil
}

// @Summary Export every row
// @Tags Export
// @Param format query string false "csv, json or xml" default(csv)
// @Success 200 {file} file
// @Router /rows/export [get]
func (h *handlers) export(r *stdhttp.Request) (any, error) {
	format := r.URL.Query().Get("format")
	if strings.TrimSpace(format) == "" {
		format = "csv"
	}
	f, err := h.svc.Export(r.Context(), format)
	if err != nil {
		return nil, err
	}
	return httpkit.Attachment(f.ContentType, f.FileName, f.Payload), nil
}

// queryInt reads an optional integer query parameter
func queryInt(r *stdhttp.Request, name string, def int64) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, perr.WithField(perr.Validationf("%s must be an integer", name), name)
	}
	return v, nil
}
