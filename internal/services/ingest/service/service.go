package service

import (
	"rowkeeper/internal/services/ingest/domain"
)

// Svc serves the ingest handlers
type Svc struct {
	*Coordinator
	*Reports
}

var _ domain.ServicePort = (*Svc)(nil)

// New joins the coordinator and the report placeholders
func New(c *Coordinator, r *Reports) *Svc {
	return &Svc{Coordinator: c, Reports: r}
}
