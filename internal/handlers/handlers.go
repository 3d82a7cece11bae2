package handlers

import (
	"github.com/sjperalta/bitacora-api/internal/services"
)

// Handlers holds all handler instances
type Handlers struct {
	Health   *HealthHandler
	Bitacora *BitacoraHandler
	Entry    *EntryHandler
	Closure  *ClosureHandler
}

// NewHandlers creates all handler instances. db may be nil, in which case the
// health check does not ping the database.
func NewHandlers(svcs *services.Services, db Pinger) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(svcs.Job, db),
		Bitacora: NewBitacoraHandler(svcs.Bitacora, svcs.Export),
		Entry:    NewEntryHandler(svcs.Entry),
		Closure:  NewClosureHandler(svcs.Closure, svcs.Export),
	}
}
