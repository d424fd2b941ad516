package handlers

import (
	"github.com/go-chi/chi"
)

// SetRoutes mounts the API on r
func (h *Handler) SetRoutes(r chi.Router) {
	r.Get("/health", h.HealthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/mode", h.GetMode)
		r.Put("/mode", h.SetMode)
		r.Get("/status", h.GetStatus)
		r.Post("/scan", h.HandleScan)

		r.Route("/attendance", func(r chi.Router) {
			r.Get("/", h.ListAttendance)
			r.Delete("/", h.DeleteAttendance)
			r.Delete("/all", h.ClearAttendance)
		})

		r.Get("/items", h.ListItems)

		r.Route("/borrows", func(r chi.Router) {
			r.Get("/", h.ListBorrows)
			r.Post("/", h.CreateBorrow)
			r.Delete("/", h.ClearBorrows)
			r.Post("/{id}/return", h.ReturnBorrow)
			r.Delete("/{id}", h.DeleteBorrow)
		})

		r.Route("/nicknames", func(r chi.Router) {
			r.Get("/", h.ListNicknames)
			r.Post("/", h.AddNickname)
			r.Put("/", h.ReplaceNicknames)
			r.Delete("/", h.ClearNicknames)
			r.Post("/import", h.ImportNicknames)
			r.Put("/{tagID}", h.SetNickname)
			r.Delete("/{tagID}", h.RemoveNickname)
		})

		r.Get("/export.xlsx", h.Export)
	})
}
