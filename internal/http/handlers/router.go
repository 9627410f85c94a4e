package handlers

import (
	"github.com/go-chi/chi/v5"
)

// Routes builds the versioned route tree.
func (h *Handlers) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/v1", func(r chi.Router) {
		r.Post("/signup", h.Signup)
		r.Get("/voucher/{token}", h.Voucher)

		r.Route("/otp", func(r chi.Router) {
			r.Post("/request", h.RequestOTP)
			r.Post("/resend", h.RequestOTP)
			r.Post("/verify", h.VerifyOTP)
		})

		r.Route("/confirm", func(r chi.Router) {
			r.Get("/{token}", h.ConfirmPreview)
			r.Post("/{token}", h.ConfirmRedeem)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", h.AdminLogin)

			r.Group(func(r chi.Router) {
				r.Use(h.RequireAdmin)
				r.Get("/stats", h.FunnelStats)
				r.Route("/metrics", func(r chi.Router) {
					r.Get("/", h.ListMetrics)
					r.Put("/{month}", h.SaveMetrics)
					r.Delete("/{month}", h.DeleteMetrics)
					r.Post("/{month}/aggregate", h.AggregateMetrics)
				})
			})
		})
	})

	return r
}
