package handler

import (
	"net/http"

	"github.com/msomdec/meta-pet-registry/internal/service"
)

// RegisterRoutes sets up all HTTP routes on the given mux. A nil limiter
// disables rate limiting of submissions.
func RegisterRoutes(mux *http.ServeMux, regs *service.RegistrationService, limiter *service.TokenBucket) {
	h := NewRegistrationHandler(regs)

	mux.HandleFunc("GET /healthz", HandleHealthz)
	mux.HandleFunc("GET /{$}", h.HandleForm)
	mux.Handle("POST /register", RateLimit(limiter, http.HandlerFunc(h.HandleRegister)))
	mux.HandleFunc("POST /register/validate", h.HandleValidate)
	mux.HandleFunc("GET /success/{id}", h.HandleSuccess)
	mux.HandleFunc("GET /scroll/{file}", h.HandleScroll)
	mux.HandleFunc("GET /verify", h.HandleVerify)
}
