package httpserver

import (
	"net/http"
	"time"

	"reserva-go/internal/config"
)

// New builds the server around the router. Request deadlines live in the
// router's timeout middleware; the limits here only cover slow or idle
// connections from the public booking widget.
func New(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
