package app

import (
	"net/http"

	"gate/cmd/internal/broker"
)

func registerHTTP(mux *http.ServeMux, m *Metrics, b *broker.Handler) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	mux.Handle("/metrics", m.HTTPHandler())

	b.Register(mux)
}
