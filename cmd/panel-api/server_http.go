package main

import (
	"net/http"

	config "github.com/NordCoder/netpanel/internal/config/panel-api"
	"github.com/NordCoder/netpanel/internal/obs"
	"github.com/NordCoder/netpanel/internal/services/panel-api/auth"
	"github.com/NordCoder/netpanel/internal/services/panel-api/inventory"
	"github.com/NordCoder/netpanel/internal/services/panel-api/notification"
	"github.com/NordCoder/netpanel/internal/services/panel-api/respond"
	"github.com/gorilla/handlers"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.uber.org/zap"
)

type panelInfo struct {
	Title   string `json:"title"`
	BaseURL string `json:"base_url"`
}

func buildHTTPServer(cfg *config.Config, logger *zap.Logger, st *storage, uc *notification.Usecase) (*http.Server, error) {
	secret := []byte(cfg.Auth.JWTSecret)

	mux := runtime.NewServeMux()
	if err := notification.NewServer(logger, uc).Register(mux); err != nil {
		return nil, err
	}
	if err := inventory.NewServer(logger, st.inventory).Register(mux); err != nil {
		return nil, err
	}

	csrf := auth.CSRFHandler(secret)
	if err := mux.HandlePath(http.MethodGet, "/api/csrf-token", func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
		csrf(w, r)
	}); err != nil {
		return nil, err
	}
	info := panelInfo{Title: cfg.Panel.Title, BaseURL: cfg.Panel.BaseURL}
	if err := mux.HandlePath(http.MethodGet, "/api/panel", func(w http.ResponseWriter, _ *http.Request, _ map[string]string) {
		respond.Data(w, info)
	}); err != nil {
		return nil, err
	}

	root := http.NewServeMux()
	root.Handle("/", mux)
	root.HandleFunc("/healthz", obs.HealthHandler(st.health))

	guard := auth.Middleware(auth.Config{
		Enable: cfg.Auth.Enable,
		CSRF:   cfg.Auth.CSRF,
		Secret: secret,
		Public: []string{"/healthz"},
	}, logger)

	cors := handlers.CORS(
		handlers.AllowedOrigins(cfg.Server.CORSOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", auth.HeaderCSRF}),
		handlers.AllowCredentials(),
	)

	return &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           obs.HTTPHandler(cors(guard(root)), "panel-api"),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}, nil
}
