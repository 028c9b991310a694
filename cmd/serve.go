package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/mapview/internal/session"
	"github.com/sells-group/mapview/internal/viewport"
	"github.com/sells-group/mapview/internal/zone"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the map API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		sess, cleanup, err := buildSession(ctx, cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(sess),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func newRouter(sess *session.Session) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Put("/viewport", handleSetViewport(sess))
		r.Get("/records", handleRecords(sess))
		r.Post("/click", handleClick(sess))
		r.Get("/selection", handleSelection(sess))
		r.Post("/panel/close", handleClosePanel(sess))
		r.Get("/zones/{kind}", handleZoneFeatures(sess))
		r.Put("/zones/{kind}/visibility", handleZoneVisibility(sess))
		r.Get("/stats", handleStats(sess))
	})

	return r
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// handleSetViewport records the new viewport and returns immediately; the
// fetch happens after the debounce window so rapid pans coalesce.
func handleSetViewport(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var bounds viewport.Bounds
		if err := json.NewDecoder(r.Body).Decode(&bounds); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := sess.SetViewport(bounds); err != nil {
			respondError(w, http.StatusBadRequest, "invalid bounds")
			return
		}
		respondJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
	}
}

func handleRecords(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("north") {
			bounds, err := parseBoundsQuery(r)
			if err != nil {
				respondError(w, http.StatusBadRequest, "invalid bounds")
				return
			}
			if err := sess.SetViewport(bounds); err != nil {
				respondError(w, http.StatusBadRequest, "invalid bounds")
				return
			}
		}

		records := sess.Records()
		respondJSON(w, http.StatusOK, map[string]any{
			"records": records,
			"status":  sess.Status(),
		})
	}
}

func handleClick(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		respondJSON(w, http.StatusOK, sess.Click(req.Lat, req.Lon))
	}
}

func handleSelection(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, sess.Selection())
	}
}

func handleClosePanel(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess.ClosePanel()
		respondJSON(w, http.StatusOK, sess.Selection())
	}
}

func handleZoneFeatures(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := zone.ParseKind(chi.URLParam(r, "kind"))
		if err != nil {
			respondError(w, http.StatusNotFound, "unknown zone kind")
			return
		}

		data, err := zone.ToGeoJSON(sess.Zones().Features(kind))
		if err != nil {
			respondError(w, http.StatusInternalServerError, "encode features")
			return
		}
		w.Header().Set("Content-Type", "application/geo+json")
		w.Write(data)
	}
}

func handleZoneVisibility(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := zone.ParseKind(chi.URLParam(r, "kind"))
		if err != nil {
			respondError(w, http.StatusNotFound, "unknown zone kind")
			return
		}

		var req struct {
			Visible *bool `json:"visible"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Visible == nil {
			respondError(w, http.StatusBadRequest, "visible is required")
			return
		}

		sess.SetZoneVisible(kind, *req.Visible)
		respondJSON(w, http.StatusOK, map[string]any{
			"kind":    kind,
			"visible": *req.Visible,
		})
	}
}

func handleStats(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, sess.Stats())
	}
}

// parseBoundsQuery reads bounds from query parameters, used by clients that
// cannot send a JSON body.
func parseBoundsQuery(r *http.Request) (viewport.Bounds, error) {
	var bounds viewport.Bounds
	for name, dst := range map[string]*float64{
		"north": &bounds.North,
		"south": &bounds.South,
		"east":  &bounds.East,
		"west":  &bounds.West,
	} {
		v, err := strconv.ParseFloat(r.URL.Query().Get(name), 64)
		if err != nil {
			return bounds, eris.Wrapf(err, "parse %s", name)
		}
		*dst = v
	}
	return bounds, bounds.Validate()
}
