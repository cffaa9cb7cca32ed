package cmd

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/jsphweid/saxchart/config"
	"github.com/jsphweid/saxchart/constants"
	"github.com/jsphweid/saxchart/logger"
	"github.com/jsphweid/saxchart/metrics"
	"github.com/jsphweid/saxchart/middleware"
	"github.com/jsphweid/saxchart/model"
	"github.com/jsphweid/saxchart/payload"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
)

// Version is reported by /api/metrics; set with -ldflags at build time
var Version = "dev"

const corsMaxAgeSeconds = 3600

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&cfg.Port, "port", "p", cfg.Port, "port to listen on")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the conversion API",
	Long:  `Serves POST /api/parse, GET /api/health and GET /api/metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cfg)
	},
}

type Server struct {
	cfg      *config.Config
	recorder *metrics.Recorder
}

func NewServer(cfg *config.Config) *Server {
	return &Server{cfg: cfg, recorder: metrics.NewRecorder(Version)}
}

// Handler builds the routed, CORS-wrapped handler for the API
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.Use(middleware.RequestTracking(s.recorder), middleware.Recover, middleware.Sentry)
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusNotFound, "Not Found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/parse", s.HandleParse).Methods(http.MethodPost)
	api.HandleFunc("/health", s.HandleHealth).Methods(http.MethodGet)
	api.HandleFunc("/metrics", s.HandleMetrics).Methods(http.MethodGet)

	return cors.New(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		MaxAge:           corsMaxAgeSeconds,
	}).Handler(router)
}

func (s *Server) HandleParse(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	file, header, err := r.FormFile("file")
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		middleware.WriteError(w, http.StatusRequestEntityTooLarge, "File too large.")
		return
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		middleware.WriteError(w, http.StatusBadRequest, "Missing filename.")
		return
	case err != nil:
		middleware.WriteError(w, http.StatusBadRequest, "Invalid upload: "+err.Error())
		return
	}
	defer file.Close()

	if header.Filename == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Missing filename.")
		return
	}

	raw, err := io.ReadAll(file)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid upload: "+err.Error())
		return
	}
	if len(raw) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "Empty file.")
		return
	}

	fields := logger.WithRequest(r)
	fields["filename"] = header.Filename
	fields["bytes"] = len(raw)

	start := time.Now()
	p, err := payload.FromMusicXML(raw, s.options())
	if err != nil {
		s.recorder.RecordConversion(r.Context(), 0, 0, time.Since(start), false)
		logger.Warn("Failed to parse MusicXML", fields)
		middleware.WriteError(w, http.StatusBadRequest, "Failed to parse MusicXML: "+err.Error())
		return
	}
	s.recorder.RecordConversion(r.Context(), len(p.Events), len(p.Metadata.Warnings), time.Since(start), true)

	fields["events"] = len(p.Events)
	fields["qpm"] = p.Metadata.QPM
	logger.Info("Converted score", fields)

	middleware.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, model.HealthResponse{Status: "healthy", Service: constants.ServiceName})
}

func (s *Server) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, s.recorder.Snapshot())
}

func (s *Server) options() payload.Options {
	return payload.Options{
		TransposeSemitones: s.cfg.TransposeSemitones,
		DefaultQPM:         s.cfg.DefaultQPM,
	}
}

func serve(cfg *config.Config) error {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           NewServer(cfg).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info("Starting server", logger.Fields{
		"port":        cfg.Port,
		"environment": cfg.Environment,
		"origins":     cfg.AllowedOrigins,
	})
	return srv.ListenAndServe()
}
