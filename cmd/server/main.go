// Command server exposes the export coordinators over a thin HTTP layer:
// request validation only, no job queueing or retrying.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/quantex-lab/snapex/internal/checkpoint"
	"github.com/quantex-lab/snapex/internal/config"
	"github.com/quantex-lab/snapex/internal/export"
	"github.com/quantex-lab/snapex/internal/factor"
	"github.com/quantex-lab/snapex/internal/logger"
	"github.com/quantex-lab/snapex/internal/reader"
	"github.com/quantex-lab/snapex/internal/snapshot"
	"github.com/quantex-lab/snapex/internal/store"
	"github.com/quantex-lab/snapex/pkg/errors"
	"github.com/quantex-lab/snapex/pkg/pricing"
)

type server struct {
	coordinator *export.Coordinator
	validate    *validator.Validate
	logger      *logger.Logger
}

type errorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

func (s *server) handleExport(full bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req export.Request

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid request body", err))

			return
		}

		if err := s.validate.Struct(req); err != nil {
			s.writeError(w, http.StatusBadRequest, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid export request", err))

			return
		}

		var (
			result export.Result
			err    error
		)

		if full {
			result, err = s.coordinator.ExportFull(r.Context(), req)
		} else {
			result, err = s.coordinator.ExportIncremental(r.Context(), req)
		}

		if err != nil {
			s.writeError(w, statusFor(err), err)

			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(result)
	}
}

func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidParameter, errors.ErrCodeMissingParameter,
		errors.ErrCodeInvalidWindow, errors.ErrCodeUnsupportedDataset:
		return http.StatusBadRequest
	case errors.ErrCodeDataUnavailable:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *server) writeError(w http.ResponseWriter, status int, err error) {
	s.logger.Warn("request failed", zap.Error(err))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: err.Error(), Code: int(errors.GetCode(err))})
}

func main() {
	configPath := flag.String("config", "config/export.yaml", "path to the export configuration YAML")
	listen := flag.String("listen", ":8080", "listen address")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zapLogger, err := logger.NewLogger()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	st, err := store.NewStore(cfg.DatabasePath, zapLogger)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	checkpoints, err := checkpoint.NewStore(st.DB(), zapLogger)
	if err != nil {
		log.Fatalf("failed to create checkpoint store: %v", err)
	}

	var fallback pricing.Provider

	if cfg.Fallback.Enabled {
		fallback, err = pricing.NewPolygonClient(cfg.Fallback.PolygonAPIKey, zapLogger)
		if err != nil {
			log.Fatalf("failed to create pricing fallback: %v", err)
		}
	}

	factors := factor.NewResolver(st, fallback, cfg.Fallback.PartialPolicy, zapLogger)
	barReader := reader.NewReader(st, st, factors, cfg.Units, zapLogger)
	writer := snapshot.NewWriter(cfg.SnapshotRoot, cfg.Market, zapLogger)
	coordinator := export.NewCoordinator(st, barReader, factors, writer, checkpoints, cfg.Units, zapLogger, nil)

	srv := &server{
		coordinator: coordinator,
		validate:    validator.New(),
		logger:      zapLogger,
	}

	router := mux.NewRouter()
	router.HandleFunc("/exports/full", srv.handleExport(true)).Methods(http.MethodPost)
	router.HandleFunc("/exports/incremental", srv.handleExport(false)).Methods(http.MethodPost)

	httpServer := &http.Server{
		Addr:         *listen,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Minute,
	}

	zapLogger.Info("export server listening", zap.String("addr", *listen))

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
