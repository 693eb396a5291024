package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-repair/jsonrepair/repair"
	"github.com/go-repair/jsonrepair/stream"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jsonrepair_requests_total",
		Help: "Total number of /repair requests handled, by outcome.",
	}, []string{"outcome"})

	repairErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jsonrepair_errors_total",
		Help: "Total number of repair failures, by Kind.",
	}, []string{"kind"})

	bytesProcessed = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "jsonrepair_bytes_processed",
		Help:    "Size in bytes of documents submitted for repair.",
		Buckets: prometheus.ExponentialBuckets(64, 4, 10),
	})
)

func newServeCmd() *cobra.Command {
	var bind string
	var metricsBind string
	var windowSize int
	var shutdownTimeout time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run an HTTP daemon exposing /repair, /repair/stream, and /metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newServeLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			opts := []repair.Option{repair.WithWindowSize(windowSize)}

			router := mux.NewRouter()
			router.HandleFunc("/repair", repairHandler(logger, opts)).Methods(http.MethodPost)
			router.HandleFunc("/repair/stream", repairStreamHandler(logger, opts)).Methods(http.MethodGet)

			metricsRouter := mux.NewRouter()
			metricsRouter.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

			server := &http.Server{Addr: bind, Handler: router}
			metricsServer := &http.Server{
				Addr:    metricsBind,
				Handler: h2c.NewHandler(metricsRouter, &http2.Server{}),
			}

			sigs := make(chan os.Signal, 1)
			signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

			go func() {
				logger.Info("listening", zap.String("addr", bind))
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server.ListenAndServe", zap.Error(err))
				}
			}()
			go func() {
				logger.Info("listening for /metrics", zap.String("addr", metricsBind))
				if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("metricsServer.ListenAndServe", zap.Error(err))
				}
			}()

			sig := <-sigs
			logger.Info("received signal, shutting down", zap.String("signal", sig.String()))

			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := server.Shutdown(ctx); err != nil {
				logger.Error("server.Shutdown", zap.Error(err))
			}
			if err := metricsServer.Shutdown(ctx); err != nil {
				logger.Error("metricsServer.Shutdown", zap.Error(err))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "0.0.0.0:8080", "bind address for the repair HTTP server")
	cmd.Flags().StringVar(&metricsBind, "metrics-bind", "0.0.0.0:9090", "bind address for the Prometheus /metrics server")
	cmd.Flags().IntVar(&windowSize, "window-size", 0, "streaming collaborator window size in bytes (0 uses the package default)")
	cmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 15*time.Second, "timeout for graceful shutdown")

	return cmd
}

// newServeLogger builds a zap logger whose level follows the LOG_LEVEL
// environment variable, matching HBTGmbH-gcsproxy/main.go's init() pattern.
func newServeLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	switch os.Getenv("LOG_LEVEL") {
	case "DEBUG":
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "WARN":
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "ERROR":
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return cfg.Build()
}

func repairHandler(logger *zap.Logger, opts []repair.Option) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		w.Header().Set("X-Request-Id", reqID)

		body, err := io.ReadAll(r.Body)
		if err != nil {
			requestsTotal.WithLabelValues("read_error").Inc()
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		bytesProcessed.Observe(float64(len(body)))

		repaired, err := repair.Repair(string(body), opts...)
		if err != nil {
			writeRepairError(w, logger, reqID, err)
			return
		}

		requestsTotal.WithLabelValues("ok").Inc()
		logger.Debug("repaired document", zap.String("request_id", reqID), zap.Int("bytes", len(body)))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, repaired)
	}
}

func writeRepairError(w http.ResponseWriter, logger *zap.Logger, reqID string, err error) {
	repairErr, ok := err.(*repair.Error)
	if !ok {
		requestsTotal.WithLabelValues("internal_error").Inc()
		logger.Error("unexpected error from repair.Repair", zap.String("request_id", reqID), zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	requestsTotal.WithLabelValues("repair_error").Inc()
	repairErrorsTotal.WithLabelValues(repairErr.Kind.String()).Inc()
	logger.Info("repair failed", zap.String("request_id", reqID), zap.String("kind", repairErr.Kind.String()), zap.Int("position", repairErr.Position))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnprocessableEntity)
	json.NewEncoder(w).Encode(errorBody{Message: repairErr.Message, Position: repairErr.Position, Kind: repairErr.Kind.String(), RequestID: reqID})
}

// errorBody is the {message, position} shape spec.md §6 and §7 describe for
// the CLI/server collaborator's error reporting.
type errorBody struct {
	Message   string `json:"message"`
	Position  int    `json:"position"`
	Kind      string `json:"kind"`
	RequestID string `json:"request_id,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// repairStreamHandler upgrades the connection and feeds everything the
// client sends through a stream.Transform, pushing the repaired output back
// as a single message once the client signals end of input by closing its
// write side — the live analogue of the streaming collaborator contract,
// which itself defers to a single repair pass at Close.
func repairStreamHandler(logger *zap.Logger, opts []repair.Option) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Debug("websocket upgrade failed", zap.Error(err))
			return
		}
		defer conn.Close()

		connID := uuid.NewString()
		logger.Debug("stream connection opened", zap.String("request_id", connID))

		t := stream.NewTransform(opts...)

		for {
			msgType, data, err := conn.ReadMessage()
			if err != nil {
				break
			}
			if msgType == websocket.CloseMessage {
				break
			}
			if _, err := t.Write(data); err != nil {
				writeStreamError(conn, connID, err)
				return
			}
		}

		if err := t.Close(); err != nil {
			writeStreamError(conn, connID, err)
			return
		}

		out, err := io.ReadAll(t)
		if err != nil {
			writeStreamError(conn, connID, err)
			return
		}
		conn.WriteMessage(websocket.TextMessage, out)
	}
}

func writeStreamError(conn *websocket.Conn, connID string, err error) {
	body := errorBody{Message: "internal error", RequestID: connID}
	if repairErr, ok := err.(*repair.Error); ok {
		body = errorBody{Message: repairErr.Message, Position: repairErr.Position, Kind: repairErr.Kind.String(), RequestID: connID}
	}
	data, _ := json.Marshal(body)
	conn.WriteMessage(websocket.TextMessage, data)
}
