package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/oriumgames/compat/version"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve diagnostics for an in-memory host",
	Long: `Boot an in-memory host at --version with the compatibility layer bound to it and
serve its metrics and capability resolution over HTTP.

Endpoints:
  GET /health
  GET /metrics
  GET /capabilities
  GET /resolve/{release}`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "listen address (default from config or :9120)")
	serveCmd.Flags().StringVar(&simDataDir, "data", "", "persist chunks in this leveldb directory instead of memory")
	_ = viper.BindPFlag("addr", serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command, args []string) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	env, err := bootHost(hostVersion, simDataDir, reg)
	if err != nil {
		return err
	}
	defer env.close()
	env.srv.Start()

	srv := &http.Server{
		Addr:         viper.GetString("addr"),
		Handler:      newRouter(env, reg),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		newLogger().Info("compat: serving diagnostics", "addr", srv.Addr, "version", env.srv.Version())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newRouter builds the diagnostics router of env.
func newRouter(env *hostEnv, reg *prometheus.Registry) *mux.Router {
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})).Methods(http.MethodGet)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	}).Methods(http.MethodGet)
	router.HandleFunc("/capabilities", func(w http.ResponseWriter, r *http.Request) {
		v, err := env.api.Version()
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"release":         env.srv.Version(),
			"version":         v,
			"canonical":       version.Format(v),
			"implementations": env.api.Leaves(),
		})
	}).Methods(http.MethodGet)
	router.HandleFunc("/resolve/{release}", func(w http.ResponseWriter, r *http.Request) {
		result, err := resolve(mux.Vars(r)["release"])
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, result)
	}).Methods(http.MethodGet)
	return router
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
