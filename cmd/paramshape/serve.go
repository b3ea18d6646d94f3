package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/reoring/paramshape/middleware"
	"github.com/reoring/paramshape/pipeline"
	"github.com/reoring/paramshape/schema"
	"github.com/reoring/paramshape/schemafile"
	"github.com/reoring/paramshape/validate"
)

func (a *app) serveCmd() *cobra.Command {
	var addr string
	var watch, doCoerce bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve POST /{contract}/{action} validating request parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := schemafile.NewHolder(a.schemaPath, a.log)
			if err != nil {
				return err
			}
			defer h.Stop()
			if watch {
				if err := h.Watch(); err != nil {
					return err
				}
			}
			srv := &http.Server{
				Addr:              addr,
				Handler:           a.router(h, prometheus.NewRegistry(), doCoerce),
				ReadHeaderTimeout: 5 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(sctx)
			}()

			a.log.Info().Str("addr", addr).Strs("shapes", h.Get().Keys()).Msg("serving")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload the schema file when it changes")
	cmd.Flags().BoolVar(&doCoerce, "coerce", true, "coerce string values before validating")
	return cmd
}

// router looks the bundle up per request so reloads apply without a restart.
func (a *app) router(h *schemafile.Holder, reg *prometheus.Registry, doCoerce bool) http.Handler {
	m := middleware.NewMetrics(reg)
	opts := []pipeline.Option{
		pipeline.WithMaxDepth(a.maxDepth),
		pipeline.WithValidateOptions(validate.WithLocale(a.locale)),
	}
	if doCoerce {
		opts = append(opts, pipeline.WithCoercion())
	}

	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Get("/shapes", func(w http.ResponseWriter, req *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]any{"shapes": h.Get().Keys()})
	})
	r.Post("/{contract}/{action}", func(w http.ResponseWriter, req *http.Request) {
		b := h.Get()
		key := schemafile.Key(chi.URLParam(req, "contract"), chi.URLParam(req, "action"), schema.ScopeRequest)
		shape, ok := b.Shape(key)
		if !ok {
			middleware.WriteJSON(w, http.StatusNotFound, map[string]any{"error": "no shape " + key})
			return
		}
		// route parameters name the shape, they are not input
		params, err := middleware.Check(pipeline.New(b.Registry, opts...), shape, req, nil, middleware.DefaultMaxBody)
		m.Observe(key, err)
		if err != nil {
			status, payload := middleware.Reject(err)
			a.log.Debug().Err(err).Str("shape", key).Int("status", status).Msg("rejected")
			middleware.WriteJSON(w, status, payload)
			return
		}
		middleware.WriteJSON(w, http.StatusOK, map[string]any{"params": params})
	})
	return r
}
