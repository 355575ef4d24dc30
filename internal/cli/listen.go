package cli

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/buzzbuster/internal/housekeeping"
	"github.com/rcliao/buzzbuster/internal/metrics"
	"github.com/rcliao/buzzbuster/internal/model"
	"github.com/rcliao/buzzbuster/internal/osbridge"
	"github.com/rcliao/buzzbuster/internal/pipeline"
	"github.com/rcliao/buzzbuster/internal/retention"
)

func init() {
	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Run the notification interceptor",
		Long: "Read posted-notification events as JSON lines on stdin and write cancel commands as JSON lines on stdout.\n" +
			"Logs go to stderr. Runs until stdin closes or the process is interrupted.",
		Run: runListen,
	}

	cmd.Flags().Int("workers", 0, "Concurrent event workers (default from config)")
	cmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. 127.0.0.1:9464")

	RootCmd.AddCommand(cmd)
}

func runListen(cmd *cobra.Command, args []string) {
	c := getConfig()
	if cmd.Flags().Changed("workers") {
		c.Pipeline.Workers, _ = cmd.Flags().GetInt("workers")
	}
	if cmd.Flags().Changed("metrics-addr") {
		c.Metrics.Addr, _ = cmd.Flags().GetString("metrics-addr")
	}

	log := newLogger()
	defer log.Sync()

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	trimmer := retention.NewTrimmer(s, log)
	p := pipeline.New(pipeline.Deps{
		Rules:      s,
		History:    s,
		Settings:   s,
		Suppressor: osbridge.NewEmitter(os.Stdout),
		Trimmer:    trimmer,
		Diagnostics: pipeline.MultiDiagnostics{
			pipeline.LogDiagnostics{Log: log},
			metrics.NewPipeline(reg),
		},
	},
		pipeline.WithWorkers(c.Pipeline.Workers),
		pipeline.WithQueueSize(c.Pipeline.QueueSize),
		pipeline.WithEventTimeout(c.Pipeline.EventTimeout),
		pipeline.WithSelfPackage(c.SelfPackage),
	)
	p.Start(ctx)

	purger, err := housekeeping.NewPurger(s, s, trimmer, housekeeping.Config{
		Spec:   c.Housekeep.Cron,
		MaxAge: c.Housekeep.MaxAge,
	}, log)
	if err != nil {
		exitErr("housekeeping", err)
	}
	purger.Start()

	var srv *http.Server
	if c.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(reg))
		srv = &http.Server{Addr: c.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			log.Info("metrics listening", zap.String("addr", c.Metrics.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server", zap.Error(err))
			}
		}()
	}

	log.Info("listening for notifications",
		zap.String("db", getDBPath()),
		zap.Int("workers", c.Pipeline.Workers),
		zap.String("self_package", c.SelfPackage))

	events := make(chan model.PostedNotification)
	go readEvents(osbridge.NewDecoder(os.Stdin), events, log)

loop:
	for {
		select {
		case <-ctx.Done():
			log.Info("shutting down")
			break loop
		case ev, ok := <-events:
			if !ok {
				log.Info("input closed")
				break loop
			}
			p.Submit(ev)
		}
	}

	p.Stop()
	purger.Stop()
	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}
	log.Info("buzzbuster stopped")
}

func readEvents(d *osbridge.Decoder, out chan<- model.PostedNotification, log *zap.Logger) {
	defer close(out)
	for {
		ev, err := d.Next()
		if errors.Is(err, io.EOF) {
			return
		}
		var le *osbridge.LineError
		if errors.As(err, &le) {
			log.Warn("skipping malformed event", zap.Int("line", le.Line), zap.Error(le.Err))
			continue
		}
		if err != nil {
			log.Error("read events", zap.Error(err))
			return
		}
		out <- ev
	}
}
