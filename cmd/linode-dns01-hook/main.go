package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/0xfelix/linode-dns01-hook/pkg/app"
	"github.com/0xfelix/linode-dns01-hook/pkg/config"
	"github.com/0xfelix/linode-dns01-hook/pkg/hook"
	"github.com/0xfelix/linode-dns01-hook/pkg/orchestrator"
)

const (
	programName       = "linode-dns01-hook"
	serveCommand      = "serve"
	readHeaderTimeout = 10 * time.Second
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	flags := flag.NewFlagSet(programName, flag.ContinueOnError)
	// Tokens handed over by the hook caller may start with a dash
	flags.SetInterspersed(false)
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <hook> [args...]\n       %s [flags] %s\n\n",
			programName, programName, serveCommand)
		flags.PrintDefaults()
	}
	resolver := flags.String("resolver", "", "DNS resolver used to confirm propagation (overrides DNS_RESOLVER)")
	zoneMatch := flags.String("zone-match", "", "zone selection policy, longest or first (overrides ZONE_MATCH)")
	listen := flags.String("listen", "", "listen address in serve mode (overrides LISTEN_ADDR)")
	debug := flags.Bool("debug", false, "enable debug logging")

	if err := flags.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	cfg, err := config.Parse()
	if err != nil {
		log.Printf("failed to parse config: %v", err)
		return 1
	}
	if flags.Changed("resolver") {
		cfg.Resolver = *resolver
	}
	if flags.Changed("zone-match") {
		cfg.ZoneMatch = *zoneMatch
	}
	if flags.Changed("listen") {
		cfg.ListenAddr = *listen
	}
	if flags.Changed("debug") {
		cfg.Debug = *debug
	}
	if err := cfg.Validate(); err != nil {
		log.Printf("invalid config: %v", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	positional := flags.Args()
	if len(positional) > 0 && positional[0] == serveCommand {
		if err := serve(ctx, cfg); err != nil {
			log.Printf("server failed: %v", err)
			return 1
		}
		return 0
	}

	d := hook.NewDispatcher(os.Stdout, func() (hook.Batcher, error) {
		o, err := orchestrator.NewFromConfig(cfg)
		if err != nil {
			return nil, err
		}
		return o, nil
	})
	return d.Run(ctx, positional)
}

func serve(ctx context.Context, cfg *config.Config) error {
	o, err := orchestrator.NewFromConfig(cfg)
	if err != nil {
		return err
	}

	handler, err := app.New(cfg, o)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout())
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("failed to shut down server: %v", err)
		}
	}()

	log.Printf("listening on %s", cfg.ListenAddr)
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
