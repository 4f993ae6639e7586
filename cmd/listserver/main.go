package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"net/http/pprof"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matst80/slask-list/pkg/common"
	"github.com/matst80/slask-list/pkg/server"
	"github.com/matst80/slask-list/pkg/types"
)

var listenAddress = flag.String("listen", ":8080", "list server address")
var debugAddress = flag.String("debug", ":8081", "metrics and profiling address, empty to disable")
var catalogSize = flag.Int("items", 45, "number of demo items")
var pageName = flag.String("page-name", envOr("LIST_PAGE_PARAM", "page"), "query parameter name for the page")
var sortName = flag.String("sort-name", envOr("LIST_SORT_PARAM", "sort"), "query parameter name for sorting")
var limitName = flag.String("limit-name", envOr("LIST_LIMIT_PARAM", "limit"), "query parameter name for the page size")

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func init() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("failed to read .env: %v", err)
	}
}

func main() {
	flag.Parse()

	names := types.QueryParameterNames{Page: *pageName, Sort: *sortName, Limit: *limitName}
	srv, err := server.NewListServer(server.NewCatalog(*catalogSize), names)
	if err != nil {
		log.Fatalf("failed to create list server: %v", err)
	}
	mux := http.NewServeMux()
	srv.Handle(mux)

	cfg := common.LoadTimeoutConfig(common.DefaultTimeoutConfig())
	ctx, stop := common.SignalContext(context.Background())
	defer stop()

	if *debugAddress != "" {
		debugMux := http.NewServeMux()
		debugMux.Handle("/metrics", promhttp.Handler())
		debugMux.HandleFunc("/debug/pprof/", pprof.Index)
		debugMux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		go func() {
			if err := http.ListenAndServe(*debugAddress, debugMux); err != nil {
				log.Printf("debug server stopped: %v", err)
			}
		}()
	}

	if err := common.Serve(ctx, common.NewServer(*listenAddress, mux, cfg), "list server", cfg); err != nil {
		log.Fatalf("list server failed: %v", err)
	}
}
