package main

import (
	"bufio"
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matst80/slask-list/pkg/browser"
	"github.com/matst80/slask-list/pkg/common"
	"github.com/matst80/slask-list/pkg/eventloop"
	"github.com/matst80/slask-list/pkg/history"
	"github.com/matst80/slask-list/pkg/listsync"
	"github.com/matst80/slask-list/pkg/messaging"
	"github.com/matst80/slask-list/pkg/transport"
)

var startURL = flag.String("url", "http://localhost:8080/items", "page to open")
var container = flag.String("container", "", "list container selector, overrides the config file")
var filterForm = flag.String("filter", "", "filter form selector, overrides the config file")
var configFile = flag.String("config", "", "YAML list configuration")
var noHistory = flag.Bool("no-history", false, "do not add list updates to the session history")
var debugAddress = flag.String("debug", "", "metrics address, empty to disable")
var workers = flag.Int("workers", 4, "concurrent list requests")
var timeout = flag.Duration("timeout", 30*time.Second, "request timeout")
var historyQuota = flag.Int("history-quota", 0, "in-memory history quota in bytes, 0 for unlimited")

var redisUrl string
var redisPassword string
var rabbitUrl string
var rabbitVHost string
var rabbitPrefix string
var clientName string
var token string

func init() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("failed to read .env: %v", err)
	}
	redisUrl = os.Getenv("REDIS_URL")
	redisPassword = os.Getenv("REDIS_PASSWORD")
	rabbitUrl = os.Getenv("RABBIT_URL")
	rabbitVHost = os.Getenv("RABBIT_HOST")
	rabbitPrefix = os.Getenv("RABBIT_PREFIX")
	clientName = os.Getenv("NODE_NAME")
	token = os.Getenv("LIST_TOKEN")
}

func loadConfig() listsync.Config {
	cfg := listsync.DefaultConfig()
	if *configFile != "" {
		var err error
		if cfg, err = listsync.LoadConfig(*configFile); err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}
	if *container != "" {
		cfg.Container = *container
	}
	if *filterForm != "" {
		cfg.FilterForm = *filterForm
	}
	if *noHistory {
		cfg.List.AddHistoryState = false
	}
	return cfg
}

func historyStore() history.Store {
	if redisUrl == "" {
		return history.NewMemoryStore(*historyQuota)
	}
	db := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			db = n
		}
	}
	store := history.NewRedisStore(redisUrl, redisPassword, db, "list-history", time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		log.Fatalf("failed to connect to redis %s: %v", redisUrl, err)
	}
	log.Printf("history states stored in redis, url: %s", redisUrl)
	return store
}

func main() {
	flag.Parse()
	cfg := loadConfig()

	if *debugAddress != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(*debugAddress, mux); err != nil {
				log.Printf("debug server stopped: %v", err)
			}
		}()
	}

	loop := eventloop.New()
	opts := []transport.Option{
		transport.WithTimeout(*timeout),
		transport.WithWorkers(*workers),
		transport.WithLoader(transport.LogLoader{}),
	}
	if token != "" {
		opts = append(opts, transport.WithToken(token))
	}
	tr, err := transport.NewHTTPTransport(loop, opts...)
	if err != nil {
		log.Fatalf("failed to create transport: %v", err)
	}
	defer tr.Close()

	win := browser.NewWindow(loop, tr, historyStore())
	a := newApp(win, cfg, os.Stdout)

	if rabbitUrl != "" {
		conn, err := messaging.Connect(messaging.RabbitConfig{Url: rabbitUrl, VHost: rabbitVHost, Prefix: rabbitPrefix})
		if err != nil {
			log.Fatalf("failed to connect to rabbit: %v", err)
		}
		defer conn.Close()
		sender := messaging.NewAsyncSender(&messaging.RabbitSender{Conn: conn, Prefix: rabbitPrefix}, 16)
		defer sender.Close()
		a.bridge = messaging.NewBridge(clientName, sender, loop)
		if err := messaging.Listen(conn, rabbitPrefix, a.bridge); err != nil {
			log.Fatalf("failed to listen for list updates: %v", err)
		}
		log.Printf("relaying list updates as %s", a.bridge.Source())
	}

	ctx, stop := common.SignalContext(context.Background())
	defer stop()

	win.OnLoad(a.setup)
	if err := win.Open(ctx, *startURL); err != nil {
		log.Fatalf("failed to open %s: %v", *startURL, err)
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	go func() {
		for line := range lines {
			loop.Post(func() {
				if quit := a.exec(ctx, line); quit {
					stop()
				}
			})
		}
		stop()
	}()

	if err := loop.Run(ctx); err != nil && ctx.Err() == nil {
		log.Printf("event loop stopped: %v", err)
	}
}
