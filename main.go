package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matst80/slask-builder/pkg/cart"
	"github.com/matst80/slask-builder/pkg/catalog"
	"github.com/matst80/slask-builder/pkg/common"
	"github.com/matst80/slask-builder/pkg/messaging"
	"github.com/matst80/slask-builder/pkg/server"
	"github.com/matst80/slask-builder/pkg/session"
	"github.com/matst80/slask-builder/pkg/tracking"
)

var enableProfiling = flag.Bool("profiling", true, "enable profiling endpoints")
var rabbitUrl = os.Getenv("RABBIT_URL")
var redisUrl = os.Getenv("REDIS_URL")
var redisPassword = os.Getenv("REDIS_PASSWORD")
var cartServiceUrl = os.Getenv("CART_SERVICE_URL")
var cartSections = os.Getenv("CART_SECTIONS")
var catalogPath = os.Getenv("CATALOG_PATH")
var country = os.Getenv("COUNTRY")
var tokenHash = os.Getenv("SLASK_TOKEN_HASH")
var apiKey = os.Getenv("SLASK_API_KEY")
var listenAddress = ":8080"
var debugAddress = ":8081"

func readFeed(name string) []byte {
	if catalogPath == "" {
		return nil
	}
	data, err := os.ReadFile(filepath.Join(catalogPath, name))
	if err != nil {
		log.Printf("no %s feed: %v", name, err)
		return nil
	}
	return data
}

// loadCatalog reads the feed documents from disk. A malformed feed
// degrades to an empty catalog instead of stopping the service.
func loadCatalog() *catalog.Index {
	idx, err := catalog.Load(
		readFeed("sports.json"),
		readFeed("shaft-types.json"),
		readFeed("shaft-sizes.json"),
		readFeed("labels.json"),
	)
	if err != nil {
		log.Printf("failed to load catalog: %v", err)
		return catalog.Empty()
	}
	log.Printf("catalog loaded with %d sports", len(idx.Sports()))
	return idx
}

func main() {
	flag.Parse()

	var storage session.Storage
	if redisUrl != "" {
		storage = session.NewRedisStorage(redisUrl, redisPassword, 0)
		log.Printf("session storage on redis, url: %s", redisUrl)
	} else {
		storage = session.NewMemoryStorage()
		log.Println("session storage in memory")
	}

	var sections []string
	if cartSections != "" {
		sections = strings.Split(cartSections, ",")
	}
	submitter := &cart.Submitter{
		Client: cart.NewClientWithConfig(cartServiceUrl, sections),
	}

	var trk tracking.Tracking
	var notifier *messaging.RabbitNotifier
	if rabbitUrl != "" {
		var err error
		notifier, err = messaging.NewRabbitNotifier(rabbitUrl, country)
		if err != nil {
			log.Fatalf("Failed to connect cart notifier, %v", err)
		}
		submitter.Notifier = notifier
		rabbitTracking, err := tracking.NewRabbitTracking(rabbitUrl, country)
		if err != nil {
			log.Fatalf("Failed to create rabbit tracking")
		}
		trk = rabbitTracking
	}

	srv := server.NewBuilderServer(loadCatalog(), storage, submitter, trk)
	srv.ApiKey = apiKey
	srv.TokenSecret = []byte(tokenHash)

	if notifier != nil {
		// the feed pipeline announces new documents over rabbit
		err := notifier.OnCatalogUpdated(func() {
			log.Println("catalog update announced, reloading feeds")
			srv.SwapCatalog(loadCatalog())
		})
		if err != nil {
			log.Printf("failed to listen for catalog updates: %v", err)
		}
	}

	mux := http.NewServeMux()
	mux.Handle("/builder/", http.StripPrefix("/builder", srv.BuilderHandler()))
	mux.Handle("/catalog/", http.StripPrefix("/catalog", srv.CatalogHandler()))
	mux.Handle("/admin/", http.StripPrefix("/admin", srv.AdminHandler()))

	debugMux := http.NewServeMux()
	debugMux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	debugMux.Handle("/metrics", promhttp.Handler())
	if enableProfiling != nil && *enableProfiling {
		log.Println("Profiling enabled")
		debugMux.HandleFunc("/debug/pprof/", pprof.Index)
		debugMux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		debugMux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		debugMux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		debugMux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}
	go func() {
		log.Printf("Starting debug server %v", debugAddress)
		log.Fatal(http.ListenAndServe(debugAddress, debugMux))
	}()

	timeouts := common.LoadTimeoutConfig(common.TimeoutConfig{
		ReadHeader: 5 * time.Second,
		Read:       30 * time.Second,
		Write:      30 * time.Second,
		Idle:       60 * time.Second,
		Shutdown:   15 * time.Second,
		Hook:       5 * time.Second,
	})
	httpServer := common.NewServerWithTimeouts(&http.Server{
		Addr:    listenAddress,
		Handler: mux,
	}, timeouts)
	common.RunServerWithShutdown(httpServer, "slask-builder", timeouts.Shutdown, timeouts.Hook,
		func(ctx context.Context) error {
			if notifier != nil {
				return notifier.Close()
			}
			return nil
		},
		func(ctx context.Context) error {
			if closer, ok := storage.(interface{ Close() error }); ok {
				return closer.Close()
			}
			return nil
		},
	)
}
