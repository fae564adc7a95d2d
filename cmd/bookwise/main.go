package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/smehra/bookwise/internal/catalog"
	"github.com/smehra/bookwise/internal/gateway"
	"github.com/smehra/bookwise/internal/governance"
	"github.com/smehra/bookwise/internal/observability"
	"github.com/smehra/bookwise/internal/pipeline"
	"github.com/smehra/bookwise/internal/provider"
	"github.com/smehra/bookwise/internal/store"
	"github.com/smehra/bookwise/pkg/config"
)

func main() {
	cfgPath := flag.String("config", "config.json", "path to config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	appName := cfg.App.Name
	if appName == "" {
		appName = "bookwise"
	}
	observability.PrintBanner(appName)

	pName, pCfg := cfg.GetDefaultProvider()
	if pName == "" {
		log.Fatal("No enabled provider found in config")
	}

	// The web form collects a key per request; a key typed here becomes
	// the process-wide fallback for gateways without key entry.
	if pCfg.APIKey == "" && term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Printf("Enter your %s API key (leave empty to supply it per request): ", pName)
		keyBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			log.Printf("Warning: could not read API key: %v", err)
		} else {
			pCfg.APIKey = string(keyBytes)
		}
	}

	factory := provider.NewFactory(pName, pCfg)

	var runStore *store.RunStore
	if cfg.Memory.Path != "" {
		runStore, err = store.NewRunStore(cfg.Memory.Path)
		if err != nil {
			log.Fatal(err)
		}
		defer runStore.Close()
	}

	logger := observability.NewLogger()

	gov := governance.NewDefaultPolicyEngine()
	// Default safety rules: Skip plan steps that smell like prompt injection
	_ = gov.DenyTask(`(?i)ignore (all )?previous`)
	_ = gov.DenyTask(`(?i)system prompt`)
	_ = gov.DenyTask(`(?i)api[ _-]?key`)

	svc := &pipeline.Service{
		Factory:    factory,
		Catalog:    catalog.NewClient(cfg.Catalog.Endpoint),
		Policy:     gov,
		Logger:     logger,
		MaxResults: cfg.Catalog.MaxResults,
	}
	if runStore != nil {
		svc.Store = runStore
	}

	webCfg, ok := cfg.GetWebConfig()
	if !ok {
		log.Fatal("Web gateway is not enabled in config")
	}

	var lister gateway.RunLister
	if runStore != nil {
		lister = runStore
	}
	web := gateway.NewWebGateway(webCfg.Listen, appName, svc, lister)

	gateways := []gateway.Gateway{web}

	if tgCfg, ok := cfg.GetTelegramConfig(); ok {
		tg, err := gateway.NewTelegramGateway(tgCfg.Token, svc)
		if err != nil {
			log.Printf("Warning: Failed to initialize telegram gateway: %v", err)
		} else {
			gateways = append(gateways, tg)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for _, gw := range gateways {
		gw := gw
		go func() {
			if err := gw.Start(); err != nil {
				log.Printf("gateway error: %v", err)
				stop() // stop the process if a gateway dies
			}
		}()
	}

	<-ctx.Done()

	for _, gw := range gateways {
		if err := gw.Stop(); err != nil {
			log.Printf("gateway shutdown: %v", err)
		}
	}

	// Give a short time for final logs/syncs
	time.Sleep(200 * time.Millisecond)
	log.Println("bookwise stopped")
}
