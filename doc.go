// Package sdk is a Go SDK for the Elering Estfeed metering data feed.
//
// metering_sdk wraps the Estfeed public API behind an authenticated,
// rate-limited client and keeps a per-metering-point history cache that can
// be persisted to various storage backends including local filesystem,
// AWS S3, Alibaba Cloud OSS and Azure Blob Storage.
//
// # Getting started
//
// The best way to get started working with the SDK is to use `go get` to add
// the SDK to your Go dependencies explicitly.
//
//	go get github.com/estfeed/metering_sdk
//
// # Fetching the latest reading
//
// This example shows how to connect to the feed and read the most recent
// measurement for a metering point.
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//	    "log"
//	    "time"
//
//	    "github.com/estfeed/metering_sdk/api"
//	    "github.com/estfeed/metering_sdk/config"
//	)
//
//	func main() {
//	    // Create feed configuration
//	    estCfg := config.NewEstfeedConfig().
//	        WithCredentials("your-client-id", "your-client-secret").
//	        WithEIC("38ZEE-1000000-XXXXX", "ELECTRICITY").
//	        WithResolution("1h")
//
//	    // Create API client with default configuration
//	    cfg := config.DefaultConfig().WithDevelopmentLogger()
//	    client, err := api.NewClient(estCfg, cfg)
//	    if err != nil {
//	        log.Fatalf("Failed to create client: %v", err)
//	    }
//
//	    // Fetch the trailing two hours of data
//	    ctx := context.Background()
//	    end := time.Now().UTC()
//	    measurements, err := client.GetMeteringData(ctx, estCfg.EIC,
//	        end.Add(-2*time.Hour), end, estCfg.Resolution)
//	    if err != nil {
//	        log.Fatalf("Failed to fetch metering data: %v", err)
//	    }
//
//	    if len(measurements) > 0 {
//	        latest := measurements[len(measurements)-1]
//	        fmt.Printf("Latest reading at %s\n", latest.Timestamp())
//	    }
//	}
//
// # Backfilling history
//
// This example shows how to backfill history into a persisted snapshot on
// the local filesystem. Ranges wider than the feed's 31-day window limit are
// fetched in chunks automatically.
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//	    "log"
//
//	    "github.com/estfeed/metering_sdk/api"
//	    "github.com/estfeed/metering_sdk/config"
//	    "github.com/estfeed/metering_sdk/history"
//	    "github.com/estfeed/metering_sdk/storage"
//	)
//
//	func main() {
//	    estCfg := config.NewEstfeedConfig().
//	        WithCredentials("your-client-id", "your-client-secret").
//	        WithEIC("38ZEE-1000000-XXXXX", "ELECTRICITY")
//
//	    cfg := config.DefaultConfig()
//	    client, err := api.NewClient(estCfg, cfg)
//	    if err != nil {
//	        log.Fatalf("Failed to create client: %v", err)
//	    }
//
//	    // Snapshots go to the local filesystem
//	    provider, err := storage.NewObjectStorageProvider(&storage.ProviderConfig{
//	        Type: storage.ProviderTypeLocalFS,
//	        LocalFS: &storage.LocalFSConfig{
//	            BasePath:   "/tmp/estfeed-history",
//	            CreateDirs: true,
//	        },
//	    })
//	    if err != nil {
//	        log.Fatalf("Failed to create storage provider: %v", err)
//	    }
//
//	    store, err := history.NewStore(provider, client, estCfg.EIC, estCfg.Resolution, cfg)
//	    if err != nil {
//	        log.Fatalf("Failed to create history store: %v", err)
//	    }
//
//	    ctx := context.Background()
//	    if err := store.Load(ctx); err != nil {
//	        log.Fatalf("Failed to load snapshot: %v", err)
//	    }
//
//	    added, err := store.FetchHistory(ctx, 90)
//	    if err != nil {
//	        log.Fatalf("Backfill failed: %v", err)
//	    }
//	    fmt.Printf("Added %d new points, cache now holds %d\n", added, store.HistoryPoints())
//	}
//
// # Periodic refreshes
//
// The coordinator package ties the client and history store together: it
// probes connectivity, restores the persisted snapshot, runs the initial
// backfill and then refreshes the latest reading on a fixed interval.
//
//	package main
//
//	import (
//	    "context"
//	    "log"
//
//	    "github.com/estfeed/metering_sdk/api"
//	    "github.com/estfeed/metering_sdk/config"
//	    "github.com/estfeed/metering_sdk/coordinator"
//	    "github.com/estfeed/metering_sdk/history"
//	    "github.com/estfeed/metering_sdk/storage"
//	)
//
//	func main() {
//	    estCfg := config.NewEstfeedConfig().
//	        WithCredentials("your-client-id", "your-client-secret").
//	        WithEIC("38ZEE-1000000-XXXXX", "ELECTRICITY").
//	        WithScanInterval(300).
//	        WithHistoryDays(7)
//
//	    cfg := config.DefaultConfig()
//	    client, err := api.NewClient(estCfg, cfg)
//	    if err != nil {
//	        log.Fatalf("Failed to create client: %v", err)
//	    }
//
//	    provider, err := storage.NewObjectStorageProvider(&storage.ProviderConfig{
//	        Type:    storage.ProviderTypeLocalFS,
//	        LocalFS: &storage.LocalFSConfig{BasePath: "/tmp/estfeed-history", CreateDirs: true},
//	    })
//	    if err != nil {
//	        log.Fatalf("Failed to create storage provider: %v", err)
//	    }
//
//	    store, err := history.NewStore(provider, client, estCfg.EIC, estCfg.Resolution, cfg)
//	    if err != nil {
//	        log.Fatalf("Failed to create history store: %v", err)
//	    }
//
//	    coord, err := coordinator.New(client, store, estCfg, cfg)
//	    if err != nil {
//	        log.Fatalf("Failed to create coordinator: %v", err)
//	    }
//
//	    ctx := context.Background()
//	    if err := coord.Probe(ctx); err != nil {
//	        log.Fatalf("Feed not reachable: %v", err)
//	    }
//	    if err := coord.Setup(ctx); err != nil {
//	        log.Fatalf("Setup failed: %v", err)
//	    }
//
//	    // Blocks until ctx is cancelled
//	    if err := coord.Run(ctx); err != nil {
//	        log.Printf("Refresh loop stopped: %v", err)
//	    }
//	}
package sdk
