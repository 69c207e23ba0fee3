// Command seed resets record collections to their initial data.
//
//	go run ./scripts/seed            # every collection
//	go run ./scripts/seed tickets    # only the named slots or entities
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"slices"
	"strings"

	"github.com/odyssey-erp/odyssey-admin/internal/app"
	"github.com/odyssey-erp/odyssey-admin/internal/hr"
	"github.com/odyssey-erp/odyssey-admin/internal/storage"
)

func main() {
	ctx := context.Background()
	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.StorageDriver == app.DriverMemory {
		log.Fatal("memory storage is process local; nothing to seed")
	}

	client, err := storage.Dial(ctx, cfg.RedisAddr)
	if err != nil {
		log.Fatalf("connect redis: %v", err)
	}
	defer client.Close()

	store, closeStore, err := app.OpenStorage(ctx, cfg, client)
	if err != nil {
		log.Fatalf("open storage: %v", err)
	}
	defer closeStore()

	keys, err := selectKeys(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	for _, key := range keys {
		fmt.Printf("→ Resetting %s...\n", key)
		if err := store.Delete(ctx, key); err != nil {
			log.Fatalf("delete %s: %v", key, err)
		}
	}
	if _, err := hr.Open(ctx, store, hr.Options{}); err != nil {
		log.Fatalf("seed collections: %v", err)
	}
	fmt.Printf("✓ Seeded %d collections into %s storage\n", len(keys), cfg.StorageDriver)
}

// selectKeys maps arguments such as "tickets" or "adminDashboardTickets" to
// slot keys. No arguments selects every slot.
func selectKeys(args []string) ([]string, error) {
	all := hr.Keys()
	if len(args) == 0 {
		return all, nil
	}
	var keys []string
	for _, arg := range args {
		idx := slices.IndexFunc(all, func(key string) bool {
			return strings.EqualFold(key, arg) || strings.EqualFold(strings.TrimPrefix(key, "adminDashboard"), arg)
		})
		if idx < 0 {
			return nil, fmt.Errorf("unknown collection %q", arg)
		}
		keys = append(keys, all[idx])
	}
	return keys, nil
}
