// Command catalog fetches the remote item catalog with the configured
// credentials and prints the resulting legacy/model tables. Operators run it
// to verify backend connectivity and catalog contents before loading the
// plugin on a live server.
package main

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/strafemod/paintkit/internal/backend"
	"github.com/strafemod/paintkit/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.CatalogURL == "" {
		log.Fatal("CATALOG_URL is not set")
	}

	client := backend.NewClient(cfg.BackendBaseURL(), cfg.CatalogURL, cfg.APIKey)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	descriptors, err := client.FetchCatalog(ctx)
	if err != nil {
		log.Fatalf("Failed to fetch catalog: %v", err)
	}

	sort.Slice(descriptors, func(i, j int) bool {
		if descriptors[i].Def != descriptors[j].Def {
			return descriptors[i].Def < descriptors[j].Def
		}
		return descriptors[i].Index < descriptors[j].Index
	})

	legacy, models := 0, 0
	fmt.Println("--- Legacy paints ---")
	for _, d := range descriptors {
		if !d.Legacy {
			continue
		}
		legacy++
		fmt.Printf("def=%d paint=%d type=%s\n", d.Def, d.Index, d.Type)
	}

	fmt.Println("\n--- Definition models ---")
	for _, d := range descriptors {
		if d.Model == "" {
			continue
		}
		models++
		fmt.Printf("def=%d model=%s\n", d.Def, d.Model)
	}

	fmt.Printf("\n%d descriptors, %d legacy paints, %d models\n",
		len(descriptors), legacy, models)
}
