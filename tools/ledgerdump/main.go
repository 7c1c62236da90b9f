// Command ledgerdump prints the Active and History ledgers of the configured
// store with an accuracy summary.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/markusmuilu/Predicting-Nba/internal/app"
	"github.com/markusmuilu/Predicting-Nba/internal/config"
	"github.com/markusmuilu/Predicting-Nba/internal/ledger"
)

func main() {
	limit := flag.Int("n", 20, "history rows to print, newest last (0 for all)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := app.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	l := ledger.New(s, zap.NewNop())
	active, err := l.LoadActive(ctx)
	if err != nil {
		log.Fatalf("Failed to load active ledger: %v", err)
	}
	history, err := l.LoadHistory(ctx)
	if err != nil {
		log.Fatalf("Failed to load history: %v", err)
	}

	fmt.Printf("Active (%d)\n", active.Len())
	for _, p := range active.Records() {
		fmt.Println("  " + FormatPending(p))
	}

	records := history.Records()
	if *limit > 0 && len(records) > *limit {
		records = records[len(records)-*limit:]
	}
	fmt.Printf("\nHistory (%d, showing %d)\n", history.Len(), len(records))
	for _, r := range records {
		fmt.Println("  " + FormatResolved(r))
	}

	fmt.Fprintln(os.Stdout)
	fmt.Println(FormatAccuracy(history.Accuracy()))
}
