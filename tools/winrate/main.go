package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/zaesho/slp-dissect/slp"
	"github.com/zaesho/slp-dissect/slp/winrate"
)

// Scans a replay directory and reports head-to-head records for one player.
// Parsed games are cached in a sqlite database so repeat runs only touch new
// files. With -watch it keeps polling and re-prints as replays land.

func main() {
	dir := flag.String("dir", ".", "replay directory")
	code := flag.String("code", "", "your connect code, e.g. ABCD#123")
	dbPath := flag.String("db", "winrate.db", "sqlite cache path")
	watch := flag.Bool("watch", false, "keep polling for new replays")
	interval := flag.Duration("poll", 5*time.Second, "poll interval in watch mode")
	jsonOut := flag.Bool("json", false, "emit records as JSON instead of text")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *code == "" {
		fmt.Fprintln(os.Stderr, "winrate: -code is required")
		os.Exit(1)
	}

	store, err := winrate.OpenStore(*dbPath)
	if err != nil {
		log.Fatal().Err(err).Msg("winrate: opening store")
	}
	defer store.Close()

	ingest := func(path string) {
		seen, err := store.Has(path)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("winrate: cache lookup failed")
			return
		}
		if seen {
			return
		}
		game, err := slp.ParseFile(path)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("winrate: parse failed")
			return
		}
		playedAt := time.Now()
		if info, err := os.Stat(path); err == nil {
			playedAt = info.ModTime()
		}
		res, err := winrate.ResultFromGame(game, playedAt)
		if err != nil {
			log.Debug().Err(err).Str("path", path).Msg("winrate: skipping game")
			return
		}
		ports := winrate.NewAggregator(*code)
		myPort, oppPort, ok := ports.Ports(res)
		if !ok {
			log.Debug().Str("path", path).Msg("winrate: player not in game")
			return
		}
		if err := store.SaveGame(path, res, myPort, oppPort); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("winrate: save failed")
		}
	}

	scan := func() {
		filepath.WalkDir(*dir, func(path string, d os.DirEntry, err error) error {
			if err != nil || d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".slp") {
				return nil
			}
			ingest(path)
			return nil
		})
	}

	report := func() {
		agg := winrate.NewAggregator(*code)
		if err := store.LoadInto(agg); err != nil {
			log.Fatal().Err(err).Msg("winrate: loading cache")
		}
		agg.FinalizeSets()
		if *jsonOut {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			enc.Encode(map[string]any{
				"overall":   agg.Overall,
				"opponents": agg.Records,
			})
			return
		}
		printReport(agg)
	}

	scan()
	report()

	if !*watch {
		return
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	watcher := winrate.NewWatcher(*dir, *interval)
	filepath.WalkDir(*dir, func(path string, d os.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			watcher.MarkSeen(path)
		}
		return nil
	})
	log.Info().Str("dir", *dir).Msg("winrate: watching for new replays")
	watcher.Run(ctx, func(path string) {
		ingest(path)
		report()
	})
}

func printReport(agg *winrate.Aggregator) {
	o := agg.Overall
	fmt.Printf("Overall: %d-%d (ranked %d-%d, unranked %d-%d), sets %d-%d\n",
		o.Total.Wins, o.Total.Losses,
		o.Ranked.Wins, o.Ranked.Losses,
		o.Unranked.Wins, o.Unranked.Losses,
		o.Sets.Wins, o.Sets.Losses)

	names := make([]string, 0, len(agg.Records))
	for name := range agg.Records {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ri, rj := agg.Records[names[i]], agg.Records[names[j]]
		return ri.Total.Wins+ri.Total.Losses > rj.Total.Wins+rj.Total.Losses
	})
	for _, name := range names {
		rec := agg.Records[name]
		fmt.Printf("  %-32s %3d-%-3d", name, rec.Total.Wins, rec.Total.Losses)
		if rec.Sets.Wins+rec.Sets.Losses > 0 {
			fmt.Printf("  sets %d-%d", rec.Sets.Wins, rec.Sets.Losses)
		}
		fmt.Println()
	}
}
