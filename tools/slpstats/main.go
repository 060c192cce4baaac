package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/zaesho/slp-dissect/slp"
	"github.com/zaesho/slp-dissect/slp/stats"
)

type output struct {
	Path    string        `json:"path"`
	Players []playerEntry `json:"players"`
	Result  *stats.Result `json:"result"`
}

type playerEntry struct {
	Port        int    `json:"port"`
	Character   string `json:"character"`
	DisplayName string `json:"displayName,omitempty"`
	ConnectCode string `json:"connectCode,omitempty"`
}

func main() {
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if flag.NArg() < 1 {
		fmt.Println("Usage: slpstats [-debug] <replay.slp | replay.slp.zst>")
		os.Exit(1)
	}

	game, err := slp.ParseFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	result, err := stats.Compute(game)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	out := output{Path: flag.Arg(0), Result: result}
	for _, idx := range game.Settings.ActivePlayers() {
		p := game.Settings.Players[idx]
		out.Players = append(out.Players, playerEntry{
			Port:        p.Port,
			Character:   slp.CharacterName(p.CharacterID),
			DisplayName: p.DisplayName,
			ConnectCode: p.ConnectCode,
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
