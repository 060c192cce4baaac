package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/zaesho/slp-dissect/slp"
)

// Command-level dump of a replay's binary event stream: opcode, payload
// size, and a hex preview of each command, plus per-command totals.

const previewBytes = 24

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: rawdump <replay.slp> [maxCommands]")
		os.Exit(1)
	}
	maxCommands := 200
	if len(os.Args) > 2 {
		fmt.Sscanf(os.Args[2], "%d", &maxCommands)
	}

	f, err := os.Open(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	counts := make(map[slp.Command]int)
	totals := make(map[slp.Command]int)
	printed := 0

	parser := slp.NewParser()
	stream := slp.NewStream(
		slp.WithMode(slp.ModeManual),
		slp.OnRaw(func(cmd slp.Command, raw []byte) {
			counts[cmd]++
			totals[cmd] += len(raw)
			if printed < maxCommands {
				preview := raw
				if len(preview) > previewBytes {
					preview = preview[:previewBytes]
				}
				fmt.Printf("%-22s %5d bytes  %s\n", cmd, len(raw), hex.EncodeToString(preview))
				printed++
			}
		}),
		slp.OnEvent(parser.HandleEvent),
	)

	buf := make([]byte, 32*1024)
	for {
		n, rerr := f.Read(buf)
		if n > 0 {
			if _, werr := stream.Write(buf[:n]); werr != nil {
				fmt.Fprintf(os.Stderr, "Decode error: %v\n", werr)
				break
			}
		}
		if rerr != nil {
			break
		}
	}

	fmt.Println("\n=== COMMAND TOTALS ===")
	for cmd, n := range counts {
		fmt.Printf("%-22s %7d commands %10d bytes\n", cmd, n, totals[cmd])
	}
	if last, ok := parser.LatestFrame(); ok {
		fmt.Printf("\nLast frame: %d, rollbacks: %d\n", last, parser.Rollbacks().Total())
	}
}
