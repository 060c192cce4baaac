// Package winrate aggregates head-to-head results across a directory of
// replays: per-opponent win/loss records split by ranked mode, stage and
// character tallies, and ranked set scores grouped by match id.
package winrate

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zaesho/slp-dissect/slp"
)

// ErrNotSingles is returned for games that are not exactly two players;
// only 1v1 games count toward a winrate.
var ErrNotSingles = errors.New("winrate: not a two-player game")

// GameResult is the per-game summary fed into the aggregator.
type GameResult struct {
	Players    map[int]string `json:"players"` // port index -> "Name (CODE#123)"
	Characters map[int]uint8  `json:"characters"`
	WinnerPort *int           `json:"winnerPort"`
	StageID    uint16         `json:"stageId"`
	GameMode   string         `json:"gameMode"` // ranked / unranked / unknown
	MatchID    string         `json:"matchId"`
	GameNumber uint32         `json:"gameNumber"`
	PlayedAt   time.Time      `json:"playedAt"`
}

// playerLabel formats "DisplayName (CODE#123)", falling back to the nametag
// and finally the port.
func playerLabel(p *slp.PlayerInfo) string {
	if p.ConnectCode != "" {
		name := p.DisplayName
		if name == "" {
			name = "Unknown"
		}
		return name + " (" + p.ConnectCode + ")"
	}
	if p.Nametag != "" {
		return p.Nametag
	}
	return fmt.Sprintf("Player (Port %d)", p.Port)
}

// ResultFromGame summarizes one decoded game. The winner is taken from the
// computed placements; nil if the game ended without a resolvable result.
func ResultFromGame(game *slp.Game, playedAt time.Time) (*GameResult, error) {
	active := game.Settings.ActivePlayers()
	if len(active) != 2 {
		return nil, ErrNotSingles
	}
	res := &GameResult{
		Players:    make(map[int]string, 2),
		Characters: make(map[int]uint8, 2),
		StageID:    game.Settings.StageID,
		GameMode:   game.Settings.RankedMode(),
		MatchID:    game.Settings.MatchID,
		PlayedAt:   playedAt,
	}
	if game.Settings.GameNumber != nil {
		res.GameNumber = *game.Settings.GameNumber
	}
	for _, idx := range active {
		res.Players[idx] = playerLabel(&game.Settings.Players[idx])
		res.Characters[idx] = game.Settings.Players[idx].CharacterID
	}
	for _, pl := range game.Placements {
		if pl.Position == 0 {
			winner := pl.PlayerIndex
			res.WinnerPort = &winner
			break
		}
	}
	return res, nil
}

// WinLoss is a wins/losses pair.
type WinLoss struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
}

func (w *WinLoss) add(won bool) {
	if won {
		w.Wins++
	} else {
		w.Losses++
	}
}

// OpponentRecord is everything tracked against one opponent.
type OpponentRecord struct {
	Total      WinLoss            `json:"total"`
	Ranked     WinLoss            `json:"ranked"`
	Unranked   WinLoss            `json:"unranked"`
	Sets       WinLoss            `json:"sets"`
	Stages     map[string]WinLoss `json:"stages"`
	TheirChars map[string]int     `json:"theirChars"`
	LastPlayed time.Time          `json:"lastPlayed"`
}

func newOpponentRecord() *OpponentRecord {
	return &OpponentRecord{
		Stages:     make(map[string]WinLoss),
		TheirChars: make(map[string]int),
	}
}

// OverallRecord aggregates across all opponents.
type OverallRecord struct {
	Total    WinLoss            `json:"total"`
	Ranked   WinLoss            `json:"ranked"`
	Unranked WinLoss            `json:"unranked"`
	Sets     WinLoss            `json:"sets"`
	Stages   map[string]WinLoss `json:"stages"`
	MyChars  map[string]int     `json:"myChars"`
}

// Aggregator folds game results into per-opponent and overall records for
// one player, identified by connect code.
type Aggregator struct {
	myCode     string
	Records    map[string]*OpponentRecord
	Overall    OverallRecord
	rankedSets map[string][]*GameResult
}

// NewAggregator builds an aggregator for the player with the given connect
// code (case-insensitive).
func NewAggregator(myCode string) *Aggregator {
	return &Aggregator{
		myCode:  strings.ToLower(strings.TrimSpace(myCode)),
		Records: make(map[string]*OpponentRecord),
		Overall: OverallRecord{
			Stages:  make(map[string]WinLoss),
			MyChars: make(map[string]int),
		},
		rankedSets: make(map[string][]*GameResult),
	}
}

// Ports splits a result into (mine, theirs) based on the connect code.
func (a *Aggregator) Ports(res *GameResult) (int, int, bool) {
	myPort, oppPort := -1, -1
	for port, label := range res.Players {
		if strings.Contains(strings.ToLower(label), a.myCode) {
			myPort = port
		} else {
			oppPort = port
		}
	}
	return myPort, oppPort, myPort >= 0 && oppPort >= 0
}

// AddGame folds one result into the records. Games where the aggregating
// player does not appear are ignored.
func (a *Aggregator) AddGame(res *GameResult) {
	myPort, oppPort, ok := a.Ports(res)
	if !ok {
		log.Debug().Str("matchId", res.MatchID).Msg("winrate: player not in game, skipping")
		return
	}
	oppName := res.Players[oppPort]
	rec, exists := a.Records[oppName]
	if !exists {
		rec = newOpponentRecord()
		a.Records[oppName] = rec
	}
	if res.PlayedAt.After(rec.LastPlayed) {
		rec.LastPlayed = res.PlayedAt
	}

	rec.TheirChars[slp.CharacterName(res.Characters[oppPort])]++
	a.Overall.MyChars[slp.CharacterName(res.Characters[myPort])]++

	if res.GameMode == "ranked" && res.MatchID != "" {
		a.rankedSets[res.MatchID] = append(a.rankedSets[res.MatchID], res)
	}

	if res.WinnerPort == nil {
		return // indeterminate result counts character appearances only
	}
	won := *res.WinnerPort == myPort

	rec.Total.add(won)
	a.Overall.Total.add(won)
	switch res.GameMode {
	case "ranked":
		rec.Ranked.add(won)
		a.Overall.Ranked.add(won)
	case "unranked":
		rec.Unranked.add(won)
		a.Overall.Unranked.add(won)
	}

	stage := slp.StageName(res.StageID)
	sw := rec.Stages[stage]
	sw.add(won)
	rec.Stages[stage] = sw
	ow := a.Overall.Stages[stage]
	ow.add(won)
	a.Overall.Stages[stage] = ow
}

// FinalizeSets scores ranked sets: games sharing a match id form a set, won
// by the first player to two games. Incomplete sets (disconnects) are not
// counted.
func (a *Aggregator) FinalizeSets() {
	for _, games := range a.rankedSets {
		sort.Slice(games, func(i, j int) bool {
			return games[i].GameNumber < games[j].GameNumber
		})

		myWins, oppWins := 0, 0
		oppName := ""
		for _, g := range games {
			myPort, oppPort, ok := a.Ports(g)
			if !ok || g.WinnerPort == nil {
				continue
			}
			oppName = g.Players[oppPort]
			if *g.WinnerPort == myPort {
				myWins++
			} else {
				oppWins++
			}
			if myWins >= 2 || oppWins >= 2 {
				break
			}
		}
		if oppName == "" {
			continue
		}
		rec, exists := a.Records[oppName]
		if !exists {
			rec = newOpponentRecord()
			a.Records[oppName] = rec
		}
		switch {
		case myWins >= 2:
			rec.Sets.add(true)
			a.Overall.Sets.add(true)
		case oppWins >= 2:
			rec.Sets.add(false)
			a.Overall.Sets.add(false)
		}
	}
	a.rankedSets = make(map[string][]*GameResult)
}
