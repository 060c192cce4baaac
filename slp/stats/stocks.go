package stats

import (
	"github.com/zaesho/slp-dissect/slp"
)

// Stock is one life, from spawn (or game start) to death or game end.
// EndFrame, EndPercent, and DeathAnimation stay nil while the stock is
// still alive.
type Stock struct {
	PlayerIndex    int      `json:"playerIndex"`
	StartFrame     int32    `json:"startFrame"`
	EndFrame       *int32   `json:"endFrame"`
	StartPercent   float32  `json:"startPercent"`
	EndPercent     *float32 `json:"endPercent"`
	CurrentPercent float32  `json:"currentPercent"`
	Count          uint8    `json:"count"`
	DeathAnimation *uint16  `json:"deathAnimation"`
}

// StockComputer tracks one open stock per player. A stock opens when the
// player's action state leaves the dead range and closes on the frame the
// stock counter drops.
type StockComputer struct {
	players []int
	open    map[int]*Stock
	stocks  []*Stock
}

func NewStockComputer() *StockComputer {
	return &StockComputer{}
}

func (c *StockComputer) Setup(settings *slp.GameStart) {
	c.players = settings.ActivePlayers()
	c.open = make(map[int]*Stock)
	c.stocks = nil
}

func (c *StockComputer) ProcessFrame(frame *slp.Frame, all FrameHistory) {
	for _, idx := range c.players {
		post := postFor(frame, idx)
		if post == nil {
			continue
		}
		prev := prevPostFor(all, frame.Number, idx)

		stock := c.open[idx]
		if stock == nil {
			if isDead(post.ActionStateID) {
				continue // respawning; wait for the state to leave the dead range
			}
			stock = &Stock{
				PlayerIndex:    idx,
				StartFrame:     frame.Number,
				StartPercent:   post.Percent,
				CurrentPercent: post.Percent,
				Count:          post.StocksRemaining,
			}
			c.open[idx] = stock
			c.stocks = append(c.stocks, stock)
			continue
		}

		stock.CurrentPercent = post.Percent
		if didLoseStock(post, prev) {
			end := frame.Number
			// The game can reset the percent on the death frame itself, so
			// the prior frame carries the damage the stock ended at.
			percent := post.Percent
			if prev != nil {
				percent = prev.Percent
			}
			animation := post.ActionStateID
			stock.EndFrame = &end
			stock.EndPercent = &percent
			stock.CurrentPercent = percent
			stock.DeathAnimation = &animation
			delete(c.open, idx)
		}
	}
}

// Stocks returns the accumulated stock records in creation order.
func (c *StockComputer) Stocks() []Stock {
	out := make([]Stock, len(c.stocks))
	for i, s := range c.stocks {
		out[i] = *s
	}
	return out
}

func (c *StockComputer) Fetch() any {
	return c.Stocks()
}
