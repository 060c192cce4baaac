package stats

import (
	"github.com/zaesho/slp-dissect/slp"
)

// targetItemTypeID is the item type of a Break the Targets target.
const targetItemTypeID uint16 = 209

// TargetBreak records one target in a Target Test game: where it spawned
// and, once broken, the frame it disappeared.
type TargetBreak struct {
	SpawnID        uint32  `json:"spawnId"`
	PositionX      float32 `json:"positionX"`
	PositionY      float32 `json:"positionY"`
	FrameDestroyed *int32  `json:"frameDestroyed"`
}

// TargetBreakComputer tracks target items for Target Test games. A target is
// broken on the first frame its spawn id stops appearing in item updates.
type TargetBreakComputer struct {
	enabled bool
	targets map[uint32]*TargetBreak
	order   []uint32
}

func NewTargetBreakComputer() *TargetBreakComputer {
	return &TargetBreakComputer{}
}

func (c *TargetBreakComputer) Setup(settings *slp.GameStart) {
	c.enabled = settings.GameMode == slp.ModeTargetTest
	c.targets = make(map[uint32]*TargetBreak)
	c.order = nil
}

func (c *TargetBreakComputer) ProcessFrame(frame *slp.Frame, all FrameHistory) {
	if !c.enabled {
		return
	}
	seen := make(map[uint32]bool, len(frame.Items))
	for i := range frame.Items {
		item := &frame.Items[i]
		if item.TypeID != targetItemTypeID {
			continue
		}
		seen[item.SpawnID] = true
		if _, ok := c.targets[item.SpawnID]; !ok {
			c.targets[item.SpawnID] = &TargetBreak{
				SpawnID:   item.SpawnID,
				PositionX: item.X,
				PositionY: item.Y,
			}
			c.order = append(c.order, item.SpawnID)
		}
	}
	for _, id := range c.order {
		t := c.targets[id]
		if t.FrameDestroyed == nil && !seen[id] {
			destroyed := frame.Number
			t.FrameDestroyed = &destroyed
		}
	}
}

// Breaks returns targets in spawn order.
func (c *TargetBreakComputer) Breaks() []TargetBreak {
	out := make([]TargetBreak, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.targets[id])
	}
	return out
}

func (c *TargetBreakComputer) Fetch() any {
	return c.Breaks()
}

// HomeRunDistance is the sandbag's resting distance in a Home-Run Contest,
// in game engine units.
type HomeRunDistance struct {
	Units float32 `json:"units"`
}

// HomeRunComputer follows the sandbag's horizontal position in Home-Run
// Contest games; the last finalized frame gives the final distance.
type HomeRunComputer struct {
	enabled  bool
	sandbag  int
	found    bool
	distance float32
	sampled  bool
}

func NewHomeRunComputer() *HomeRunComputer {
	return &HomeRunComputer{}
}

func (c *HomeRunComputer) Setup(settings *slp.GameStart) {
	c.enabled = settings.GameMode == slp.ModeHomeRunContest
	c.found = false
	c.sampled = false
	c.distance = 0
}

func (c *HomeRunComputer) ProcessFrame(frame *slp.Frame, all FrameHistory) {
	if !c.enabled {
		return
	}
	for idx := 0; idx < slp.MaxPlayers; idx++ {
		post := postFor(frame, idx)
		if post == nil {
			continue
		}
		if !c.found {
			if post.InternalCharacterID != slp.InternalCharSandbag {
				continue
			}
			c.found = true
			c.sandbag = idx
		}
		if idx == c.sandbag {
			if x := post.X; x < 0 {
				c.distance = -x
			} else {
				c.distance = x
			}
			c.sampled = true
		}
	}
}

// Distance returns the sandbag's distance, or nil if no sandbag was seen.
func (c *HomeRunComputer) Distance() *HomeRunDistance {
	if !c.sampled {
		return nil
	}
	return &HomeRunDistance{Units: c.distance}
}

func (c *HomeRunComputer) Fetch() any {
	return c.Distance()
}
