package slp

import (
	"github.com/blang/semver/v4"
)

// Event pairs a command with its decoded payload. The payload type depends on
// the command: *GameStart for CmdGameStart, *PreFrame for CmdPreFrame, and so
// on. For CmdMessageSizes the payload is the PayloadSizes table itself.
type Event struct {
	Command Command
	Payload any
}

// PlayerType enumerates the slot types in the game start block.
type PlayerType uint8

const (
	PlayerHuman PlayerType = iota
	PlayerCPU
	PlayerDemo
	PlayerEmpty
)

// GameMode values carried in the game start block.
const (
	ModeVS             uint8 = 0x02
	ModeOnline         uint8 = 0x08
	ModeTargetTest     uint8 = 0x0f
	ModeHomeRunContest uint8 = 0x20
)

// PlayerInfo is one player slot of the game start block.
type PlayerInfo struct {
	Index         int        `json:"index"`
	Port          int        `json:"port"`
	CharacterID   uint8      `json:"characterId"` // CSS (character select) ID
	PlayerType    PlayerType `json:"playerType"`
	StartStocks   uint8      `json:"startStocks"`
	CostumeIndex  uint8      `json:"costumeIndex"`
	TeamShade     uint8      `json:"teamShade"`
	Handicap      uint8      `json:"handicap"`
	TeamID        uint8      `json:"teamId"`
	CPULevel      uint8      `json:"cpuLevel"`
	DashbackFix   *uint32    `json:"dashbackFix,omitempty"`
	ShieldDropFix *uint32    `json:"shieldDropFix,omitempty"`
	// InternalCharacterID is filled once settings stabilize; it resolves
	// provisional select-screen characters (Zelda/Sheik).
	InternalCharacterID *uint8 `json:"internalCharacterId,omitempty"`

	Nametag     string `json:"nametag,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	ConnectCode string `json:"connectCode,omitempty"`
	UserID      string `json:"userId,omitempty"`
}

// GameStart holds the immutable match settings announced at the top of the
// stream. Fields introduced by later format versions are pointers and stay
// nil when the payload predates them.
type GameStart struct {
	SlpVersion        semver.Version `json:"slpVersion"`
	GameMode          uint8          `json:"gameMode"`
	IsTeams           bool           `json:"isTeams"`
	ItemSpawnBehavior int8           `json:"itemSpawnBehavior"`
	StageID           uint16         `json:"stageId"`
	GameTimer         uint32         `json:"gameTimer"`
	Players           [4]PlayerInfo  `json:"players"`
	RandomSeed        uint32         `json:"randomSeed"`
	PAL               *bool          `json:"pal,omitempty"`
	FrozenPS          *bool          `json:"frozenPs,omitempty"`
	MinorScene        *uint8         `json:"minorScene,omitempty"`
	MajorScene        *uint8         `json:"majorScene,omitempty"`
	LanguageOption    *uint8         `json:"languageOption,omitempty"`
	MatchID           string         `json:"matchId,omitempty"`
	GameNumber        *uint32        `json:"gameNumber,omitempty"`
	TiebreakerNumber  *uint32        `json:"tiebreakerNumber,omitempty"`
}

// ActivePlayers returns the indices of the non-empty player slots.
func (g *GameStart) ActivePlayers() []int {
	var active []int
	for i := range g.Players {
		if g.Players[i].PlayerType != PlayerEmpty {
			active = append(active, i)
		}
	}
	return active
}

// RankedMode classifies the match id prefix as "ranked", "unranked", or
// "unknown" (local/direct games carry no match id).
func (g *GameStart) RankedMode() string {
	switch {
	case len(g.MatchID) >= 11 && g.MatchID[:11] == "mode.ranked":
		return "ranked"
	case len(g.MatchID) >= 13 && g.MatchID[:13] == "mode.unranked":
		return "unranked"
	}
	return "unknown"
}

// PreFrame is the controller and positional state sampled before the engine
// processes a frame for one character.
type PreFrame struct {
	FrameNumber      int32    `json:"frame"`
	PlayerIndex      int      `json:"playerIndex"`
	IsFollower       bool     `json:"isFollower"`
	Seed             uint32   `json:"seed"`
	ActionStateID    uint16   `json:"actionStateId"`
	X                float32  `json:"x"`
	Y                float32  `json:"y"`
	FacingDirection  float32  `json:"facingDirection"`
	JoystickX        float32  `json:"joystickX"`
	JoystickY        float32  `json:"joystickY"`
	CStickX          float32  `json:"cStickX"`
	CStickY          float32  `json:"cStickY"`
	Trigger          float32  `json:"trigger"`
	Buttons          uint32   `json:"buttons"`
	PhysicalButtons  uint16   `json:"physicalButtons"`
	PhysicalLTrigger float32  `json:"physicalLTrigger"`
	PhysicalRTrigger float32  `json:"physicalRTrigger"`
	RawJoystickX     *int8    `json:"rawJoystickX,omitempty"`
	Percent          *float32 `json:"percent,omitempty"`
}

// Physical button bit masks for PreFrame.PhysicalButtons.
const (
	ButtonDpadLeft  uint16 = 0x0001
	ButtonDpadRight uint16 = 0x0002
	ButtonDpadDown  uint16 = 0x0004
	ButtonDpadUp    uint16 = 0x0008
	ButtonZ         uint16 = 0x0010
	ButtonR         uint16 = 0x0020
	ButtonL         uint16 = 0x0040
	ButtonA         uint16 = 0x0100
	ButtonB         uint16 = 0x0200
	ButtonX         uint16 = 0x0400
	ButtonY         uint16 = 0x0800
	ButtonStart     uint16 = 0x1000
)

// SelfInducedSpeeds groups the v3.5+ knockback/movement speed components.
type SelfInducedSpeeds struct {
	AirX    float32 `json:"airX"`
	Y       float32 `json:"y"`
	AttackX float32 `json:"attackX"`
	AttackY float32 `json:"attackY"`
	GroundX float32 `json:"groundX"`
}

// PostFrame is the resolved character state after the engine processed a
// frame.
type PostFrame struct {
	FrameNumber           int32              `json:"frame"`
	PlayerIndex           int                `json:"playerIndex"`
	IsFollower            bool               `json:"isFollower"`
	InternalCharacterID   uint8              `json:"internalCharacterId"`
	ActionStateID         uint16             `json:"actionStateId"`
	X                     float32            `json:"x"`
	Y                     float32            `json:"y"`
	FacingDirection       float32            `json:"facingDirection"`
	Percent               float32            `json:"percent"`
	ShieldSize            float32            `json:"shieldSize"`
	LastHittingAttackID   uint8              `json:"lastHittingAttackId"`
	CurrentComboCount     uint8              `json:"currentComboCount"`
	LastHitBy             uint8              `json:"lastHitBy"`
	StocksRemaining       uint8              `json:"stocksRemaining"`
	ActionStateCounter    *float32           `json:"actionStateCounter,omitempty"`
	StateFlags            *[5]uint8          `json:"stateFlags,omitempty"`
	MiscActionState       *float32           `json:"miscActionState,omitempty"`
	IsAirborne            *bool              `json:"isAirborne,omitempty"`
	LastGroundID          *uint16            `json:"lastGroundId,omitempty"`
	JumpsRemaining        *uint8             `json:"jumpsRemaining,omitempty"`
	LCancelStatus         *uint8             `json:"lCancelStatus,omitempty"`
	HurtboxCollisionState *uint8             `json:"hurtboxCollisionState,omitempty"`
	SelfInducedSpeeds     *SelfInducedSpeeds `json:"selfInducedSpeeds,omitempty"`
	HitlagRemaining       *float32           `json:"hitlagRemaining,omitempty"`
	AnimationIndex        *uint32            `json:"animationIndex,omitempty"`
}

// ItemUpdate describes one active item on a frame.
type ItemUpdate struct {
	FrameNumber      int32   `json:"frame"`
	TypeID           uint16  `json:"typeId"`
	State            uint8   `json:"state"`
	FacingDirection  float32 `json:"facingDirection"`
	XVelocity        float32 `json:"xVelocity"`
	YVelocity        float32 `json:"yVelocity"`
	X                float32 `json:"x"`
	Y                float32 `json:"y"`
	DamageTaken      uint16  `json:"damageTaken"`
	ExpirationTimer  float32 `json:"expirationTimer"`
	SpawnID          uint32  `json:"spawnId"`
	SamusMissileType *uint8  `json:"samusMissileType,omitempty"`
	PeachTurnipFace  *uint8  `json:"peachTurnipFace,omitempty"`
	IsLaunched       *uint8  `json:"isLaunched,omitempty"`
	ChargedPower     *uint8  `json:"chargedPower,omitempty"`
	Owner            *int8   `json:"owner,omitempty"`
}

// FrameStart opens a frame on v2.2+ streams.
type FrameStart struct {
	FrameNumber       int32   `json:"frame"`
	Seed              uint32  `json:"seed"`
	SceneFrameCounter *uint32 `json:"sceneFrameCounter,omitempty"`
}

// FrameBookend closes a frame and carries the rollback finalization point.
type FrameBookend struct {
	FrameNumber          int32  `json:"frame"`
	LatestFinalizedFrame *int32 `json:"latestFinalizedFrame,omitempty"`
}

// GameEndMethod enumerates how a game concluded.
type GameEndMethod uint8

const (
	EndUnresolved GameEndMethod = 0
	EndTime       GameEndMethod = 1
	EndGame       GameEndMethod = 2
	EndResolved   GameEndMethod = 3
	EndNoContest  GameEndMethod = 7
)

// GameEnd is the final command of a game.
type GameEnd struct {
	Method        GameEndMethod `json:"method"`
	LRASInitiator *int8         `json:"lrasInitiator,omitempty"`
	Placements    *[4]int8      `json:"placements,omitempty"`
}

// GeckoList carries the gecko code section of the stream.
type GeckoList struct {
	Codes []byte `json:"-"`
}

// SplitMessage wraps a fragment of an oversized internal command.
type SplitMessage struct {
	Data            []byte  `json:"-"`
	DataLength      uint16  `json:"dataLength"`
	InternalCommand Command `json:"internalCommand"`
	LastMessage     bool    `json:"lastMessage"`
}

// FODPlatform reports a Fountain of Dreams side platform height change.
type FODPlatform struct {
	FrameNumber int32   `json:"frame"`
	Platform    uint8   `json:"platform"` // 0 = right, 1 = left
	Height      float32 `json:"height"`
}

// Whispy reports a Dream Land wind direction change.
type Whispy struct {
	FrameNumber int32 `json:"frame"`
	Direction   uint8 `json:"direction"`
}

// StadiumTransformation reports a Pokémon Stadium transformation event.
type StadiumTransformation struct {
	FrameNumber    int32  `json:"frame"`
	Event          uint16 `json:"event"`
	Transformation uint16 `json:"transformation"`
}
