package slp

import (
	"github.com/blang/semver/v4"
)

// Payload offsets below are relative to the payload start (the opcode byte is
// already stripped). The published Slippi format docs count from the
// opcode, so every documented offset appears here minus one.

// Minimum payload lengths for the fields that have existed since the earliest
// readable format version. Shorter payloads for a known command are malformed.
const (
	minGameStartLen = 320 // version + game info block + random seed
	minPreFrameLen  = 58
	minPostFrameLen = 33
	minItemLen      = 37
	minFrameStart   = 8
	minBookendLen   = 4
	minGameEndLen   = 1
	minSplitLen     = 516
)

func decodeGameStart(b []byte) (*GameStart, error) {
	p := payload{b}
	if len(b) < minGameStartLen {
		return nil, errMalformed(CmdGameStart, "payload too short")
	}
	g := &GameStart{
		SlpVersion: semver.Version{
			Major: uint64(p.uint8(0)),
			Minor: uint64(p.uint8(1)),
			Patch: uint64(p.uint8(2)),
		},
		GameMode:          p.uint8(4),
		IsTeams:           p.bool(12),
		ItemSpawnBehavior: p.int8(15),
		StageID:           p.uint16(18),
		GameTimer:         p.uint32(20),
		RandomSeed:        p.uint32(316),
		PAL:               p.boolPtr(416),
		FrozenPS:          p.boolPtr(417),
		MinorScene:        p.uint8Ptr(418),
		MajorScene:        p.uint8Ptr(419),
		LanguageOption:    p.uint8Ptr(700),
		MatchID:           p.ascii(701, 51),
		GameNumber:        p.uint32Ptr(752),
		TiebreakerNumber:  p.uint32Ptr(756),
	}
	for i := 0; i < 4; i++ {
		base := 100 + 36*i
		g.Players[i] = PlayerInfo{
			Index:         i,
			Port:          i + 1,
			CharacterID:   p.uint8(base),
			PlayerType:    PlayerType(p.uint8(base + 1)),
			StartStocks:   p.uint8(base + 2),
			CostumeIndex:  p.uint8(base + 3),
			TeamShade:     p.uint8(base + 7),
			Handicap:      p.uint8(base + 8),
			TeamID:        p.uint8(base + 9),
			CPULevel:      p.uint8(base + 15),
			DashbackFix:   p.uint32Ptr(320 + 8*i),
			ShieldDropFix: p.uint32Ptr(324 + 8*i),
			Nametag:       p.shiftJIS(352+16*i, 16),
			DisplayName:   p.shiftJIS(420+31*i, 31),
			ConnectCode:   p.shiftJIS(544+10*i, 10),
			UserID:        p.ascii(584+29*i, 29),
		}
	}
	return g, nil
}

func decodePreFrame(b []byte) (*PreFrame, error) {
	p := payload{b}
	if len(b) < minPreFrameLen {
		return nil, errMalformed(CmdPreFrame, "payload too short")
	}
	f := &PreFrame{
		FrameNumber:      p.int32(0),
		PlayerIndex:      int(p.uint8(4)),
		IsFollower:       p.bool(5),
		Seed:             p.uint32(6),
		ActionStateID:    p.uint16(10),
		X:                p.float32(12),
		Y:                p.float32(16),
		FacingDirection:  p.float32(20),
		JoystickX:        p.float32(24),
		JoystickY:        p.float32(28),
		CStickX:          p.float32(32),
		CStickY:          p.float32(36),
		Trigger:          p.float32(40),
		Buttons:          p.uint32(44),
		PhysicalButtons:  p.uint16(48),
		PhysicalLTrigger: p.float32(50),
		PhysicalRTrigger: p.float32(54),
		RawJoystickX:     p.int8Ptr(58),
		Percent:          p.float32Ptr(59),
	}
	if f.PlayerIndex >= MaxPlayers {
		return nil, errStructural(CmdPreFrame, "player index out of range")
	}
	if f.FrameNumber < FirstFrame {
		return nil, errStructural(CmdPreFrame, "frame number before first frame")
	}
	return f, nil
}

func decodePostFrame(b []byte) (*PostFrame, error) {
	p := payload{b}
	if len(b) < minPostFrameLen {
		return nil, errMalformed(CmdPostFrame, "payload too short")
	}
	f := &PostFrame{
		FrameNumber:           p.int32(0),
		PlayerIndex:           int(p.uint8(4)),
		IsFollower:            p.bool(5),
		InternalCharacterID:   p.uint8(6),
		ActionStateID:         p.uint16(7),
		X:                     p.float32(9),
		Y:                     p.float32(13),
		FacingDirection:       p.float32(17),
		Percent:               p.float32(21),
		ShieldSize:            p.float32(25),
		LastHittingAttackID:   p.uint8(29),
		CurrentComboCount:     p.uint8(30),
		LastHitBy:             p.uint8(31),
		StocksRemaining:       p.uint8(32),
		ActionStateCounter:    p.float32Ptr(33),
		MiscActionState:       p.float32Ptr(42),
		IsAirborne:            p.boolPtr(46),
		LastGroundID:          p.uint16Ptr(47),
		JumpsRemaining:        p.uint8Ptr(49),
		LCancelStatus:         p.uint8Ptr(50),
		HurtboxCollisionState: p.uint8Ptr(51),
		HitlagRemaining:       p.float32Ptr(72),
		AnimationIndex:        p.uint32Ptr(76),
	}
	if p.has(37, 5) {
		var flags [5]uint8
		copy(flags[:], b[37:42])
		f.StateFlags = &flags
	}
	if p.has(52, 20) {
		f.SelfInducedSpeeds = &SelfInducedSpeeds{
			AirX:    p.float32(52),
			Y:       p.float32(56),
			AttackX: p.float32(60),
			AttackY: p.float32(64),
			GroundX: p.float32(68),
		}
	}
	if f.PlayerIndex >= MaxPlayers {
		return nil, errStructural(CmdPostFrame, "player index out of range")
	}
	if f.FrameNumber < FirstFrame {
		return nil, errStructural(CmdPostFrame, "frame number before first frame")
	}
	return f, nil
}

func decodeItemUpdate(b []byte) (*ItemUpdate, error) {
	p := payload{b}
	if len(b) < minItemLen {
		return nil, errMalformed(CmdItemUpdate, "payload too short")
	}
	return &ItemUpdate{
		FrameNumber:      p.int32(0),
		TypeID:           p.uint16(4),
		State:            p.uint8(6),
		FacingDirection:  p.float32(7),
		XVelocity:        p.float32(11),
		YVelocity:        p.float32(15),
		X:                p.float32(19),
		Y:                p.float32(23),
		DamageTaken:      p.uint16(27),
		ExpirationTimer:  p.float32(29),
		SpawnID:          p.uint32(33),
		SamusMissileType: p.uint8Ptr(37),
		PeachTurnipFace:  p.uint8Ptr(38),
		IsLaunched:       p.uint8Ptr(39),
		ChargedPower:     p.uint8Ptr(40),
		Owner:            p.int8Ptr(41),
	}, nil
}

func decodeFrameStart(b []byte) (*FrameStart, error) {
	p := payload{b}
	if len(b) < minFrameStart {
		return nil, errMalformed(CmdFrameStart, "payload too short")
	}
	return &FrameStart{
		FrameNumber:       p.int32(0),
		Seed:              p.uint32(4),
		SceneFrameCounter: p.uint32Ptr(8),
	}, nil
}

func decodeFrameBookend(b []byte) (*FrameBookend, error) {
	p := payload{b}
	if len(b) < minBookendLen {
		return nil, errMalformed(CmdFrameBookend, "payload too short")
	}
	return &FrameBookend{
		FrameNumber:          p.int32(0),
		LatestFinalizedFrame: p.int32Ptr(4),
	}, nil
}

func decodeGameEnd(b []byte) (*GameEnd, error) {
	p := payload{b}
	if len(b) < minGameEndLen {
		return nil, errMalformed(CmdGameEnd, "payload too short")
	}
	g := &GameEnd{
		Method:        GameEndMethod(p.uint8(0)),
		LRASInitiator: p.int8Ptr(1),
	}
	if p.has(2, 4) {
		var placements [4]int8
		for i := 0; i < 4; i++ {
			placements[i] = p.int8(2 + i)
		}
		g.Placements = &placements
	}
	return g, nil
}

func decodeSplitMessage(b []byte) (*SplitMessage, error) {
	p := payload{b}
	if len(b) < minSplitLen {
		return nil, errMalformed(CmdSplitMessage, "payload too short")
	}
	n := p.uint16(512)
	if int(n) > 512 {
		return nil, errMalformed(CmdSplitMessage, "fragment length exceeds buffer")
	}
	data := make([]byte, n)
	copy(data, b[:n])
	return &SplitMessage{
		Data:            data,
		DataLength:      n,
		InternalCommand: Command(p.uint8(514)),
		LastMessage:     p.bool(515),
	}, nil
}

func decodeGeckoList(b []byte) (*GeckoList, error) {
	codes := make([]byte, len(b))
	copy(codes, b)
	return &GeckoList{Codes: codes}, nil
}

func decodeFODPlatform(b []byte) (*FODPlatform, error) {
	p := payload{b}
	if len(b) < 9 {
		return nil, errMalformed(CmdFODPlatform, "payload too short")
	}
	return &FODPlatform{
		FrameNumber: p.int32(0),
		Platform:    p.uint8(4),
		Height:      p.float32(5),
	}, nil
}

func decodeWhispy(b []byte) (*Whispy, error) {
	p := payload{b}
	if len(b) < 5 {
		return nil, errMalformed(CmdWhispy, "payload too short")
	}
	return &Whispy{
		FrameNumber: p.int32(0),
		Direction:   p.uint8(4),
	}, nil
}

func decodeStadiumTransformation(b []byte) (*StadiumTransformation, error) {
	p := payload{b}
	if len(b) < 8 {
		return nil, errMalformed(CmdStadiumTransformation, "payload too short")
	}
	return &StadiumTransformation{
		FrameNumber:    p.int32(0),
		Event:          p.uint16(4),
		Transformation: p.uint16(6),
	}, nil
}

// decodeCommand translates a known command payload into its typed record.
// Unknown commands never reach here; the stream skips them.
func decodeCommand(cmd Command, b []byte) (any, error) {
	switch cmd {
	case CmdGameStart:
		return decodeGameStart(b)
	case CmdPreFrame:
		return decodePreFrame(b)
	case CmdPostFrame:
		return decodePostFrame(b)
	case CmdItemUpdate:
		return decodeItemUpdate(b)
	case CmdFrameStart:
		return decodeFrameStart(b)
	case CmdFrameBookend:
		return decodeFrameBookend(b)
	case CmdGameEnd:
		return decodeGameEnd(b)
	case CmdSplitMessage:
		return decodeSplitMessage(b)
	case CmdGeckoList:
		return decodeGeckoList(b)
	case CmdFODPlatform:
		return decodeFODPlatform(b)
	case CmdWhispy:
		return decodeWhispy(b)
	case CmdStadiumTransformation:
		return decodeStadiumTransformation(b)
	}
	return nil, nil
}
