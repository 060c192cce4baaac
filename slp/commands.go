package slp

import (
	"encoding/binary"
	"fmt"
)

// Command identifies one binary event in a Slippi replay stream.
type Command byte

const (
	CmdSplitMessage          Command = 0x10
	CmdMessageSizes          Command = 0x35
	CmdGameStart             Command = 0x36
	CmdPreFrame              Command = 0x37
	CmdPostFrame             Command = 0x38
	CmdGameEnd               Command = 0x39
	CmdFrameStart            Command = 0x3a
	CmdItemUpdate            Command = 0x3b
	CmdFrameBookend          Command = 0x3c
	CmdGeckoList             Command = 0x3d
	CmdFODPlatform           Command = 0x3f
	CmdWhispy                Command = 0x40
	CmdStadiumTransformation Command = 0x41
)

func (c Command) String() string {
	switch c {
	case CmdSplitMessage:
		return "SplitMessage"
	case CmdMessageSizes:
		return "MessageSizes"
	case CmdGameStart:
		return "GameStart"
	case CmdPreFrame:
		return "PreFrame"
	case CmdPostFrame:
		return "PostFrame"
	case CmdGameEnd:
		return "GameEnd"
	case CmdFrameStart:
		return "FrameStart"
	case CmdItemUpdate:
		return "ItemUpdate"
	case CmdFrameBookend:
		return "FrameBookend"
	case CmdGeckoList:
		return "GeckoList"
	case CmdFODPlatform:
		return "FODPlatform"
	case CmdWhispy:
		return "Whispy"
	case CmdStadiumTransformation:
		return "StadiumTransformation"
	}
	return fmt.Sprintf("Unknown(0x%02x)", byte(c))
}

// PayloadSizes maps each command to its fixed payload length in bytes.
// The table is announced by the MessageSizes command at the start of every
// stream and is only valid for that one game.
type PayloadSizes map[Command]uint16

// decodePayloadSizes reads the MessageSizes payload: byte 0 is the payload
// length including itself, followed by 3-byte groups of (command, uint16 size).
func decodePayloadSizes(payload []byte) (PayloadSizes, error) {
	if len(payload) < 1 {
		return nil, errMalformed(CmdMessageSizes, "empty payload")
	}
	n := int(payload[0])
	if n < 1 || n > len(payload) {
		return nil, errMalformed(CmdMessageSizes, "declared length out of range")
	}
	groups := payload[1:n]
	if len(groups)%3 != 0 {
		return nil, errMalformed(CmdMessageSizes, "size table not a multiple of 3 bytes")
	}
	sizes := make(PayloadSizes, len(groups)/3)
	for i := 0; i+3 <= len(groups); i += 3 {
		sizes[Command(groups[i])] = binary.BigEndian.Uint16(groups[i+1 : i+3])
	}
	return sizes, nil
}
