package slp

import "fmt"

// Static lookup tables for stage, character, and move names. Pure data:
// loaded once, immutable for the life of the process.

var stageNames = map[uint16]string{
	2:  "Fountain of Dreams",
	3:  "Pokemon Stadium",
	4:  "Princess Peach's Castle",
	5:  "Kongo Jungle",
	6:  "Brinstar",
	7:  "Corneria",
	8:  "Yoshi's Story",
	9:  "Onett",
	10: "Mute City",
	11: "Rainbow Cruise",
	12: "Jungle Japes",
	13: "Great Bay",
	14: "Hyrule Temple",
	15: "Brinstar Depths",
	16: "Yoshi's Island",
	17: "Green Greens",
	18: "Fourside",
	19: "Mushroom Kingdom I",
	20: "Mushroom Kingdom II",
	22: "Venom",
	23: "Poke Floats",
	24: "Big Blue",
	25: "Icicle Mountain",
	27: "Flat Zone",
	28: "Dream Land N64",
	29: "Yoshi's Island N64",
	30: "Kongo Jungle N64",
	31: "Battlefield",
	32: "Final Destination",
}

// cssCharacterNames is keyed by select-screen character ID, the one carried
// in the game start block.
var cssCharacterNames = map[uint8]string{
	0:  "Captain Falcon",
	1:  "Donkey Kong",
	2:  "Fox",
	3:  "Mr. Game & Watch",
	4:  "Kirby",
	5:  "Bowser",
	6:  "Link",
	7:  "Luigi",
	8:  "Mario",
	9:  "Marth",
	10: "Mewtwo",
	11: "Ness",
	12: "Peach",
	13: "Pikachu",
	14: "Ice Climbers",
	15: "Jigglypuff",
	16: "Samus",
	17: "Yoshi",
	18: "Zelda",
	19: "Sheik",
	20: "Falco",
	21: "Young Link",
	22: "Dr. Mario",
	23: "Roy",
	24: "Pichu",
	25: "Ganondorf",
}

// internalCharacterNames is keyed by the in-game character ID reported in
// post-frame updates.
var internalCharacterNames = map[uint8]string{
	0:  "Mario",
	1:  "Fox",
	2:  "Captain Falcon",
	3:  "Donkey Kong",
	4:  "Kirby",
	5:  "Bowser",
	6:  "Link",
	7:  "Sheik",
	8:  "Ness",
	9:  "Peach",
	10: "Popo",
	11: "Nana",
	12: "Pikachu",
	13: "Samus",
	14: "Yoshi",
	15: "Jigglypuff",
	16: "Mewtwo",
	17: "Luigi",
	18: "Marth",
	19: "Zelda",
	20: "Young Link",
	21: "Dr. Mario",
	22: "Falco",
	23: "Pichu",
	24: "Mr. Game & Watch",
	25: "Ganondorf",
	26: "Roy",
	32: "Sandbag",
}

// InternalCharSandbag is the in-game character ID of the Home-Run Contest
// sandbag.
const InternalCharSandbag uint8 = 32

var moveNames = map[uint8]string{
	1:  "Miscellaneous",
	2:  "Jab 1",
	3:  "Jab 2",
	4:  "Jab 3",
	5:  "Rapid Jabs",
	6:  "Dash Attack",
	7:  "Forward Tilt",
	8:  "Up Tilt",
	9:  "Down Tilt",
	10: "Forward Smash",
	11: "Up Smash",
	12: "Down Smash",
	13: "Neutral Air",
	14: "Forward Air",
	15: "Back Air",
	16: "Up Air",
	17: "Down Air",
	18: "Neutral B",
	19: "Side B",
	20: "Up B",
	21: "Down B",
	50: "Getup Attack",
	51: "Getup Attack (Slow)",
	52: "Grab Pummel",
	53: "Forward Throw",
	54: "Back Throw",
	55: "Up Throw",
	56: "Down Throw",
	61: "Edge Attack (Slow)",
	62: "Edge Attack",
}

// StageName returns the display name for a stage ID.
func StageName(id uint16) string {
	if name, ok := stageNames[id]; ok {
		return name
	}
	return fmt.Sprintf("Unknown (%d)", id)
}

// CharacterName returns the display name for a select-screen character ID.
func CharacterName(id uint8) string {
	if name, ok := cssCharacterNames[id]; ok {
		return name
	}
	return fmt.Sprintf("Unknown (%d)", id)
}

// InternalCharacterName returns the display name for an in-game character ID.
func InternalCharacterName(id uint8) string {
	if name, ok := internalCharacterNames[id]; ok {
		return name
	}
	return fmt.Sprintf("Unknown (%d)", id)
}

// MoveName returns the display name for an attack ID from post-frame data.
func MoveName(id uint8) string {
	if name, ok := moveNames[id]; ok {
		return name
	}
	return fmt.Sprintf("Unknown (%d)", id)
}
