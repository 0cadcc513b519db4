package montyhall

// Door identifies one door in [0, numDoors).
type Door int

// Strategy is the player's decision after the host's reveal.
type Strategy string

const (
	// Final pick is the single door the host left closed.
	StrategySwitch Strategy = "switch"
	// Final pick is the initial pick.
	StrategyStay Strategy = "stay"
)

// Switches reports whether the strategy abandons the initial pick.
func (s Strategy) Switches() bool { return s == StrategySwitch }

// StrategyFor maps the boolean switch flag onto a Strategy.
func StrategyFor(switchDoors bool) Strategy {
	if switchDoors {
		return StrategySwitch
	}
	return StrategyStay
}

// Trial is one fully resolved game.
// The host opens every door except InitialPick and Kept, so the revealed set is
// implied by those two fields and never materialized unless asked for.
type Trial struct {
	NumDoors    int  `json:"num_doors"`
	PrizeDoor   Door `json:"prize_door"`
	InitialPick Door `json:"initial_pick"`
	Kept        Door `json:"kept"` // the closed door offered to a switching player
}

// NewTrial plays one game on numDoors doors (>= 3, not re-checked).
// It draws the prize, the initial pick, and, only in the tie case, the kept door.
func NewTrial(numDoors int, rng RandomSource) Trial {
	t := Trial{
		NumDoors:    numDoors,
		PrizeDoor:   Door(rng.IntN(numDoors)),
		InitialPick: Door(rng.IntN(numDoors)),
	}
	t.Kept = keptDoor(numDoors, t.PrizeDoor, t.InitialPick, rng)
	return t
}

// keptDoor returns the one candidate the host leaves closed.
// Candidates are all doors except the prize and the initial pick.
// When the pick missed, the host may not open the prize, so the prize is kept.
// When the pick is the prize, every candidate is a goat and one is kept
// uniformly at random, drawn as an index over the numDoors-1 doors other than
// the pick.
func keptDoor(numDoors int, prize, pick Door, rng RandomSource) Door {
	if pick != prize {
		return prize
	}
	k := Door(rng.IntN(numDoors - 1))
	if k >= pick {
		k++
	}
	return k
}

// IsTie reports whether the initial pick was the prize door.
func (t Trial) IsTie() bool { return t.InitialPick == t.PrizeDoor }

// RevealedCount is always NumDoors-2.
func (t Trial) RevealedCount() int { return t.NumDoors - 2 }

// IsRevealed reports whether the host opened door d.
func (t Trial) IsRevealed(d Door) bool {
	if d < 0 || int(d) >= t.NumDoors {
		return false
	}
	return d != t.InitialPick && d != t.Kept
}

// Revealed lists the opened doors in ascending order. O(NumDoors).
func (t Trial) Revealed() []Door {
	out := make([]Door, 0, t.RevealedCount())
	for d := Door(0); int(d) < t.NumDoors; d++ {
		if t.IsRevealed(d) {
			out = append(out, d)
		}
	}
	return out
}

// FinalPick resolves the player's last choice under s.
func (t Trial) FinalPick(s Strategy) Door {
	if s.Switches() {
		return t.Kept
	}
	return t.InitialPick
}

// Won reports whether strategy s takes the prize in this game.
func (t Trial) Won(s Strategy) bool { return t.FinalPick(s) == t.PrizeDoor }

// RunTrial plays one game and reports whether the player won.
// The stay path never needs the kept door, so it only draws prize and pick;
// draw counts therefore differ between strategies under a shared seed.
func RunTrial(numDoors int, switchDoors bool, rng RandomSource) bool {
	if switchDoors {
		return NewTrial(numDoors, rng).Won(StrategySwitch)
	}
	prize := rng.IntN(numDoors)
	pick := rng.IntN(numDoors)
	return pick == prize
}
