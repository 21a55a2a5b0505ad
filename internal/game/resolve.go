// internal/game/resolve.go
package game

// PairResult is the outcome of comparing two face-up tiles.
type PairResult int

const (
	NoMatch PairResult = iota
	Match
)

// ResolvePair compares the two buffered flips against the board. Order of
// the flips never matters; out-of-range indices or a short buffer resolve
// as NoMatch.
func ResolvePair(tiles []int, flipped []int) PairResult {
	if len(flipped) < 2 {
		return NoMatch
	}
	a, b := flipped[0], flipped[1]
	if a < 0 || b < 0 || a >= len(tiles) || b >= len(tiles) || a == b {
		return NoMatch
	}
	if tiles[a] == tiles[b] {
		return Match
	}
	return NoMatch
}
