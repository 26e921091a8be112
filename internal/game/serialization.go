package game

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// State snapshots cross two boundaries: the persistence layer and the
// clients that mirror the game. The contract is a structurally faithful
// round trip - nothing may be lost in transit, including the Prev chain
// of the phase stack.

// StateChecksum is a deterministic digest of a game state, used to guard
// against divergent copies after transmission or storage.
type StateChecksum struct {
	Hash    string `json:"hash"`
	Version int    `json:"version"`
}

// checksumVersion bumps when the canonical representation changes.
const checksumVersion = 1

// MarshalState serializes a game state, phase stack included.
func MarshalState(s *GameState) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode state: %w", err)
	}
	return data, nil
}

// UnmarshalState restores a game state from its serialized form.
func UnmarshalState(data []byte) (*GameState, error) {
	var s GameState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode state: %w", err)
	}
	return &s, nil
}

// CloneState produces an independent deep copy through a serialization
// round trip. The engine's callers snapshot before executing so a fault
// leaves the authoritative state untouched.
func CloneState(s *GameState) (*GameState, error) {
	data, err := MarshalState(s)
	if err != nil {
		return nil, err
	}
	return UnmarshalState(data)
}

// ComputeChecksum digests a canonical representation of the state. The
// representation is independent of map iteration order.
func ComputeChecksum(s *GameState) StateChecksum {
	hash := sha256.Sum256([]byte(canonicalRepresentation(s)))
	return StateChecksum{
		Hash:    hex.EncodeToString(hash[:]),
		Version: checksumVersion,
	}
}

// VerifyChecksum reports whether the state still matches the digest.
func VerifyChecksum(s *GameState, expected StateChecksum) bool {
	return ComputeChecksum(s).Hash == expected.Hash
}

// ValidateRoundtrip serializes and restores the state and compares
// checksums, failing when the round trip lost information.
func ValidateRoundtrip(s *GameState) error {
	original := ComputeChecksum(s)
	restored, err := CloneState(s)
	if err != nil {
		return err
	}
	if got := ComputeChecksum(restored); got.Hash != original.Hash {
		return fmt.Errorf("checksum mismatch: original=%s, restored=%s", original.Hash, got.Hash)
	}
	return nil
}

func writeToken(buf *bytes.Buffer, t Token) {
	fmt.Fprintf(buf, "%d:%t,", t.Owner, t.Merch)
}

// canonicalRepresentation flattens the state into a stable string. City
// map keys are sorted; every other collection is order-significant and
// written as stored.
func canonicalRepresentation(s *GameState) string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "GAME:%s|%d|%t\n", s.ID, s.Turn, s.IsOver)

	for seat, p := range s.Players {
		fmt.Fprintf(&buf, "PLAYER:%d|%s|%s|%d|%d|%d|%d|%d|%d|%t\n",
			seat, p.Name, p.Color, p.Points, p.Keys, p.Privilege, p.Actions, p.Book, p.Bank, p.LinkEastWest)
		fmt.Fprintf(&buf, "  STOCK:%d/%d SUPPLY:%d/%d\n",
			p.GeneralStock.Merchants, p.GeneralStock.Tradesmen,
			p.PersonalSupply.Merchants, p.PersonalSupply.Tradesmen)
		fmt.Fprintf(&buf, "  MARKERS:%v|%v|%v\n", p.ReadyMarkers, p.UsedMarkers, p.UnplacedMarkers)
	}

	names := make([]string, 0, len(s.Cities))
	for name := range s.Cities {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c := s.Cities[name]
		fmt.Fprintf(&buf, "CITY:%s|", name)
		for _, t := range c.Tokens {
			writeToken(&buf, t)
		}
		buf.WriteString("|")
		for _, t := range c.Extras {
			writeToken(&buf, t)
		}
		buf.WriteString("|")
		for _, t := range c.LeftOffices {
			writeToken(&buf, t)
		}
		buf.WriteString("\n")
	}

	for i, r := range s.Routes {
		fmt.Fprintf(&buf, "ROUTE:%d|%s|%s|", i, r.Name(), r.Marker)
		for _, post := range r.Posts {
			if post == nil {
				buf.WriteString("-,")
			} else {
				writeToken(&buf, *post)
			}
		}
		buf.WriteString("\n")
	}

	fmt.Fprintf(&buf, "POOL:%v\n", s.Markers)
	for i, slot := range s.Coellen {
		fmt.Fprintf(&buf, "COELLEN:%d|%d|%d|%d\n", i, slot.Points, slot.Privilege, slot.Owner)
	}

	depth := 0
	for ctx := s.Context; ctx != nil; ctx = ctx.Prev {
		fmt.Fprintf(&buf, "CONTEXT:%d|%s|%d|%t|", depth, ctx.Phase, ctx.Player, ctx.EndGame)
		for _, t := range ctx.Hand {
			writeToken(&buf, t)
		}
		buf.WriteString("|")
		for _, rec := range ctx.Actions {
			fmt.Fprintf(&buf, "%s%+v;", rec.Name, rec.Params)
		}
		buf.WriteString("|")
		for _, rw := range ctx.Rewards {
			fmt.Fprintf(&buf, "%s:%s%+v;", rw.Title, rw.Action, rw.Params)
		}
		buf.WriteString("\n")
		depth++
	}

	for _, entry := range s.Log {
		fmt.Fprintf(&buf, "LOG:%d|%s\n", entry.Player, entry.Message)
	}

	return buf.String()
}
