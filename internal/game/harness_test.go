package game

import (
	"strings"
	"testing"
)

// newTestState sets up a fresh 3-player game used across the suites.
func newTestState(t *testing.T) *GameState {
	t.Helper()
	s, err := NewGame(DefaultBoard(), []string{"Alice", "Bob", "Carol"})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	return s
}

// routeIndex resolves a route by its endpoint cities.
func routeIndex(t *testing.T, s *GameState, from, to string) int {
	t.Helper()
	for i, r := range s.Routes {
		if (r.From == from && r.To == to) || (r.From == to && r.To == from) {
			return i
		}
	}
	t.Fatalf("no route %s-%s", from, to)
	return -1
}

// fillRoute occupies every post of a route with the seat's tradesmen,
// bypassing the action pipeline.
func fillRoute(s *GameState, routeIdx, seat int) {
	r := s.Routes[routeIdx]
	for i := range r.Posts {
		r.Posts[i] = &Token{Owner: seat}
	}
}

// putOffice appends a regular office directly, bypassing the pipeline.
func putOffice(s *GameState, city string, seat int) {
	c := s.City(city)
	c.Tokens = append(c.Tokens, Token{Owner: seat})
}

// lastLog returns the most recent log line, "" when the log is empty.
func lastLog(s *GameState) string {
	if len(s.Log) == 0 {
		return ""
	}
	return s.Log[len(s.Log)-1].Message
}

// logContains reports whether any log line contains the substring.
func logContains(s *GameState, substr string) bool {
	for _, entry := range s.Log {
		if strings.Contains(entry.Message, substr) {
			return true
		}
	}
	return false
}
