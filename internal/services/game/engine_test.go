package game

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/undercover/internal/dependencies/mocks"
	"github.com/mcoot/undercover/internal/dependencies/random"
	"github.com/mcoot/undercover/internal/model"
)

type EngineSuite struct {
	suite.Suite
	rnd    *mocks.MockRandom
	engine *Engine
	words  model.WordPair
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.rnd = mocks.NewMockRandom()
	s.engine = NewEngine(s.rnd)
	s.words = model.WordPair{Civilian: "apple", Spy: "pear"}
}

func players(ids ...string) []model.PlayerID {
	out := make([]model.PlayerID, len(ids))
	for i, id := range ids {
		out[i] = model.PlayerID(id)
	}
	return out
}

func (s *EngineSuite) countRoles(a *Assignment) map[model.Role]int {
	counts := make(map[model.Role]int)
	for _, id := range a.Players() {
		counts[a.RoleOf(id)]++
	}
	return counts
}

// Validation

func (s *EngineSuite) TestValidateStart() {
	tests := []struct {
		name     string
		settings model.RoomSettings
		members  int
		wantErr  error
	}{
		{"default with three", model.DefaultRoomSettings(), 3, nil},
		{"one spy one blank five players", model.RoomSettings{BlankCount: 1, SpyCount: 1}, 5, nil},
		{"two spies two players", model.RoomSettings{SpyCount: 2}, 2, model.ErrNotEnoughPlayers},
		{"no civilian slot", model.RoomSettings{BlankCount: 1, SpyCount: 1}, 2, model.ErrNotEnoughPlayers},
		{"zero specials single player", model.RoomSettings{}, 1, nil},
		{"empty room", model.RoomSettings{}, 0, model.ErrNotEnoughPlayers},
		{"negative spies", model.RoomSettings{SpyCount: -1}, 4, model.ErrInvalidSetting},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			err := ValidateStart(tt.settings, tt.members)
			if tt.wantErr == nil {
				s.NoError(err)
			} else {
				s.ErrorIs(err, tt.wantErr)
			}
		})
	}
}

func (s *EngineSuite) TestValidateWordPair() {
	tests := []struct {
		name  string
		pair  model.WordPair
		valid bool
	}{
		{"distinct", model.WordPair{Civilian: "apple", Spy: "pear"}, true},
		{"empty civilian", model.WordPair{Civilian: "", Spy: "pear"}, false},
		{"blank spy", model.WordPair{Civilian: "apple", Spy: "   "}, false},
		{"same word", model.WordPair{Civilian: "apple", Spy: "apple"}, false},
		{"same word different case and padding", model.WordPair{Civilian: "Apple ", Spy: " apple"}, false},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			err := ValidateWordPair(tt.pair)
			if tt.valid {
				s.NoError(err)
			} else {
				s.ErrorIs(err, model.ErrInvalidWordPair)
			}
		})
	}
}

func (s *EngineSuite) TestValidateCount() {
	s.NoError(ValidateCount(0))
	s.NoError(ValidateCount(3))
	s.ErrorIs(ValidateCount(-1), model.ErrInvalidSetting)
}

// Role sequence

func (s *EngineSuite) TestBuildRoles() {
	roles := BuildRoles(model.RoomSettings{BlankCount: 1, SpyCount: 2}, 5)
	s.Equal([]model.Role{
		model.RoleSpy, model.RoleSpy, model.RoleBlank, model.RoleCivilian, model.RoleCivilian,
	}, roles)
}

// Assignment

func (s *EngineSuite) TestAssignCountsFiveOneOne() {
	settings := model.RoomSettings{BlankCount: 1, SpyCount: 1, IsRandom: true}
	a := s.engine.Assign(settings, players("a", "b", "c", "d", "e"), s.words)

	counts := s.countRoles(a)
	s.Equal(1, counts[model.RoleBlank])
	s.Equal(1, counts[model.RoleSpy])
	s.Equal(3, counts[model.RoleCivilian])
}

func (s *EngineSuite) TestAssignPositionalIsRepeatable() {
	settings := model.RoomSettings{BlankCount: 1, SpyCount: 1, IsRandom: false}
	ids := players("a", "b", "c", "d", "e")

	first := s.engine.Assign(settings, ids, s.words)
	second := s.engine.Assign(settings, ids, s.words)

	for _, id := range ids {
		s.Equal(first.RoleOf(id), second.RoleOf(id))
	}
	s.Equal(model.RoleSpy, first.RoleOf("a"))
	s.Equal(model.RoleBlank, first.RoleOf("b"))
	s.Equal(model.RoleCivilian, first.RoleOf("e"))
}

func (s *EngineSuite) TestAssignRandomUsesShuffle() {
	// Every draw returns 0, so the spy at index 0 ends up last and the
	// blank rotates to the front.
	settings := model.RoomSettings{BlankCount: 1, SpyCount: 1, IsRandom: true}
	a := s.engine.Assign(settings, players("a", "b", "c", "d", "e"), s.words)

	s.Equal(model.RoleBlank, a.RoleOf("a"))
	s.Equal(model.RoleSpy, a.RoleOf("e"))
}

func (s *EngineSuite) TestAssignDoesNotAliasPlayers() {
	ids := players("a", "b", "c")
	a := s.engine.Assign(model.DefaultRoomSettings(), ids, s.words)
	ids[0] = "z"
	s.Equal(players("a", "b", "c"), a.Players())
}

func (s *EngineSuite) TestRandomAssignmentIsSpreadAcrossSeats() {
	engine := NewEngine(random.New())
	settings := model.RoomSettings{SpyCount: 1, IsRandom: true}
	ids := players("a", "b", "c")

	hits := make(map[model.PlayerID]int)
	const trials = 3000
	for i := 0; i < trials; i++ {
		a := engine.Assign(settings, ids, s.words)
		for _, id := range ids {
			if a.RoleOf(id) == model.RoleSpy {
				hits[id]++
			}
		}
	}

	for _, id := range ids {
		s.InDelta(trials/3, hits[id], 200, "spy frequency for %s", id)
	}
}

// Projection

func (s *EngineSuite) TestRevealMatchesRole() {
	settings := model.RoomSettings{BlankCount: 1, SpyCount: 1, IsRandom: false}
	a := s.engine.Assign(settings, players("a", "b", "c"), s.words)

	spy, ok := a.For("a")
	s.Require().True(ok)
	s.Equal("pear", spy.Word)

	blank, _ := a.For("b")
	s.Equal("apple", blank.Word)

	civilian, _ := a.For("c")
	s.Equal("apple", civilian.Word)
	s.NotEqual(spy.Word, civilian.Word)
}

func (s *EngineSuite) TestRevealUnknownPlayer() {
	a := s.engine.Assign(model.DefaultRoomSettings(), players("a", "b"), s.words)
	_, ok := a.For("stranger")
	s.False(ok)
}

func (s *EngineSuite) TestWordFor() {
	s.Equal("pear", WordFor(model.RoleSpy, s.words))
	s.Equal("apple", WordFor(model.RoleBlank, s.words))
	s.Equal("apple", WordFor(model.RoleCivilian, s.words))
	s.Equal("", WordFor(model.RoleUnset, s.words))
}
