package game

import (
	"strings"

	"github.com/mcoot/undercover/internal/dependencies/random"
	"github.com/mcoot/undercover/internal/model"
)

// Engine holds the pure round logic: settings checks, role assignment and
// per-player word projection. It never touches storage or the network.
type Engine struct {
	random random.Random
}

// NewEngine creates a new Engine using rnd for shuffled assignments
func NewEngine(rnd random.Random) *Engine {
	return &Engine{random: rnd}
}

// ValidateCount rejects negative role counts
func ValidateCount(n int) error {
	if n < 0 {
		return model.ErrInvalidSetting
	}
	return nil
}

// ValidateStart checks that the configured roles leave at least one civilian
func ValidateStart(settings model.RoomSettings, memberCount int) error {
	if err := ValidateCount(settings.BlankCount); err != nil {
		return err
	}
	if err := ValidateCount(settings.SpyCount); err != nil {
		return err
	}
	if settings.BlankCount+settings.SpyCount >= memberCount {
		return model.ErrNotEnoughPlayers
	}
	return nil
}

// ValidateWordPair requires two non-empty words that differ ignoring case
func ValidateWordPair(pair model.WordPair) error {
	civilian := strings.TrimSpace(pair.Civilian)
	spy := strings.TrimSpace(pair.Spy)
	if civilian == "" || spy == "" {
		return model.ErrInvalidWordPair
	}
	if strings.EqualFold(civilian, spy) {
		return model.ErrInvalidWordPair
	}
	return nil
}

// NormalizeWordPair trims surrounding whitespace from both words
func NormalizeWordPair(pair model.WordPair) model.WordPair {
	return model.WordPair{
		Civilian: strings.TrimSpace(pair.Civilian),
		Spy:      strings.TrimSpace(pair.Spy),
	}
}

// BuildRoles returns the role sequence for n seats: spies first, then
// blanks, then civilians for the remainder.
func BuildRoles(settings model.RoomSettings, n int) []model.Role {
	roles := make([]model.Role, 0, n)
	for i := 0; i < settings.SpyCount && len(roles) < n; i++ {
		roles = append(roles, model.RoleSpy)
	}
	for i := 0; i < settings.BlankCount && len(roles) < n; i++ {
		roles = append(roles, model.RoleBlank)
	}
	for len(roles) < n {
		roles = append(roles, model.RoleCivilian)
	}
	return roles
}

// Assign pairs players (in seat order) with a role sequence. When the
// settings ask for it the sequence is shuffled first, otherwise roles are
// handed out positionally. Callers validate with ValidateStart beforehand.
func (e *Engine) Assign(settings model.RoomSettings, players []model.PlayerID, words model.WordPair) *Assignment {
	roles := BuildRoles(settings, len(players))
	if settings.IsRandom {
		random.Shuffle(e.random, len(roles), func(i, j int) {
			roles[i], roles[j] = roles[j], roles[i]
		})
	}

	a := &Assignment{
		words: words,
		order: make([]model.PlayerID, len(players)),
		roles: make(map[model.PlayerID]model.Role, len(players)),
	}
	copy(a.order, players)
	for i, id := range players {
		a.roles[id] = roles[i]
	}
	return a
}

// WordFor returns the word a player with the given role is told.
// Civilians and blanks share the civilian word.
func WordFor(role model.Role, words model.WordPair) string {
	switch role {
	case model.RoleSpy:
		return words.Spy
	case model.RoleCivilian, model.RoleBlank:
		return words.Civilian
	default:
		return ""
	}
}
