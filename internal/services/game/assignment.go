package game

import "github.com/mcoot/undercover/internal/model"

// Assignment is the outcome of starting a round. It only answers
// questions about one player at a time so the full role map cannot be
// handed to a broadcast by accident.
type Assignment struct {
	words model.WordPair
	order []model.PlayerID
	roles map[model.PlayerID]model.Role
}

// For returns what the given player may learn about their own role
func (a *Assignment) For(id model.PlayerID) (model.Reveal, bool) {
	role, ok := a.roles[id]
	if !ok {
		return model.Reveal{}, false
	}
	return model.Reveal{PlayerID: id, Word: WordFor(role, a.words)}, true
}

// Players returns the assigned players in seat order
func (a *Assignment) Players() []model.PlayerID {
	out := make([]model.PlayerID, len(a.order))
	copy(out, a.order)
	return out
}

// RoleOf returns the role assigned to a single player
func (a *Assignment) RoleOf(id model.PlayerID) model.Role {
	return a.roles[id]
}

// Len returns the number of assigned players
func (a *Assignment) Len() int {
	return len(a.order)
}
