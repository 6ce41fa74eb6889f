package room

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/mcoot/undercover/internal/dependencies/clock"
	"github.com/mcoot/undercover/internal/model"
	"github.com/mcoot/undercover/internal/services/game"
)

// Room holds one game session's membership, settings and round state.
//
// Room methods do no locking of their own. They must only be called from
// inside Registry.WithRoom, which holds the room's mutex for the duration
// of the callback. Every method validates before it mutates, so a
// returned error always means nothing changed.
type Room struct {
	mu        sync.Mutex
	destroyed atomic.Bool

	id         model.RoomID
	state      model.RoomState
	settings   model.RoomSettings
	seats      []model.Seat
	words      *model.WordPair
	assignment *game.Assignment
	winner     string
	streams    map[model.PlayerID]int
	createdAt  time.Time
	updatedAt  time.Time

	engine *game.Engine
	clock  clock.Clock
}

func newRoom(id model.RoomID, creator model.PlayerID, engine *game.Engine, clk clock.Clock) *Room {
	now := clk.Now()
	return &Room{
		id:       id,
		state:    model.RoomStateLobby,
		settings: model.DefaultRoomSettings(),
		seats: []model.Seat{
			{
				PlayerID: creator,
				IsHost:   true,
				JoinedAt: now,
			},
		},
		streams:   make(map[model.PlayerID]int),
		createdAt: now,
		updatedAt: now,
		engine:    engine,
		clock:     clk,
	}
}

// LeaveResult describes what a leave or kick changed
type LeaveResult struct {
	Removed   bool
	WasHost   bool
	NewHostID model.PlayerID // set when host passed to another member
	Empty     bool
}

// HostChange describes a host transfer
type HostChange struct {
	OldHostID model.PlayerID
	NewHostID model.PlayerID
	Changed   bool
}

// Outcome is the post-game reveal produced when a round ends
type Outcome struct {
	Winner string
	Words  model.WordPair
	Roles  map[model.PlayerID]model.Role
}

// ID returns the room code
func (r *Room) ID() model.RoomID {
	return r.id
}

// State returns the lifecycle state
func (r *Room) State() model.RoomState {
	return r.state
}

// Settings returns the current settings
func (r *Room) Settings() model.RoomSettings {
	return r.settings
}

// HostID returns the current host, or empty if the room has no members
func (r *Room) HostID() model.PlayerID {
	for _, seat := range r.seats {
		if seat.IsHost {
			return seat.PlayerID
		}
	}
	return ""
}

// IsMember reports whether the player is seated
func (r *Room) IsMember(id model.PlayerID) bool {
	return r.seatIndex(id) >= 0
}

// IsEmpty reports whether no players are seated
func (r *Room) IsEmpty() bool {
	return len(r.seats) == 0
}

// Members returns seated player IDs in join order
func (r *Room) Members() []model.PlayerID {
	ids := make([]model.PlayerID, len(r.seats))
	for i, seat := range r.seats {
		ids[i] = seat.PlayerID
	}
	return ids
}

// Snapshot copies the room's state. Roles and words are withheld until the
// round has ended.
func (r *Room) Snapshot() model.RoomSnapshot {
	snap := model.RoomSnapshot{
		ID:        r.id,
		State:     r.state,
		Settings:  r.settings,
		Seats:     make([]model.Seat, len(r.seats)),
		HostID:    r.HostID(),
		Winner:    r.winner,
		CreatedAt: r.createdAt,
		UpdatedAt: r.updatedAt,
	}
	copy(snap.Seats, r.seats)

	if r.state == model.RoomStateEnded && r.words != nil {
		words := *r.words
		snap.Words = &words
	} else {
		for i := range snap.Seats {
			snap.Seats[i].Role = model.RoleUnset
		}
	}
	return snap
}

// Join seats a player at the end of the member order
func (r *Room) Join(id model.PlayerID) (model.Seat, error) {
	if r.state != model.RoomStateLobby {
		return model.Seat{}, model.ErrGameAlreadyStarted
	}
	if r.IsMember(id) {
		return model.Seat{}, model.ErrAlreadyMember
	}

	seat := model.Seat{
		PlayerID: id,
		JoinedAt: r.clock.Now(),
	}
	r.seats = append(r.seats, seat)
	r.touch()
	return seat, nil
}

// Leave removes a player. Leaving when not seated is a no-op. If the host
// leaves, the oldest remaining member becomes host.
func (r *Room) Leave(id model.PlayerID) LeaveResult {
	idx := r.seatIndex(id)
	if idx < 0 {
		return LeaveResult{Empty: r.IsEmpty()}
	}

	wasHost := r.seats[idx].IsHost
	r.seats = append(r.seats[:idx], r.seats[idx+1:]...)
	delete(r.streams, id)

	result := LeaveResult{Removed: true, WasHost: wasHost, Empty: r.IsEmpty()}
	if wasHost && !result.Empty {
		r.seats[0].IsHost = true
		result.NewHostID = r.seats[0].PlayerID
	}
	r.touch()
	return result
}

// Kick removes target on behalf of the host
func (r *Room) Kick(actor, target model.PlayerID) (LeaveResult, error) {
	if err := r.requireHost(actor); err != nil {
		return LeaveResult{}, err
	}
	if actor == target {
		return LeaveResult{}, model.ErrCannotKickSelf
	}
	if !r.IsMember(target) {
		return LeaveResult{}, model.ErrTargetNotMember
	}
	return r.Leave(target), nil
}

// UpdateHost hands the host flag to another member. Handing it to the
// current host succeeds without change.
func (r *Room) UpdateHost(actor, newHost model.PlayerID) (HostChange, error) {
	if err := r.requireHost(actor); err != nil {
		return HostChange{}, err
	}
	idx := r.seatIndex(newHost)
	if idx < 0 {
		return HostChange{}, model.ErrTargetNotMember
	}

	change := HostChange{OldHostID: actor, NewHostID: newHost}
	if actor == newHost {
		return change, nil
	}

	r.seats[r.seatIndex(actor)].IsHost = false
	r.seats[idx].IsHost = true
	change.Changed = true
	r.touch()
	return change, nil
}

// UpdateBlankCount sets the number of blanks for the next round
func (r *Room) UpdateBlankCount(actor model.PlayerID, n int) (model.RoomSettings, error) {
	return r.updateSettings(actor, func(s *model.RoomSettings) error {
		if err := game.ValidateCount(n); err != nil {
			return err
		}
		s.BlankCount = n
		return nil
	})
}

// UpdateSpyCount sets the number of spies for the next round
func (r *Room) UpdateSpyCount(actor model.PlayerID, n int) (model.RoomSettings, error) {
	return r.updateSettings(actor, func(s *model.RoomSettings) error {
		if err := game.ValidateCount(n); err != nil {
			return err
		}
		s.SpyCount = n
		return nil
	})
}

// UpdateIsRandom toggles shuffled role assignment
func (r *Room) UpdateIsRandom(actor model.PlayerID, isRandom bool) (model.RoomSettings, error) {
	return r.updateSettings(actor, func(s *model.RoomSettings) error {
		s.IsRandom = isRandom
		return nil
	})
}

func (r *Room) updateSettings(actor model.PlayerID, apply func(*model.RoomSettings) error) (model.RoomSettings, error) {
	if err := r.requireHost(actor); err != nil {
		return r.settings, err
	}
	if r.state != model.RoomStateLobby {
		return r.settings, model.ErrGameAlreadyStarted
	}

	next := r.settings
	if err := apply(&next); err != nil {
		return r.settings, err
	}
	r.settings = next
	r.touch()
	return r.settings, nil
}

// Start assigns roles and moves the room into play
func (r *Room) Start(actor model.PlayerID, words model.WordPair) (*game.Assignment, error) {
	if err := r.requireHost(actor); err != nil {
		return nil, err
	}
	if r.state != model.RoomStateLobby {
		return nil, model.ErrGameAlreadyStarted
	}
	if err := game.ValidateStart(r.settings, len(r.seats)); err != nil {
		return nil, err
	}
	if err := game.ValidateWordPair(words); err != nil {
		return nil, err
	}

	words = game.NormalizeWordPair(words)
	assignment := r.engine.Assign(r.settings, r.Members(), words)

	for i := range r.seats {
		r.seats[i].Role = assignment.RoleOf(r.seats[i].PlayerID)
		r.seats[i].Reported = false
	}
	r.words = &words
	r.assignment = assignment
	r.state = model.RoomStateInProgress
	r.touch()
	return assignment, nil
}

// Report marks target as reported and returns everyone reported so far.
// Reporting the same player twice is not an error.
func (r *Room) Report(reporter, target model.PlayerID) ([]model.PlayerID, error) {
	if r.state != model.RoomStateInProgress {
		return nil, model.ErrGameNotInProgress
	}
	if !r.IsMember(reporter) {
		return nil, model.ErrNotInRoom
	}
	idx := r.seatIndex(target)
	if idx < 0 {
		return nil, model.ErrTargetNotMember
	}

	if !r.seats[idx].Reported {
		r.seats[idx].Reported = true
		r.touch()
	}
	return r.reported(), nil
}

// End closes the round with the given winner label. Roles are kept for
// the post-game reveal.
func (r *Room) End(actor model.PlayerID, winner string) (Outcome, error) {
	if r.state != model.RoomStateInProgress {
		return Outcome{}, model.ErrGameNotInProgress
	}
	if !r.IsMember(actor) {
		return Outcome{}, model.ErrNotInRoom
	}

	r.state = model.RoomStateEnded
	r.winner = winner
	r.touch()

	outcome := Outcome{
		Winner: winner,
		Words:  *r.words,
		Roles:  make(map[model.PlayerID]model.Role, len(r.seats)),
	}
	for _, seat := range r.seats {
		outcome.Roles[seat.PlayerID] = seat.Role
	}
	return outcome, nil
}

// Reveal returns the caller's own word for the current or finished round
func (r *Room) Reveal(id model.PlayerID) (model.Reveal, error) {
	if r.assignment == nil {
		return model.Reveal{}, model.ErrGameNotInProgress
	}
	if !r.IsMember(id) {
		return model.Reveal{}, model.ErrNotInRoom
	}
	reveal, ok := r.assignment.For(id)
	if !ok {
		return model.Reveal{}, model.ErrNotInRoom
	}
	return reveal, nil
}

// SetConnected records a live event stream for a member opening or
// closing. A member counts as connected while at least one stream is
// open. It reports whether the member's Connected flag changed.
// Non-members are ignored.
func (r *Room) SetConnected(id model.PlayerID, connected bool) bool {
	idx := r.seatIndex(id)
	if idx < 0 {
		return false
	}

	if connected {
		r.streams[id]++
	} else if r.streams[id] > 0 {
		r.streams[id]--
	}

	now := r.streams[id] > 0
	if r.seats[idx].Connected == now {
		return false
	}
	r.seats[idx].Connected = now
	r.touch()
	return true
}

func (r *Room) requireHost(actor model.PlayerID) error {
	idx := r.seatIndex(actor)
	if idx < 0 || !r.seats[idx].IsHost {
		return model.ErrNotHost
	}
	return nil
}

func (r *Room) reported() []model.PlayerID {
	ids := make([]model.PlayerID, 0)
	for _, seat := range r.seats {
		if seat.Reported {
			ids = append(ids, seat.PlayerID)
		}
	}
	return ids
}

func (r *Room) seatIndex(id model.PlayerID) int {
	for i, seat := range r.seats {
		if seat.PlayerID == id {
			return i
		}
	}
	return -1
}

func (r *Room) touch() {
	r.updatedAt = r.clock.Now()
}
