package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Wyydra/huddle/internal/core/domain"
	"github.com/Wyydra/huddle/internal/core/port"
	"github.com/Wyydra/huddle/internal/core/selector"
	"github.com/Wyydra/huddle/internal/core/state"
	"github.com/rs/zerolog/log"
)

// Workspace is the state of one user: a serialized store and the
// selectors reading it.
type Workspace struct {
	Store     *state.Store
	Selectors *selector.Selectors
}

// WorkspaceService owns one workspace per user. Rooms are shared: creating
// or deleting one fans out to the workspace of every participant.
type WorkspaceService struct {
	users port.UserRepository
	now   state.Clock

	mu         sync.Mutex
	workspaces map[domain.UserID]*Workspace
	stopped    bool
}

func NewWorkspaceService(users port.UserRepository, now state.Clock) *WorkspaceService {
	if now == nil {
		now = time.Now
	}
	return &WorkspaceService{
		users:      users,
		now:        now,
		workspaces: make(map[domain.UserID]*Workspace),
	}
}

// Workspace returns the workspace of a registered user, creating it on
// first use.
func (s *WorkspaceService) Workspace(ctx context.Context, userID domain.UserID) (*Workspace, error) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil, state.ErrStoreStopped
	}
	if ws, ok := s.workspaces[userID]; ok {
		s.mu.Unlock()
		return ws, nil
	}
	s.mu.Unlock()

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	initial, err := state.Reduce(state.New(), state.SetCurrentUser{UserID: user.ID}, s.now())
	if err != nil {
		return nil, err
	}
	initial, err = state.Reduce(initial, state.UpsertUser{User: user}, s.now())
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil, state.ErrStoreStopped
	}
	if ws, ok := s.workspaces[userID]; ok {
		return ws, nil
	}
	ws := &Workspace{
		Store:     state.NewStore(initial, s.now),
		Selectors: selector.New(),
	}
	go ws.Store.Run()
	s.workspaces[userID] = ws
	log.Debug().Str("user_id", userID.String()).Msg("Workspace created")
	return ws, nil
}

func (s *WorkspaceService) State(ctx context.Context, userID domain.UserID) (*state.State, error) {
	ws, err := s.Workspace(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ws.Store.State(), nil
}

// Room looks roomID up in the workspace of userID.
func (s *WorkspaceService) Room(ctx context.Context, userID domain.UserID, roomID domain.RoomID) (domain.Room, error) {
	st, err := s.State(ctx, userID)
	if err != nil {
		return domain.Room{}, err
	}
	r, ok := st.Rooms.Get(roomID)
	if !ok {
		return domain.Room{}, &domain.NotFoundError{Collection: "rooms", ID: roomID.String()}
	}
	return r, nil
}

// CreateRoom registers room in the workspace of every participant. The
// owner is added as a participant when missing. The room always gets a
// fresh id; a caller-supplied id is ignored.
func (s *WorkspaceService) CreateRoom(ctx context.Context, owner domain.UserID, room domain.Room) (domain.Room, error) {
	room.ID = domain.NewRoomID()
	room.CreatedAt = s.now().UTC()
	if !room.HasParticipant(owner) {
		room.Participants = append([]domain.Participant{{UserID: owner}}, room.Participants...)
	}
	if err := room.Validate(owner); err != nil {
		return domain.Room{}, err
	}

	members := make([]domain.User, 0, len(room.Participants))
	for _, id := range room.ParticipantIDs() {
		u, err := s.users.FindByID(ctx, id)
		if err != nil {
			return domain.Room{}, err
		}
		members = append(members, u)
	}

	var added []*Workspace
	for _, member := range members {
		ws, err := s.addRoomTo(ctx, member.ID, members, room)
		if err != nil {
			s.rollbackRoom(added, room.ID)
			return domain.Room{}, fmt.Errorf("add room to workspace of %s: %w", member.ID, err)
		}
		added = append(added, ws)
	}

	log.Info().Str("room_id", room.ID.String()).Str("type", string(room.Type)).Int("participants", len(members)).Msg("Room created")
	return room, nil
}

func (s *WorkspaceService) addRoomTo(ctx context.Context, userID domain.UserID, members []domain.User, room domain.Room) (*Workspace, error) {
	ws, err := s.Workspace(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, u := range members {
		if _, err := ws.Store.Dispatch(ctx, state.UpsertUser{User: u}); err != nil {
			return nil, err
		}
	}
	if _, err := ws.Store.Dispatch(ctx, state.UpsertRoom{Room: room}); err != nil {
		return nil, err
	}
	return ws, nil
}

// rollbackRoom removes a partially created room. It runs on a fresh
// context since the request context may be what failed.
func (s *WorkspaceService) rollbackRoom(added []*Workspace, roomID domain.RoomID) {
	ctx := context.Background()
	for _, ws := range added {
		if _, err := ws.Store.Dispatch(ctx, state.RemoveRoom{RoomID: roomID}); err != nil && !errors.Is(err, domain.ErrNotFound) {
			log.Error().Err(err).Str("room_id", roomID.String()).Msg("Failed to roll back room")
		}
	}
}

// DeleteRoom removes the room from every participant workspace, which also
// drops it from their folders and recent rooms.
func (s *WorkspaceService) DeleteRoom(ctx context.Context, actor domain.UserID, roomID domain.RoomID) error {
	room, err := s.Room(ctx, actor, roomID)
	if err != nil {
		return err
	}

	var errs []error
	for _, id := range room.ParticipantIDs() {
		ws, err := s.Workspace(ctx, id)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if _, err := ws.Store.Dispatch(ctx, state.RemoveRoom{RoomID: roomID}); err != nil && !errors.Is(err, domain.ErrNotFound) {
			errs = append(errs, err)
		}
	}

	log.Info().Str("room_id", roomID.String()).Msg("Room deleted")
	return errors.Join(errs...)
}

// Dispatch applies a per-user action. Room membership and identity are
// managed by CreateRoom, DeleteRoom and Workspace and are rejected here.
func (s *WorkspaceService) Dispatch(ctx context.Context, userID domain.UserID, a state.Action) (*state.State, error) {
	switch a.(type) {
	case state.UpsertRoom, state.RemoveRoom, state.SetCurrentUser, state.UpsertUser, state.RemoveUser:
		return nil, fmt.Errorf("%w: action %T is not allowed here", domain.ErrInvalid, a)
	}
	ws, err := s.Workspace(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ws.Store.Dispatch(ctx, a)
}

// TouchRoom records activity in roomID for userID.
func (s *WorkspaceService) TouchRoom(ctx context.Context, userID domain.UserID, roomID domain.RoomID, at time.Time) error {
	ws, err := s.Workspace(ctx, userID)
	if err != nil {
		return err
	}
	if _, ok := ws.Store.State().RecentRooms.Get(roomID); ok {
		_, err = ws.Store.Dispatch(ctx, state.UpdateRecentRoom{
			RoomID: roomID,
			Patch:  domain.RecentRoomPatch{LastActivity: &at},
		})
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
	}
	_, err = ws.Store.Dispatch(ctx, state.AddRecentRoom{Recent: domain.RecentRoom{RoomID: roomID, LastActivity: at}})
	return err
}

func (s *WorkspaceService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for _, ws := range s.workspaces {
		ws.Store.Stop()
	}
}
