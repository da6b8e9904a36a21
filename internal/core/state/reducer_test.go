package state

import (
	"testing"
	"time"

	"github.com/Wyydra/huddle/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	t1 = t0.Add(time.Minute)
)

func group(id domain.RoomID, users ...domain.UserID) domain.Room {
	r := domain.Room{ID: id, Type: domain.RoomGroup}
	for _, u := range users {
		r.Participants = append(r.Participants, domain.Participant{UserID: u})
	}
	return r
}

func apply(t *testing.T, s *State, actions ...Action) *State {
	t.Helper()
	for _, a := range actions {
		next, err := Reduce(s, a, t0)
		require.NoError(t, err, "%T", a)
		s = next
	}
	return s
}

func TestRemoveRoomCascades(t *testing.T) {
	r1, r2 := domain.NewRoomID(), domain.NewRoomID()
	f1, f2 := domain.NewFolderID(), domain.NewFolderID()

	s := apply(t, New(),
		UpsertRoom{Room: group(r1)},
		UpsertRoom{Room: group(r2)},
		UpsertFolder{Folder: domain.Folder{ID: f1, RoomIDs: []domain.RoomID{r1, r2}}},
		UpsertFolder{Folder: domain.Folder{ID: f2, RoomIDs: []domain.RoomID{r1}}},
		AddRecentRoom{Recent: domain.RecentRoom{RoomID: r1}},
		SetCurrentRoom{RoomID: r1},
	)

	next, err := Reduce(s, RemoveRoom{RoomID: r1}, t1)
	require.NoError(t, err)

	assert.Equal(t, []domain.RoomID{r2}, next.Rooms.IDs())
	folder1, _ := next.Folders.Get(f1)
	folder2, _ := next.Folders.Get(f2)
	assert.Equal(t, []domain.RoomID{r2}, folder1.RoomIDs)
	assert.Empty(t, folder2.RoomIDs)
	assert.Equal(t, t1, folder1.UpdatedAt)
	assert.False(t, next.RecentRooms.Has(r1))
	assert.True(t, next.CurrentRoomID.IsZero())
	assert.NoError(t, next.Check())

	// the previous snapshot is untouched
	assert.Equal(t, []domain.RoomID{r1, r2}, s.Rooms.IDs())
	old, _ := s.Folders.Get(f1)
	assert.Equal(t, []domain.RoomID{r1, r2}, old.RoomIDs)
}

func TestRemoveRoomUnknown(t *testing.T) {
	_, err := Reduce(New(), RemoveRoom{RoomID: domain.NewRoomID()}, t0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRemoveRoomSharesUntouchedLists(t *testing.T) {
	r1 := domain.NewRoomID()
	s := apply(t, New(), UpsertRoom{Room: group(r1)})

	next, err := Reduce(s, RemoveRoom{RoomID: r1}, t0)
	require.NoError(t, err)
	assert.Same(t, s.Folders, next.Folders)
	assert.Same(t, s.Users, next.Users)
	assert.NotSame(t, s.Rooms, next.Rooms)
}

func TestAddRoomToFolder(t *testing.T) {
	r1 := domain.NewRoomID()
	f1 := domain.NewFolderID()
	s := apply(t, New(),
		UpsertRoom{Room: group(r1)},
		UpsertFolder{Folder: domain.Folder{ID: f1, Name: "work"}},
	)

	t.Run("idempotent", func(t *testing.T) {
		once, err := Reduce(s, AddRoomToFolder{FolderID: f1, RoomID: r1}, t1)
		require.NoError(t, err)
		twice, err := Reduce(once, AddRoomToFolder{FolderID: f1, RoomID: r1}, t1.Add(time.Hour))
		require.NoError(t, err)

		a, _ := once.Folders.Get(f1)
		b, _ := twice.Folders.Get(f1)
		assert.Equal(t, []domain.RoomID{r1}, b.RoomIDs)
		assert.Equal(t, a, b)
		assert.Same(t, once, twice)
	})

	t.Run("unknown folder", func(t *testing.T) {
		_, err := Reduce(s, AddRoomToFolder{FolderID: domain.NewFolderID(), RoomID: r1}, t0)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("unknown room", func(t *testing.T) {
		_, err := Reduce(s, AddRoomToFolder{FolderID: f1, RoomID: domain.NewRoomID()}, t0)
		var nf *domain.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "rooms", nf.Collection)
	})
}

func TestRemoveRoomFromFolder(t *testing.T) {
	r1, r2 := domain.NewRoomID(), domain.NewRoomID()
	f1 := domain.NewFolderID()
	s := apply(t, New(),
		UpsertRoom{Room: group(r1)},
		UpsertRoom{Room: group(r2)},
		UpsertFolder{Folder: domain.Folder{ID: f1, RoomIDs: []domain.RoomID{r1, r2}}},
		RemoveRoomFromFolder{FolderID: f1, RoomID: r1},
		RemoveRoomFromFolder{FolderID: f1, RoomID: r1},
	)
	f, _ := s.Folders.Get(f1)
	assert.Equal(t, []domain.RoomID{r2}, f.RoomIDs)
	assert.True(t, s.Rooms.Has(r1), "folder membership is not ownership")
}

func TestUpsertFolder(t *testing.T) {
	r1 := domain.NewRoomID()
	f1 := domain.NewFolderID()
	s := apply(t, New(), UpsertRoom{Room: group(r1)})

	t.Run("rejects dangling room", func(t *testing.T) {
		_, err := Reduce(s, UpsertFolder{Folder: domain.Folder{ID: f1, RoomIDs: []domain.RoomID{domain.NewRoomID()}}}, t0)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("collapses duplicates and keeps created time", func(t *testing.T) {
		first, err := Reduce(s, UpsertFolder{Folder: domain.Folder{ID: f1, RoomIDs: []domain.RoomID{r1, r1}}}, t0)
		require.NoError(t, err)
		second, err := Reduce(first, UpsertFolder{Folder: domain.Folder{ID: f1, Name: "renamed", RoomIDs: []domain.RoomID{r1}}}, t1)
		require.NoError(t, err)

		f, _ := second.Folders.Get(f1)
		assert.Equal(t, []domain.RoomID{r1}, f.RoomIDs)
		assert.Equal(t, "renamed", f.Name)
		assert.Equal(t, t0, f.CreatedAt)
		assert.Equal(t, t1, f.UpdatedAt)
	})

	t.Run("requires id", func(t *testing.T) {
		_, err := Reduce(s, UpsertFolder{Folder: domain.Folder{Name: "x"}}, t0)
		assert.ErrorIs(t, err, domain.ErrInvalid)
	})
}

func TestRecentRooms(t *testing.T) {
	r1, r2 := domain.NewRoomID(), domain.NewRoomID()
	s := apply(t, New(),
		AddRecentRoom{Recent: domain.RecentRoom{RoomID: r1, IsPreview: true}},
		AddRecentRoom{Recent: domain.RecentRoom{RoomID: r2}},
	)

	r, _ := s.RecentRooms.Get(r1)
	assert.Equal(t, t0, r.LastActivity, "zero activity is stamped")

	confirmed := false
	draft := "hello"
	s = apply(t, s, UpdateRecentRoom{RoomID: r1, Patch: domain.RecentRoomPatch{IsPreview: &confirmed, Draft: &draft}})
	r, _ = s.RecentRooms.Get(r1)
	assert.False(t, r.IsPreview)
	assert.Equal(t, "hello", r.Draft)

	_, err := Reduce(s, UpdateRecentRoom{RoomID: domain.NewRoomID()}, t0)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	s = apply(t, s, RemoveRecentRoom{RoomID: r2}, RemoveRecentRoom{RoomID: r2})
	assert.Equal(t, []domain.RoomID{r1}, s.RecentRooms.IDs())

	s = apply(t, s, ResetRecentRooms{})
	assert.Equal(t, 0, s.RecentRooms.Len())
}

func TestPrivateRoomNeedsOneInterlocutor(t *testing.T) {
	self, other, third := domain.NewUserID(), domain.NewUserID(), domain.NewUserID()
	s := apply(t, New(), SetCurrentUser{UserID: self})

	ok := domain.Room{ID: domain.NewRoomID(), Type: domain.RoomPrivate, Participants: []domain.Participant{{UserID: self}, {UserID: other}}}
	_, err := Reduce(s, UpsertRoom{Room: ok}, t0)
	assert.NoError(t, err)

	bad := domain.Room{ID: domain.NewRoomID(), Type: domain.RoomPrivate, Participants: []domain.Participant{{UserID: self}, {UserID: other}, {UserID: third}}}
	_, err = Reduce(s, UpsertRoom{Room: bad}, t0)
	assert.ErrorIs(t, err, domain.ErrInvalid)
}

func TestSetCurrentRoom(t *testing.T) {
	r1 := domain.NewRoomID()
	s := apply(t, New(), UpsertRoom{Room: group(r1)})

	_, err := Reduce(s, SetCurrentRoom{RoomID: domain.NewRoomID()}, t0)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	s = apply(t, s, SetCurrentRoom{RoomID: r1})
	assert.Equal(t, r1, s.CurrentRoomID)

	s = apply(t, s, SetCurrentRoom{})
	assert.True(t, s.CurrentRoomID.IsZero())
}

func TestVersionAdvancesOnChange(t *testing.T) {
	s := New()
	next := apply(t, s, UpsertRoom{Room: group(domain.NewRoomID())})
	assert.Equal(t, s.Version+1, next.Version)
}
