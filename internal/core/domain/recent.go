package domain

import "time"

// RecentRoom is per-room session state. A preview entry is a room the user
// opened but has not confirmed yet.
type RecentRoom struct {
	RoomID       RoomID    `json:"roomId"`
	IsPreview    bool      `json:"isPreview"`
	LastActivity time.Time `json:"lastActivity"`
	UnreadCount  int       `json:"unreadCount"`
	Draft        string    `json:"draft,omitempty"`
}

func (r RecentRoom) Key() RoomID { return r.RoomID }

type RecentRoomPatch struct {
	IsPreview    *bool      `json:"isPreview,omitempty"`
	LastActivity *time.Time `json:"lastActivity,omitempty"`
	UnreadCount  *int       `json:"unreadCount,omitempty"`
	Draft        *string    `json:"draft,omitempty"`
}

func (p RecentRoomPatch) Apply(r RecentRoom) RecentRoom {
	if p.IsPreview != nil {
		r.IsPreview = *p.IsPreview
	}
	if p.LastActivity != nil {
		r.LastActivity = *p.LastActivity
	}
	if p.UnreadCount != nil {
		r.UnreadCount = *p.UnreadCount
	}
	if p.Draft != nil {
		r.Draft = *p.Draft
	}
	return r
}
