package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Wyydra/huddle/internal/core/domain"
	"github.com/Wyydra/huddle/internal/core/state"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const userHeader = "X-User-ID"

var errUnauthenticated = errors.New("unauthenticated")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalid), errors.Is(err, domain.ErrUnsupportedMessageKind):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("Request failed")
	}
	writeJSON(w, status, errorDTO{Error: err.Error()})
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: request body: %v", domain.ErrInvalid, err)
	}
	return nil
}

func callerID(r *http.Request) (domain.UserID, error) {
	raw := r.Header.Get(userHeader)
	if raw == "" {
		return domain.UserID{}, fmt.Errorf("%w: missing %s header", errUnauthenticated, userHeader)
	}
	id, err := domain.ParseUserID(raw)
	if err != nil {
		return domain.UserID{}, fmt.Errorf("%w: bad %s header", errUnauthenticated, userHeader)
	}
	return id, nil
}

func pathParam[T any](r *http.Request, name string, parse func(string) (T, error)) (T, error) {
	v, err := parse(chi.URLParam(r, name))
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%w: path parameter %s", domain.ErrInvalid, name)
	}
	return v, nil
}

// workspaceState resolves the caller and returns their latest snapshot.
func (h *Handler) workspaceState(r *http.Request) (domain.UserID, *state.State, error) {
	uid, err := callerID(r)
	if err != nil {
		return uid, nil, err
	}
	st, err := h.Workspaces.State(r.Context(), uid)
	return uid, st, err
}

func (h *Handler) dispatchAndRespond(w http.ResponseWriter, r *http.Request, a state.Action, status int) {
	uid, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := h.Workspaces.Dispatch(r.Context(), uid, a); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(status)
}

// users

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var u domain.User
	if err := decodeBody(r, &u); err != nil {
		writeError(w, err)
		return
	}
	if u.ID.IsZero() {
		u.ID = domain.NewUserID()
	}
	if err := h.Users.Save(r.Context(), u); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// messages

func (h *Handler) getMessage(w http.ResponseWriter, r *http.Request) {
	uid, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathParam(r, "id", domain.ParseMessageID)
	if err != nil {
		writeError(w, err)
		return
	}
	msg, err := h.ChatService.GetMessage(r.Context(), uid, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

func (h *Handler) markProcessed(w http.ResponseWriter, r *http.Request) {
	uid, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var body struct {
		MessageID domain.MessageID `json:"messageId"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if err := h.ChatService.MarkProcessed(r.Context(), uid, body.MessageID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) linkPreview(w http.ResponseWriter, r *http.Request) {
	if _, err := callerID(r); err != nil {
		writeError(w, err)
		return
	}
	preview, err := h.Previewer.Preview(r.Context(), r.URL.Query().Get("url"))
	if err != nil {
		if !errors.Is(err, domain.ErrInvalid) {
			log.Warn().Err(err).Msg("Link preview failed")
			writeJSON(w, http.StatusBadGateway, errorDTO{Error: err.Error()})
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

// rooms

func (h *Handler) listRooms(w http.ResponseWriter, r *http.Request) {
	uid, st, err := h.workspaceState(r)
	if err != nil {
		writeError(w, err)
		return
	}
	ws, err := h.Workspaces.Workspace(r.Context(), uid)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ws.Selectors.RoomList(st))
}

func (h *Handler) createRoom(w http.ResponseWriter, r *http.Request) {
	uid, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var room domain.Room
	if err := decodeBody(r, &room); err != nil {
		writeError(w, err)
		return
	}
	created, err := h.Workspaces.CreateRoom(r.Context(), uid, room)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) deleteRoom(w http.ResponseWriter, r *http.Request) {
	uid, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathParam(r, "id", domain.ParseRoomID)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.Workspaces.DeleteRoom(r.Context(), uid, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) interlocutor(w http.ResponseWriter, r *http.Request) {
	uid, st, err := h.workspaceState(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathParam(r, "id", domain.ParseRoomID)
	if err != nil {
		writeError(w, err)
		return
	}
	ws, err := h.Workspaces.Workspace(r.Context(), uid)
	if err != nil {
		writeError(w, err)
		return
	}
	u, ok := ws.Selectors.Interlocutor(st, id)
	if !ok {
		writeError(w, &domain.NotFoundError{Collection: "interlocutors", ID: id.String()})
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *Handler) moveRoom(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id", domain.ParseRoomID)
	if err != nil {
		writeError(w, err)
		return
	}
	var body struct {
		Index int `json:"index"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	h.dispatchAndRespond(w, r, state.MoveRoom{RoomID: id, Index: body.Index}, http.StatusNoContent)
}

func (h *Handler) currentRoom(w http.ResponseWriter, r *http.Request) {
	uid, st, err := h.workspaceState(r)
	if err != nil {
		writeError(w, err)
		return
	}
	ws, err := h.Workspaces.Workspace(r.Context(), uid)
	if err != nil {
		writeError(w, err)
		return
	}
	room, ok := ws.Selectors.ActiveRoom(st)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (h *Handler) setCurrentRoom(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RoomID string `json:"roomId"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	var id domain.RoomID
	if body.RoomID != "" {
		var err error
		if id, err = domain.ParseRoomID(body.RoomID); err != nil {
			writeError(w, fmt.Errorf("%w: roomId", domain.ErrInvalid))
			return
		}
	}
	h.dispatchAndRespond(w, r, state.SetCurrentRoom{RoomID: id}, http.StatusNoContent)
}

// folders

func (h *Handler) listFolders(w http.ResponseWriter, r *http.Request) {
	_, st, err := h.workspaceState(r)
	if err != nil {
		writeError(w, err)
		return
	}
	folders, err := st.Folders.GetAll()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, folders)
}

func (h *Handler) upsertFolder(w http.ResponseWriter, r *http.Request) {
	uid, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var f domain.Folder
	if err := decodeBody(r, &f); err != nil {
		writeError(w, err)
		return
	}
	if f.ID.IsZero() {
		f.ID = domain.NewFolderID()
	}
	st, err := h.Workspaces.Dispatch(r.Context(), uid, state.UpsertFolder{Folder: f})
	if err != nil {
		writeError(w, err)
		return
	}
	saved, _ := st.Folders.Get(f.ID)
	writeJSON(w, http.StatusOK, saved)
}

func (h *Handler) removeFolder(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id", domain.ParseFolderID)
	if err != nil {
		writeError(w, err)
		return
	}
	h.dispatchAndRespond(w, r, state.RemoveFolder{FolderID: id}, http.StatusNoContent)
}

func (h *Handler) folderRooms(w http.ResponseWriter, r *http.Request) {
	uid, st, err := h.workspaceState(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathParam(r, "id", domain.ParseFolderID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !st.Folders.Has(id) {
		writeError(w, &domain.NotFoundError{Collection: "folders", ID: id.String()})
		return
	}
	ws, err := h.Workspaces.Workspace(r.Context(), uid)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ws.Selectors.FolderRooms(st, id))
}

func (h *Handler) addRoomToFolder(w http.ResponseWriter, r *http.Request) {
	folderID, err := pathParam(r, "id", domain.ParseFolderID)
	if err != nil {
		writeError(w, err)
		return
	}
	roomID, err := pathParam(r, "roomID", domain.ParseRoomID)
	if err != nil {
		writeError(w, err)
		return
	}
	h.dispatchAndRespond(w, r, state.AddRoomToFolder{FolderID: folderID, RoomID: roomID}, http.StatusNoContent)
}

func (h *Handler) removeRoomFromFolder(w http.ResponseWriter, r *http.Request) {
	folderID, err := pathParam(r, "id", domain.ParseFolderID)
	if err != nil {
		writeError(w, err)
		return
	}
	roomID, err := pathParam(r, "roomID", domain.ParseRoomID)
	if err != nil {
		writeError(w, err)
		return
	}
	h.dispatchAndRespond(w, r, state.RemoveRoomFromFolder{FolderID: folderID, RoomID: roomID}, http.StatusNoContent)
}

// recent rooms

func (h *Handler) listRecentRooms(w http.ResponseWriter, r *http.Request) {
	uid, st, err := h.workspaceState(r)
	if err != nil {
		writeError(w, err)
		return
	}
	ws, err := h.Workspaces.Workspace(r.Context(), uid)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ws.Selectors.RecentRooms(st))
}

func (h *Handler) addRecentRoom(w http.ResponseWriter, r *http.Request) {
	roomID, err := pathParam(r, "roomID", domain.ParseRoomID)
	if err != nil {
		writeError(w, err)
		return
	}
	var recent domain.RecentRoom
	if err := decodeBody(r, &recent); err != nil {
		writeError(w, err)
		return
	}
	recent.RoomID = roomID
	h.dispatchAndRespond(w, r, state.AddRecentRoom{Recent: recent}, http.StatusNoContent)
}

func (h *Handler) updateRecentRoom(w http.ResponseWriter, r *http.Request) {
	roomID, err := pathParam(r, "roomID", domain.ParseRoomID)
	if err != nil {
		writeError(w, err)
		return
	}
	var patch domain.RecentRoomPatch
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, err)
		return
	}
	h.dispatchAndRespond(w, r, state.UpdateRecentRoom{RoomID: roomID, Patch: patch}, http.StatusNoContent)
}

func (h *Handler) removeRecentRoom(w http.ResponseWriter, r *http.Request) {
	roomID, err := pathParam(r, "roomID", domain.ParseRoomID)
	if err != nil {
		writeError(w, err)
		return
	}
	h.dispatchAndRespond(w, r, state.RemoveRecentRoom{RoomID: roomID}, http.StatusNoContent)
}

func (h *Handler) resetRecentRooms(w http.ResponseWriter, r *http.Request) {
	h.dispatchAndRespond(w, r, state.ResetRecentRooms{}, http.StatusNoContent)
}
