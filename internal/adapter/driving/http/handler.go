package http

import (
	"net/http"
	"slices"

	"github.com/Wyydra/huddle/internal/adapter/driven/gateway/ws"
	"github.com/Wyydra/huddle/internal/core/port"
	"github.com/Wyydra/huddle/internal/core/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
)

type Handler struct {
	ChatService *service.ChatService
	CallService *service.CallService
	Workspaces  *service.WorkspaceService
	Users       port.UserRepository
	Previewer   port.LinkPreviewer
	Hub         *ws.Hub

	// StaticDir is served on / when set.
	StaticDir string

	upgrader websocket.Upgrader
}

// NewHandler builds the HTTP layer. An empty allowedOrigins accepts any
// origin.
func NewHandler(
	chatService *service.ChatService,
	callService *service.CallService,
	workspaces *service.WorkspaceService,
	users port.UserRepository,
	previewer port.LinkPreviewer,
	hub *ws.Hub,
	allowedOrigins []string,
) *Handler {
	return &Handler{
		ChatService: chatService,
		CallService: callService,
		Workspaces:  workspaces,
		Users:       users,
		Previewer:   previewer,
		Hub:         hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				if len(allowedOrigins) == 0 {
					return true
				}
				return slices.Contains(allowedOrigins, r.Header.Get("Origin"))
			},
		},
	}
}

func (h *Handler) NewRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)
	r.Get("/ws", h.ServeWS)

	r.Get("/users", h.listUsers)
	r.Post("/users", h.createUser)

	r.Get("/message/{id}", h.getMessage)
	r.Put("/message-processed", h.markProcessed)
	r.Get("/link-preview", h.linkPreview)

	r.Route("/rooms", func(r chi.Router) {
		r.Get("/", h.listRooms)
		r.Post("/", h.createRoom)
		r.Delete("/{id}", h.deleteRoom)
		r.Get("/{id}/interlocutor", h.interlocutor)
		r.Put("/{id}/position", h.moveRoom)
	})

	r.Get("/me/current-room", h.currentRoom)
	r.Put("/me/current-room", h.setCurrentRoom)

	r.Route("/folders", func(r chi.Router) {
		r.Get("/", h.listFolders)
		r.Post("/", h.upsertFolder)
		r.Delete("/{id}", h.removeFolder)
		r.Get("/{id}/rooms", h.folderRooms)
		r.Put("/{id}/rooms/{roomID}", h.addRoomToFolder)
		r.Delete("/{id}/rooms/{roomID}", h.removeRoomFromFolder)
	})

	r.Route("/recent-rooms", func(r chi.Router) {
		r.Get("/", h.listRecentRooms)
		r.Delete("/", h.resetRecentRooms)
		r.Put("/{roomID}", h.addRecentRoom)
		r.Patch("/{roomID}", h.updateRecentRoom)
		r.Delete("/{roomID}", h.removeRecentRoom)
	})

	if h.StaticDir != "" {
		fs := http.FileServer(http.Dir(h.StaticDir))
		r.Handle("/*", fs)
	}

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
