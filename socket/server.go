// Package socket pushes realtime notifications and post activity to clients
// over Socket.IO.
package socket

import (
	"net/http"

	socketio "github.com/googollee/go-socket.io"
	"github.com/rs/zerolog/log"
)

const namespace = "/"

// Server wraps a Socket.IO server and delivers service events to rooms.
// Each user listens on "user:{id}" and each open post on "post:{id}".
type Server struct {
	io *socketio.Server
}

// UserRoom is the room a user joins to receive their notifications.
func UserRoom(userID string) string { return "user:" + userID }

// PostRoom is the room clients join while a post is on screen.
func PostRoom(postID string) string { return "post:" + postID }

// NewSocketServer initializes a Socket.IO server with the join and watch events
func NewSocketServer() *Server {
	server := socketio.NewServer(nil)

	server.OnConnect(namespace, func(c socketio.Conn) error {
		log.Debug().Str("socketId", c.ID()).Msg("socket connected")
		return nil
	})

	// join subscribes the connection to its user's notifications
	server.OnEvent(namespace, "join", func(c socketio.Conn, data map[string]string) {
		userID := data["userId"]
		if userID == "" {
			log.Warn().Str("socketId", c.ID()).Msg("join without userId")
			return
		}
		c.Join(UserRoom(userID))
		log.Debug().Str("socketId", c.ID()).Str("userId", userID).Msg("socket joined user room")
	})

	server.OnEvent(namespace, "watch", func(c socketio.Conn, data map[string]string) {
		postID := data["postId"]
		if postID == "" {
			log.Warn().Str("socketId", c.ID()).Msg("watch without postId")
			return
		}
		c.Join(PostRoom(postID))
	})

	server.OnEvent(namespace, "unwatch", func(c socketio.Conn, data map[string]string) {
		if postID := data["postId"]; postID != "" {
			c.Leave(PostRoom(postID))
		}
	})

	server.OnError(namespace, func(c socketio.Conn, err error) {
		id := ""
		if c != nil {
			id = c.ID()
		}
		log.Error().Err(err).Str("socketId", id).Msg("socket error")
	})

	server.OnDisconnect(namespace, func(c socketio.Conn, reason string) {
		log.Debug().Str("socketId", c.ID()).Str("reason", reason).Msg("socket disconnected")
	})

	return &Server{io: server}
}

// Serve runs the Socket.IO event loop until Close is called.
func (s *Server) Serve() {
	if err := s.io.Serve(); err != nil {
		log.Error().Err(err).Msg("socket server stopped")
	}
}

func (s *Server) Close() error {
	return s.io.Close()
}

// Handler mounts the Socket.IO transport on an HTTP router.
func (s *Server) Handler() http.Handler {
	return s.io
}

// NotifyUser pushes event to every connection of userID.
func (s *Server) NotifyUser(userID, event string, payload interface{}) {
	s.io.BroadcastToRoom(namespace, UserRoom(userID), event, payload)
}

// BroadcastPost pushes event to every client watching postID.
func (s *Server) BroadcastPost(postID, event string, payload interface{}) {
	s.io.BroadcastToRoom(namespace, PostRoom(postID), event, payload)
}
