package socket

import (
	"testing"

	"socialnet_server/services"

	"github.com/stretchr/testify/assert"
)

var _ services.Notifier = (*Server)(nil)

func TestRooms(t *testing.T) {
	assert.Equal(t, "user:u1", UserRoom("u1"))
	assert.Equal(t, "post:p1", PostRoom("p1"))
}

func TestBroadcastWithoutListeners(t *testing.T) {
	s := NewSocketServer()
	assert.NotPanics(t, func() {
		s.NotifyUser("u1", services.EventNotification, map[string]string{"message": "hi"})
		s.BroadcastPost("p1", services.EventCommentAdded, nil)
	})
	assert.NotNil(t, s.Handler())
}
