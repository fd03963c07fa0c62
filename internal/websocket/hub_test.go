package websocket

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(userID, role string, buffer int) *Client {
	return &Client{
		UserID:   userID,
		UserRole: role,
		send:     make(chan []byte, buffer),
	}
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return hub.clientCount() == n
	}, time.Second, 5*time.Millisecond)
}

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case data := <-c.send:
		return data
	case <-time.After(time.Second):
		t.Fatal("no message received")
		return nil
	}
}

func TestBroadcastToUserDeliversToTarget(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	janitor := testClient("jan-1", "janitor", 4)
	staff := testClient("staff-1", "staff", 4)
	hub.register <- janitor
	hub.register <- staff
	waitForClients(t, hub, 2)

	hub.BroadcastToUser("jan-1", map[string]string{"type": "task_assigned"})

	assert.Contains(t, string(receive(t, janitor)), "task_assigned")
	assert.Empty(t, staff.send)
}

func TestBroadcastToAllReachesEveryClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	clients := []*Client{
		testClient("jan-1", "janitor", 4),
		testClient("staff-1", "staff", 4),
	}
	for _, c := range clients {
		hub.register <- c
	}
	waitForClients(t, hub, 2)

	hub.BroadcastToAll(map[string]string{"type": "bin_level_update"})

	for _, c := range clients {
		assert.Contains(t, string(receive(t, c)), "bin_level_update")
	}
}

func TestBroadcastEvictsFullClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	stuck := testClient("jan-1", "janitor", 1)
	hub.register <- stuck
	waitForClients(t, hub, 1)

	// First message fills the buffer, second trips the eviction path.
	hub.BroadcastToUser("jan-1", "one")
	hub.BroadcastToUser("jan-1", "two")

	require.Eventually(t, func() bool {
		return hub.clientCount() == 0
	}, time.Second, 10*time.Millisecond)

	// The send channel was closed by the hub.
	<-stuck.send
	_, open := <-stuck.send
	assert.False(t, open)
}

func TestBroadcastWithConcurrentReaders(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	stuck := testClient("jan-1", "janitor", 1)
	roomy := testClient("staff-1", "staff", 64)
	hub.register <- stuck
	hub.register <- roomy
	waitForClients(t, hub, 2)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			hub.BroadcastToAll(map[string]string{"type": "bin_level_update"})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			hub.BroadcastToUser("jan-1", "task")
		}
	}()
	wg.Wait()

	// The stuck client ends up evicted; the other one stays registered.
	require.Eventually(t, func() bool {
		return hub.clientCount() == 1
	}, time.Second, 10*time.Millisecond)
}
