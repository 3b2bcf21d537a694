package middleware

import (
	"sync"

	tele "gopkg.in/telebot.v4"
)

// serializeStripes bounds the lock table; conversations hashing to the
// same stripe serialize against each other, which only costs latency.
const serializeStripes = 64

// Shared across handler chains so a text update and a callback update
// from the same conversation contend on the same lock.
var serializeLocks [serializeStripes]sync.Mutex

// SerializeMiddleware guarantees that updates belonging to the same
// conversation are handled one at a time, in arrival order. Telebot runs
// every update in its own goroutine, so without this two quick messages
// from one user could interleave inside the dialogue state machine.
func SerializeMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		user := c.Sender()
		if user == nil {
			return next(c)
		}
		idx := uint64(user.ID) % serializeStripes
		serializeLocks[idx].Lock()
		defer serializeLocks[idx].Unlock()
		return next(c)
	}
}
