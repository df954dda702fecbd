package session

import "time"

// Level is the severity of a notification.
type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Notification is a transient message for the user.
type Notification struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// Notifications returns the notification channel. It is closed by Close.
// Notifications are dropped while the channel is full.
func (s *Session) Notifications() <-chan Notification {
	return s.notes
}

// notify sends a notification. The caller holds s.mu.
func (s *Session) notify(level Level, msg string) {
	if s.closed {
		return
	}
	n := Notification{Level: level, Message: msg, Time: s.deps.Now()}
	select {
	case s.notes <- n:
	default:
		s.logger.Debug("notification dropped", "message", msg)
	}
}

func (s *Session) notifyAsync(level Level, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notify(level, msg)
}
