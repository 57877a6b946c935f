package dashboard

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Severity classifies a user-visible notice.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

const maxNotices = 20

// Notice is a transient, dismissible message for the user.
type Notice struct {
	ID        string    `json:"id"`
	Severity  Severity  `json:"severity"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// notify appends a notice, dropping the oldest beyond maxNotices. Callers hold s.mu.
func (s *Session) notify(sev Severity, msg string) Notice {
	n := Notice{
		ID:        uuid.NewString(),
		Severity:  sev,
		Message:   msg,
		CreatedAt: s.now(),
	}
	s.notices = append(s.notices, n)
	if over := len(s.notices) - maxNotices; over > 0 {
		s.notices = slices.Delete(s.notices, 0, over)
	}
	switch sev {
	case SeverityError:
		s.logger.Error("notice", "message", msg)
	case SeverityWarning:
		s.logger.Warn("notice", "message", msg)
	default:
		s.logger.Debug("notice", "severity", sev, "message", msg)
	}
	return n
}

func (s *Session) addNotice(sev Severity, msg string) Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notify(sev, msg)
}

// Notices returns the pending notices, oldest first.
func (s *Session) Notices() []Notice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.notices)
}

// Dismiss removes the notice with the given id and reports whether it existed.
func (s *Session) Dismiss(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.notices, func(n Notice) bool { return n.ID == id })
	if i < 0 {
		return false
	}
	s.notices = slices.Delete(s.notices, i, i+1)
	return true
}
