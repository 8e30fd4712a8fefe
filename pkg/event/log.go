package event

import "log/slog"

// Log is the append-only journal of game-time facts for one session.
// The full log is scanned on every evaluation; that is acceptable while a
// log stays small within one playthrough.
type Log struct {
	Entries []Event `json:"entries,omitempty"`

	observer func(Event)
	logger   *slog.Logger
}

// SetObserver registers a hook that runs after each successful append.
// The quest engine uses this to re-evaluate objectives inline, in append
// order.
func (l *Log) SetObserver(fn func(Event)) {
	l.observer = fn
}

// SetLogger sets the logger used for observer failure diagnostics.
func (l *Log) SetLogger(logger *slog.Logger) {
	l.logger = logger
}

// Append adds ev to the log and notifies the observer. Append itself never
// fails; an observer panic is contained and logged so a bad quest rule can
// never block recording gameplay facts.
func (l *Log) Append(ev Event) {
	if l == nil {
		return
	}
	l.Entries = append(l.Entries, ev)
	if l.observer == nil {
		return
	}
	func() {
		defer func() {
			if r := recover(); r != nil {
				log := l.logger
				if log == nil {
					log = slog.Default()
				}
				log.Debug("Event observer panicked",
					"kind", ev.Kind,
					"panic", r)
			}
		}()
		l.observer(ev)
	}()
}

// Len returns the number of recorded events.
func (l *Log) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Entries)
}
