package bot

import "sync"

// Notifier forwards logbook notifications to a Bot attached after startup.
// Until a bot is attached notifications are dropped.
type Notifier struct {
	mu  sync.RWMutex
	bot interface{ SendNotification(message string) }
}

// NewNotifier creates a new bot notifier
func NewNotifier() *Notifier {
	return &Notifier{}
}

// Attach routes notifications to b
func (n *Notifier) Attach(b interface{ SendNotification(message string) }) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.bot = b
}

// SendNotification sends a notification to the admin chat
func (n *Notifier) SendNotification(message string) {
	n.mu.RLock()
	b := n.bot
	n.mu.RUnlock()

	if b != nil {
		b.SendNotification(message)
	}
}
