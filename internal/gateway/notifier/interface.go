package notifier

// TextNotifier is the minimal push interface. Kept small so components can
// depend on it without importing a concrete backend.
type TextNotifier interface {
	SendText(text string) error
}

// Noop discards every message. Used when no notifier is configured.
type Noop struct{}

func (Noop) SendText(string) error { return nil }
