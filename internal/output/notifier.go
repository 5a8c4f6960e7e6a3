package output

// Notifier shows session and request notices through a Printer.
type Notifier struct {
	p *Printer
}

// NewNotifier creates a Notifier backed by p.
func NewNotifier(p *Printer) *Notifier {
	return &Notifier{p: p}
}

func (n *Notifier) Info(summary, detail string) {
	n.p.Info("%s", joinNotice(summary, detail))
}

func (n *Notifier) Warn(summary, detail string) {
	n.p.Warning("%s", joinNotice(summary, detail))
}

func (n *Notifier) Error(summary, detail string) {
	n.p.Error("%s", joinNotice(summary, detail))
}

func joinNotice(summary, detail string) string {
	if detail == "" {
		return summary
	}
	return summary + ": " + detail
}
