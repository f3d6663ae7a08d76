package auth

import "context"

// loggingNotifier is the default Notifier: it records the outbound message
// instead of delivering it. Deployments plug in a real transport through
// Auther.WithNotifier.
type loggingNotifier struct {
	logger Logger
}

func (n loggingNotifier) Send(ctx context.Context, recipient, subject, htmlBody string) error {
	n.logger.Info("outbound email (no transport configured)", "to", recipient, "subject", subject)
	return nil
}

// NotifierFunc adapts a function into a Notifier.
type NotifierFunc func(ctx context.Context, recipient, subject, htmlBody string) error

// Send satisfies the Notifier interface.
func (f NotifierFunc) Send(ctx context.Context, recipient, subject, htmlBody string) error {
	if f == nil {
		return nil
	}
	return f(ctx, recipient, subject, htmlBody)
}
