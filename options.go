package eventbus

import "github.com/charmbracelet/log"

// Option configures a Bus.
type Option func(*busConfig)

// busConfig contains configuration for the bus.
type busConfig struct {
	// logger receives debug traces for subscribe/unsubscribe/dispatcher
	// creation and error reports for failed handlers. Nil disables logging.
	logger *log.Logger

	// panicHandler is called when a handler panics, before the panic is
	// returned from Publish as a *PanicError.
	panicHandler PanicHandler
}

// WithLogger sets the bus logger.
func WithLogger(l *log.Logger) Option {
	return func(c *busConfig) {
		c.logger = l
	}
}

// WithPanicHandler sets the handler-panic observer.
func WithPanicHandler(h PanicHandler) Option {
	return func(c *busConfig) {
		c.panicHandler = h
	}
}

// SubscribeOption configures a single registration.
type SubscribeOption func(*subscribeConfig)

// subscribeConfig contains per-registration configuration.
type subscribeConfig struct {
	filter FilterFunc
}

// WithFilter sets a delivery filter for the registration. The filter runs
// before the handler is claimed or invoked, so a rejected one-shot handler
// stays armed.
func WithFilter(f FilterFunc) SubscribeOption {
	return func(c *subscribeConfig) {
		c.filter = f
	}
}
