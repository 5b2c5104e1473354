package middleware

import tele "gopkg.in/telebot.v4"

// AdminOptions defines how admin-only checks should behave.
type AdminOptions struct {
	AdminID  int64
	OnReject tele.HandlerFunc
}

// AdminOnlyMiddleware ensures that only the admin user can invoke downstream handlers.
func AdminOnlyMiddleware(opts AdminOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if opts.AdminID != 0 && c.Sender().ID != opts.AdminID {
				if opts.OnReject != nil {
					return opts.OnReject(c)
				}
				return nil
			}
			return next(c)
		}
	}
}

// OperatorOptions defines how operator-chat checks should behave.
type OperatorOptions struct {
	ChatID   int64
	OnReject tele.HandlerFunc
}

// OperatorOnly wraps a handler so it runs only for updates originating
// from the configured operator chat. Updates from anywhere else are
// rejected without reaching the handler.
func OperatorOnly(opts OperatorOptions, h tele.HandlerFunc) tele.HandlerFunc {
	if opts.ChatID == 0 {
		return h
	}
	return func(c tele.Context) error {
		chat := c.Chat()
		if chat == nil || chat.ID != opts.ChatID {
			if opts.OnReject != nil {
				return opts.OnReject(c)
			}
			return nil
		}
		return h(c)
	}
}
