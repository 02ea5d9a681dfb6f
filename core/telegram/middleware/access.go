package middleware

import tele "gopkg.in/telebot.v4"

// AdminOptions configures AdminOnlyMiddleware. OnReject answers non-admins;
// when nil they are ignored silently.
type AdminOptions struct {
	AdminID  int64
	OnReject tele.HandlerFunc
}

// IsAdmin reports whether the sender is adminID. A zero adminID disables the check.
func IsAdmin(c tele.Context, adminID int64) bool {
	if adminID == 0 {
		return true
	}
	u := c.Sender()
	return u != nil && u.ID == adminID
}

// AdminOnlyMiddleware lets only the configured admin reach next.
func AdminOnlyMiddleware(opts AdminOptions) tele.MiddlewareFunc {
	reject := opts.OnReject
	if reject == nil {
		reject = func(tele.Context) error { return nil }
	}
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if IsAdmin(c, opts.AdminID) {
				return next(c)
			}
			return reject(c)
		}
	}
}
