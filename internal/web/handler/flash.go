package handler

import (
	echosession "github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

const flashSession = "agrienergy_flash"

// addFlash queues a one-shot message for the next rendered page. Without a
// session store the message is dropped.
func addFlash(c echo.Context, msg string) {
	sess, err := echosession.Get(flashSession, c)
	if err != nil {
		return
	}
	sess.AddFlash(msg)
	_ = sess.Save(c.Request(), c.Response())
}

func popFlashes(c echo.Context) []string {
	sess, err := echosession.Get(flashSession, c)
	if err != nil || sess.IsNew {
		return nil
	}
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}
	_ = sess.Save(c.Request(), c.Response())

	out := make([]string, 0, len(raw))
	for _, f := range raw {
		if s, ok := f.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
