package auth

import "time"

// AutoLogoutAfter is how long a table session lasts before it is logged out.
// Activity does not extend it.
const AutoLogoutAfter = 10 * time.Minute

// autoLogout is a single-shot countdown. It is not safe for concurrent use; the
// Manager guards it with its own mutex. Every arm or cancel bumps gen, so a callback
// from a superseded timer can tell it is stale.
type autoLogout struct {
	timer *time.Timer
	gen   uint64
}

// arm cancels any pending countdown and starts a new one. fire receives the
// generation it was armed with.
func (a *autoLogout) arm(after time.Duration, fire func(gen uint64)) {
	a.cancel()
	gen := a.gen
	a.timer = time.AfterFunc(after, func() { fire(gen) })
}

func (a *autoLogout) cancel() {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.gen++
}

// expire reports whether gen belongs to the live countdown, and if so moves back to idle.
func (a *autoLogout) expire(gen uint64) bool {
	if a.timer == nil || gen != a.gen {
		return false
	}
	a.timer = nil
	return true
}

func (a *autoLogout) armed() bool {
	return a.timer != nil
}
