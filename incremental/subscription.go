package incremental

// Subscription is the handle returned for every subscriber registration.
type Subscription struct {
	fn      any
	release func()
	stopped bool
}

// Stop removes the subscriber from its node. Notifications already queued
// for it are dropped. Stop is idempotent.
func (s *Subscription) Stop() {
	if s == nil || s.stopped {
		return
	}
	s.stopped = true
	if s.release != nil {
		s.release()
		s.release = nil
	}
}

// Stopped reports whether Stop has been called.
func (s *Subscription) Stopped() bool {
	return s != nil && s.stopped
}
