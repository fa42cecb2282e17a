package app

import "interview-session-service/internal/domain"

// The countdown lives in the pointer state so that it persists and
// restores with the session. There is only ever one: arming it for a new
// question overwrites whatever was left of the previous one.

func armCountdown(p *domain.Pointer, seconds int) {
	p.TimeLeftSeconds = seconds
	p.IsRunning = true
}

func haltCountdown(p *domain.Pointer) {
	p.IsRunning = false
}

// tickCountdown advances the clock by one second and reports whether it
// has run out. A halted countdown never expires.
func tickCountdown(p *domain.Pointer) bool {
	if !p.IsRunning {
		return false
	}
	if p.TimeLeftSeconds > 0 {
		p.TimeLeftSeconds--
	}
	return p.TimeLeftSeconds == 0
}
