package game

import (
	"context"
	"log"
	"time"
)

// =============================================================================
// TIMER MANAGEMENT
// =============================================================================
//
// Every live question holds at most one primary timer. Firing never runs
// game logic on the timer goroutine: it posts a synthetic event back onto
// the dispatcher mailbox, stamped with a generation so a stale fire that
// races a cancel is dropped.

// armTimer cancels any armed timer and schedules eventType after d.
func (g *Dispatcher) armTimer(d time.Duration, eventType string) {
	g.cancelTimer()

	g.timerGen++
	gen := g.timerGen
	ctx, cancel := context.WithTimeout(context.Background(), d)
	g.timerCancel = cancel
	g.timerEvent = eventType
	g.timerDeadline = g.now().Add(d)

	log.Printf("[armTimer] event=%s in=%v gen=%d", eventType, d, gen)

	go func() {
		<-ctx.Done()
		if ctx.Err() != context.DeadlineExceeded {
			return // cancelled before expiry
		}
		g.post(Event{Type: eventType, timerGen: gen})
	}()
}

// cancelTimer stops the armed timer, if any.
func (g *Dispatcher) cancelTimer() {
	if g.timerCancel != nil {
		g.timerCancel()
		g.timerCancel = nil
		g.timerEvent = ""
	}
}

// fastForwardTimer reschedules the armed timer to fire after the shorter
// remainder, keeping its event. Used by the math quiz once one team has
// scored and the other is fully eliminated.
func (g *Dispatcher) fastForwardTimer(remaining time.Duration) {
	if g.timerCancel == nil {
		return
	}
	event := g.timerEvent
	if g.timerDeadline.Sub(g.now()) <= remaining {
		return // already closer than the requested remainder
	}
	log.Printf("[fastForwardTimer] event=%s remaining=%v", event, remaining)
	g.armTimer(remaining, event)
}

// post enqueues an event from outside the dispatcher goroutine.
func (g *Dispatcher) post(ev Event) {
	select {
	case g.events <- ev:
	case <-g.done:
	}
}
