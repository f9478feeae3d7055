package app

// Subscribe returns a channel that receives a GameView after every change of
// the game, starting with the current one. The caller must invoke cancel.
func (g *Game) Subscribe() (<-chan GameView, func()) {
	ch := make(chan GameView, 8)

	g.mu.Lock()
	g.subscribers[ch] = struct{}{}
	// The buffer is empty, so this cannot block, and no broadcast can overtake it.
	ch <- g.viewLocked()
	g.mu.Unlock()

	cancel := func() {
		g.mu.Lock()
		if _, ok := g.subscribers[ch]; ok {
			delete(g.subscribers, ch)
			close(ch)
		}
		g.mu.Unlock()
	}
	return ch, cancel
}

func (g *Game) broadcastLocked() {
	if len(g.subscribers) == 0 {
		return
	}
	view := g.viewLocked()
	for ch := range g.subscribers {
		select {
		case ch <- view:
		default:
			// Slow reader: drop the oldest view so it catches up with the latest.
			select {
			case <-ch:
			default:
			}
			ch <- view
		}
	}
}
