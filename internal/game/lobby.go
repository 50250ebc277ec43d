package game

import (
	"log"
	"slices"

	"github.com/balalek/Masters-Thesis-sub000/internal"
)

// =============================================================================
// LOBBY
// =============================================================================

// activateQuiz opens the lobby so phones can join. Idempotent.
func (g *Dispatcher) activateQuiz() error {
	if g.s.IsGameRunning {
		return internal.ErrGameInProgress
	}
	if !g.s.IsQuizActive {
		g.s.IsQuizActive = true
		log.Printf("[activateQuiz] lobby opened")
		g.sendToMain("colors_updated", map[string]any{"colors": g.s.AvailableColors()})
	}
	return nil
}

// handleJoin admits a player into the open lobby.
func (g *Dispatcher) handleJoin(p joinPayload) {
	if err := g.join(p.PlayerName, p.Color); err != nil {
		log.Printf("[handleJoin] name=%q color=%q rejected: %v", p.PlayerName, p.Color, err)
		g.sendToPlayer(p.PlayerName, "error", map[string]any{"message": err.Error()})
		return
	}

	log.Printf("[handleJoin] name=%q color=%q joined (%d/%d)",
		p.PlayerName, p.Color, len(g.s.Players), internal.MaxPlayers)

	g.broadcast("player_joined", map[string]any{
		"player_name":  p.PlayerName,
		"color":        p.Color,
		"player_count": len(g.s.Players),
	})
	g.broadcast("colors_updated", map[string]any{"colors": g.s.AvailableColors()})
}

func (g *Dispatcher) join(name, color string) error {
	switch {
	case !g.s.IsQuizActive:
		return internal.ErrLobbyClosed
	case g.s.IsGameRunning:
		return internal.ErrGameInProgress
	case len(g.s.Players) >= internal.MaxPlayers:
		return internal.ErrFull
	}
	if _, taken := g.s.Players[name]; taken {
		return internal.ErrNameTaken
	}
	if nameLen := len([]rune(name)); nameLen < internal.MinNameLength || nameLen > internal.MaxNameLength {
		return internal.ErrInvalidLength
	}
	if !slices.Contains(internal.ColorPalette, color) {
		return internal.ErrInvalidArgs
	}
	if !slices.Contains(g.s.AvailableColors(), color) {
		return internal.ErrColorTaken
	}

	g.s.Players[name] = &Player{Name: name, Color: color}
	g.s.JoinOrder = append(g.s.JoinOrder, name)
	return nil
}

// handleRename reassigns the player's private room and keeps score/color.
func (g *Dispatcher) handleRename(p renamePayload) {
	player, ok := g.s.Players[p.OldName]
	if !ok {
		g.sendToPlayer(p.OldName, "error", map[string]any{"message": internal.ErrNotFound.Error()})
		return
	}
	if _, taken := g.s.Players[p.NewName]; taken {
		g.sendToPlayer(p.OldName, "error", map[string]any{"message": internal.ErrNameTaken.Error()})
		return
	}
	if nameLen := len([]rune(p.NewName)); nameLen < internal.MinNameLength || nameLen > internal.MaxNameLength {
		g.sendToPlayer(p.OldName, "error", map[string]any{"message": internal.ErrInvalidLength.Error()})
		return
	}

	delete(g.s.Players, p.OldName)
	player.Name = p.NewName
	g.s.Players[p.NewName] = player
	if idx := slices.Index(g.s.JoinOrder, p.OldName); idx >= 0 {
		g.s.JoinOrder[idx] = p.NewName
	}
	g.renameEverywhere(p.OldName, p.NewName)
	g.bus.Rename(p.OldName, p.NewName)

	log.Printf("[handleRename] %q -> %q", p.OldName, p.NewName)
	g.broadcast("player_name_changed", map[string]any{
		"old_name": p.OldName,
		"new_name": p.NewName,
	})
}

// renameEverywhere rewrites a player's name through every structure that
// addresses players by name: team rosters, the live word chain, and the
// scheduled drawing rounds. Must run before the bus room moves.
func (g *Dispatcher) renameEverywhere(oldName, newName string) {
	for _, roster := range [][]string{g.s.BlueTeam, g.s.RedTeam} {
		if idx := slices.Index(roster, oldName); idx >= 0 {
			roster[idx] = newName
		}
	}
	for i := range g.s.Questions {
		if g.s.Questions[i].Player == oldName {
			g.s.Questions[i].Player = newName
		}
	}
	if st := g.s.Chain; st != nil {
		if idx := slices.Index(st.PlayerOrder, oldName); idx >= 0 {
			st.PlayerOrder[idx] = newName
		}
		if st.CurrentPlayer == oldName {
			st.CurrentPlayer = newName
		}
		if st.Eliminated[oldName] {
			delete(st.Eliminated, oldName)
			st.Eliminated[newName] = true
		}
		for i, submitter := range st.Submitter {
			if submitter == oldName {
				st.Submitter[i] = newName
			}
		}
	}
}

// handleLeave removes a departing player and frees their color. Team rosters
// shrink with the player; a departing captain's spot falls to the next
// member.
func (g *Dispatcher) handleLeave(name string) {
	if _, ok := g.s.Players[name]; !ok {
		return
	}
	delete(g.s.Players, name)
	if idx := slices.Index(g.s.JoinOrder, name); idx >= 0 {
		g.s.JoinOrder = slices.Delete(g.s.JoinOrder, idx, idx+1)
	}
	if idx := slices.Index(g.s.BlueTeam, name); idx >= 0 {
		g.s.BlueTeam = slices.Delete(g.s.BlueTeam, idx, idx+1)
	}
	if idx := slices.Index(g.s.RedTeam, name); idx >= 0 {
		g.s.RedTeam = slices.Delete(g.s.RedTeam, idx, idx+1)
	}

	log.Printf("[handleLeave] name=%q left (%d remaining)", name, len(g.s.Players))
	g.broadcast("player_left", map[string]any{
		"player_name":  name,
		"player_count": len(g.s.Players),
	})
	g.broadcast("colors_updated", map[string]any{"colors": g.s.AvailableColors()})
}

// resetGame performs a full session wipe and restores the palette.
func (g *Dispatcher) resetGame() {
	g.cancelTimer()
	g.s.Reset()
	log.Printf("[resetGame] session wiped")
	g.broadcast("game_reset", nil)
	g.broadcast("colors_updated", map[string]any{"colors": g.s.AvailableColors()})
}
