package main

import (
	"backgammon-arena/internal/backgammon"
	"backgammon-arena/internal/config"
	"backgammon-arena/internal/logging"
	"backgammon-arena/internal/session"
	"backgammon-arena/internal/ws"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func main() {
	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	logging.Init(logCfg)
	cfg, err := config.LoadBot()
	if err != nil {
		log.Fatal().Err(err).Msg("load bot config failed")
	}

	conn, _, err := websocket.DefaultDialer.Dial(cfg.WSURL, nil)
	if err != nil {
		log.Fatal().Err(err).Str("url", cfg.WSURL).Msg("dial failed")
	}
	defer conn.Close()

	b := &bot{address: cfg.PlayerAddress}
	for _, cmd := range openingCommands(cfg) {
		if err := conn.WriteJSON(cmd); err != nil {
			log.Fatal().Err(err).Msg("write failed")
		}
	}

	for {
		var ev session.Event
		if err := conn.ReadJSON(&ev); err != nil {
			log.Info().Err(err).Msg("connection closed")
			return
		}
		if ev.Type == session.EventError {
			log.Warn().Str("code", ev.Code).Str("message", ev.Message).Msg("server error")
		}
		cmd, ok := b.react(ev)
		if ev.Type == session.EventGameOver {
			log.Info().Str("winner", string(ev.Winner)).Str("result", string(ev.ResultType)).Msg("game over")
			return
		}
		if !ok {
			continue
		}
		if err := conn.WriteJSON(cmd); err != nil {
			log.Error().Err(err).Msg("write failed")
			return
		}
	}
}

func openingCommands(cfg config.BotConfig) []ws.Command {
	open := ws.Command{Type: ws.CmdCreateGame, WagerAmount: cfg.WagerAmount}
	if cfg.GameID != "" {
		open = ws.Command{Type: ws.CmdJoinGame, GameID: cfg.GameID}
	}
	return []ws.Command{{Type: ws.CmdAuth, Address: cfg.PlayerAddress}, open}
}

// bot plays the first legal move it is offered and accepts every cube and
// resignation.
type bot struct {
	address string
	gameID  string
	color   backgammon.Player
}

func (b *bot) react(ev session.Event) (ws.Command, bool) {
	switch ev.Type {
	case session.EventGameCreated, session.EventGameJoined:
		b.gameID, b.color = ev.GameID, ev.Color
		log.Info().Str("game_id", b.gameID).Str("color", string(b.color)).Msg("seated")
	case session.EventGameStart, session.EventTurnEnded, session.EventDoubleAccepted, session.EventResignRejected:
		if b.onTurn(ev.GameState) && len(ev.GameState.Dice) == 0 {
			return b.cmd(ws.CmdRollDice), true
		}
	case session.EventDiceRolled, session.EventMoveMade, session.EventMoveUndone:
		if ev.Player != b.color {
			return ws.Command{}, false
		}
		if ev.NeedsConfirmation {
			return b.cmd(ws.CmdEndTurn), true
		}
		if len(ev.LegalMoves) > 0 {
			cmd := b.cmd(ws.CmdMove)
			cmd.From, cmd.To = ev.LegalMoves[0].From, ev.LegalMoves[0].To
			return cmd, true
		}
		if b.onTurn(ev.GameState) && !ev.GameState.GameOver {
			return b.cmd(ws.CmdEndTurn), true
		}
	case session.EventDoubleOffered:
		if ev.Player != b.color {
			return b.cmd(ws.CmdAcceptDouble), true
		}
	case session.EventResignOffered:
		if ev.Player != b.color {
			return b.cmd(ws.CmdAcceptResignation), true
		}
	}
	return ws.Command{}, false
}

func (b *bot) onTurn(st *backgammon.State) bool {
	return st != nil && b.color != "" && st.CurrentPlayer == b.color
}

func (b *bot) cmd(typ string) ws.Command {
	return ws.Command{Type: typ, GameID: b.gameID}
}
