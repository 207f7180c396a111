package main

import (
	"testing"

	"backgammon-arena/internal/backgammon"
	"backgammon-arena/internal/config"
	"backgammon-arena/internal/session"
	"backgammon-arena/internal/ws"
)

func TestOpeningCommands(t *testing.T) {
	cmds := openingCommands(config.BotConfig{PlayerAddress: "bg1bot", WagerAmount: 5})
	if len(cmds) != 2 || cmds[0].Type != ws.CmdAuth || cmds[0].Address != "bg1bot" {
		t.Fatalf("unexpected opening: %+v", cmds)
	}
	if cmds[1].Type != ws.CmdCreateGame || cmds[1].WagerAmount != 5 {
		t.Fatalf("expected create_game with wager, got %+v", cmds[1])
	}

	cmds = openingCommands(config.BotConfig{PlayerAddress: "bg1bot", GameID: "g1"})
	if cmds[1].Type != ws.CmdJoinGame || cmds[1].GameID != "g1" {
		t.Fatalf("expected join_game g1, got %+v", cmds[1])
	}
}

func TestBotPlaysItsTurn(t *testing.T) {
	b := &bot{address: "bg1bot"}
	if _, ok := b.react(session.Event{Type: session.EventGameJoined, GameID: "g1", Color: backgammon.Black}); ok {
		t.Fatalf("seating should not produce a command")
	}

	st := backgammon.State{CurrentPlayer: backgammon.Black}
	cmd, ok := b.react(session.Event{Type: session.EventGameStart, GameState: &st})
	if !ok || cmd.Type != ws.CmdRollDice || cmd.GameID != "g1" {
		t.Fatalf("expected roll_dice, got %+v ok=%v", cmd, ok)
	}

	cmd, ok = b.react(session.Event{
		Type:       session.EventDiceRolled,
		Player:     backgammon.Black,
		GameState:  &st,
		LegalMoves: []backgammon.Move{{From: 19, To: 14, Die: 5}},
	})
	if !ok || cmd.Type != ws.CmdMove || cmd.From != 19 || cmd.To != 14 {
		t.Fatalf("expected first legal move, got %+v", cmd)
	}

	cmd, ok = b.react(session.Event{Type: session.EventMoveMade, Player: backgammon.Black, NeedsConfirmation: true})
	if !ok || cmd.Type != ws.CmdEndTurn {
		t.Fatalf("expected end_turn, got %+v", cmd)
	}
}

func TestBotIgnoresOpponentMoves(t *testing.T) {
	b := &bot{address: "bg1bot", gameID: "g1", color: backgammon.White}
	if _, ok := b.react(session.Event{Type: session.EventMoveMade, Player: backgammon.Black, NeedsConfirmation: true}); ok {
		t.Fatalf("opponent move should not produce a command")
	}
	cmd, ok := b.react(session.Event{Type: session.EventDoubleOffered, Player: backgammon.Black})
	if !ok || cmd.Type != ws.CmdAcceptDouble {
		t.Fatalf("expected accept_double, got %+v", cmd)
	}
}
