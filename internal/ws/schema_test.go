package ws

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"backgammon-arena/internal/backgammon"
	"backgammon-arena/internal/session"
)

func compileSchema(t *testing.T) *jsonschema.Schema {
	t.Helper()
	compiler := jsonschema.NewCompiler()
	data, err := os.ReadFile("../../api/schema/ws_v1.schema.json")
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	if err := compiler.AddResource("ws_v1.schema.json", strings.NewReader(string(data))); err != nil {
		t.Fatalf("add resource: %v", err)
	}
	schema, err := compiler.Compile("ws_v1.schema.json")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return schema
}

func validate(t *testing.T, schema *jsonschema.Schema, msg any) error {
	t.Helper()
	raw, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return schema.Validate(v)
}

func TestWSProtocolSchema(t *testing.T) {
	schema := compileSchema(t)
	st, err := backgammon.SetDice(backgammon.NewState(), 3, 1)
	if err != nil {
		t.Fatalf("set dice: %v", err)
	}
	next, move, ok := backgammon.MakeMove(st, 8, 5)
	if !ok {
		t.Fatalf("opening move rejected")
	}
	over := backgammon.Resign(next, backgammon.White, backgammon.ResultGammon)

	samples := []any{
		AuthResult{Type: "authenticated", Address: "bg1abc", GameID: "4821"},
		ErrorMessage{Type: session.EventError, Command: CmdRollDice, Code: "not_your_turn"},
		session.Event{Type: session.EventGameCreated, GameID: "4821", Color: backgammon.White, WagerAmount: 10},
		session.Event{Type: session.EventDiceCommit, GameID: "4821", CommitHash: "ab12", TurnNumber: 1},
		session.Event{
			Type: session.EventDiceRolled, GameID: "4821", Dice: []int{3, 1}, Player: backgammon.White,
			GameState: &st, LegalMoves: backgammon.LegalFirstMoves(st.Board, st.CurrentPlayer, st.MovesRemaining),
		},
		session.Event{Type: session.EventMoveMade, GameID: "4821", Move: &move, Player: backgammon.White, GameState: &next},
		session.Event{Type: session.EventGameOver, GameID: "4821", Winner: over.Winner, ResultType: over.ResultType, Reason: "resignation", CubeValue: 1, GameState: &over},
		session.Event{Type: session.EventDisconnectCountdown, GameID: "4821", SecondsRemaining: 25},
	}
	for i, s := range samples {
		if err := validate(t, schema, s); err != nil {
			t.Fatalf("schema validate sample %d: %v", i, err)
		}
	}
}

func TestWSProtocolSchemaRejectsBadDice(t *testing.T) {
	schema := compileSchema(t)
	bad := session.Event{Type: session.EventDiceRolled, GameID: "4821", Dice: []int{7, 1}, Player: backgammon.White}
	if err := validate(t, schema, bad); err == nil {
		t.Fatalf("dice of 7 passed validation")
	}
}
