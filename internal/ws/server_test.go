package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"backgammon-arena/internal/session"
)

type wireMsg struct {
	Type       string `json:"type"`
	Code       string `json:"code"`
	Command    string `json:"command"`
	GameID     string `json:"game_id"`
	Address    string `json:"address"`
	Color      string `json:"color"`
	Dice       []int  `json:"dice"`
	LegalMoves []any  `json:"legal_moves"`
	Winner     string `json:"winner"`
}

func newTestServer(t *testing.T, timing session.Timing) *httptest.Server {
	t.Helper()
	coord := session.NewCoordinator(session.Options{Timing: timing})
	t.Cleanup(coord.Close)
	srv := httptest.NewServer(http.HandlerFunc(NewServer(coord).HandleWS))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func sendCmd(t *testing.T, conn *websocket.Conn, cmd Command) {
	t.Helper()
	if err := conn.WriteJSON(cmd); err != nil {
		t.Fatalf("write %s: %v", cmd.Type, err)
	}
}

// expect reads until a message of the given type arrives.
func expect(t *testing.T, conn *websocket.Conn, typ string) wireMsg {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	_ = conn.SetReadDeadline(deadline)
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %s: %v", typ, err)
		}
		var msg wireMsg
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("decode %s: %v", raw, err)
		}
		if msg.Type == typ {
			return msg
		}
	}
}

func TestCommandsRequireAuthentication(t *testing.T) {
	srv := newTestServer(t, session.Timing{})
	conn := dial(t, srv)

	sendCmd(t, conn, Command{Type: CmdRollDice})
	msg := expect(t, conn, session.EventError)
	if msg.Code != codeNotAuthenticated || msg.Command != CmdRollDice {
		t.Fatalf("error = %+v", msg)
	}
	if err := conn.WriteMessage(websocket.TextMessage, []byte("{")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if msg := expect(t, conn, session.EventError); msg.Code != codeInvalidMessage {
		t.Fatalf("bad json code = %q", msg.Code)
	}
}

func TestReauthWithOtherAddressIsRejected(t *testing.T) {
	srv := newTestServer(t, session.Timing{})
	conn := dial(t, srv)

	sendCmd(t, conn, Command{Type: CmdAuth, Address: "bg1white"})
	expect(t, conn, "authenticated")
	sendCmd(t, conn, Command{Type: CmdAuth, Address: "bg1other"})
	if msg := expect(t, conn, session.EventError); msg.Code != codeAddressMismatch || msg.Command != CmdAuth {
		t.Fatalf("re-auth error = %+v", msg)
	}
	sendCmd(t, conn, Command{Type: CmdAuth, Address: "bg1white"})
	if msg := expect(t, conn, "authenticated"); msg.Address != "bg1white" {
		t.Fatalf("same-address auth = %+v", msg)
	}
	sendCmd(t, conn, Command{Type: CmdCreateGame})
	if msg := expect(t, conn, session.EventGameCreated); msg.Color != "white" {
		t.Fatalf("game_created = %+v", msg)
	}
}

func TestTwoPlayersPlayOverWebSocket(t *testing.T) {
	srv := newTestServer(t, session.Timing{})
	white, black := dial(t, srv), dial(t, srv)

	sendCmd(t, white, Command{Type: CmdAuth, Address: "bg1white"})
	if msg := expect(t, white, "authenticated"); msg.Address != "bg1white" || msg.GameID != "" {
		t.Fatalf("auth = %+v", msg)
	}
	sendCmd(t, black, Command{Type: CmdAuth, Address: "bg1black"})
	expect(t, black, "authenticated")

	sendCmd(t, white, Command{Type: CmdCreateGame})
	created := expect(t, white, session.EventGameCreated)
	if created.GameID == "" || created.Color != "white" {
		t.Fatalf("game_created = %+v", created)
	}
	sendCmd(t, black, Command{Type: CmdJoinGame, GameID: created.GameID})
	expect(t, black, session.EventGameStart)
	expect(t, white, session.EventGameStart)

	sendCmd(t, black, Command{Type: CmdRollDice})
	if msg := expect(t, black, session.EventError); msg.Code != "not_your_turn" {
		t.Fatalf("black roll code = %q", msg.Code)
	}

	sendCmd(t, white, Command{Type: CmdRollDice})
	own := expect(t, white, session.EventDiceRolled)
	other := expect(t, black, session.EventDiceRolled)
	if len(own.Dice) != 2 || len(own.LegalMoves) == 0 || len(other.LegalMoves) != 0 {
		t.Fatalf("dice_rolled own=%+v other=%+v", own, other)
	}

	sendCmd(t, white, Command{Type: CmdResign})
	over := expect(t, black, session.EventGameOver)
	if over.Winner != "black" {
		t.Fatalf("game_over = %+v", over)
	}
}

func TestDisconnectStartsGraceAndReconnectResumes(t *testing.T) {
	srv := newTestServer(t, session.Timing{DisconnectGrace: time.Minute})
	white, black := dial(t, srv), dial(t, srv)

	sendCmd(t, white, Command{Type: CmdAuth, Address: "bg1white"})
	expect(t, white, "authenticated")
	sendCmd(t, black, Command{Type: CmdAuth, Address: "bg1black"})
	expect(t, black, "authenticated")
	sendCmd(t, white, Command{Type: CmdCreateGame})
	created := expect(t, white, session.EventGameCreated)
	sendCmd(t, black, Command{Type: CmdJoinGame, GameID: created.GameID})
	expect(t, white, session.EventGameStart)

	_ = white.Close()
	expect(t, black, session.EventOpponentDisconnecting)

	again := dial(t, srv)
	sendCmd(t, again, Command{Type: CmdAuth, Address: "bg1white"})
	if msg := expect(t, again, "authenticated"); msg.GameID != created.GameID {
		t.Fatalf("reconnect auth = %+v", msg)
	}
	expect(t, black, session.EventOpponentReconnected)
}

func TestSpectatorWatchesGame(t *testing.T) {
	srv := newTestServer(t, session.Timing{})
	white, black, watcher := dial(t, srv), dial(t, srv), dial(t, srv)

	sendCmd(t, white, Command{Type: CmdAuth, Address: "bg1white"})
	expect(t, white, "authenticated")
	sendCmd(t, black, Command{Type: CmdAuth, Address: "bg1black"})
	expect(t, black, "authenticated")
	sendCmd(t, white, Command{Type: CmdCreateGame})
	created := expect(t, white, session.EventGameCreated)
	sendCmd(t, black, Command{Type: CmdJoinGame, GameID: created.GameID})
	expect(t, white, session.EventGameStart)

	sendCmd(t, watcher, Command{Type: CmdSpectate, GameID: created.GameID})
	expect(t, watcher, session.EventSpectateJoined)
	sendCmd(t, white, Command{Type: CmdOfferDouble})
	expect(t, watcher, session.EventDoubleOffered)
	sendCmd(t, watcher, Command{Type: CmdAcceptDouble})
	if msg := expect(t, watcher, session.EventError); msg.Code != codeNotAuthenticated {
		t.Fatalf("spectator command code = %q", msg.Code)
	}
}
