package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"backgammon-arena/internal/session"
	"backgammon-arena/internal/store"
)

const (
	sendBuffer     = 64
	maxMessageSize = 16 << 10
	writeWait      = 10 * time.Second
	commandTimeout = 10 * time.Second
)

var errSendBufferFull = errors.New("send buffer full")

// Client is one WebSocket connection. It implements session.Conn.
type Client struct {
	id   string
	conn *websocket.Conn

	mu         sync.Mutex
	send       chan []byte
	closed     bool
	address    string
	spectating string
}

func (c *Client) ID() string { return c.id }

// Send queues ev without blocking; a full buffer drops the event.
func (c *Client) Send(ev session.Event) error {
	return c.sendJSON(ev)
}

func (c *Client) sendJSON(v any) error {
	msg, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return websocket.ErrCloseSent
	}
	select {
	case c.send <- msg:
		return nil
	default:
		return errSendBufferFull
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) identity() (address, spectating string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.address, c.spectating
}

type Server struct {
	coord    *session.Coordinator
	upgrader websocket.Upgrader

	mu        sync.Mutex
	byAddress map[string]*Client
}

func NewServer(coord *session.Coordinator) *Server {
	return &Server{
		coord:     coord,
		upgrader:  websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		byAddress: map[string]*Client{},
	}
}

func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &Client{id: store.NewID(), conn: conn, send: make(chan []byte, sendBuffer)}

	go s.writeLoop(client)
	s.readLoop(client)
}

func (s *Server) readLoop(c *Client) {
	defer func() {
		s.unregister(c)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var cmd Command
		if err := json.Unmarshal(msg, &cmd); err != nil || cmd.Type == "" {
			_ = c.sendJSON(ErrorMessage{Type: session.EventError, Code: codeInvalidMessage})
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		if err := s.handle(ctx, c, cmd); err != nil {
			log.Debug().Err(err).Str("conn_id", c.id).Str("command", cmd.Type).Msg("command rejected")
			_ = c.sendJSON(errorMessage(cmd.Type, err))
		}
		cancel()
	}
}

func (s *Server) writeLoop(c *Client) {
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			_ = c.conn.Close()
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

type commandError struct{ code string }

func (e commandError) Error() string { return e.code }

func errorMessage(command string, err error) ErrorMessage {
	var ce commandError
	if errors.As(err, &ce) {
		return ErrorMessage{Type: session.EventError, Command: command, Code: ce.code}
	}
	code := session.Code(err)
	msg := ""
	if code == "internal_error" {
		msg = "request could not be processed"
	}
	return ErrorMessage{Type: session.EventError, Command: command, Code: code, Message: msg}
}

func (s *Server) handle(ctx context.Context, c *Client, cmd Command) error {
	if cmd.Type == CmdAuth {
		return s.authenticate(ctx, c, cmd.Address)
	}
	if cmd.Type == CmdSpectate {
		return s.spectate(ctx, c, cmd.GameID)
	}
	address, _ := c.identity()
	if address == "" {
		return commandError{codeNotAuthenticated}
	}

	switch cmd.Type {
	case CmdCreateGame:
		_, err := s.coord.CreateGame(ctx, cmd.WagerAmount, address, c)
		return err
	case CmdJoinGame:
		_, err := s.coord.Join(ctx, cmd.GameID, address, c)
		return err
	case CmdAcceptChallenge:
		challenger := strings.TrimSpace(cmd.ChallengerAddress)
		var challengerConn session.Conn
		if cc := s.clientFor(challenger); cc != nil {
			challengerConn = cc
		}
		_, err := s.coord.AcceptChallenge(ctx, challenger, challengerConn, address, c, cmd.WagerAmount)
		return err
	}

	gameID := s.gameFor(address, cmd.GameID)
	var err error
	switch cmd.Type {
	case CmdRollDice:
		_, err = s.coord.Roll(ctx, gameID, address)
	case CmdMove:
		_, err = s.coord.Move(ctx, gameID, address, cmd.From, cmd.To)
	case CmdEndTurn:
		_, err = s.coord.EndTurn(ctx, gameID, address)
	case CmdUndoMove:
		_, err = s.coord.Undo(ctx, gameID, address)
	case CmdResign:
		_, err = s.coord.Resign(ctx, gameID, address, cmd.ResignType)
	case CmdAcceptResignation, CmdAcceptResign:
		_, err = s.coord.AcceptResignation(ctx, gameID, address)
	case CmdRejectResignation, CmdRejectResign:
		err = s.coord.RejectResignation(ctx, gameID, address)
	case CmdOfferDouble:
		_, err = s.coord.OfferDouble(ctx, gameID, address)
	case CmdAcceptDouble:
		_, err = s.coord.AcceptDouble(ctx, gameID, address)
	case CmdRejectDouble:
		_, err = s.coord.RejectDouble(ctx, gameID, address)
	default:
		err = commandError{codeUnknownCommand}
	}
	return err
}

// authenticate binds an address to the connection and, when the address is
// seated in a live game, re-attaches it there.
func (s *Server) authenticate(ctx context.Context, c *Client, address string) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return commandError{codeInvalidAddress}
	}
	c.mu.Lock()
	if c.address != "" && c.address != address {
		c.mu.Unlock()
		return commandError{codeAddressMismatch}
	}
	c.address = address
	c.mu.Unlock()

	s.mu.Lock()
	old := s.byAddress[address]
	s.byAddress[address] = c
	s.mu.Unlock()
	if old != nil && old != c {
		log.Info().Str("player", address).Str("old_conn", old.id).Str("conn_id", c.id).Msg("connection replaced")
	}

	res, err := s.coord.Attach(ctx, address, c)
	if err != nil && !errors.Is(err, session.ErrGameNotFound) {
		return err
	}
	return c.sendJSON(AuthResult{Type: "authenticated", Address: address, GameID: res.GameID})
}

func (s *Server) spectate(ctx context.Context, c *Client, gameID string) error {
	if err := s.coord.Spectate(ctx, gameID, c); err != nil {
		return err
	}
	c.mu.Lock()
	prev := c.spectating
	c.spectating = gameID
	c.mu.Unlock()
	if prev != "" && prev != gameID {
		_ = s.coord.Unspectate(ctx, prev, c.id)
	}
	return nil
}

func (s *Server) gameFor(address, requested string) string {
	if requested != "" {
		return requested
	}
	id, _ := s.coord.LookupByPlayer(address)
	return id
}

func (s *Server) clientFor(address string) *Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byAddress[address]
}

func (s *Server) unregister(c *Client) {
	address, spectating := c.identity()
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if address != "" {
		s.mu.Lock()
		if s.byAddress[address] == c {
			delete(s.byAddress, address)
		}
		s.mu.Unlock()
		if err := s.coord.Detach(ctx, address, c.id); err != nil {
			log.Warn().Err(err).Str("player", address).Msg("detach failed")
		}
	}
	if spectating != "" {
		_ = s.coord.Unspectate(ctx, spectating, c.id)
	}
	c.close()
}
