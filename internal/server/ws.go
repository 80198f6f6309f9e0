package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/summitfall/summit-server/internal/collection"
	"github.com/summitfall/summit-server/internal/game"
	"github.com/summitfall/summit-server/internal/game/board"
)

const writeWait = 10 * time.Second

// Persister saves a game state after a successful mutation. Satisfied by
// repository.GameRepository; nil disables persistence.
type Persister interface {
	Save(ctx context.Context, gs *game.GameState) error
}

// Gateway exposes the game manager over websocket. Commands arrive as
// type-tagged JSON and map one-to-one onto manager calls; failures are
// relayed back as error messages, never swallowed.
type Gateway struct {
	manager   *Manager
	decks     collection.DeckSource
	persister Persister
	logger    *zap.Logger

	levels         int
	startingHealth int
	handSize       int

	lease time.Duration

	mu    sync.Mutex
	conns map[*client]struct{}

	upgrader websocket.Upgrader
}

// client is one websocket connection. Writes are serialized by mu.
type client struct {
	conn     *websocket.Conn
	mu       sync.Mutex
	lastSeen time.Time
}

func (c *client) send(msg serverMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(msg)
}

// GatewayOptions carries match setup tuning into the gateway.
type GatewayOptions struct {
	MountainLevels   int
	StartingHealth   int
	StartingHandSize int
	LeasePeriod      time.Duration
}

// NewGateway creates a websocket gateway over the given manager.
func NewGateway(manager *Manager, decks collection.DeckSource, persister Persister, opts GatewayOptions, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MountainLevels <= 0 {
		opts.MountainLevels = game.DefaultMountainLevels
	}
	if opts.StartingHealth <= 0 {
		opts.StartingHealth = game.DefaultStartingHealth
	}
	return &Gateway{
		manager:        manager,
		decks:          decks,
		persister:      persister,
		logger:         logger,
		levels:         opts.MountainLevels,
		startingHealth: opts.StartingHealth,
		handSize:       opts.StartingHandSize,
		lease:          opts.LeasePeriod,
		conns:          make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Handler returns the http handler for the websocket endpoint.
func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", g.handleWS)
	return mux
}

func (g *Gateway) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{conn: conn, lastSeen: time.Now()}
	g.mu.Lock()
	g.conns[c] = struct{}{}
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		delete(g.conns, c)
		g.mu.Unlock()
		conn.Close()
	}()

	for {
		var cmd clientCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				g.logger.Debug("websocket closed unexpectedly", zap.Error(err))
			}
			return
		}

		c.mu.Lock()
		c.lastSeen = time.Now()
		c.mu.Unlock()

		reply := g.dispatch(r.Context(), cmd)
		if err := c.send(reply); err != nil {
			g.logger.Debug("websocket write failed", zap.Error(err))
			return
		}
	}
}

// CleanupStaleConnections closes connections idle beyond the lease period.
// Runs until the context is canceled.
func (g *Gateway) CleanupStaleConnections(ctx context.Context) {
	if g.lease <= 0 {
		return
	}
	ticker := time.NewTicker(g.lease / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-g.lease)
			g.mu.Lock()
			for c := range g.conns {
				c.mu.Lock()
				stale := c.lastSeen.Before(cutoff)
				c.mu.Unlock()
				if stale {
					c.conn.Close()
					delete(g.conns, c)
				}
			}
			g.mu.Unlock()
		}
	}
}

func (g *Gateway) dispatch(ctx context.Context, cmd clientCommand) serverMessage {
	switch cmd.Type {
	case "create_game":
		return g.handleCreateGame(cmd)
	case "play_card":
		return g.handlePlayCard(ctx, cmd)
	case "move":
		return g.handleMove(ctx, cmd)
	case "end_turn":
		return g.handleEndTurn(ctx, cmd)
	case "state":
		return g.handleState(cmd)
	default:
		return errorMessage(fmt.Errorf("unknown command type %q", cmd.Type))
	}
}

func (g *Gateway) handleCreateGame(cmd clientCommand) serverMessage {
	if len(cmd.Players) != 2 {
		return errorMessage(fmt.Errorf("create_game needs exactly 2 players, got %d", len(cmd.Players)))
	}

	levels := cmd.Levels
	if levels <= 0 {
		levels = g.levels
	}
	if levels > board.MaxLevels {
		return errorMessage(fmt.Errorf("levels %d exceeds maximum %d", levels, board.MaxLevels))
	}

	players := make([]*game.Player, 0, 2)
	for _, spec := range cmd.Players {
		player, err := g.buildPlayer(spec)
		if err != nil {
			return errorMessage(err)
		}
		players = append(players, player)
	}

	gameID := g.manager.CreateGame(levels, players[0], players[1])
	return serverMessage{
		Type:    msgTypeCreated,
		GameID:  gameID.String(),
		Players: []string{players[0].ID.String(), players[1].ID.String()},
	}
}

func (g *Gateway) buildPlayer(spec playerSpec) (*game.Player, error) {
	deck := game.Deck{}
	if spec.Deck != "" {
		ownerID, err := uuid.Parse(spec.OwnerID)
		if err != nil {
			return nil, fmt.Errorf("invalid owner id %q: %w", spec.OwnerID, err)
		}
		deck, err = g.decks.DeckFor(ownerID, spec.Deck)
		if err != nil {
			return nil, err
		}
	}

	player := game.NewPlayer(spec.Name, deck)
	player.Health = g.startingHealth
	player.MaxHealth = g.startingHealth

	for i := 0; i < g.handSize; i++ {
		if err := player.DrawCard(); err != nil {
			break // short deck, start with what we have
		}
	}
	return player, nil
}

func (g *Gateway) handlePlayCard(ctx context.Context, cmd clientCommand) serverMessage {
	gameID, playerID, err := parseGamePlayer(cmd)
	if err != nil {
		return errorMessage(err)
	}
	cardID, err := uuid.Parse(cmd.CardID)
	if err != nil {
		return errorMessage(fmt.Errorf("invalid card id %q: %w", cmd.CardID, err))
	}

	if err := g.manager.PlayCard(gameID, playerID, cardID); err != nil {
		return errorMessage(err)
	}
	g.persist(ctx, gameID)
	return serverMessage{Type: msgTypeOK, GameID: cmd.GameID}
}

func (g *Gateway) handleMove(ctx context.Context, cmd clientCommand) serverMessage {
	gameID, playerID, err := parseGamePlayer(cmd)
	if err != nil {
		return errorMessage(err)
	}

	if err := g.manager.MovePlayer(gameID, playerID, board.At(cmd.X, cmd.Y, cmd.Z)); err != nil {
		return errorMessage(err)
	}
	g.persist(ctx, gameID)
	return serverMessage{Type: msgTypeOK, GameID: cmd.GameID}
}

func (g *Gateway) handleEndTurn(ctx context.Context, cmd clientCommand) serverMessage {
	gameID, err := uuid.Parse(cmd.GameID)
	if err != nil {
		return errorMessage(fmt.Errorf("invalid game id %q: %w", cmd.GameID, err))
	}

	if err := g.manager.EndTurn(gameID); err != nil {
		return errorMessage(err)
	}
	g.persist(ctx, gameID)
	return serverMessage{Type: msgTypeOK, GameID: cmd.GameID}
}

func (g *Gateway) handleState(cmd clientCommand) serverMessage {
	gameID, err := uuid.Parse(cmd.GameID)
	if err != nil {
		return errorMessage(fmt.Errorf("invalid game id %q: %w", cmd.GameID, err))
	}

	snap, err := g.manager.Snapshot(gameID)
	if err != nil {
		return errorMessage(err)
	}
	return serverMessage{Type: msgTypeState, GameID: cmd.GameID, State: snap}
}

// persist saves the game after a successful mutation. Persistence failures
// are logged, not relayed; the in-memory state is authoritative.
func (g *Gateway) persist(ctx context.Context, gameID uuid.UUID) {
	if g.persister == nil {
		return
	}
	err := g.manager.withGame(gameID, func(gs *game.GameState) error {
		return g.persister.Save(ctx, gs)
	})
	if err != nil {
		g.logger.Warn("failed to persist game", zap.Stringer("game_id", gameID), zap.Error(err))
	}
}

func parseGamePlayer(cmd clientCommand) (uuid.UUID, uuid.UUID, error) {
	gameID, err := uuid.Parse(cmd.GameID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid game id %q: %w", cmd.GameID, err)
	}
	playerID, err := uuid.Parse(cmd.PlayerID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid player id %q: %w", cmd.PlayerID, err)
	}
	return gameID, playerID, nil
}

func errorMessage(err error) serverMessage {
	return serverMessage{Type: msgTypeError, Error: err.Error()}
}
