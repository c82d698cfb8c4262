package server

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/battlesync/battlesync-server/internal/engine"
	"github.com/battlesync/battlesync-server/internal/match"
	"github.com/battlesync/battlesync-server/internal/store"
)

type emptyCatalog struct{}

func (emptyCatalog) CardTemplates(ctx context.Context, ids []string) (map[string]engine.CardTemplate, error) {
	return map[string]engine.CardTemplate{}, nil
}

func (emptyCatalog) Leader(ctx context.Context, id string) (*engine.LeaderTemplate, error) {
	return nil, nil
}

func dialTestGateway(t *testing.T) (*websocket.Conn, *match.Service) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	eng := engine.New(emptyCatalog{}, emptyCatalog{}, logger)
	svc := match.NewService(store.NewMemory(), eng, nil, logger)

	srv := httptest.NewServer(NewGateway(svc, logger).Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn, svc
}

func roundTrip(t *testing.T, conn *websocket.Conn, req Request) Response {
	t.Helper()
	require.NoError(t, conn.WriteJSON(req))
	var resp Response
	require.NoError(t, conn.ReadJSON(&resp))
	return resp
}

func TestGatewayCreateAndGetMatch(t *testing.T) {
	conn, _ := dialTestGateway(t)

	resp := roundTrip(t, conn, Request{
		Seq: 1,
		Op:  "createMatch",
		Args: []byte(`{"match": {
			"id": "m1",
			"cards": [],
			"players": [
				{"id": "p1", "hp": 20},
				{"id": "p2", "hp": 20}
			],
			"turnPlayerId": "p1",
			"phase": "Main",
			"turnCount": 1,
			"matchVersion": 0
		}}`),
	})
	require.Nil(t, resp.Error)
	require.Equal(t, int64(1), resp.Seq)

	resp = roundTrip(t, conn, Request{Seq: 2, Op: "getMatch", Args: []byte(`{"matchId": "m1"}`)})
	require.Nil(t, resp.Error)
	require.NotNil(t, resp.Match)
}

func TestGatewayOperationFlow(t *testing.T) {
	conn, svc := dialTestGateway(t)

	m := &engine.MatchState{
		ID: "m1",
		Players: []*engine.Player{
			{ID: "p1", HP: 20},
			{ID: "p2", HP: 20},
		},
		TurnPlayerID: "p1",
		Phase:        engine.PhaseMain,
		TurnCount:    1,
		Cards: []*engine.Card{
			{ID: "c1", OwnerID: "p1", BaseCardID: "b1", Zone: engine.ZoneHand, Power: 1000},
		},
	}
	require.NoError(t, svc.Create(context.Background(), m))

	resp := roundTrip(t, conn, Request{Seq: 1, Op: "summonCard", Args: []byte(`{"matchId": "m1", "cardId": "c1"}`)})
	require.Nil(t, resp.Error)
	require.NotNil(t, resp.Events)

	updated, err := svc.Get(context.Background(), "m1")
	require.NoError(t, err)
	require.Equal(t, engine.ZoneField, updated.FindCard("c1").Zone)
}

func TestGatewayUnknownOp(t *testing.T) {
	conn, _ := dialTestGateway(t)

	resp := roundTrip(t, conn, Request{Seq: 1, Op: "teleport", Args: []byte(`{}`)})
	require.NotNil(t, resp.Error)
	require.Equal(t, "bad_request", resp.Error.Code)
}

func TestGatewayUnknownMatchNotFound(t *testing.T) {
	conn, _ := dialTestGateway(t)

	resp := roundTrip(t, conn, Request{Seq: 1, Op: "getMatch", Args: []byte(`{"matchId": "ghost"}`)})
	require.NotNil(t, resp.Error)
	require.Equal(t, "not_found", resp.Error.Code)
}

func TestGatewayMalformedFrame(t *testing.T) {
	conn, _ := dialTestGateway(t)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	var resp Response
	require.NoError(t, conn.ReadJSON(&resp))
	require.NotNil(t, resp.Error)
	require.Equal(t, "bad_request", resp.Error.Code)
}
