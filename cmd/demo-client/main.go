// Command demo-client dials a running battlesync server and plays a short
// scripted exchange over the WebSocket protocol, printing every frame. It
// doubles as a smoke test for a fresh deployment.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/battlesync/battlesync-server/internal/engine"
	"github.com/battlesync/battlesync-server/internal/server"
)

var (
	addr    = flag.String("addr", "ws://localhost:8080/ws", "server websocket endpoint")
	verbose = flag.Bool("v", false, "print full match documents")
)

func main() {
	flag.Parse()

	conn, _, err := websocket.DefaultDialer.Dial(*addr, nil)
	if err != nil {
		log.Fatalf("dial %s: %v", *addr, err)
	}
	defer conn.Close()

	c := &client{conn: conn}

	matchID := "demo-" + uuid.NewString()[:8]
	fmt.Printf("=== BattleSync demo (%s) ===\n", matchID)

	c.call("createMatch", map[string]any{"match": demoMatch(matchID)})
	c.call("summonCard", map[string]any{"matchId": matchID, "cardId": "atk"})
	c.call("declareAttack", map[string]any{
		"matchId":    matchID,
		"attackerId": "atk",
		"isLeader":   true,
	})
	c.call("resolveAck", map[string]any{"matchId": matchID})
	c.call("endTurn", map[string]any{"matchId": matchID})
	c.call("getMatch", map[string]any{"matchId": matchID})

	fmt.Println("demo complete")
}

type client struct {
	conn *websocket.Conn
	seq  int64
}

func (c *client) call(op string, args map[string]any) {
	c.seq++
	raw, err := json.Marshal(args)
	if err != nil {
		log.Fatalf("marshal %s args: %v", op, err)
	}
	req := server.Request{Seq: c.seq, Op: op, Args: raw}
	if err := c.conn.WriteJSON(req); err != nil {
		log.Fatalf("write %s: %v", op, err)
	}

	var resp server.Response
	if err := c.conn.ReadJSON(&resp); err != nil {
		log.Fatalf("read %s: %v", op, err)
	}
	if resp.Error != nil {
		fmt.Printf("%-22s ERROR %s: %s\n", op, resp.Error.Code, resp.Error.Message)
		os.Exit(1)
	}

	fmt.Printf("%-22s ok", op)
	if events, ok := resp.Events.([]any); ok && len(events) > 0 {
		fmt.Printf("  events:")
		for _, ev := range events {
			if m, ok := ev.(map[string]any); ok {
				fmt.Printf(" %v", m["type"])
			}
		}
	}
	fmt.Println()

	if *verbose && resp.Match != nil {
		doc, _ := json.MarshalIndent(resp.Match, "", "  ")
		fmt.Println(string(doc))
	}
}

// demoMatch is a minimal two-player board: one attacker in hand for the
// human, an AI opponent with an empty field so the attack goes to the
// leader.
func demoMatch(id string) *engine.MatchState {
	return &engine.MatchState{
		ID:           id,
		Status:       "active",
		TurnCount:    1,
		Phase:        engine.PhaseMain,
		TurnPlayerID: "p1",
		Players: []*engine.Player{
			{ID: "p1", Name: "Demo", HP: 20, LevelPoints: 5},
			{ID: "p2", Name: "Rival", HP: 20, LevelPoints: 5, IsAI: true},
		},
		Cards: []*engine.Card{
			{
				ID:         "atk",
				BaseCardID: "demo-attacker",
				OwnerID:    "p1",
				Zone:       engine.ZoneHand,
				Power:      1500,
				Damage:     2,
				Level:      2,
				FaceUp:     true,
			},
		},
	}
}
