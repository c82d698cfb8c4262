package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/battlesync/battlesync-server/internal/engine"
	"github.com/battlesync/battlesync-server/internal/match"
)

var (
	errUnknownOp = errors.New("unknown operation")
	errBadArgs   = errors.New("bad arguments")
)

func decodeArgs[T any](raw json.RawMessage) (T, error) {
	var args T
	if len(raw) == 0 {
		return args, fmt.Errorf("%w: missing args", errBadArgs)
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return args, fmt.Errorf("%w: %v", errBadArgs, err)
	}
	return args, nil
}

type matchArgs struct {
	MatchID string `json:"matchId"`
}

type moveCardsArgs struct {
	MatchID string            `json:"matchId"`
	Moves   []engine.CardMove `json:"moves"`
}

type summonArgs struct {
	MatchID string `json:"matchId"`
	CardID  string `json:"cardId"`
}

type attackArgs struct {
	MatchID    string `json:"matchId"`
	AttackerID string `json:"attackerId"`
	TargetID   string `json:"targetId,omitempty"`
	IsLeader   bool   `json:"isLeader,omitempty"`
}

type blockerArgs struct {
	MatchID   string `json:"matchId"`
	BlockerID string `json:"blockerId,omitempty"`
}

type choiceRequestArgs struct {
	MatchID string               `json:"matchId"`
	Request engine.ChoiceRequest `json:"request"`
}

type choiceResponseArgs struct {
	MatchID  string                `json:"matchId"`
	Response engine.ChoiceResponse `json:"response"`
}

type statusUpdateArgs struct {
	MatchID string                `json:"matchId"`
	Updates []engine.StatusUpdate `json:"updates"`
}

type turnPlayerArgs struct {
	MatchID  string `json:"matchId"`
	PlayerID string `json:"playerId"`
}

type phaseArgs struct {
	MatchID string `json:"matchId"`
	Phase   string `json:"phase"`
}

type levelPointsArgs struct {
	MatchID string         `json:"matchId"`
	Points  map[string]int `json:"points"`
}

type createMatchArgs struct {
	Match engine.MatchState `json:"match"`
}

// handleOp maps a named operation onto the match service.
func (g *Gateway) handleOp(ctx context.Context, req Request) (*match.Result, error) {
	switch req.Op {
	case "getMatch":
		args, err := decodeArgs[matchArgs](req.Args)
		if err != nil {
			return nil, err
		}
		m, err := g.matches.Get(ctx, args.MatchID)
		if err != nil {
			return nil, err
		}
		return &match.Result{Match: m}, nil

	case "createMatch":
		args, err := decodeArgs[createMatchArgs](req.Args)
		if err != nil {
			return nil, err
		}
		if args.Match.ID == "" {
			return nil, fmt.Errorf("%w: match id required", errBadArgs)
		}
		if err := g.matches.Create(ctx, &args.Match); err != nil {
			return nil, err
		}
		return &match.Result{Match: &args.Match}, nil

	case "moveCards":
		args, err := decodeArgs[moveCardsArgs](req.Args)
		if err != nil {
			return nil, err
		}
		return g.matches.MoveCards(ctx, args.MatchID, args.Moves)

	case "summonCard":
		args, err := decodeArgs[summonArgs](req.Args)
		if err != nil {
			return nil, err
		}
		return g.matches.SummonCard(ctx, args.MatchID, args.CardID)

	case "advancePhase":
		args, err := decodeArgs[matchArgs](req.Args)
		if err != nil {
			return nil, err
		}
		return g.matches.AdvancePhase(ctx, args.MatchID)

	case "endTurn":
		args, err := decodeArgs[matchArgs](req.Args)
		if err != nil {
			return nil, err
		}
		return g.matches.EndTurn(ctx, args.MatchID)

	case "declareAttack":
		args, err := decodeArgs[attackArgs](req.Args)
		if err != nil {
			return nil, err
		}
		return g.matches.DeclareAttack(ctx, args.MatchID, args.AttackerID, args.TargetID, args.IsLeader)

	case "setBlocker":
		args, err := decodeArgs[blockerArgs](req.Args)
		if err != nil {
			return nil, err
		}
		return g.matches.SetBlocker(ctx, args.MatchID, args.BlockerID)

	case "resolveBattle":
		args, err := decodeArgs[matchArgs](req.Args)
		if err != nil {
			return nil, err
		}
		return g.matches.ResolveBattle(ctx, args.MatchID)

	case "resolveAck":
		args, err := decodeArgs[matchArgs](req.Args)
		if err != nil {
			return nil, err
		}
		return g.matches.ResolveAck(ctx, args.MatchID)

	case "sendChoiceRequest":
		args, err := decodeArgs[choiceRequestArgs](req.Args)
		if err != nil {
			return nil, err
		}
		return g.matches.SendChoiceRequest(ctx, args.MatchID, args.Request)

	case "submitChoiceResponse":
		args, err := decodeArgs[choiceResponseArgs](req.Args)
		if err != nil {
			return nil, err
		}
		return g.matches.SubmitChoiceResponse(ctx, args.MatchID, args.Response)

	case "updateCardStatuses":
		args, err := decodeArgs[statusUpdateArgs](req.Args)
		if err != nil {
			return nil, err
		}
		return g.matches.UpdateCardStatuses(ctx, args.MatchID, args.Updates)

	case "setTurnPlayer":
		args, err := decodeArgs[turnPlayerArgs](req.Args)
		if err != nil {
			return nil, err
		}
		return g.matches.SetTurnPlayer(ctx, args.MatchID, args.PlayerID)

	case "updatePhase":
		args, err := decodeArgs[phaseArgs](req.Args)
		if err != nil {
			return nil, err
		}
		return g.matches.UpdatePhase(ctx, args.MatchID, engine.Phase(args.Phase))

	case "updateLevelPoints":
		args, err := decodeArgs[levelPointsArgs](req.Args)
		if err != nil {
			return nil, err
		}
		return g.matches.UpdateLevelPoints(ctx, args.MatchID, args.Points)
	}

	return nil, fmt.Errorf("%w: %s", errUnknownOp, req.Op)
}
