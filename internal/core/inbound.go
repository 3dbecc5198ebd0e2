package core

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrUnknownMessage = errors.New("unknown message type")

// Inbound is the closed set of messages a client may send on the control
// channel. DecodeInbound is the only place the "type" tag is inspected.
type Inbound interface {
	inbound()
}

type PingRequest struct{}

type JoinRequest struct {
	UserID   string `json:"user_id"`
	Language string `json:"language"`
}

type LeaveRequest struct{}

type StatsRequest struct{}

func (PingRequest) inbound()  {}
func (JoinRequest) inbound()  {}
func (LeaveRequest) inbound() {}
func (StatsRequest) inbound() {}

func DecodeInbound(data []byte) (Inbound, error) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	switch env.Type {
	case "ping":
		return PingRequest{}, nil
	case "join":
		var p JoinRequest
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decode join: %w", err)
		}
		return p, nil
	case "leave":
		return LeaveRequest{}, nil
	case "stats":
		return StatsRequest{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, env.Type)
	}
}
