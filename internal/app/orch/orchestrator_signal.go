package orch

import (
	"errors"

	"github.com/dkeye/Tandem/internal/core"
	"github.com/dkeye/Tandem/internal/domain"
	"github.com/rs/zerolog/log"
)

// AttachSignal registers a control channel under its connection id.
func (o *Orchestrator) AttachSignal(cid domain.ConnectionID, conn core.SignalConnection) {
	o.Conns.Connect(cid, conn)
}

// DetachSignal runs when a control channel's reader exits. The user bound to
// the connection loses their session, including when the channel was evicted
// by a failed send, unless a reconnect already took its place.
func (o *Orchestrator) DetachSignal(cid domain.ConnectionID, conn core.SignalConnection) {
	if !o.Conns.Release(cid, conn) {
		return
	}
	if u, ok := o.Rooms.UserByConnection(cid); ok {
		log.Info().Str("module", "orch").Str("conn", string(cid)).Str("user", string(u.ID)).Msg("control channel closed, ending session")
		o.EndSession(u.ID)
	}
}

// HandleInbound answers one decoded control message on its own channel.
func (o *Orchestrator) HandleInbound(cid domain.ConnectionID, in core.Inbound) {
	switch m := in.(type) {
	case core.PingRequest:
		o.Conns.SendJSON(cid, core.NewEnvelope(core.TypePong))
	case core.JoinRequest:
		res, err := o.Join(JoinParams{UserID: m.UserID, ConnectionID: string(cid), Language: m.Language})
		if err != nil {
			o.Conns.SendJSON(cid, core.NewError(err.Error()))
			return
		}
		o.Conns.SendJSON(cid, core.JoinResultMessage{Envelope: core.NewEnvelope(core.TypeJoinResult), JoinResult: res})
	case core.LeaveRequest:
		u, ok := o.Rooms.UserByConnection(cid)
		if !ok {
			o.Conns.SendJSON(cid, core.NewError(ErrUnknownUser.Error()))
			return
		}
		roomID, err := o.Leave(u.ID)
		if err != nil && !errors.Is(err, ErrUnknownUser) {
			o.Conns.SendJSON(cid, core.NewError(err.Error()))
			return
		}
		o.Conns.SendJSON(cid, core.LeftMessage{Envelope: core.NewEnvelope(core.TypeLeft), UserID: u.ID, RoomID: roomID})
	case core.StatsRequest:
		o.Conns.SendJSON(cid, core.StatsMessage{Envelope: core.NewEnvelope(core.TypeStats), Stats: o.Stats()})
	default:
		log.Warn().Str("module", "orch").Str("conn", string(cid)).Msgf("unhandled inbound %T", in)
	}
}
