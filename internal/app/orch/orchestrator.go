package orch

import (
	"context"
	"errors"
	"fmt"

	"github.com/dkeye/Tandem/internal/app"
	"github.com/dkeye/Tandem/internal/app/ingest"
	"github.com/dkeye/Tandem/internal/core"
	"github.com/dkeye/Tandem/internal/domain"
	"github.com/dkeye/Tandem/internal/pipeline"
	"github.com/rs/zerolog/log"
)

var ErrUnknownUser = errors.New("unknown user")

// MediaFactory opens a fresh media connection for a user.
type MediaFactory func(uid domain.UserID) (core.MediaConnection, error)

// Orchestrator wires the registries, the relay and the pipeline runner and
// owns every multi-component sequence.
type Orchestrator struct {
	Conns  *app.Connections
	Rooms  *app.RoomManager
	Relay  *app.SessionRelay
	Runner *pipeline.Runner
	Media  *app.MediaRegistry
	Ingest *ingest.Manager

	NewMedia MediaFactory

	ctx context.Context
}

// New builds an orchestrator whose sessions live until ctx is cancelled.
func New(ctx context.Context, conns *app.Connections, rooms *app.RoomManager, relayCfg app.RelayConfig, engine pipeline.Engine, newMedia MediaFactory) *Orchestrator {
	o := &Orchestrator{
		Conns:    conns,
		Rooms:    rooms,
		Relay:    app.NewSessionRelay(conns, rooms, relayCfg),
		Runner:   pipeline.NewRunner(engine),
		Media:    app.NewMediaRegistry(),
		Ingest:   ingest.NewManager(),
		NewMedia: newMedia,
		ctx:      ctx,
	}
	conns.OnConnect(func(id domain.ConnectionID, active int) {
		log.Debug().Str("module", "orch").Str("conn", string(id)).Int("active", active).Msg("control channel up")
	})
	conns.OnDisconnect(func(id domain.ConnectionID, active int) {
		log.Debug().Str("module", "orch").Str("conn", string(id)).Int("active", active).Msg("control channel down")
	})
	rooms.OnMatched(func(room domain.RoomSnapshot) {
		log.Info().Str("module", "orch").Str("room", string(room.ID)).Int("members", len(room.Users)).Msg("room opened")
	})
	return o
}

// JoinParams is a join request from HTTP or the control channel. Empty ids
// are generated.
type JoinParams struct {
	UserID       string
	ConnectionID string
	Language     string
}

func (o *Orchestrator) Join(p JoinParams) (core.JoinResult, error) {
	uid := domain.UserID(p.UserID)
	if uid == "" {
		uid = domain.NewUserID()
	} else if err := domain.ValidateUserID(p.UserID); err != nil {
		return core.JoinResult{}, err
	}
	cid := domain.ConnectionID(p.ConnectionID)
	if cid == "" {
		cid = domain.NewConnectionID()
	}
	lang := domain.ParseLanguage(p.Language)

	roomID, err := o.Rooms.AddUser(uid, cid, lang)
	if err != nil {
		return core.JoinResult{}, fmt.Errorf("join %s: %w", uid, err)
	}
	res := core.JoinResult{
		UserID:       uid,
		ConnectionID: cid,
		Language:     lang,
		Status:       core.StatusWaiting,
	}
	if roomID == "" {
		log.Info().Str("module", "orch").Str("user", string(uid)).Str("lang", string(lang)).Msg("waiting for partner")
		return res, nil
	}

	room, ok := o.Rooms.GetRoom(roomID)
	if !ok {
		// partner left between the match and the lookup
		return res, nil
	}
	res.Status = core.StatusMatched
	res.RoomID = roomID
	if partner, ok := room.Partner(uid); ok {
		res.PartnerID = partner.ID
		res.PartnerLanguage = partner.Language
	}
	o.Relay.Matched(room)
	return res, nil
}

// Leave ends the user's session and reports the room they held.
func (o *Orchestrator) Leave(uid domain.UserID) (domain.RoomID, error) {
	if _, ok := o.Rooms.GetUser(uid); !ok {
		return "", ErrUnknownUser
	}
	roomID, _ := o.EndSession(uid)
	return roomID, nil
}

func (o *Orchestrator) Stats() core.Stats {
	return core.Stats{
		Waiting:     o.Rooms.GetWaitingStats(),
		ActiveRooms: o.Rooms.ActiveRoomsCount(),
		Users:       o.Rooms.UserCount(),
		Connections: o.Conns.Count(),
	}
}

// UserView is the user, room and partner as seen by one user.
type UserView struct {
	User    domain.User          `json:"user"`
	Room    *domain.RoomSnapshot `json:"room,omitempty"`
	Partner *domain.User         `json:"partner,omitempty"`
}

func (o *Orchestrator) UserView(uid domain.UserID) (UserView, bool) {
	if room, ok := o.Rooms.GetUserRoom(uid); ok {
		self, _ := room.Member(uid)
		v := UserView{User: self, Room: &room}
		if p, ok := room.Partner(uid); ok {
			v.Partner = &p
		}
		return v, true
	}
	u, ok := o.Rooms.GetUser(uid)
	if !ok {
		return UserView{}, false
	}
	return UserView{User: u}, true
}

// Shutdown announces the shutdown, stops every session and closes all
// channels.
func (o *Orchestrator) Shutdown() {
	res := o.Conns.BroadcastJSON(core.ServerShutdown{
		Envelope: core.NewEnvelope(core.TypeServerShutdown),
		Message:  "server is shutting down",
	})
	log.Info().Str("module", "orch").Int("sent", res.SentTo).Int("dropped", len(res.Dropped)).Msg("shutdown announced")

	o.Runner.Shutdown()
	for _, uid := range o.Media.Users() {
		o.Ingest.Stop(uid)
		o.Media.Unbind(uid)
	}
	o.Conns.CloseAll()
}
