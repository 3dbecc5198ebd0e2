package orch

import (
	"context"
	"errors"
	"fmt"

	"github.com/dkeye/Tandem/internal/app/ingest"
	"github.com/dkeye/Tandem/internal/core"
	"github.com/dkeye/Tandem/internal/domain"
	"github.com/dkeye/Tandem/internal/pipeline"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

// Answer is the SDP answer for an offer together with the peer id.
type Answer struct {
	SDP    string `json:"sdp"`
	Type   string `json:"type"`
	PeerID string `json:"pc_id"`
}

// Offer negotiates the user's media connection and starts their translation
// session. The session targets the partner's language, or English while the
// user is still waiting.
func (o *Orchestrator) Offer(uid domain.UserID, offer webrtc.SessionDescription) (Answer, error) {
	self, ok := o.Rooms.GetUser(uid)
	if !ok {
		return Answer{}, ErrUnknownUser
	}
	if o.NewMedia == nil {
		return Answer{}, errors.New("media transport not configured")
	}
	mc, err := o.NewMedia(uid)
	if err != nil {
		return Answer{}, fmt.Errorf("new media connection: %w", err)
	}
	o.bindMediaHandlers(mc, uid)
	if err := mc.Start(o.ctx); err != nil {
		mc.Close()
		return Answer{}, fmt.Errorf("start media: %w", err)
	}
	answer, err := mc.ApplyOfferAndCreateAnswer(offer)
	if err != nil {
		mc.Close()
		return Answer{}, fmt.Errorf("apply offer: %w", err)
	}
	peerID := o.Media.Bind(uid, mc)

	target := domain.English
	if partner, ok := o.Rooms.GetTranslationPartner(uid); ok {
		target = partner.Language
	}
	if err := o.StartSession(pipeline.NewSpec(uid, self.Language, target)); err != nil && !errors.Is(err, pipeline.ErrRunning) {
		o.Media.Unbind(uid)
		return Answer{}, err
	}
	return Answer{SDP: answer.SDP, Type: answer.Type.String(), PeerID: peerID}, nil
}

// StartSession runs the user's pipeline task. Whatever ends the task ends
// the session.
func (o *Orchestrator) StartSession(spec pipeline.Spec) error {
	return o.Runner.Start(o.ctx, spec, o.Relay.Dispatch, func(uid domain.UserID, err error) {
		if err != nil {
			log.Error().Err(err).Str("module", "orch").Str("user", string(uid)).Msg("translation session failed")
		}
		o.EndSession(uid)
	})
}

func (o *Orchestrator) bindMediaHandlers(mc core.MediaConnection, uid domain.UserID) {
	mc.OnTrack(func(ctx context.Context, track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		if track.Kind() != webrtc.RTPCodecTypeAudio {
			return
		}
		o.Ingest.Start(ctx, uid, ingest.TrackSource(track), func(p []byte) error {
			return o.Runner.Feed(uid, p)
		})
	})
	mc.OnConnected(func() { o.Relay.Ready(uid) })
	mc.OnClosed(func() {
		if o.Media.Release(uid, mc) {
			o.EndSession(uid)
		}
	})
}

// EndSession tears down everything the user holds: the partner is told, the
// user leaves the matcher, and the pipeline, ingest and media are stopped.
// Repeated calls are no-ops.
func (o *Orchestrator) EndSession(uid domain.UserID) (domain.RoomID, bool) {
	roomID, held := o.Relay.Disconnect(uid)
	o.Runner.Stop(uid)
	o.Ingest.Stop(uid)
	o.Media.Unbind(uid)
	return roomID, held
}
