// Package ingest pumps a user's inbound RTP audio into their translation
// stream.
package ingest

import (
	"context"
	"errors"

	"github.com/dkeye/Tandem/internal/domain"
	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"
)

// Source yields RTP packets until it fails.
type Source func() (*rtp.Packet, error)

// FeedFunc hands one RTP payload to the consumer.
type FeedFunc func(payload []byte) error

// TrackSource reads from a remote WebRTC track.
func TrackSource(track *webrtc.TrackRemote) Source {
	return func() (*rtp.Packet, error) {
		pkt, _, err := track.ReadRTP()
		return pkt, err
	}
}

type pump struct {
	uid    domain.UserID
	src    Source
	feed   FeedFunc
	cancel context.CancelFunc
	done   chan struct{}

	packets uint64
	bytes   uint64
}

// loop reads packets from the source and feeds their payloads until ctx is
// done, the source fails or the consumer refuses.
func (p *pump) loop(ctx context.Context, logger *zerolog.Logger) {
	defer close(p.done)
	for {
		select {
		case <-ctx.Done():
			logger.Info().Uint64("packets", p.packets).Msg("ingest ctx done")
			return
		default:
		}
		pkt, err := p.src()
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				logger.Info().Err(err).Uint64("packets", p.packets).Msg("ingest read stopped")
			}
			return
		}
		if len(pkt.Payload) == 0 {
			continue
		}
		if err := p.feed(pkt.Payload); err != nil {
			logger.Warn().Err(err).Msg("ingest feed refused, stopping")
			return
		}
		p.packets++
		p.bytes += uint64(len(pkt.Payload))
	}
}
