package core

import (
	"context"

	"github.com/pion/webrtc/v4"
)

// MediaConnection is the per-user audio transport. Only inbound audio and
// lifecycle matter to the core; negotiation stays in the adapter.
type MediaConnection interface {
	// Start configures internal callbacks and binds the connection lifetime to ctx.
	Start(ctx context.Context) error
	// Close should stop all underlying media resources.
	Close()
	IsClosed() bool
	ApplyOfferAndCreateAnswer(webrtc.SessionDescription) (*webrtc.SessionDescription, error)
	// OnTrack sets a callback that will be invoked when a new remote track arrives.
	OnTrack(func(ctx context.Context, track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver))
	// OnConnected fires once the peer is reachable.
	OnConnected(func())
	// OnClosed sets a callback for media session cleanup.
	OnClosed(func())
}
