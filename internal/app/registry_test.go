package app

import (
	"testing"

	"github.com/dkeye/Tandem/internal/domain"
	"github.com/dkeye/Tandem/internal/mocks"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestMediaRegistry_BindReplacesAndCloses(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	r := NewMediaRegistry()

	first := mocks.NewMockMediaConnection(ctrl)
	second := mocks.NewMockMediaConnection(ctrl)
	first.EXPECT().Close().Times(1)

	// Given a bound connection
	id1 := r.Bind("alice", first)

	// When a new one is bound for the same user
	id2 := r.Bind("alice", second)

	// Then the old one is closed and can no longer release the slot
	req.NotEqual(id1, id2)
	req.Regexp(`^pc_`, id2)
	req.False(r.Release("alice", first))
	got, ok := r.Get("alice")
	req.True(ok)
	req.Same(second, got)

	req.True(r.Release("alice", second))
	req.Zero(r.Count())
}

func TestMediaRegistry_Unbind(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	r := NewMediaRegistry()

	mc := mocks.NewMockMediaConnection(ctrl)
	mc.EXPECT().Close().Times(1)
	r.Bind("bob", mc)
	req.Equal(1, r.Count())
	req.Equal([]domain.UserID{"bob"}, r.Users())

	req.True(r.Unbind("bob"))
	req.False(r.Unbind("bob"))
	_, ok := r.Get("bob")
	req.False(ok)
}
