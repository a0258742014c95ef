package event

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type failing struct{ err error }

func (f failing) Publish(context.Context, Event) error { return f.err }

func TestFanout_DeliversToAllAndJoinsErrors(t *testing.T) {
	rec := &Recorder{}
	boom := errors.New("broker down")
	f := NewFanout(zap.NewNop(), failing{boom}, rec)

	err := f.Publish(context.Background(), New(TypeOrder, ActionOrderPlaced, "", nil))
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{ActionOrderPlaced}, rec.Actions())
}
