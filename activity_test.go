package authgate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-authgate"
	"github.com/stretchr/testify/assert"
)

func TestActivitySinks_FanOut(t *testing.T) {
	first := &capturingSink{}
	second := &capturingSink{}
	boom := errors.New("sink down")

	sinks := authgate.ActivitySinks{
		first,
		nil,
		authgate.ActivitySinkFunc(func(context.Context, authgate.ActivityEvent) error { return boom }),
		second,
	}

	event := authgate.ActivityEvent{EventType: authgate.ActivityEventLoginSuccess, Username: "johndoe"}
	err := sinks.Record(context.Background(), event)

	assert.ErrorIs(t, err, boom)
	assert.Len(t, first.Events(), 1)
	assert.Len(t, second.Events(), 1)
	assert.False(t, second.Last().Failed())
}

func TestActivitySinkFunc_Nil(t *testing.T) {
	var fn authgate.ActivitySinkFunc
	assert.NoError(t, fn.Record(context.Background(), authgate.ActivityEvent{}))
}
