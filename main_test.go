package main

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stepLog struct {
	steps []string
}

type fakeScans struct {
	log *stepLog
	err error
}

func (f *fakeScans) Drain(time.Duration) error {
	f.log.steps = append(f.log.steps, "drain")
	return f.err
}

type fakeState struct {
	log *stepLog
}

func (f *fakeState) Close() {
	f.log.steps = append(f.log.steps, "close")
}

func TestShutdownDrainsScansBeforeClosingState(t *testing.T) {
	tests := []struct {
		name  string
		drain error
	}{
		{name: "Clean drain"},
		{name: "Drain timeout still flushes", drain: errors.New("timed out")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			steps := &stepLog{}
			shutdown(&http.Server{}, &fakeScans{log: steps, err: tt.drain}, &fakeState{log: steps})
			assert.Equal(t, []string{"drain", "close"}, steps.steps)
		})
	}
}

func TestShutdownWithoutScanBus(t *testing.T) {
	steps := &stepLog{}
	shutdown(&http.Server{}, nil, &fakeState{log: steps})
	assert.Equal(t, []string{"close"}, steps.steps)
}
