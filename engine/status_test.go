package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckTransition(t *testing.T) {
	tests := []struct {
		op   Op
		from Status
		want Status
		err  error
	}{
		{OpPrepare, StatusIdle, StatusReady, nil},
		{OpPrepare, StatusReady, StatusReady, nil},
		{OpPrepare, StatusRecording, StatusRecording, ErrAlreadyInState},
		{OpStart, StatusIdle, StatusIdle, ErrNotInitialized},
		{OpStart, StatusReady, StatusRecording, nil},
		{OpStart, StatusRecording, StatusRecording, ErrAlreadyInState},
		{OpPause, StatusIdle, StatusIdle, ErrNotInitialized},
		{OpPause, StatusRecording, StatusPaused, nil},
		{OpPause, StatusPaused, StatusPaused, ErrAlreadyInState},
		{OpResume, StatusIdle, StatusIdle, ErrNotInitialized},
		{OpResume, StatusPaused, StatusRecording, nil},
		{OpResume, StatusRecording, StatusRecording, ErrAlreadyInState},
		{OpStop, StatusIdle, StatusIdle, ErrNotInitialized},
		{OpStop, StatusReady, StatusIdle, nil},
		{OpStop, StatusPaused, StatusIdle, nil},
		{OpDiscard, StatusIdle, StatusIdle, ErrNotInitialized},
		{OpDiscard, StatusReady, StatusIdle, nil},
		{OpDiscard, StatusRecording, StatusRecording, ErrAlreadyInState},
	}
	for _, tt := range tests {
		t.Run(string(tt.op)+"_from_"+tt.from.String(), func(t *testing.T) {
			got, err := checkTransition(tt.op, tt.from)
			assert.Equal(t, tt.want, got)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}
