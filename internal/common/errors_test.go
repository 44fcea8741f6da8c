package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "queue", err: ErrQueueUnavailable, want: true},
		{name: "wrapped store", err: fmt.Errorf("put profiles/1.pdf: %w", ErrStoreUnavailable), want: true},
		{name: "poison", err: ErrPoisonMessage, want: false},
		{name: "other", err: errors.New("boom"), want: false},
		{name: "nil", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}
