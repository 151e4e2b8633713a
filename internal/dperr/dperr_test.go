package dperr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecoverableRecognizesAllThreeKinds(t *testing.T) {
	assert.True(t, Recoverable(&LitCodeDPFailure{NumSymbols: 5, MaxWidth: 9}))
	assert.True(t, Recoverable(&DistCodeDPFailure{NumSymbols: 5, MaxWidth: 6}))
	assert.True(t, Recoverable(&RLEDPFailure{Value: 3, Count: 4}))
}

func TestRecoverableRejectsOtherErrors(t *testing.T) {
	assert.False(t, Recoverable(errors.New("boom")))
}

func TestErrorMessagesIncludeContext(t *testing.T) {
	err := &LitCodeDPFailure{NumSymbols: 12, MaxWidth: 9}
	assert.Contains(t, err.Error(), "12")
	assert.Contains(t, err.Error(), "9")
}
