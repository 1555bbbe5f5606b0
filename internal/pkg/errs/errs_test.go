//go:build unit

package errs_test

import (
	"testing"

	"booking-engine/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind errs.Kind
		wantMsg  string
	}{
		{name: "not found", err: errs.NotFound("staff %s not found", "abc"), wantKind: errs.KindNotFound, wantMsg: "staff abc not found"},
		{name: "bad request", err: errs.BadRequest("no services"), wantKind: errs.KindBadRequest, wantMsg: "no services"},
		{name: "conflict survives wrapping", err: errs.Wrap(errs.Conflict("slot no longer available"), "create booking"), wantKind: errs.KindConflict, wantMsg: "slot no longer available"},
		{name: "plain error", err: errs.New("boom"), wantKind: errs.KindUnknown},
		{name: "nil", err: nil, wantKind: errs.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, msg := errs.KindOf(tt.err)
			assert.Equal(t, tt.wantKind, kind)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}

func TestMarkKeepsIdentity(t *testing.T) {
	sentinel := errs.New("sentinel")
	marked := errs.Mark(errs.New("low level"), sentinel)

	assert.True(t, errs.Is(marked, sentinel))
	assert.Equal(t, sentinel, errs.Mark(nil, sentinel))
}

func TestMessageWithPercentSign(t *testing.T) {
	err := errs.BadRequest("discount of %d%% is not allowed", 100)
	_, msg := errs.KindOf(err)
	assert.Equal(t, "discount of 100% is not allowed", msg)

	cause := errs.New("discount must be below 100% of the price")
	err = errs.BadRequest("%s", cause.Error())
	_, msg = errs.KindOf(err)
	assert.Equal(t, "discount must be below 100% of the price", msg)
}

func TestExtractStackLines(t *testing.T) {
	err := errs.Wrap(errs.New("boom"), "create booking")

	lines := errs.ExtractStackLines(err, 3)
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], "create booking")
	for _, l := range lines {
		assert.NotEmpty(t, l)
	}

	assert.Nil(t, errs.ExtractStackLines(nil, 3))
}
