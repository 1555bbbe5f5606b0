//go:build unit

package user_test

import (
	"testing"

	"booking-engine/internal/domain/user"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWalkInContact(t *testing.T) {
	tests := []struct {
		name  string
		in    [3]string
		want  user.Contact
		errIs error
	}{
		{name: "email only", in: [3]string{"Ana", "ana@example.com", ""}, want: user.Contact{Name: "Ana", Email: "ana@example.com"}},
		{name: "phone only", in: [3]string{" Ana ", "", "+49 170 1234567"}, want: user.Contact{Name: "Ana", Phone: "+49 170 1234567"}},
		{name: "missing name", in: [3]string{"  ", "ana@example.com", ""}, errIs: user.ErrEmptyName},
		{name: "bad email", in: [3]string{"Ana", "ana@", ""}, errIs: user.ErrInvalidEmail},
		{name: "no way to reach", in: [3]string{"Ana", "", ""}, errIs: user.ErrInvalidPhone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := user.NewWalkInContact(tt.in[0], tt.in[1], tt.in[2])
			if tt.errIs != nil {
				assert.ErrorIs(t, err, tt.errIs)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("contact mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRole(t *testing.T) {
	r, err := user.NewRole("owner")
	require.NoError(t, err)
	assert.True(t, r.ActsForBusiness())

	r, err = user.NewRole("client")
	require.NoError(t, err)
	assert.False(t, r.ActsForBusiness())

	_, err = user.NewRole("viewer")
	assert.ErrorIs(t, err, user.ErrInvalidRole)
}
