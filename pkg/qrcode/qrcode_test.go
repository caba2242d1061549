package qrcode

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"HustleHeroes/pkg/errors"
)

func TestIssueAndValidate(t *testing.T) {
	now := time.Now()

	token, err := Issue(101, 202, "2026-09-01", now.Add(-time.Minute), now.Add(30*time.Minute))
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := Validate(token)
	require.NoError(t, err)
	assert.Equal(t, int64(101), claims.JobID)
	assert.Equal(t, int64(202), claims.ShiftID)
	assert.Equal(t, "2026-09-01", claims.Date)
}

func TestValidate_Expired(t *testing.T) {
	now := time.Now()

	token, err := Issue(101, 202, "2026-09-01", now.Add(-2*time.Hour), now.Add(-time.Hour))
	require.NoError(t, err)

	_, err = Validate(token)
	assert.Equal(t, errors.QRExpired, err)
}

func TestValidate_Garbage(t *testing.T) {
	_, err := Validate("not-a-token")
	assert.Equal(t, errors.QRInvalid, err)
}

func TestValidate_TamperedSignature(t *testing.T) {
	now := time.Now()

	token, err := Issue(101, 202, "2026-09-01", now, now.Add(time.Hour))
	require.NoError(t, err)

	_, err = Validate(token + "x")
	assert.Equal(t, errors.QRInvalid, err)
}
