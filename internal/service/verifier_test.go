package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/nvron-auth/internal/auth"
	"github.com/spec-kit/nvron-auth/internal/events"
)

func TestIssueThenVerifyRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	issued, err := f.issuer.Issue(ctx, "testuser", "password123", "203.0.113.5")
	require.NoError(t, err)

	claims, err := f.verifier.Verify(ctx, issued.Token, "203.0.113.5")
	require.NoError(t, err)
	assert.Equal(t, "123", claims.SubjectID)
	assert.Equal(t, "testuser", claims.SubjectName)

	_, err = f.verifier.Verify(ctx, issued.Token, "198.51.100.9")
	assert.ErrorIs(t, err, auth.ErrOriginMismatch)
}

func TestVerifyOriginMismatchVariants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	issued, err := f.issuer.Issue(ctx, "testuser", "password123", "203.0.113.5")
	require.NoError(t, err)

	for _, addr := range []string{"203.0.113.50", "203.0.113.5:443", " 203.0.113.5", "", "::ffff:203.0.113.5"} {
		_, err := f.verifier.Verify(ctx, issued.Token, addr)
		assert.ErrorIs(t, err, auth.ErrOriginMismatch, addr)
	}
}

func TestVerifyNoCredential(t *testing.T) {
	f := newFixture(t)

	_, err := f.verifier.Verify(context.Background(), "", "203.0.113.5")
	assert.ErrorIs(t, err, auth.ErrNoCredential)
	assert.Equal(t, []events.EventType{events.EventCredentialRejected}, f.events.types())
}

func TestVerifyExpiry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	start := *f.clock

	issued, err := f.issuer.Issue(ctx, "testuser", "password123", "203.0.113.5")
	require.NoError(t, err)

	*f.clock = start.Add(time.Hour - time.Second)
	_, err = f.verifier.Verify(ctx, issued.Token, "203.0.113.5")
	assert.NoError(t, err)

	*f.clock = start.Add(time.Hour + time.Second)
	_, err = f.verifier.Verify(ctx, issued.Token, "203.0.113.5")
	assert.ErrorIs(t, err, auth.ErrInvalidOrExpired)

	// expiry is checked before origin
	_, err = f.verifier.Verify(ctx, issued.Token, "198.51.100.9")
	assert.ErrorIs(t, err, auth.ErrInvalidOrExpired)
}

func TestVerifyTamperedCredential(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	issued, err := f.issuer.Issue(ctx, "testuser", "password123", "203.0.113.5")
	require.NoError(t, err)

	tampered := []byte(issued.Token)
	mid := len(tampered) / 2
	if tampered[mid] == 'x' {
		tampered[mid] = 'y'
	} else {
		tampered[mid] = 'x'
	}

	claims, err := f.verifier.Verify(ctx, string(tampered), "203.0.113.5")
	assert.ErrorIs(t, err, auth.ErrInvalidOrExpired)
	assert.Nil(t, claims)
}

func TestVerifyConcurrent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	issued, err := f.issuer.Issue(ctx, "testuser", "password123", "203.0.113.5")
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.verifier.Verify(ctx, issued.Token, "203.0.113.5")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int64(32), f.metrics.Snapshot().AuthOutcomes["verify|ok"])
}
