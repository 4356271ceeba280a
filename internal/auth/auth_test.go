package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/UkralStul/blogicum/internal/clock"
	"github.com/UkralStul/blogicum/internal/domain"
	"github.com/UkralStul/blogicum/internal/storage/inmemory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *clock.Fake) {
	t.Helper()
	clk := clock.NewFake(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	return New(inmemory.New(clk), clk, WithBcryptCost(bcrypt.MinCost), WithSessionTTL(time.Hour)), clk
}

func TestRegisterAndLogin(t *testing.T) {
	svc, clk := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Username: "alice", Password1: "s3cret-pass", Password2: "s3cret-pass"})
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)

	sess, err := svc.Login(ctx, "alice", "s3cret-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, user.ID, sess.UserID)
	assert.Equal(t, clk.Now().Add(time.Hour), sess.ExpiresAt)

	require.NoError(t, svc.Logout(ctx, sess.Token))
	require.NoError(t, svc.Logout(ctx, ""))
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "bad name", Password1: "short", Password2: "other"})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "username")
	assert.Contains(t, verr.Fields, "password1")
	assert.Contains(t, verr.Fields, "password2")

	_, err = svc.Register(ctx, RegisterInput{Username: "bob", Password1: "long-enough", Password2: "long-enough"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterInput{Username: "bob", Password1: "long-enough", Password2: "long-enough"})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "username")
}

func TestRegister_PasswordMessages(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// 40 кириллических символов - 80 байт, больше предела bcrypt
	long := strings.Repeat("я", 40)
	_, err := svc.Register(ctx, RegisterInput{Username: "carol", Password1: long, Password2: long})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "This password is too long. It must contain at most 72 bytes.", verr.Fields["password1"])

	_, err = svc.Register(ctx, RegisterInput{Username: "carol", Password1: "short", Password2: "short"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "This password is too short. It must contain at least 8 characters.", verr.Fields["password1"])

	_, err = svc.Register(ctx, RegisterInput{Username: "carol", Password1: "long-enough", Password2: "long-enougH"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, map[string]string{"password2": "The two password fields didn't match."}, verr.Fields)
}

func TestLogin_WrongCredentials(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterInput{Username: "alice", Password1: "s3cret-pass", Password2: "s3cret-pass"})
	require.NoError(t, err)

	var verr *domain.ValidationError
	_, err = svc.Login(ctx, "alice", "wrong-pass")
	assert.ErrorAs(t, err, &verr)
	_, err = svc.Login(ctx, "nobody", "s3cret-pass")
	assert.ErrorAs(t, err, &verr)
}

func TestPurgeExpired(t *testing.T) {
	svc, clk := newTestService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterInput{Username: "alice", Password1: "s3cret-pass", Password2: "s3cret-pass"})
	require.NoError(t, err)
	_, err = svc.Login(ctx, "alice", "s3cret-pass")
	require.NoError(t, err)

	n, err := svc.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	clk.Advance(2 * time.Hour)
	n, err = svc.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
