package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shopcore/storefront/internal/apperr"
	"github.com/shopcore/storefront/internal/auth"
	"github.com/shopcore/storefront/internal/storage/memory"
)

func newService() (*Service, *memory.Users) {
	store := memory.NewUsers()
	tokens := auth.NewTokenIssuer([]byte("test-secret"), time.Hour)
	return New(store, tokens, nil, WithHashCost(4)), store
}

func validInput() SignUpInput {
	return SignUpInput{Firstname: "test", Lastname: "test", Email: "a@x.com", Password: "12345678"}
}

func TestSignUp(t *testing.T) {
	svc, _ := newService()

	u, token, err := svc.SignUp(context.Background(), validInput())
	require.NoError(t, err)
	require.NotZero(t, u.ID)
	require.NotEmpty(t, token)
	require.NotEqual(t, "12345678", u.Password, "password must be stored hashed")

	claims, err := svc.tokens.Verify(token)
	require.NoError(t, err)
	require.Equal(t, u.ID, claims.UserID)
}

func TestSignUpDuplicateEmail(t *testing.T) {
	svc, store := newService()
	ctx := context.Background()

	_, _, err := svc.SignUp(ctx, validInput())
	require.NoError(t, err)

	_, _, err = svc.SignUp(ctx, validInput())
	require.True(t, apperr.IsCode(err, apperr.CodeConflict), "expected conflict, got %v", err)

	// No second row was created.
	all, err := store.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestSignUpValidation(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	cases := []SignUpInput{
		{Firstname: "t", Lastname: "test", Email: "a@x.com", Password: "12345678"},
		{Firstname: "test", Lastname: "t", Email: "a@x.com", Password: "12345678"},
		{Firstname: "test", Lastname: "test", Email: "not-an-email", Password: "12345678"},
		{Firstname: "test", Lastname: "test", Email: "a@x.com", Password: "short"},
	}
	for _, in := range cases {
		_, _, err := svc.SignUp(ctx, in)
		require.True(t, apperr.IsCode(err, apperr.CodeBadRequest), "input %+v should be rejected, got %v", in, err)
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	_, _, err := svc.SignUp(ctx, validInput())
	require.NoError(t, err)

	u, token, err := svc.Login(ctx, "a@x.com", "12345678")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, "a@x.com", u.Email)

	_, _, err = svc.Login(ctx, "a@x.com", "wrong-password")
	require.True(t, apperr.IsCode(err, apperr.CodeBadRequest), "expected bad request, got %v", err)

	_, _, err = svc.Login(ctx, "unknown@x.com", "12345678")
	require.True(t, apperr.IsCode(err, apperr.CodeNotFound), "expected not found, got %v", err)
}

func TestGetMissingUser(t *testing.T) {
	svc, _ := newService()
	_, err := svc.Get(context.Background(), 404)
	require.True(t, apperr.IsCode(err, apperr.CodeNotFound))
}

func TestCreateBatchPartitionsFailures(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	inputs := []SignUpInput{
		{Firstname: "test", Lastname: "test", Email: "a@x.com", Password: "12345678"},
		{Firstname: "test", Lastname: "test", Email: "a@x.com", Password: "12345678"}, // duplicate
		{Firstname: "test", Lastname: "test", Email: "b@x.com", Password: "12345678"},
	}

	result, err := svc.CreateBatch(ctx, inputs)
	require.NoError(t, err)
	require.Equal(t, 2, result.InsertedCount)
	require.Equal(t, 1, result.ErrorCount)
	require.Equal(t, "a@x.com", result.Failed[0].Input.Email)
}
