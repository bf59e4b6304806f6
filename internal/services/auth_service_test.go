package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/psgpraveen/PolicyPilot/internal/auth"
	"github.com/psgpraveen/PolicyPilot/internal/store"
	"github.com/psgpraveen/PolicyPilot/internal/store/memory"
	"github.com/psgpraveen/PolicyPilot/pkg/metrics"
)

func newAuthService(t *testing.T) (*AuthService, *memory.Store) {
	t.Helper()
	tokens, err := auth.NewManager("test-secret", time.Hour)
	require.NoError(t, err)
	mem := memory.NewStore()
	return NewAuthService(mem, tokens, zap.NewNop(), metrics.NewMetricsCollector(), 6), mem
}

func TestSignupCollectsAllViolations(t *testing.T) {
	service, _ := newAuthService(t)

	_, err := service.Signup(context.Background(), SignupInput{
		Name:     "J",
		Email:    "not-an-email",
		Password: "short",
	})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Len(t, validationErr.Fields, 3)

	fields := map[string]bool{}
	for _, f := range validationErr.Fields {
		fields[f.Field] = true
	}
	assert.True(t, fields["name"])
	assert.True(t, fields["email"])
	assert.True(t, fields["password"])
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	service, _ := newAuthService(t)
	ctx := context.Background()

	_, err := service.Signup(ctx, SignupInput{Name: "Jane Doe", Email: "jane@x.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = service.Signup(ctx, SignupInput{Name: "Jane Again", Email: "jane@x.com", Password: "secret2"})
	assert.ErrorIs(t, err, store.ErrDuplicateEmail)
}

func TestLoginSucceedsWithCorrectCredentials(t *testing.T) {
	service, _ := newAuthService(t)
	ctx := context.Background()

	userID, err := service.Signup(ctx, SignupInput{Name: "Jane Doe", Email: "jane@x.com", Password: "secret1"})
	require.NoError(t, err)

	token, user, err := service.Login(ctx, "jane@x.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, "Jane Doe", user.Name)
}

func TestLoginFailureIsUniform(t *testing.T) {
	service, _ := newAuthService(t)
	ctx := context.Background()

	_, err := service.Signup(ctx, SignupInput{Name: "Jane Doe", Email: "jane@x.com", Password: "secret1"})
	require.NoError(t, err)

	// Unknown email and wrong password must be indistinguishable.
	_, _, unknownErr := service.Login(ctx, "nobody@x.com", "secret1")
	_, _, wrongErr := service.Login(ctx, "jane@x.com", "wrong-password")

	assert.ErrorIs(t, unknownErr, ErrInvalidCredentials)
	assert.ErrorIs(t, wrongErr, ErrInvalidCredentials)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestLoginEmailIsCaseInsensitive(t *testing.T) {
	service, _ := newAuthService(t)
	ctx := context.Background()

	_, err := service.Signup(ctx, SignupInput{Name: "Jane Doe", Email: "Jane@X.com", Password: "secret1"})
	require.NoError(t, err)

	_, _, err = service.Login(ctx, "jane@x.com", "secret1")
	assert.NoError(t, err)
}
