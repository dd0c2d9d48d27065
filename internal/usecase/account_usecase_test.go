package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servibid/internal/domain/entity"
	"servibid/pkg/errors"
)

func TestRegisterCustomerRejectsDuplicateEmail(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	customer, err := f.accounts.RegisterCustomer(ctx, RegisterCustomerInput{Name: " Ana ", Email: "ana@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Ana", customer.Name)

	_, err = f.accounts.RegisterCustomer(ctx, RegisterCustomerInput{Name: "Ana", Email: "ANA@example.com"})
	assert.True(t, errors.Is(err, errors.CodeConflict))

	_, err = f.accounts.RegisterCustomer(ctx, RegisterCustomerInput{Email: "x@example.com"})
	assert.True(t, errors.Is(err, errors.CodeValidation))
}

func TestUpdateCustomerAppliesOnlyGivenFields(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, err := f.accounts.RegisterCustomer(ctx, RegisterCustomerInput{Name: "Ana", Email: "ana@example.com", Phone: "111"})
	require.NoError(t, err)

	updated, err := f.accounts.UpdateCustomer(ctx, "ana@example.com", UpdateCustomerInput{Address: ptr("Dubai Marina")})
	require.NoError(t, err)
	assert.Equal(t, "111", updated.Phone)
	assert.Equal(t, "Dubai Marina", updated.Address)

	_, err = f.accounts.UpdateCustomer(ctx, "ana@example.com", UpdateCustomerInput{Name: ptr("")})
	assert.True(t, errors.Is(err, errors.CodeValidation))
}

func TestRegisterProviderNormalizesServices(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	provider, err := f.accounts.RegisterProvider(ctx, RegisterProviderInput{
		Name: "Bo", Email: "bo@example.com", ServicesOffered: []string{" Plumbing", "Plumbing", "", "Painting"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Plumbing", "Painting"}, provider.ServicesOffered)
	assert.Equal(t, UnrankedStanding, provider.Rank)

	updated, err := f.accounts.UpdateProvider(ctx, provider.ID, UpdateProviderInput{ServicesOffered: []string{"Electrical"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Electrical"}, updated.ServicesOffered)
}

func TestGetUserResolvesEitherRole(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.customer(t, "c1")
	f.provider(t, "p1")

	user, err := f.accounts.GetUser(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleCustomer, user.Role)

	user, err = f.accounts.GetUser(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleProvider, user.Role)
	assert.Equal(t, "Provider p1", user.Name)

	_, err = f.accounts.GetUser(ctx, "nobody")
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestNotificationsListAndMarkRead(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	for _, msg := range []string{"first", "second"} {
		_, err := f.notifications.Notify(ctx, NotifyInput{Role: entity.RoleCustomer, UserID: "c1", Type: entity.NotificationPayment, Message: msg})
		require.NoError(t, err)
	}

	list, err := f.notifications.List(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Message, "newest first")

	n, err := f.notifications.MarkAllRead(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = f.notifications.List(ctx, " ")
	assert.True(t, errors.Is(err, errors.CodeValidation))
}
