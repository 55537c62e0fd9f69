package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billmate/internal/billing"
	"billmate/internal/models"
	"billmate/internal/storage/memory"
)

func billInput(name, amount, dueDate string) BillInput {
	return BillInput{
		Name:      name,
		Amount:    decimal.RequireFromString(amount),
		DueDate:   dueDate,
		Frequency: models.FrequencyMonthly,
	}
}

// pairActive wires two users into an active connection.
func pairActive(t *testing.T, svc *ConnectionService, inviterID, redeemerID string) *models.SharedConnection {
	t.Helper()
	ctx := context.Background()
	code, err := svc.GenerateCode(ctx, inviterID)
	require.NoError(t, err)
	_, err = svc.Redeem(ctx, code.Code, redeemerID)
	require.NoError(t, err)
	conn, err := svc.Accept(ctx, "", redeemerID)
	require.NoError(t, err)
	require.Equal(t, models.ConnectionActive, conn.Status)
	return conn
}

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(billing.DateLayout, value)
	require.NoError(t, err)
	return parsed
}

func activityTypes(activities []*models.BillActivity) []models.ActivityType {
	types := make([]models.ActivityType, len(activities))
	for i, a := range activities {
		types[i] = a.Type
	}
	return types
}

func TestBillLifecycle(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewBillService(store)
	alice, _ := seedUsers(t, store)

	bill, err := svc.Create(ctx, alice.ID, billInput("Rent", "1200", "2026-09-01"))
	require.NoError(t, err)
	assert.Empty(t, bill.SharedConnectionID, "unpaired creator gets a personal bill")
	assert.False(t, bill.PaidByUser1)
	assert.False(t, bill.PaidByUser2)

	t.Run("validation", func(t *testing.T) {
		_, err := svc.Create(ctx, alice.ID, billInput("", "10", "2026-09-01"))
		assert.ErrorIs(t, err, ErrValidation)
		_, err = svc.Create(ctx, alice.ID, billInput("Water", "-5", "2026-09-01"))
		assert.ErrorIs(t, err, ErrValidation)
		_, err = svc.Create(ctx, alice.ID, billInput("Water", "5", "Sep 1 2026"))
		assert.ErrorIs(t, err, ErrValidation)
		_, err = svc.Create(ctx, alice.ID, BillInput{Name: "Water", Amount: decimal.NewFromInt(5), DueDate: "2026-09-01", Frequency: "hourly"})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("update keeps activity log quiet", func(t *testing.T) {
		updated, err := svc.Update(ctx, alice.ID, bill.ID, billInput("Rent (new lease)", "1300", "2026-09-01"))
		require.NoError(t, err)
		assert.Equal(t, "Rent (new lease)", updated.Name)
		assert.True(t, updated.Amount.Equal(decimal.NewFromInt(1300)))

		activities, err := svc.Activities(ctx, alice.ID, bill.ID)
		require.NoError(t, err)
		assert.Equal(t, []models.ActivityType{models.ActivityCreated}, activityTypes(activities),
			"field edits append no activity")
	})

	t.Run("comment", func(t *testing.T) {
		activity, err := svc.Comment(ctx, alice.ID, bill.ID, "landlord confirmed the increase")
		require.NoError(t, err)
		assert.Equal(t, models.ActivityCommented, activity.Type)
		assert.Equal(t, "Alice", activity.UserName)

		_, err = svc.Comment(ctx, alice.ID, bill.ID, "")
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("delete is creator only and audited", func(t *testing.T) {
		victim, err := svc.Create(ctx, alice.ID, billInput("Gym", "40", "2026-09-10"))
		require.NoError(t, err)

		require.NoError(t, svc.Delete(ctx, alice.ID, victim.ID))
		_, err = svc.Get(ctx, alice.ID, victim.ID)
		assert.Error(t, err)

		// The audit trail outlives the bill.
		activities, err := store.ListBillActivities(ctx, victim.ID)
		require.NoError(t, err)
		require.NotEmpty(t, activities)
		assert.Contains(t, activityTypes(activities), models.ActivityDeleted)
		for _, a := range activities {
			if a.Type == models.ActivityDeleted {
				assert.Contains(t, a.Description, "Gym")
			}
		}
	})
}

func TestSharedVisibility(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	bills := NewBillService(store)
	conns := NewConnectionService(store)
	alice, bob := seedUsers(t, store)

	// Pending connection: Bob redeemed but has not accepted yet.
	code, err := conns.GenerateCode(ctx, alice.ID)
	require.NoError(t, err)
	_, err = conns.Redeem(ctx, code.Code, bob.ID)
	require.NoError(t, err)

	rent, err := bills.Create(ctx, alice.ID, billInput("Rent", "1200", "2026-09-01"))
	require.NoError(t, err)
	assert.Empty(t, rent.SharedConnectionID, "a pending connection does not share new bills")

	bobView, err := bills.List(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, bobView, "pending connection grants no shared visibility")

	// Bob accepts; bills created from here on are shared both ways.
	_, err = conns.Accept(ctx, "", bob.ID)
	require.NoError(t, err)

	power, err := bills.Create(ctx, alice.ID, billInput("Power", "80", "2026-09-05"))
	require.NoError(t, err)
	assert.NotEmpty(t, power.SharedConnectionID)

	bobView, err = bills.List(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, bobView, 1)
	assert.Equal(t, "Power", bobView[0].Name)
	assert.True(t, bobView[0].IsShared)

	got, err := bills.Get(ctx, bob.ID, power.ID)
	require.NoError(t, err)
	assert.True(t, got.IsShared)

	// The personal bill created before acceptance stays Alice's alone.
	_, err = bills.Get(ctx, bob.ID, rent.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	// Disconnect drops Bob's view of the shared bill entirely.
	require.NoError(t, conns.Disconnect(ctx, alice.ID))
	bobView, err = bills.List(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, bobView)
	_, err = bills.Get(ctx, bob.ID, power.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestSetPaidActivityClassification(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	bills := NewBillService(store)
	conns := NewConnectionService(store)
	alice, bob := seedUsers(t, store)
	pairActive(t, conns, alice.ID, bob.ID)

	bill, err := bills.Create(ctx, alice.ID, billInput("Internet", "60", "2026-09-03"))
	require.NoError(t, err)

	// Bob (the partner) pays his side first: only one flag set, so the bill
	// as a whole is still unpaid.
	updated, err := bills.SetPaid(ctx, bob.ID, bill.ID, true)
	require.NoError(t, err)
	assert.False(t, updated.PaidByUser1)
	assert.True(t, updated.PaidByUser2)
	assert.Equal(t, billing.StatusDue, billing.BillStatus(updated, mustDate(t, "2026-09-03")))

	// Alice pays hers: both flags set, the bill flips to paid.
	updated, err = bills.SetPaid(ctx, alice.ID, bill.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.PaidByUser1)
	assert.True(t, updated.PaidByUser2)

	// Alice reverts: the bill stops being fully paid even though Bob's flag
	// never moved.
	updated, err = bills.SetPaid(ctx, alice.ID, bill.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.PaidByUser1)
	assert.True(t, updated.PaidByUser2)

	activities, err := bills.Activities(ctx, alice.ID, bill.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t,
		[]models.ActivityType{
			models.ActivityCreated,
			models.ActivityUnpaid, // Bob alone
			models.ActivityPaid,   // both sides
			models.ActivityUnpaid, // Alice reverted
		},
		activityTypes(activities))
}

func TestBillSplits(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	bills := NewBillService(store)
	conns := NewConnectionService(store)
	alice, bob := seedUsers(t, store)
	pairActive(t, conns, alice.ID, bob.ID)

	bill, err := bills.Create(ctx, alice.ID, billInput("Groceries", "150", "2026-09-07"))
	require.NoError(t, err)

	t.Run("defaults to even", func(t *testing.T) {
		split, err := bills.GetSplit(ctx, bob.ID, bill.ID)
		require.NoError(t, err)
		assert.True(t, split.User1Percentage.Equal(decimal.NewFromInt(50)))
		assert.True(t, split.User2Percentage.Equal(decimal.NewFromInt(50)))
	})

	t.Run("must sum to 100", func(t *testing.T) {
		_, err := bills.SetSplit(ctx, alice.ID, bill.ID, decimal.NewFromInt(70), decimal.NewFromInt(40))
		assert.ErrorIs(t, err, ErrValidation)
		_, err = bills.SetSplit(ctx, alice.ID, bill.ID, decimal.NewFromInt(120), decimal.NewFromInt(-20))
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("upsert and read back", func(t *testing.T) {
		_, err := bills.SetSplit(ctx, alice.ID, bill.ID, decimal.NewFromInt(70), decimal.NewFromInt(30))
		require.NoError(t, err)

		split, err := bills.GetSplit(ctx, bob.ID, bill.ID)
		require.NoError(t, err)
		assert.True(t, split.User1Percentage.Equal(decimal.NewFromInt(70)))
		assert.True(t, split.User2Percentage.Equal(decimal.NewFromInt(30)))
	})

	t.Run("unshared bills cannot be split", func(t *testing.T) {
		carol := models.NewUser("carol@example.com", "Carol", "hash")
		require.NoError(t, store.CreateUser(ctx, carol))
		personal, err := bills.Create(ctx, carol.ID, billInput("Netflix", "15", "2026-09-12"))
		require.NoError(t, err)

		_, err = bills.SetSplit(ctx, carol.ID, personal.ID, decimal.NewFromInt(50), decimal.NewFromInt(50))
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestPreferences(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewPreferenceService(store)
	alice, _ := seedUsers(t, store)

	pref, err := svc.Get(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, pref.DaysBeforeDue, "unsaved users get the defaults")
	assert.True(t, pref.NotifyOnPaid)
	assert.True(t, pref.NotifyOnOverdue)

	_, err = svc.Update(ctx, alice.ID, []int{-2}, true, true)
	assert.ErrorIs(t, err, ErrValidation)

	saved, err := svc.Update(ctx, alice.ID, []int{1, 3, 7}, false, true)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 7}, saved.DaysBeforeDue)

	pref, err = svc.Get(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 7}, pref.DaysBeforeDue)
	assert.False(t, pref.NotifyOnPaid)
}
