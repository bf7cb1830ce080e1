package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obinnaokafor/symptomsense/backend/internal/domain/entities"
	redisclient "github.com/obinnaokafor/symptomsense/backend/internal/infrastructure/clients/redis"
	apperrors "github.com/obinnaokafor/symptomsense/backend/pkg/errors"
)

func setupRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := redisclient.NewClientWithAddr(mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client, ttl).(*RedisStore), mr
}

func TestRedisStore_SaveAndGet(t *testing.T) {
	store, _ := setupRedisStore(t, 30*time.Minute)
	ctx := context.Background()

	state := sampleState("s1")
	state.TopCandidate = &entities.DiagnosisCandidate{
		ConditionID:     "flu",
		ConditionName:   "Flu",
		Score:           1.0,
		MatchRatio:      0.4,
		Tier:            entities.TierMedium,
		MatchedSymptoms: []entities.SymptomID{"cough", "fever"},
		MissingSymptoms: []entities.SymptomID{"body_pain", "fatigue", "headache"},
	}
	require.NoError(t, store.Save(ctx, state))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, entities.PhaseAwaitingFollowup, got.Phase)
	assert.Equal(t, []entities.SymptomID{"cough", "fever"}, got.ReportedSymptoms)
	require.NotNil(t, got.TopCandidate)
	assert.Equal(t, entities.ConditionID("flu"), got.TopCandidate.ConditionID)
	assert.Equal(t, entities.TierMedium, got.TopCandidate.Tier)
}

func TestRedisStore_GetUnknownSession(t *testing.T) {
	store, _ := setupRedisStore(t, 30*time.Minute)

	_, err := store.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestRedisStore_TTLExpiry(t *testing.T) {
	store, mr := setupRedisStore(t, 10*time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleState("s1")))
	assert.True(t, mr.Exists("triage:state:s1"))

	mr.FastForward(11 * time.Minute)

	_, err := store.Get(ctx, "s1")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestRedisStore_SaveRefreshesTTL(t *testing.T) {
	store, mr := setupRedisStore(t, 10*time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleState("s1")))
	mr.FastForward(8 * time.Minute)

	require.NoError(t, store.Save(ctx, sampleState("s1")))
	mr.FastForward(8 * time.Minute)

	_, err := store.Get(ctx, "s1")
	assert.NoError(t, err)
}

func TestRedisStore_Delete(t *testing.T) {
	store, _ := setupRedisStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleState("s1")))
	require.NoError(t, store.Delete(ctx, "s1"))

	_, err := store.Get(ctx, "s1")
	assert.True(t, apperrors.IsNotFound(err))

	assert.NoError(t, store.Delete(ctx, "never-existed"))
}

func TestRedisStore_CorruptPayload(t *testing.T) {
	store, mr := setupRedisStore(t, time.Minute)

	require.NoError(t, mr.Set("triage:state:bad", "not json"))

	_, err := store.Get(context.Background(), "bad")
	require.Error(t, err)
	assert.False(t, apperrors.IsNotFound(err))
}

func TestRedisStore_RejectsStateWithoutID(t *testing.T) {
	store, _ := setupRedisStore(t, time.Minute)

	err := store.Save(context.Background(), &entities.ConversationState{})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}
