package verification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Perpelix/discord-verification-bot/pkg/fingerprint"
	"github.com/Perpelix/discord-verification-bot/pkg/ipreputation"
	"github.com/Perpelix/discord-verification-bot/pkg/verification/types"
)

// --- mocks ---

type mockStore struct{ mock.Mock }

func (m *mockStore) FindVerificationByGuildAndIP(ctx context.Context, guildID string, ip string) (*types.Verification, error) {
	args := m.Called(ctx, guildID, ip)
	if v, _ := args.Get(0).(*types.Verification); v != nil {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) CreateVerification(ctx context.Context, verification types.Verification) error {
	return m.Called(ctx, verification).Error(0)
}

func (m *mockStore) CreateAltAccountFlag(ctx context.Context, flag types.AltAccountFlag) error {
	return m.Called(ctx, flag).Error(0)
}

func (m *mockStore) UpsertUserProfileOnAdmission(ctx context.Context, userID string, username string, discriminator string, ip string, guildID string, at time.Time) error {
	return m.Called(ctx, userID, username, discriminator, ip, guildID, at).Error(0)
}

type mockScorer struct{ mock.Mock }

func (m *mockScorer) Assess(ctx context.Context, ip string) ipreputation.Assessment {
	args := m.Called(ctx, ip)
	return args.Get(0).(ipreputation.Assessment)
}

func confidenceThreshold(v float64) *float64 {
	return &v
}

func testRequest() Request {
	return Request{
		UserID:        "user-1",
		GuildID:       "guild-1",
		Username:      "tester",
		Discriminator: "0420",
		ClientInfo: fingerprint.ClientInfo{
			IP:        "198.51.100.7",
			UserAgent: "UnitTestAgent/1.0",
		},
	}
}

func TestAdmitValidation(t *testing.T) {
	engine := NewEngine(&mockStore{}, nil, EngineConfig{})

	t.Run("missing user id", func(t *testing.T) {
		req := testRequest()
		req.UserID = ""
		_, err := engine.Admit(context.Background(), req)
		assert.ErrorIs(t, err, ErrMissingUserID)
	})

	t.Run("missing guild id", func(t *testing.T) {
		req := testRequest()
		req.GuildID = ""
		_, err := engine.Admit(context.Background(), req)
		assert.ErrorIs(t, err, ErrMissingGuildID)
	})

	t.Run("missing ip", func(t *testing.T) {
		req := testRequest()
		req.ClientInfo.IP = ""
		_, err := engine.Admit(context.Background(), req)
		assert.ErrorIs(t, err, ErrMissingIP)
	})
}

func TestAdmitFirstVerification(t *testing.T) {
	store := &mockStore{}
	store.On("FindVerificationByGuildAndIP", mock.Anything, "guild-1", "198.51.100.7").Return(nil, nil)
	store.On("CreateVerification", mock.Anything, mock.MatchedBy(func(v types.Verification) bool {
		return v.UserID == "user-1" && v.GuildID == "guild-1" && !v.Manual
	})).Return(nil)
	store.On("UpsertUserProfileOnAdmission", mock.Anything, "user-1", "tester", "0420", "198.51.100.7", "guild-1", mock.Anything).Return(nil)

	engine := NewEngine(store, nil, EngineConfig{})

	result, err := engine.Admit(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, STATUS_ADMITTED, result.Status)
	assert.Nil(t, result.Assessment)
	store.AssertExpectations(t)
}

func TestAdmitSameUserAgain(t *testing.T) {
	// A returning user on a known IP always gets a fresh verification record.
	existing := &types.Verification{UserID: "user-1", GuildID: "guild-1"}

	store := &mockStore{}
	store.On("FindVerificationByGuildAndIP", mock.Anything, "guild-1", "198.51.100.7").Return(existing, nil)
	store.On("CreateVerification", mock.Anything, mock.Anything).Return(nil)
	store.On("UpsertUserProfileOnAdmission", mock.Anything, "user-1", "tester", "0420", "198.51.100.7", "guild-1", mock.Anything).Return(nil)

	engine := NewEngine(store, nil, EngineConfig{})

	result, err := engine.Admit(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, STATUS_ADMITTED, result.Status)
	store.AssertNumberOfCalls(t, "CreateVerification", 1)
	store.AssertNotCalled(t, "CreateAltAccountFlag", mock.Anything, mock.Anything)
}

func TestAdmitAltCollision(t *testing.T) {
	existing := &types.Verification{UserID: "other-user", GuildID: "guild-1"}

	store := &mockStore{}
	store.On("FindVerificationByGuildAndIP", mock.Anything, "guild-1", "198.51.100.7").Return(existing, nil)
	store.On("CreateAltAccountFlag", mock.Anything, mock.MatchedBy(func(flag types.AltAccountFlag) bool {
		return flag.MainAccount == "other-user" &&
			flag.AltAccount == "user-1" &&
			flag.GuildID == "guild-1" &&
			flag.IP == "198.51.100.7"
	})).Return(nil)

	engine := NewEngine(store, nil, EngineConfig{})

	result, err := engine.Admit(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, STATUS_ALT_DETECTED, result.Status)
	assert.Equal(t, "other-user", result.MainAccount)
	store.AssertNumberOfCalls(t, "CreateAltAccountFlag", 1)
	store.AssertNotCalled(t, "CreateVerification", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "UpsertUserProfileOnAdmission", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAdmitRiskGate(t *testing.T) {
	config := EngineConfig{RiskCheckEnabled: true, RiskConfidenceThreshold: confidenceThreshold(50)}

	t.Run("rejected above threshold", func(t *testing.T) {
		scorer := &mockScorer{}
		scorer.On("Assess", mock.Anything, "198.51.100.7").Return(ipreputation.Assessment{
			Suspected:  true,
			Confidence: 66.7,
			Checks:     []ipreputation.Verdict{{Source: "iphub", Detected: true}},
		})

		store := &mockStore{}
		engine := NewEngine(store, scorer, config)

		result, err := engine.Admit(context.Background(), testRequest())
		require.NoError(t, err)
		assert.Equal(t, STATUS_VPN_DETECTED, result.Status)
		require.NotNil(t, result.Assessment)
		assert.True(t, result.Assessment.Suspected)
		store.AssertNotCalled(t, "FindVerificationByGuildAndIP", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("admitted exactly at threshold", func(t *testing.T) {
		scorer := &mockScorer{}
		scorer.On("Assess", mock.Anything, "198.51.100.7").Return(ipreputation.Assessment{
			Suspected:  true,
			Confidence: 50,
			Checks:     []ipreputation.Verdict{{Source: "iphub", Detected: true}, {Source: "ip-api", Detected: false}},
		})

		store := &mockStore{}
		store.On("FindVerificationByGuildAndIP", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)
		store.On("CreateVerification", mock.Anything, mock.MatchedBy(func(v types.Verification) bool {
			return v.ClientInfo.VPNCheck != nil && v.ClientInfo.VPNCheck.Confidence == 50
		})).Return(nil)
		store.On("UpsertUserProfileOnAdmission", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

		engine := NewEngine(store, scorer, config)

		result, err := engine.Admit(context.Background(), testRequest())
		require.NoError(t, err)
		assert.Equal(t, STATUS_ADMITTED, result.Status)
		store.AssertExpectations(t)
	})

	t.Run("suspected but not confident", func(t *testing.T) {
		scorer := &mockScorer{}
		scorer.On("Assess", mock.Anything, "198.51.100.7").Return(ipreputation.Assessment{
			Suspected:  true,
			Confidence: 33.3,
			Checks:     []ipreputation.Verdict{{Source: "ip-api", Detected: true}},
		})

		store := &mockStore{}
		store.On("FindVerificationByGuildAndIP", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)
		store.On("CreateVerification", mock.Anything, mock.Anything).Return(nil)
		store.On("UpsertUserProfileOnAdmission", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

		engine := NewEngine(store, scorer, config)

		result, err := engine.Admit(context.Background(), testRequest())
		require.NoError(t, err)
		assert.Equal(t, STATUS_ADMITTED, result.Status)
	})

	t.Run("gate disabled skips scorer", func(t *testing.T) {
		scorer := &mockScorer{}

		store := &mockStore{}
		store.On("FindVerificationByGuildAndIP", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)
		store.On("CreateVerification", mock.Anything, mock.Anything).Return(nil)
		store.On("UpsertUserProfileOnAdmission", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

		engine := NewEngine(store, scorer, EngineConfig{RiskCheckEnabled: false})

		result, err := engine.Admit(context.Background(), testRequest())
		require.NoError(t, err)
		assert.Equal(t, STATUS_ADMITTED, result.Status)
		assert.Nil(t, result.Assessment)
		scorer.AssertNotCalled(t, "Assess", mock.Anything, mock.Anything)
	})
}

func TestAdmitStoreFailures(t *testing.T) {
	storeErr := errors.New("connection reset")

	t.Run("lookup failure", func(t *testing.T) {
		store := &mockStore{}
		store.On("FindVerificationByGuildAndIP", mock.Anything, mock.Anything, mock.Anything).Return(nil, storeErr)

		engine := NewEngine(store, nil, EngineConfig{})
		_, err := engine.Admit(context.Background(), testRequest())
		assert.ErrorIs(t, err, storeErr)
	})

	t.Run("insert failure", func(t *testing.T) {
		store := &mockStore{}
		store.On("FindVerificationByGuildAndIP", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)
		store.On("CreateVerification", mock.Anything, mock.Anything).Return(storeErr)

		engine := NewEngine(store, nil, EngineConfig{})
		_, err := engine.Admit(context.Background(), testRequest())
		assert.ErrorIs(t, err, storeErr)
	})

	t.Run("profile update failure after insert", func(t *testing.T) {
		store := &mockStore{}
		store.On("FindVerificationByGuildAndIP", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)
		store.On("CreateVerification", mock.Anything, mock.Anything).Return(nil)
		store.On("UpsertUserProfileOnAdmission", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(storeErr)

		engine := NewEngine(store, nil, EngineConfig{})
		_, err := engine.Admit(context.Background(), testRequest())
		assert.ErrorIs(t, err, storeErr)
	})
}

func TestDefaultThresholdApplied(t *testing.T) {
	scorer := &mockScorer{}
	scorer.On("Assess", mock.Anything, mock.Anything).Return(ipreputation.Assessment{
		Suspected:  true,
		Confidence: 100,
		Checks:     []ipreputation.Verdict{{Source: "proxycheck", Detected: true}},
	})

	engine := NewEngine(&mockStore{}, scorer, EngineConfig{RiskCheckEnabled: true})

	result, err := engine.Admit(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, STATUS_VPN_DETECTED, result.Status)
}

func TestExplicitZeroThreshold(t *testing.T) {
	// An explicit 0 is not the same as unset: any suspected assessment with
	// positive confidence is rejected.
	scorer := &mockScorer{}
	scorer.On("Assess", mock.Anything, mock.Anything).Return(ipreputation.Assessment{
		Suspected:  true,
		Confidence: 25,
		Checks:     []ipreputation.Verdict{{Source: "ip-api", Detected: true}},
	})

	engine := NewEngine(&mockStore{}, scorer, EngineConfig{
		RiskCheckEnabled:        true,
		RiskConfidenceThreshold: confidenceThreshold(0),
	})

	result, err := engine.Admit(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, STATUS_VPN_DETECTED, result.Status)
}
