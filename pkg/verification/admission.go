package verification

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Perpelix/discord-verification-bot/pkg/fingerprint"
	"github.com/Perpelix/discord-verification-bot/pkg/ipreputation"
	"github.com/Perpelix/discord-verification-bot/pkg/verification/types"
)

// Terminal admission outcomes. These are business results, not errors.
const (
	STATUS_ADMITTED     = "admitted"
	STATUS_VPN_DETECTED = "vpn_detected"
	STATUS_ALT_DETECTED = "alt_detected"
)

const DEFAULT_RISK_CONFIDENCE_THRESHOLD = 50

// Caller errors: the request was malformed, no admission decision was made and
// nothing was written.
var (
	ErrMissingUserID  = errors.New("userId is required")
	ErrMissingGuildID = errors.New("guildId is required")
	ErrMissingIP      = errors.New("client IP is required")
)

// Store is the persistence surface the admission engine needs.
type Store interface {
	FindVerificationByGuildAndIP(ctx context.Context, guildID string, ip string) (*types.Verification, error)
	CreateVerification(ctx context.Context, verification types.Verification) error
	CreateAltAccountFlag(ctx context.Context, flag types.AltAccountFlag) error
	UpsertUserProfileOnAdmission(ctx context.Context, userID string, username string, discriminator string, ip string, guildID string, at time.Time) error
}

// RiskScorer is the VPN/proxy gate; see pkg/ipreputation.
type RiskScorer interface {
	Assess(ctx context.Context, ip string) ipreputation.Assessment
}

type EngineConfig struct {
	// RiskCheckEnabled toggles the VPN/proxy gate for deployments that run
	// without reputation sources.
	RiskCheckEnabled bool `json:"risk_check_enabled" yaml:"risk_check_enabled"`

	// Attempts with a suspected assessment strictly above this confidence are
	// rejected. Exactly at the threshold is still admitted. Unset means the
	// default; an explicit 0 rejects any suspected assessment with positive
	// confidence.
	RiskConfidenceThreshold *float64 `json:"risk_confidence_threshold" yaml:"risk_confidence_threshold"`

	// SerializeAdmissions closes the check-then-insert race between concurrent
	// attempts for the same (guild, IP) with an in-process lock. Only effective
	// for a single API instance; off by default to match the reference
	// behavior.
	SerializeAdmissions bool `json:"serialize_admissions" yaml:"serialize_admissions"`
}

type Request struct {
	UserID        string
	GuildID       string
	Username      string
	Discriminator string
	ClientInfo    fingerprint.ClientInfo
}

type Result struct {
	Status     string
	Assessment *ipreputation.Assessment
	// MainAccount is set on alt rejections: the user id already bound to the
	// IP in this guild. Not exposed to end users.
	MainAccount string
}

// Engine decides admit/reject for verification attempts and persists the
// outcome.
type Engine struct {
	store         Store
	scorer        RiskScorer
	config        EngineConfig
	riskThreshold float64

	admissionLocks sync.Map
}

func NewEngine(store Store, scorer RiskScorer, config EngineConfig) *Engine {
	riskThreshold := float64(DEFAULT_RISK_CONFIDENCE_THRESHOLD)
	if config.RiskConfidenceThreshold != nil {
		riskThreshold = *config.RiskConfidenceThreshold
	}
	return &Engine{
		store:         store,
		scorer:        scorer,
		config:        config,
		riskThreshold: riskThreshold,
	}
}

// Admit runs one verification attempt through the risk gate and the collision
// check. Returned errors are either caller errors (see ErrMissing*) or store
// failures; business rejections come back as a Result with a non-admitted
// status and a nil error.
func (e *Engine) Admit(ctx context.Context, req Request) (Result, error) {
	if req.UserID == "" {
		return Result{}, ErrMissingUserID
	}
	if req.GuildID == "" {
		return Result{}, ErrMissingGuildID
	}
	if req.ClientInfo.IP == "" {
		return Result{}, ErrMissingIP
	}

	var assessment *ipreputation.Assessment
	if e.config.RiskCheckEnabled && e.scorer != nil {
		a := e.scorer.Assess(ctx, req.ClientInfo.IP)
		assessment = &a

		if a.Suspected && a.Confidence > e.riskThreshold {
			slog.Info("verification rejected: VPN or proxy detected",
				slog.String("userID", req.UserID),
				slog.String("guildID", req.GuildID),
				slog.Float64("confidence", a.Confidence))
			return Result{Status: STATUS_VPN_DETECTED, Assessment: assessment}, nil
		}
	}

	if e.config.SerializeAdmissions {
		unlock := e.lockAdmissionKey(req.GuildID + "|" + req.ClientInfo.IP)
		defer unlock()
	}

	existing, err := e.store.FindVerificationByGuildAndIP(ctx, req.GuildID, req.ClientInfo.IP)
	if err != nil {
		return Result{}, err
	}

	now := time.Now()
	if existing != nil && existing.UserID != req.UserID {
		flag := types.AltAccountFlag{
			MainAccount: existing.UserID,
			AltAccount:  req.UserID,
			GuildID:     req.GuildID,
			IP:          req.ClientInfo.IP,
			DetectedAt:  now,
		}
		if err := e.store.CreateAltAccountFlag(ctx, flag); err != nil {
			return Result{}, err
		}
		slog.Info("verification rejected: alt account detected",
			slog.String("userID", req.UserID),
			slog.String("mainAccount", existing.UserID),
			slog.String("guildID", req.GuildID))
		return Result{
			Status:      STATUS_ALT_DETECTED,
			Assessment:  assessment,
			MainAccount: existing.UserID,
		}, nil
	}

	verification := types.Verification{
		UserID:        req.UserID,
		GuildID:       req.GuildID,
		Username:      req.Username,
		Discriminator: req.Discriminator,
		ClientInfo: types.ClientInfo{
			ClientInfo: req.ClientInfo,
			VPNCheck:   assessment,
		},
		VerifiedAt: now,
		Manual:     false,
	}
	if err := e.store.CreateVerification(ctx, verification); err != nil {
		return Result{}, err
	}

	if err := e.store.UpsertUserProfileOnAdmission(ctx, req.UserID, req.Username, req.Discriminator, req.ClientInfo.IP, req.GuildID, now); err != nil {
		// The verification itself is durable at this point; report the partial
		// failure instead of pretending the profile was updated.
		slog.Error("failed to update user profile after admission",
			slog.String("userID", req.UserID),
			slog.String("error", err.Error()))
		return Result{}, err
	}

	return Result{Status: STATUS_ADMITTED, Assessment: assessment}, nil
}

// lockAdmissionKey serializes attempts for one (guild, IP) pair. Mutexes are
// kept for the process lifetime; dropping them on unlock would let a waiter
// and a newcomer hold two different locks for the same key.
func (e *Engine) lockAdmissionKey(key string) func() {
	value, _ := e.admissionLocks.LoadOrStore(key, &sync.Mutex{})
	mutex := value.(*sync.Mutex)
	mutex.Lock()
	return mutex.Unlock
}
