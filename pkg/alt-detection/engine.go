package altdetection

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Perpelix/discord-verification-bot/pkg/verification/types"
)

var ErrEmptyQuery = errors.New("search query is required")

// Store is the read surface for the correlation queries.
type Store interface {
	FindUserProfilesByQuery(ctx context.Context, query string) ([]types.UserProfile, error)
	GetUserProfile(ctx context.Context, userID string) (*types.UserProfile, error)
	FindVerificationsByUserID(ctx context.Context, userID string) ([]types.Verification, error)
	FindVerificationsByIPs(ctx context.Context, ips []string, excludeUserID string) ([]types.Verification, error)
	FindVerificationsByUserAndIPs(ctx context.Context, userID string, ips []string) ([]types.Verification, error)
}

type MainAccount struct {
	UserID        string   `json:"userId"`
	Username      string   `json:"username"`
	Discriminator string   `json:"discriminator"`
	IPs           []string `json:"ips"`
	Servers       []string `json:"servers"`
}

type AltAccount struct {
	UserID          string   `json:"userId"`
	Username        string   `json:"username"`
	Discriminator   string   `json:"discriminator"`
	SharedIPs       []string `json:"sharedIps"`
	ServersInCommon []string `json:"serversInCommon"`
}

// Report lists every account that ever shared an IP with the matched account.
type Report struct {
	MainAccount MainAccount  `json:"mainAccount"`
	AltAccounts []AltAccount `json:"altAccounts"`
	TotalAlts   int          `json:"totalAlts"`
}

// Engine performs the cross-guild shared-IP correlation for the admin search.
// It only reads; searches never create verifications or alt flags.
type Engine struct {
	store Store
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// Search matches user profiles by username or email (case-insensitive
// substring) and builds a shared-IP report for each match. This re-scans the
// verification collection per candidate, which is fine at moderate scale; an
// IP index would be needed for very large datasets.
func (e *Engine) Search(ctx context.Context, query string) ([]Report, error) {
	if query == "" {
		return nil, ErrEmptyQuery
	}

	profiles, err := e.store.FindUserProfilesByQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	reports := make([]Report, 0, len(profiles))
	for _, profile := range profiles {
		report, err := e.buildReport(ctx, profile)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func (e *Engine) buildReport(ctx context.Context, profile types.UserProfile) (Report, error) {
	verifications, err := e.store.FindVerificationsByUserID(ctx, profile.UserID)
	if err != nil {
		return Report{}, err
	}

	ips := distinctIPs(verifications)
	servers := make([]string, 0, len(verifications))
	for _, v := range verifications {
		servers = append(servers, v.GuildID)
	}

	report := Report{
		MainAccount: MainAccount{
			UserID:        profile.UserID,
			Username:      profile.Username,
			Discriminator: profile.Discriminator,
			IPs:           ips,
			Servers:       servers,
		},
		AltAccounts: []AltAccount{},
	}
	if len(ips) == 0 {
		return report, nil
	}

	candidates, err := e.store.FindVerificationsByIPs(ctx, ips, profile.UserID)
	if err != nil {
		return Report{}, err
	}

	for _, candidateID := range distinctUserIDs(candidates) {
		alt, err := e.resolveAltAccount(ctx, candidateID, ips)
		if err != nil {
			return Report{}, err
		}
		report.AltAccounts = append(report.AltAccounts, alt)
	}
	report.TotalAlts = len(report.AltAccounts)
	return report, nil
}

// resolveAltAccount recomputes the shared-IP evidence for one candidate pair
// so the report carries exactly which IPs and guilds the two accounts have in
// common.
func (e *Engine) resolveAltAccount(ctx context.Context, candidateID string, ips []string) (AltAccount, error) {
	shared, err := e.store.FindVerificationsByUserAndIPs(ctx, candidateID, ips)
	if err != nil {
		return AltAccount{}, err
	}

	alt := AltAccount{
		UserID:          candidateID,
		Username:        "Unknown",
		Discriminator:   "0000",
		SharedIPs:       distinctIPs(shared),
		ServersInCommon: distinctGuildIDs(shared),
	}

	profile, err := e.store.GetUserProfile(ctx, candidateID)
	if err != nil {
		// Display data only; the correlation evidence stands on its own.
		slog.Warn("could not resolve profile for alt candidate", slog.String("userID", candidateID), slog.String("error", err.Error()))
		return alt, nil
	}
	if profile != nil {
		alt.Username = profile.Username
		alt.Discriminator = profile.Discriminator
	}
	return alt, nil
}

func distinctIPs(verifications []types.Verification) []string {
	seen := map[string]bool{}
	ips := []string{}
	for _, v := range verifications {
		ip := v.ClientInfo.IP
		if ip == "" || seen[ip] {
			continue
		}
		seen[ip] = true
		ips = append(ips, ip)
	}
	return ips
}

func distinctUserIDs(verifications []types.Verification) []string {
	seen := map[string]bool{}
	ids := []string{}
	for _, v := range verifications {
		if v.UserID == "" || seen[v.UserID] {
			continue
		}
		seen[v.UserID] = true
		ids = append(ids, v.UserID)
	}
	return ids
}

func distinctGuildIDs(verifications []types.Verification) []string {
	seen := map[string]bool{}
	ids := []string{}
	for _, v := range verifications {
		if v.GuildID == "" || seen[v.GuildID] {
			continue
		}
		seen[v.GuildID] = true
		ids = append(ids, v.GuildID)
	}
	return ids
}
