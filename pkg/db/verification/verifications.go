package verification

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Perpelix/discord-verification-bot/pkg/verification/types"
)

var indexesForVerificationsCollection = []mongo.IndexModel{
	{
		Keys: bson.D{
			{Key: "guild_id", Value: 1},
			{Key: "client_info.ip", Value: 1},
		},
		Options: options.Index().SetName("guild_id_1_client_info.ip_1"),
	},
	{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
		},
		Options: options.Index().SetName("user_id_1"),
	},
	{
		Keys: bson.D{
			{Key: "client_info.ip", Value: 1},
		},
		Options: options.Index().SetName("client_info.ip_1"),
	},
	{
		Keys: bson.D{
			{Key: "verified_at", Value: -1},
		},
		Options: options.Index().SetName("verified_at_-1"),
	},
}

func (dbService *VerificationDBService) CreateDefaultIndexesForVerificationsCollection() {
	ctx, cancel := dbService.getContext(nil)
	defer cancel()

	_, err := dbService.collectionVerifications().Indexes().CreateMany(ctx, indexesForVerificationsCollection)
	if err != nil {
		slog.Error("Error creating indexes for verifications", slog.String("error", err.Error()))
	}
}

func (dbService *VerificationDBService) CreateVerification(ctx context.Context, verification types.Verification) error {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	if verification.ID.IsZero() {
		verification.ID = primitive.NewObjectID()
	}
	_, err := dbService.collectionVerifications().InsertOne(ctx, verification)
	return err
}

// CreateManualVerification records a verification performed by a moderator
// through the bot, without a client fingerprint.
func (dbService *VerificationDBService) CreateManualVerification(ctx context.Context, userID string, guildID string, username string, discriminator string) error {
	return dbService.CreateVerification(ctx, types.Verification{
		UserID:        userID,
		GuildID:       guildID,
		Username:      username,
		Discriminator: discriminator,
		VerifiedAt:    time.Now(),
		Manual:        true,
	})
}

// FindVerificationByGuildAndIP returns nil without error when no verification
// exists for the pair.
func (dbService *VerificationDBService) FindVerificationByGuildAndIP(ctx context.Context, guildID string, ip string) (*types.Verification, error) {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	filter := bson.M{
		"guild_id":       guildID,
		"client_info.ip": ip,
	}

	var verification types.Verification
	err := dbService.collectionVerifications().FindOne(ctx, filter).Decode(&verification)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &verification, nil
}

func (dbService *VerificationDBService) FindVerificationByUserAndGuild(ctx context.Context, userID string, guildID string) (*types.Verification, error) {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	filter := bson.M{
		"user_id":  userID,
		"guild_id": guildID,
	}

	var verification types.Verification
	err := dbService.collectionVerifications().FindOne(ctx, filter).Decode(&verification)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &verification, nil
}

func (dbService *VerificationDBService) FindVerificationsByUserID(ctx context.Context, userID string) ([]types.Verification, error) {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	filter := bson.M{"user_id": userID}
	cursor, err := dbService.collectionVerifications().Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	verifications := []types.Verification{}
	if err := cursor.All(ctx, &verifications); err != nil {
		return nil, err
	}
	return verifications, nil
}

// FindVerificationsByIPs returns verifications whose IP is in ips, excluding
// the given user.
func (dbService *VerificationDBService) FindVerificationsByIPs(ctx context.Context, ips []string, excludeUserID string) ([]types.Verification, error) {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	filter := bson.M{
		"client_info.ip": bson.M{"$in": ips},
		"user_id":        bson.M{"$ne": excludeUserID},
	}
	cursor, err := dbService.collectionVerifications().Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	verifications := []types.Verification{}
	if err := cursor.All(ctx, &verifications); err != nil {
		return nil, err
	}
	return verifications, nil
}

func (dbService *VerificationDBService) FindVerificationsByUserAndIPs(ctx context.Context, userID string, ips []string) ([]types.Verification, error) {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	filter := bson.M{
		"user_id":        userID,
		"client_info.ip": bson.M{"$in": ips},
	}
	cursor, err := dbService.collectionVerifications().Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	verifications := []types.Verification{}
	if err := cursor.All(ctx, &verifications); err != nil {
		return nil, err
	}
	return verifications, nil
}

// CountVerifications counts all verifications, or only the given guild's when
// guildID is not empty.
func (dbService *VerificationDBService) CountVerifications(ctx context.Context, guildID string) (int64, error) {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	filter := bson.M{}
	if guildID != "" {
		filter["guild_id"] = guildID
	}
	return dbService.collectionVerifications().CountDocuments(ctx, filter)
}

// GetVerificationsPaginated lists verifications for the dashboard, newest
// first.
func (dbService *VerificationDBService) GetVerificationsPaginated(ctx context.Context, filter bson.M, page int64, limit int64) ([]types.Verification, *PaginationInfos, error) {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	if filter == nil {
		filter = bson.M{}
	}

	totalCount, err := dbService.collectionVerifications().CountDocuments(ctx, filter)
	if err != nil {
		return nil, nil, err
	}

	paginationInfo := prepPaginationInfos(totalCount, page, limit)
	skip := (paginationInfo.CurrentPage - 1) * paginationInfo.PageSize

	opts := options.Find().
		SetSort(bson.M{"verified_at": -1}).
		SetSkip(skip).
		SetLimit(paginationInfo.PageSize)

	cursor, err := dbService.collectionVerifications().Find(ctx, filter, opts)
	if err != nil {
		return nil, nil, err
	}
	defer cursor.Close(ctx)

	verifications := []types.Verification{}
	if err := cursor.All(ctx, &verifications); err != nil {
		return nil, nil, err
	}
	return verifications, paginationInfo, nil
}

func (dbService *VerificationDBService) GetRecentVerifications(ctx context.Context, limit int64) ([]types.Verification, error) {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	opts := options.Find().
		SetSort(bson.M{"verified_at": -1}).
		SetLimit(limit)

	cursor, err := dbService.collectionVerifications().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	verifications := []types.Verification{}
	if err := cursor.All(ctx, &verifications); err != nil {
		return nil, err
	}
	return verifications, nil
}
