package verification

import (
	"context"
	"errors"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Perpelix/discord-verification-bot/pkg/verification/types"
)

var indexesForGuildsCollection = []mongo.IndexModel{
	{
		Keys: bson.D{
			{Key: "guild_id", Value: 1},
		},
		Options: options.Index().SetUnique(true).SetName("guild_id_1"),
	},
}

func (dbService *VerificationDBService) CreateDefaultIndexesForGuildsCollection() {
	ctx, cancel := dbService.getContext(nil)
	defer cancel()

	_, err := dbService.collectionGuilds().Indexes().CreateMany(ctx, indexesForGuildsCollection)
	if err != nil {
		slog.Error("Error creating indexes for guilds", slog.String("error", err.Error()))
	}
}

// GetGuild returns nil without error when the guild is unknown.
func (dbService *VerificationDBService) GetGuild(ctx context.Context, guildID string) (*types.Guild, error) {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	var guild types.Guild
	err := dbService.collectionGuilds().FindOne(ctx, bson.M{"guild_id": guildID}).Decode(&guild)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &guild, nil
}

func (dbService *VerificationDBService) ListGuilds(ctx context.Context) ([]types.Guild, error) {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	cursor, err := dbService.collectionGuilds().Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	guilds := []types.Guild{}
	if err := cursor.All(ctx, &guilds); err != nil {
		return nil, err
	}
	return guilds, nil
}

// UpdateGuildSettings upserts the dashboard-editable parts of the guild
// document; bot-owned fields (warns) are left untouched.
func (dbService *VerificationDBService) UpdateGuildSettings(ctx context.Context, guildID string, verification types.GuildVerificationSettings, settings types.GuildSettings) error {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	filter := bson.M{"guild_id": guildID}
	update := bson.M{
		"$set": bson.M{
			"verification": verification,
			"settings":     settings,
		},
	}

	_, err := dbService.collectionGuilds().UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (dbService *VerificationDBService) CountGuilds(ctx context.Context) (int64, error) {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	return dbService.collectionGuilds().CountDocuments(ctx, bson.M{})
}
