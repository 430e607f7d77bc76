package verification

import (
	"context"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Perpelix/discord-verification-bot/pkg/verification/types"
)

var indexesForAltAccountsCollection = []mongo.IndexModel{
	{
		Keys: bson.D{
			{Key: "guild_id", Value: 1},
		},
		Options: options.Index().SetName("guild_id_1"),
	},
	{
		Keys: bson.D{
			{Key: "detected_at", Value: -1},
		},
		Options: options.Index().SetName("detected_at_-1"),
	},
}

func (dbService *VerificationDBService) CreateDefaultIndexesForAltAccountsCollection() {
	ctx, cancel := dbService.getContext(nil)
	defer cancel()

	_, err := dbService.collectionAltAccounts().Indexes().CreateMany(ctx, indexesForAltAccountsCollection)
	if err != nil {
		slog.Error("Error creating indexes for alt_accounts", slog.String("error", err.Error()))
	}
}

func (dbService *VerificationDBService) CreateAltAccountFlag(ctx context.Context, flag types.AltAccountFlag) error {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	if flag.ID.IsZero() {
		flag.ID = primitive.NewObjectID()
	}
	_, err := dbService.collectionAltAccounts().InsertOne(ctx, flag)
	return err
}

func (dbService *VerificationDBService) CountAltAccountFlags(ctx context.Context, guildID string) (int64, error) {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	filter := bson.M{}
	if guildID != "" {
		filter["guild_id"] = guildID
	}
	return dbService.collectionAltAccounts().CountDocuments(ctx, filter)
}
