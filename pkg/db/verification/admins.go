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

var indexesForAdminsCollection = []mongo.IndexModel{
	{
		Keys: bson.D{
			{Key: "username", Value: 1},
		},
		Options: options.Index().SetUnique(true).SetName("username_1"),
	},
}

func (dbService *VerificationDBService) CreateDefaultIndexesForAdminsCollection() {
	ctx, cancel := dbService.getContext(nil)
	defer cancel()

	_, err := dbService.collectionAdmins().Indexes().CreateMany(ctx, indexesForAdminsCollection)
	if err != nil {
		slog.Error("Error creating indexes for admins", slog.String("error", err.Error()))
	}
}

// GetAdminByUsername returns mongo.ErrNoDocuments when the admin does not
// exist, so callers can distinguish wrong credentials from store failures.
func (dbService *VerificationDBService) GetAdminByUsername(ctx context.Context, username string) (types.Admin, error) {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	var admin types.Admin
	err := dbService.collectionAdmins().FindOne(ctx, bson.M{"username": username}).Decode(&admin)
	return admin, err
}

func (dbService *VerificationDBService) CreateAdmin(ctx context.Context, admin types.Admin) (types.Admin, error) {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	if admin.ID.IsZero() {
		admin.ID = primitive.NewObjectID()
	}
	_, err := dbService.collectionAdmins().InsertOne(ctx, admin)
	return admin, err
}
