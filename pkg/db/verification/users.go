package verification

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Perpelix/discord-verification-bot/pkg/verification/types"
)

var indexesForUsersCollection = []mongo.IndexModel{
	{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
		},
		Options: options.Index().SetUnique(true).SetName("user_id_1"),
	},
	{
		Keys: bson.D{
			{Key: "username", Value: 1},
		},
		Options: options.Index().SetName("username_1"),
	},
}

func (dbService *VerificationDBService) CreateDefaultIndexesForUsersCollection() {
	ctx, cancel := dbService.getContext(nil)
	defer cancel()

	_, err := dbService.collectionUsers().Indexes().CreateMany(ctx, indexesForUsersCollection)
	if err != nil {
		slog.Error("Error creating indexes for users", slog.String("error", err.Error()))
	}
}

// userProfileAdmissionUpdate builds the update document applied to the user
// profile after a successful admission: identity fields and last_seen are set,
// the IP is appended with only the most recent MAX_RECENT_IPS_PER_USER entries
// kept, and the verification ref is appended unbounded.
func userProfileAdmissionUpdate(username string, discriminator string, ip string, guildID string, at time.Time) bson.M {
	return bson.M{
		"$set": bson.M{
			"username":      username,
			"discriminator": discriminator,
			"last_seen":     at,
		},
		"$push": bson.M{
			"ips": bson.M{
				"$each":  bson.A{ip},
				"$slice": -types.MAX_RECENT_IPS_PER_USER,
			},
			"verifications": types.VerificationRef{
				GuildID:   guildID,
				Timestamp: at,
			},
		},
	}
}

func (dbService *VerificationDBService) UpsertUserProfileOnAdmission(ctx context.Context, userID string, username string, discriminator string, ip string, guildID string, at time.Time) error {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	filter := bson.M{"user_id": userID}
	update := userProfileAdmissionUpdate(username, discriminator, ip, guildID, at)

	_, err := dbService.collectionUsers().UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// GetUserProfile returns nil without error when the user is unknown.
func (dbService *VerificationDBService) GetUserProfile(ctx context.Context, userID string) (*types.UserProfile, error) {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	var profile types.UserProfile
	err := dbService.collectionUsers().FindOne(ctx, bson.M{"user_id": userID}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// FindUserProfilesByQuery matches username or email by case-insensitive
// substring.
func (dbService *VerificationDBService) FindUserProfilesByQuery(ctx context.Context, query string) ([]types.UserProfile, error) {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	filter := bson.M{
		"$or": bson.A{
			bson.M{"username": bson.M{"$regex": query, "$options": "i"}},
			bson.M{"email": bson.M{"$regex": query, "$options": "i"}},
		},
	}

	cursor, err := dbService.collectionUsers().Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	profiles := []types.UserProfile{}
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (dbService *VerificationDBService) CountUserProfiles(ctx context.Context) (int64, error) {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	return dbService.collectionUsers().CountDocuments(ctx, bson.M{})
}
