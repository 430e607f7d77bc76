package verification

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Perpelix/discord-verification-bot/pkg/db"
)

// collection names
const (
	COLLECTION_NAME_VERIFICATIONS = "verifications"
	COLLECTION_NAME_ALT_ACCOUNTS  = "alt_accounts"
	COLLECTION_NAME_USERS         = "users"
	COLLECTION_NAME_GUILDS        = "guilds"
	COLLECTION_NAME_ADMINS        = "admins"
)

type VerificationDBService struct {
	DBClient     *mongo.Client
	timeout      int
	DBNamePrefix string
}

func NewVerificationDBService(configs db.DBConfig) (*VerificationDBService, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(configs.Timeout)*time.Second)
	defer cancel()

	dbClient, err := mongo.Connect(ctx,
		options.Client().ApplyURI(configs.URI),
		options.Client().SetMaxConnIdleTime(time.Duration(configs.IdleConnTimeout)*time.Second),
		options.Client().SetMaxPoolSize(configs.MaxPoolSize),
	)

	if err != nil {
		return nil, err
	}

	ctx, conCancel := context.WithTimeout(context.Background(), time.Duration(configs.Timeout)*time.Second)
	err = dbClient.Ping(ctx, nil)
	defer conCancel()

	if err != nil {
		return nil, err
	}

	vDBSc := &VerificationDBService{
		DBClient:     dbClient,
		timeout:      configs.Timeout,
		DBNamePrefix: configs.DBNamePrefix,
	}

	if configs.RunIndexCreation {
		vDBSc.CreateDefaultIndexes()
	}
	return vDBSc, nil
}

func (dbService *VerificationDBService) getDBName() string {
	return dbService.DBNamePrefix + "verification_bot"
}

func (dbService *VerificationDBService) getContext(parent context.Context) (ctx context.Context, cancel context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, time.Duration(dbService.timeout)*time.Second)
}

func (dbService *VerificationDBService) collectionVerifications() *mongo.Collection {
	return dbService.DBClient.Database(dbService.getDBName()).Collection(COLLECTION_NAME_VERIFICATIONS)
}

func (dbService *VerificationDBService) collectionAltAccounts() *mongo.Collection {
	return dbService.DBClient.Database(dbService.getDBName()).Collection(COLLECTION_NAME_ALT_ACCOUNTS)
}

func (dbService *VerificationDBService) collectionUsers() *mongo.Collection {
	return dbService.DBClient.Database(dbService.getDBName()).Collection(COLLECTION_NAME_USERS)
}

func (dbService *VerificationDBService) collectionGuilds() *mongo.Collection {
	return dbService.DBClient.Database(dbService.getDBName()).Collection(COLLECTION_NAME_GUILDS)
}

func (dbService *VerificationDBService) collectionAdmins() *mongo.Collection {
	return dbService.DBClient.Database(dbService.getDBName()).Collection(COLLECTION_NAME_ADMINS)
}

func (dbService *VerificationDBService) CreateDefaultIndexes() {
	dbService.CreateDefaultIndexesForVerificationsCollection()
	dbService.CreateDefaultIndexesForAltAccountsCollection()
	dbService.CreateDefaultIndexesForUsersCollection()
	dbService.CreateDefaultIndexesForGuildsCollection()
	dbService.CreateDefaultIndexesForAdminsCollection()
}
