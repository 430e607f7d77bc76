package types

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type GuildVerificationSettings struct {
	Enabled          bool   `bson:"enabled" json:"enabled"`
	VerifyChannelID  string `bson:"verify_channel_id,omitempty" json:"verifyChannelId,omitempty"`
	VerifiedRoleID   string `bson:"verified_role_id,omitempty" json:"verifiedRoleId,omitempty"`
	UnverifiedRoleID string `bson:"unverified_role_id,omitempty" json:"unverifiedRoleId,omitempty"`
}

type GuildSettings struct {
	MaxWarns int `bson:"max_warns" json:"maxWarns"`
}

type Warn struct {
	Reason    string    `bson:"reason" json:"reason"`
	Moderator string    `bson:"moderator" json:"moderator"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// Guild holds the per-server configuration managed by the bot and edited
// through the dashboard. Warns are keyed by user id.
type Guild struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	GuildID      string                    `bson:"guild_id" json:"guildId"`
	Verification GuildVerificationSettings `bson:"verification" json:"verification"`
	Warns        map[string][]Warn         `bson:"warns,omitempty" json:"warns,omitempty"`
	Settings     GuildSettings             `bson:"settings" json:"settings"`
}

// TotalWarns counts warns over all users of the guild.
func (g Guild) TotalWarns() int {
	total := 0
	for _, warns := range g.Warns {
		total += len(warns)
	}
	return total
}
