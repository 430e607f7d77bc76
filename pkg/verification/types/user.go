package types

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Keep only the most recent IPs on the user profile.
const MAX_RECENT_IPS_PER_USER = 10

type VerificationRef struct {
	GuildID   string    `bson:"guild_id" json:"guildId"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// UserProfile is the cross-guild aggregate for one Discord account, updated on
// every successful admission.
type UserProfile struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	UserID        string            `bson:"user_id" json:"userId"`
	Username      string            `bson:"username" json:"username"`
	Discriminator string            `bson:"discriminator" json:"discriminator"`
	Email         string            `bson:"email,omitempty" json:"email,omitempty"`
	LastSeen      time.Time         `bson:"last_seen" json:"lastSeen"`
	IPs           []string          `bson:"ips" json:"ips"`
	Verifications []VerificationRef `bson:"verifications" json:"verifications"`
}
