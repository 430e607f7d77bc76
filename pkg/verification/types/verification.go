package types

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Perpelix/discord-verification-bot/pkg/fingerprint"
	"github.com/Perpelix/discord-verification-bot/pkg/ipreputation"
)

// ClientInfo is the fingerprint stored with a verification, together with the
// risk assessment computed for the same attempt.
type ClientInfo struct {
	fingerprint.ClientInfo `bson:",inline" json:",inline"`

	VPNCheck *ipreputation.Assessment `bson:"vpn_check,omitempty" json:"vpnCheck,omitempty"`
}

type Verification struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	UserID        string     `bson:"user_id" json:"userId"`
	GuildID       string     `bson:"guild_id" json:"guildId"`
	Username      string     `bson:"username" json:"username"`
	Discriminator string     `bson:"discriminator" json:"discriminator"`
	ClientInfo    ClientInfo `bson:"client_info" json:"clientInfo"`
	VerifiedAt    time.Time  `bson:"verified_at" json:"verifiedAt"`
	Manual        bool       `bson:"manual" json:"manual"`
}

// AltAccountFlag is one audit entry for a rejected collision. Flags are
// append-only and not deduplicated across repeated attempts.
type AltAccountFlag struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	MainAccount string    `bson:"main_account" json:"mainAccount"`
	AltAccount  string    `bson:"alt_account" json:"altAccount"`
	GuildID     string    `bson:"guild_id" json:"guildId"`
	IP          string    `bson:"ip" json:"ip"`
	DetectedAt  time.Time `bson:"detected_at" json:"detectedAt"`
}
