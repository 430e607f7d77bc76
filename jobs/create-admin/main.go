package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Perpelix/discord-verification-bot/pkg/pwhash"
	"github.com/Perpelix/discord-verification-bot/pkg/verification/types"
)

const (
	DEFAULT_ADMIN_ROLE = "admin"

	MIN_PASSWORD_LENGTH = 8
)

func main() {
	username := flag.String("username", "", "username for the new admin account")
	password := flag.String("password", "", "password for the new admin account (prompted if empty)")
	role := flag.String("role", DEFAULT_ADMIN_ROLE, "role for the new admin account")
	flag.Parse()

	reader := bufio.NewReader(os.Stdin)

	if *username == "" {
		*username = promptLine(reader, "Username: ")
	}
	if *username == "" {
		slog.Error("Username must not be empty")
		os.Exit(1)
	}

	if *password == "" {
		*password = promptLine(reader, "Password: ")
	}
	if len(*password) < MIN_PASSWORD_LENGTH {
		slog.Error("Password too short", slog.Int("minLength", MIN_PASSWORD_LENGTH))
		os.Exit(1)
	}

	ctx := context.Background()

	// Refuse to overwrite an existing account
	_, err := verificationDBService.GetAdminByUsername(ctx, *username)
	if err == nil {
		slog.Error("Admin account already exists", slog.String("username", *username))
		os.Exit(1)
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		slog.Error("Error looking up admin account", slog.String("error", err.Error()))
		os.Exit(1)
	}

	hashedPassword, err := pwhash.HashPassword(*password)
	if err != nil {
		slog.Error("Error hashing password", slog.String("error", err.Error()))
		os.Exit(1)
	}

	admin, err := verificationDBService.CreateAdmin(ctx, types.Admin{
		Username:  *username,
		Password:  hashedPassword,
		Role:      *role,
		CreatedAt: time.Now(),
	})
	if err != nil {
		slog.Error("Error creating admin account", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("Admin account created", slog.String("username", admin.Username), slog.String("id", admin.ID.Hex()))
}

func promptLine(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	line, err := reader.ReadString('\n')
	if err != nil {
		return ""
	}
	return strings.TrimSpace(line)
}
