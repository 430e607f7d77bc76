package pwhash

import (
	"golang.org/x/crypto/bcrypt"
)

const DEFAULT_BCRYPT_COST = 10

var bcryptCost = DEFAULT_BCRYPT_COST

// InitBcryptCost overrides the hashing cost, e.g. from service config.
func InitBcryptCost(cost int) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DEFAULT_BCRYPT_COST
	}
	bcryptCost = cost
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func ComparePasswordWithHash(hash string, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err != nil {
		return false, err
	}
	return true, nil
}
