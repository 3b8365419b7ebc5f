package mockapi

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// hashPassword hashes a seed password with bcrypt at the minimum cost; the
// fixture is rebuilt on every start.
func hashPassword(password string) (string, error) {
	if len(password) == 0 {
		return "", errors.New("mockapi: password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func verifyPassword(hash, password string) error {
	if hash == "" {
		return errors.New("mockapi: password hash is empty")
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
