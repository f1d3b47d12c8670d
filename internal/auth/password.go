package auth

import "golang.org/x/crypto/bcrypt"

// PasswordCost matches the 10 salt rounds used for existing hashes
const PasswordCost = 10

// HashPassword returns a salted bcrypt hash of plain
func HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword reports whether plain matches hash
func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
