package auth

import "golang.org/x/crypto/bcrypt"

// dummyHash is compared against when no user matches, so a failed login
// costs the same whether or not the email exists.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("lifesense-placeholder"), bcrypt.DefaultCost)

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// BurnPasswordCheck runs one comparison against a fixed hash.
func BurnPasswordCheck(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}
