package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes a plaintext password with the bcrypt cost taken from
// AuthConfig. Costs outside bcrypt's supported range fall back to the library
// default rather than failing signup.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword checks a login password against the stored hash. Callers
// collapse any failure into the generic credentials error; the cause is never
// surfaced.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
