package password

import "golang.org/x/crypto/bcrypt"

// Hasher is the one-way password hashing contract. Hash salts freshly on
// every call, so two hashes of the same input differ; Verify compares in
// time independent of where a mismatch occurs.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// BcryptHasher implements Hasher over bcrypt with a tunable work factor.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a BcryptHasher with the given cost. Costs outside
// bcrypt's supported range fall back to bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify never errors: a malformed digest simply does not match.
func (h *BcryptHasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
