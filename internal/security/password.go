package security

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"runtime"
	"sync"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// MinCost is the lowest bcrypt cost the hasher accepts.
const MinCost = bcrypt.DefaultCost

// bcrypt only looks at the first 72 bytes of its input.
const bcryptMaxInput = 72

// Hasher bcrypt-hashes passwords. Hashing is CPU bound, so concurrent calls are
// bounded by a weighted semaphore to keep request serving responsive.
type Hasher struct {
	cost int
	sem  *semaphore.Weighted

	// dummy is compared against when the account does not exist so that an
	// unknown email costs about as much as a wrong password.
	dummyOnce sync.Once
	dummy     []byte
}

// NewHasher returns a hasher using cost (raised to MinCost when lower).
// maxConcurrent <= 0 means GOMAXPROCS.
func NewHasher(cost, maxConcurrent int) *Hasher {
	if cost < MinCost {
		cost = MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}

	if maxConcurrent <= 0 {
		maxConcurrent = runtime.GOMAXPROCS(0)
	}

	return &Hasher{
		cost: cost,
		sem:  semaphore.NewWeighted(int64(maxConcurrent)),
	}
}

// Hash hashes a plain text password with bcrypt.
func (h *Hasher) Hash(ctx context.Context, plain string) (string, error) {
	if err := h.acquire(ctx); err != nil {
		return "", err
	}
	defer h.sem.Release(1)

	hash, err := bcrypt.GenerateFromPassword(prepare(plain), h.cost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// Verify compares a bcrypt hash with a plaintext password in constant time.
// A non-nil error means no comparison took place (no hashing slot before ctx
// ended); it is never a mismatch.
func (h *Hasher) Verify(ctx context.Context, plain, hash string) (bool, error) {
	if err := h.acquire(ctx); err != nil {
		return false, err
	}
	defer h.sem.Release(1)

	return bcrypt.CompareHashAndPassword([]byte(hash), prepare(plain)) == nil, nil
}

// DummyVerify burns one comparison against a fixed hash. The result is always
// false; the error is the same as Verify's.
func (h *Hasher) DummyVerify(ctx context.Context, plain string) (bool, error) {
	h.dummyOnce.Do(func() {
		h.dummy, _ = bcrypt.GenerateFromPassword([]byte("bookshelf-dummy-password"), h.cost)
	})

	if _, err := h.Verify(ctx, plain, string(h.dummy)); err != nil {
		return false, err
	}
	return false, nil
}

func (h *Hasher) acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return h.sem.Acquire(ctx, 1)
}

func (h *Hasher) Cost() int {
	return h.cost
}

// prepare condenses inputs longer than bcrypt accepts into a SHA-256 digest so
// every byte of a long password still counts.
func prepare(plain string) []byte {
	if len(plain) <= bcryptMaxInput {
		return []byte(plain)
	}

	sum := sha256.Sum256([]byte(plain))
	out := make([]byte, base64.RawStdEncoding.EncodedLen(len(sum)))
	base64.RawStdEncoding.Encode(out, sum[:])

	return out
}
