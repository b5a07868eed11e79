package storage

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/argon2"
)

const phcPrefix = "$argon2id$v=19$"

// phcHash is a parsed argon2id hash in PHC string format:
// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
type phcHash struct {
	params Argon2idParams
	salt   []byte
	key    []byte
}

func defaultArgon2idParams() Argon2idParams {
	return Argon2idParams{Time: 1, MemoryKiB: 64 * 1024, Parallelism: 4, KeyLen: 32, SaltLen: 16}
}

// newPHCHash derives a key for password with a fresh random salt
func newPHCHash(password string, p Argon2idParams) (phcHash, error) {
	if p.Time == 0 {
		p = defaultArgon2idParams()
	}
	salt := make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return phcHash{}, errors.Wrap(err, "reading salt")
	}
	return phcHash{
		params: p,
		salt:   salt,
		key:    argon2.IDKey([]byte(password), salt, p.Time, p.MemoryKiB, p.Parallelism, p.KeyLen),
	}, nil
}

func (h phcHash) String() string {
	return fmt.Sprintf(
		"%sm=%d,t=%d,p=%d$%s$%s", phcPrefix, h.params.MemoryKiB, h.params.Time, h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(h.salt), base64.RawStdEncoding.EncodeToString(h.key),
	)
}

// matches reports whether password derives the stored key
func (h phcHash) matches(password string) bool {
	p := h.params
	dk := argon2.IDKey([]byte(password), h.salt, p.Time, p.MemoryKiB, p.Parallelism, uint32(len(h.key)))
	return subtle.ConstantTimeCompare(dk, h.key) == 1
}

// outdated reports whether the hash was made with other parameters than p
func (h phcHash) outdated(p Argon2idParams) bool {
	return h.params != p
}

func parsePHCHash(encoded string) (phcHash, error) {
	var h phcHash
	rest, ok := strings.CutPrefix(encoded, phcPrefix)
	if !ok {
		return h, errors.New("unsupported password hash format")
	}
	parts := strings.Split(rest, "$")
	if len(parts) != 3 {
		return h, errors.New("invalid argon2id hash format")
	}
	for _, kv := range strings.Split(parts[0], ",") {
		name, value, _ := strings.Cut(kv, "=")
		bits := 32
		if name == "p" {
			bits = 8
		}
		v, err := strconv.ParseUint(value, 10, bits)
		if err != nil {
			return h, errors.Wrapf(err, "argon2id parameter %s", name)
		}
		switch name {
		case "m":
			h.params.MemoryKiB = uint32(v)
		case "t":
			h.params.Time = uint32(v)
		case "p":
			h.params.Parallelism = uint8(v)
		}
	}
	var err error
	if h.salt, err = base64.RawStdEncoding.DecodeString(parts[1]); err != nil {
		return h, errors.Wrap(err, "argon2id salt")
	}
	if h.key, err = base64.RawStdEncoding.DecodeString(parts[2]); err != nil {
		return h, errors.Wrap(err, "argon2id key")
	}
	h.params.SaltLen = uint32(len(h.salt))
	h.params.KeyLen = uint32(len(h.key))
	return h, nil
}
