package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Params are the Argon2id cost settings encoded into every hash.
type Params struct {
	Memory  uint32
	Time    uint32
	Threads uint8
	KeyLen  uint32
}

// Current is used for new hashes. Stored hashes with weaker settings are
// upgraded on the next successful sign-in.
var Current = Params{Memory: 64 * 1024, Time: 1, Threads: 4, KeyLen: 32}

const saltLen = 16

var errMalformed = errors.New("malformed argon2id hash")

// Hash returns the Argon2id hash stored in users.password_hash.
func Hash(password string) (string, error) {
	return hashWith(password, Current)
}

func hashWith(password string, p Params) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, p.KeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Time, p.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify checks whether a password matches the encoded Argon2id hash.
func Verify(password, encoded string) bool {
	p, salt, key, err := decode(encoded)
	if err != nil {
		return false
	}
	check := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, p.KeyLen)
	return subtle.ConstantTimeCompare(key, check) == 1
}

// NeedsRehash reports whether encoded was produced with weaker settings
// than Current. Malformed hashes never need a rehash; they cannot verify.
func NeedsRehash(encoded string) bool {
	p, _, _, err := decode(encoded)
	if err != nil {
		return false
	}
	return p.Memory < Current.Memory || p.Time < Current.Time || p.KeyLen < Current.KeyLen
}

// decode splits "$argon2id$v=19$m=..,t=..,p=..$salt$key".
func decode(encoded string) (Params, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" || parts[2] != fmt.Sprintf("v=%d", argon2.Version) {
		return Params{}, nil, nil, errMalformed
	}

	fields := strings.Split(parts[3], ",")
	if len(fields) != 3 {
		return Params{}, nil, nil, errMalformed
	}
	memory, err := costField(fields[0], "m=", 32)
	if err != nil {
		return Params{}, nil, nil, err
	}
	timeCost, err := costField(fields[1], "t=", 32)
	if err != nil {
		return Params{}, nil, nil, err
	}
	threads, err := costField(fields[2], "p=", 8)
	if err != nil {
		return Params{}, nil, nil, err
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return Params{}, nil, nil, errMalformed
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return Params{}, nil, nil, errMalformed
	}

	return Params{
		Memory:  uint32(memory),
		Time:    uint32(timeCost),
		Threads: uint8(threads),
		KeyLen:  uint32(len(key)),
	}, salt, key, nil
}

func costField(field, prefix string, bits int) (uint64, error) {
	raw, ok := strings.CutPrefix(field, prefix)
	if !ok {
		return 0, errMalformed
	}
	v, err := strconv.ParseUint(raw, 10, bits)
	if err != nil || v == 0 {
		return 0, errMalformed
	}
	return v, nil
}
