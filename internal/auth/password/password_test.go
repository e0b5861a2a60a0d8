package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	encoded, err := Hash("s3cret-pass")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$"))

	assert.True(t, Verify("s3cret-pass", encoded))
	assert.False(t, Verify("wrong", encoded))
}

func TestHashIsSalted(t *testing.T) {
	a, err := Hash("same")
	require.NoError(t, err)
	b, err := Hash("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerifyRejectsMalformed(t *testing.T) {
	for _, encoded := range []string{
		"",
		"plain",
		"$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=1,t=1$c2FsdA$aGFzaA",
	} {
		assert.False(t, Verify("anything", encoded), encoded)
	}
}

func TestNeedsRehash(t *testing.T) {
	current, err := Hash("pw")
	require.NoError(t, err)
	assert.False(t, NeedsRehash(current))

	weak, err := hashWith("pw", Params{Memory: 8 * 1024, Time: 1, Threads: 1, KeyLen: 32})
	require.NoError(t, err)
	assert.True(t, Verify("pw", weak))
	assert.True(t, NeedsRehash(weak))

	assert.False(t, NeedsRehash("garbage"))
}

func TestVerifyRejectsZeroCost(t *testing.T) {
	assert.False(t, Verify("pw", "$argon2id$v=19$m=0,t=1,p=1$c2FsdA$aGFzaA"))
}
