package crypto

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-ecckey/pkg/types"
)

func TestDERSignature_Roundtrip(t *testing.T) {
	r := big.NewInt(0x7f)
	s := new(big.Int).Sub(p256Params.N, big.NewInt(1))

	sig, err := encodeDERSignature(r, s)
	require.NoError(t, err)
	assert.Equal(t, byte(0x30), sig[0])

	r2, s2, err := parseDERSignature(sig)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Cmp(r2))
	assert.Equal(t, 0, s.Cmp(s2))
}

func TestDERSignature_HighBitPadding(t *testing.T) {
	// 最高位为 1 的整数需要前导 0x00
	r := new(big.Int).Lsh(big.NewInt(1), 255)
	sig, err := encodeDERSignature(r, big.NewInt(1))
	require.NoError(t, err)

	// 30 len 02 21 00 80...
	assert.Equal(t, []byte{0x02, 0x21, 0x00, 0x80}, sig[2:6])

	r2, _, err := parseDERSignature(sig)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Cmp(r2))
}

func TestParseDERSignature_Range(t *testing.T) {
	tests := []struct {
		name string
		r, s *big.Int
	}{
		{"zero r", big.NewInt(0), big.NewInt(1)},
		{"zero s", big.NewInt(1), big.NewInt(0)},
		{"negative r", big.NewInt(-1), big.NewInt(1)},
		{"r = n", new(big.Int).Set(p256Params.N), big.NewInt(1)},
		{"s = n", big.NewInt(1), new(big.Int).Set(p256Params.N)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, err := encodeDERSignature(tt.r, tt.s)
			require.NoError(t, err)
			_, _, err = parseDERSignature(sig)
			assert.ErrorIs(t, err, ErrSignatureDecode)
		})
	}
}

func TestParseDERSignature_Malformed(t *testing.T) {
	tests := []struct {
		name string
		sig  []byte
	}{
		{"empty", []byte{}},
		{"not a sequence", []byte{0x02, 0x01, 0x01}},
		{"missing s", []byte{0x30, 0x03, 0x02, 0x01, 0x01}},
		{"extra integer", []byte{0x30, 0x09, 0x02, 0x01, 0x01, 0x02, 0x01, 0x01, 0x02, 0x01, 0x01}},
		{"non-minimal integer", []byte{0x30, 0x07, 0x02, 0x02, 0x00, 0x01, 0x02, 0x01, 0x01}},
		{"length overflow", []byte{0x30, 0x7f, 0x02, 0x01, 0x01}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := parseDERSignature(tt.sig)
			assert.ErrorIs(t, err, ErrSignatureDecode)
		})
	}
}

func TestSignVerifyHelpers(t *testing.T) {
	priv, pub, err := GenerateKeyPair(types.KeyTag{Network: types.NetworkMainNet, KeyType: types.KeyTypeEccCompact})
	require.NoError(t, err)

	data := []byte("helper")
	sig, err := Sign(priv, data)
	require.NoError(t, err)
	assert.NoError(t, Verify(pub, data, sig))

	_, err = Sign(nil, data)
	assert.ErrorIs(t, err, ErrNilPrivateKey)
	assert.ErrorIs(t, Verify(nil, data, sig), ErrNilPublicKey)
	assert.ErrorIs(t, Verify(pub, data, nil), ErrNilSignature)
}

func TestSignedEnvelope(t *testing.T) {
	kp, err := GenerateEccCompact(types.NetworkTestNet, rand.Reader)
	require.NoError(t, err)

	typeHint := make([]byte, 4, 64)
	copy(typeHint, "peer")
	contents := []byte("record contents")

	env, err := Seal(kp, typeHint, contents)
	require.NoError(t, err)
	// 签名不应写入 typeHint 的剩余容量
	assert.Equal(t, []byte("peer"), typeHint)

	got, err := env.Open()
	require.NoError(t, err)
	assert.Equal(t, contents, got)

	t.Run("tampered contents", func(t *testing.T) {
		bad := *env
		bad.Contents = []byte("other contents")
		_, err := bad.Open()
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("wrong signer", func(t *testing.T) {
		other, err := GenerateEccCompact(types.NetworkTestNet, rand.Reader)
		require.NoError(t, err)
		bad := *env
		bad.PublicKey = other.PublicKey()
		_, err = bad.Open()
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})
}
