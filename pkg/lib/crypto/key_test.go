package crypto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-ecckey/pkg/types"
)

var (
	mainEcc = types.KeyTag{Network: types.NetworkMainNet, KeyType: types.KeyTypeEccCompact}
	testEcc = types.KeyTag{Network: types.NetworkTestNet, KeyType: types.KeyTypeEccCompact}
)

func TestGenerateKeyPair(t *testing.T) {
	for _, tag := range []types.KeyTag{mainEcc, testEcc} {
		t.Run(tag.String(), func(t *testing.T) {
			priv, pub, err := GenerateKeyPair(tag)
			require.NoError(t, err)
			assert.Equal(t, tag, priv.KeyTag())
			assert.Equal(t, tag, pub.KeyTag())
			assert.True(t, pub.Equals(priv.GetPublic()))
		})
	}
}

func TestGenerateKeyPairWithReader_Deterministic(t *testing.T) {
	seed := bytes.Repeat([]byte{0x42}, 32*8)

	priv1, _, err1 := GenerateKeyPairWithReader(mainEcc, bytes.NewReader(seed))
	priv2, _, err2 := GenerateKeyPairWithReader(mainEcc, bytes.NewReader(seed))
	// 同一随机源要么都成功且结果相同，要么都因为数据耗尽而失败
	if err1 != nil {
		assert.Equal(t, err1.Error(), err2.Error())
		return
	}
	require.NoError(t, err2)
	assert.True(t, priv1.Equals(priv2))
}

func TestGenerateKeyPair_UnsupportedType(t *testing.T) {
	tag := types.KeyTag{Network: types.NetworkMainNet, KeyType: types.KeyTypeEd25519}
	_, _, err := GenerateKeyPair(tag)
	assert.ErrorIs(t, err, ErrBadKeyType)
}

func TestUnmarshalDispatch(t *testing.T) {
	priv, pub, err := GenerateKeyPair(testEcc)
	require.NoError(t, err)

	priv2, err := UnmarshalPrivateKey(priv.Bytes())
	require.NoError(t, err)
	assert.True(t, priv.Equals(priv2))

	pub2, err := UnmarshalPublicKey(pub.Bytes())
	require.NoError(t, err)
	assert.True(t, pub.Equals(pub2))
}

func TestUnmarshalDispatch_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrInvalidKeySize},
		{"unknown network", append([]byte{0x20}, make([]byte, 32)...), ErrUnknownNetwork},
		{"unknown key type", append([]byte{0x0f}, make([]byte, 32)...), ErrUnknownKeyType},
		{"unregistered key type", append([]byte{0x01}, make([]byte, 32)...), ErrBadKeyType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalPublicKey(tt.data)
			assert.ErrorIs(t, err, tt.want)

			_, err = UnmarshalPrivateKey(tt.data)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestKeyEqual(t *testing.T) {
	priv1, pub1, err := GenerateKeyPair(mainEcc)
	require.NoError(t, err)
	priv2, _, err := GenerateKeyPair(mainEcc)
	require.NoError(t, err)

	assert.True(t, KeyEqual(priv1, priv1))
	assert.False(t, KeyEqual(priv1, priv2))
	assert.False(t, KeyEqual(priv1, nil))
	assert.True(t, KeyEqual(nil, nil))
	assert.True(t, KeyEqual(pub1, priv1.GetPublic()))
}

func TestSecureZero(t *testing.T) {
	b := []byte{1, 2, 3, 4}
	SecureZero(b)
	assert.Equal(t, []byte{0, 0, 0, 0}, b)
}
