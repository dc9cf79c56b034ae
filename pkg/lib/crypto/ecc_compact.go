package crypto

import (
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"io"
	"math/big"

	sha256 "github.com/minio/sha256-simd"

	"github.com/dep2p/go-ecckey/pkg/lib/log"
	"github.com/dep2p/go-ecckey/pkg/types"
)

var logger = log.Logger("crypto")

// EccCompact 密钥常量（P-256 曲线）
const (
	// EccCompactScalarSize 私钥标量大小（32 字节）
	EccCompactScalarSize = 32
	// EccCompactKeypairSize 序列化密钥对大小：[tag(1)] [scalar(32)]
	EccCompactKeypairSize = 1 + EccCompactScalarSize
	// EccCompactPublicKeySize 序列化公钥大小：[tag(1)] [x(32)]
	EccCompactPublicKeySize = 1 + CompactPointSize
)

var (
	_ PublicKey  = (*EccCompactPublicKey)(nil)
	_ PrivateKey = (*EccCompactKeypair)(nil)
)

// ============================================================================
//                              EccCompactPublicKey
// ============================================================================

// EccCompactPublicKey 可紧凑编码的 P-256 公钥
//
// 创建后不可变，可被多个 goroutine 并发用于验证。
type EccCompactPublicKey struct {
	network types.Network
	k       *ecdsa.PublicKey
}

// NewEccCompactPublicKey 包装一个已有的 P-256 公钥
//
// 点不在 P-256 上或不可紧凑编码时返回 ErrNotCompact。
func NewEccCompactPublicKey(network types.Network, pub *ecdsa.PublicKey) (*EccCompactPublicKey, error) {
	if pub == nil {
		return nil, ErrNilPublicKey
	}
	if !network.Valid() {
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownNetwork, byte(network))
	}
	if pub.Curve != p256 || pub.X == nil || pub.Y == nil || !p256.IsOnCurve(pub.X, pub.Y) {
		return nil, fmt.Errorf("%w: not a P-256 point", ErrNotCompact)
	}
	if !IsCompactable(pub) {
		return nil, ErrNotCompact
	}
	return &EccCompactPublicKey{network: network, k: pub}, nil
}

// UnmarshalEccCompactPublicKey 从带标签字节反序列化公钥
//
// 格式：[tag(1)] [x(32)]
func UnmarshalEccCompactPublicKey(data []byte) (*EccCompactPublicKey, error) {
	tag, err := parseEccCompactTag(data, EccCompactPublicKeySize)
	if err != nil {
		return nil, err
	}
	pub, err := DecodeCompactPoint(data[1:])
	if err != nil {
		return nil, err
	}
	return &EccCompactPublicKey{network: tag.Network, k: pub}, nil
}

// Network 返回公钥所属网络
func (k *EccCompactPublicKey) Network() types.Network {
	return k.network
}

// KeyTag 返回密钥标签
func (k *EccCompactPublicKey) KeyTag() types.KeyTag {
	return types.KeyTag{Network: k.network, KeyType: types.KeyTypeEccCompact}
}

// Bytes 返回序列化公钥（33 字节）
func (k *EccCompactPublicKey) Bytes() []byte {
	out := make([]byte, EccCompactPublicKeySize)
	out[0] = k.KeyTag().Byte()
	copy(out[1:], EncodeCompactPoint(k.k))
	return out
}

// ECDSA 返回底层公钥，调用方不得修改
func (k *EccCompactPublicKey) ECDSA() *ecdsa.PublicKey {
	return k.k
}

// Equals 比较两个公钥的曲线点，网络不参与比较
func (k *EccCompactPublicKey) Equals(other Key) bool {
	ek, ok := other.(*EccCompactPublicKey)
	if !ok || ek == nil {
		return false
	}
	return k.k.X.Cmp(ek.k.X) == 0 && k.k.Y.Cmp(ek.k.Y) == 0
}

// Verify 验证 DER 编码的 ECDSA 签名，消息摘要为 SHA-256
func (k *EccCompactPublicKey) Verify(data, sig []byte) error {
	r, s, err := parseDERSignature(sig)
	if err != nil {
		return err
	}
	digest := sha256.Sum256(data)
	if !ecdsa.Verify(k.k, digest[:], r, s) {
		return ErrInvalidSignature
	}
	return nil
}

// String 返回 Base58Check 编码的公钥
func (k *EccCompactPublicKey) String() string {
	return EncodeB58(k.Bytes())
}

// ============================================================================
//                              EccCompactKeypair
// ============================================================================

// EccCompactKeypair P-256 密钥对，公钥可紧凑编码
type EccCompactKeypair struct {
	network types.Network
	k       *ecdsa.PrivateKey
	pub     *EccCompactPublicKey
}

// GenerateEccCompact 生成公钥可紧凑编码的密钥对
//
// 从 src 均匀采样标量，公钥不可紧凑编码时重新采样。每次采样成功的
// 概率约为 1/2，循环不设上限：持续失败的概率可以忽略，但理论上不为零。
// 仅在 src 读取失败时返回错误。
func GenerateEccCompact(network types.Network, src io.Reader) (*EccCompactKeypair, error) {
	if !network.Valid() {
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownNetwork, byte(network))
	}

	scalar := make([]byte, EccCompactScalarSize)
	defer SecureZero(scalar)

	for attempts := 1; ; attempts++ {
		priv, err := randomPrivateKey(src, scalar)
		if err != nil {
			return nil, err
		}
		if IsCompactable(&priv.PublicKey) {
			logger.Debug("生成紧凑密钥", "network", network, "attempts", attempts)
			return newEccCompactKeypair(network, priv), nil
		}
	}
}

// GenerateEccCompactFromEntropy 从 32 字节熵确定性地生成密钥对
//
// 熵直接作为私钥标量，不重试：公钥不可紧凑编码时返回 ErrNotCompact。
func GenerateEccCompactFromEntropy(network types.Network, entropy []byte) (*EccCompactKeypair, error) {
	if !network.Valid() {
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownNetwork, byte(network))
	}
	if len(entropy) != EccCompactScalarSize {
		return nil, fmt.Errorf("%w: expected %d bytes of entropy, got %d",
			ErrInvalidKeySize, EccCompactScalarSize, len(entropy))
	}

	priv, err := privateKeyFromScalar(entropy)
	if err != nil {
		return nil, err
	}
	if !IsCompactable(&priv.PublicKey) {
		return nil, fmt.Errorf("%w: entropy yields a non-compactable public key", ErrNotCompact)
	}
	return newEccCompactKeypair(network, priv), nil
}

// UnmarshalEccCompactKeypair 从带标签字节反序列化密钥对
//
// 格式：[tag(1)] [scalar(32)]。不重新检查公钥是否可紧凑编码。
func UnmarshalEccCompactKeypair(data []byte) (*EccCompactKeypair, error) {
	tag, err := parseEccCompactTag(data, EccCompactKeypairSize)
	if err != nil {
		return nil, err
	}
	priv, err := privateKeyFromScalar(data[1:])
	if err != nil {
		return nil, err
	}
	return newEccCompactKeypair(tag.Network, priv), nil
}

func newEccCompactKeypair(network types.Network, priv *ecdsa.PrivateKey) *EccCompactKeypair {
	return &EccCompactKeypair{
		network: network,
		k:       priv,
		pub:     &EccCompactPublicKey{network: network, k: &priv.PublicKey},
	}
}

// Network 返回密钥对所属网络
func (k *EccCompactKeypair) Network() types.Network {
	return k.network
}

// KeyTag 返回密钥标签
func (k *EccCompactKeypair) KeyTag() types.KeyTag {
	return types.KeyTag{Network: k.network, KeyType: types.KeyTypeEccCompact}
}

// Bytes 返回序列化密钥对（33 字节），包含私钥标量
func (k *EccCompactKeypair) Bytes() []byte {
	out := make([]byte, EccCompactKeypairSize)
	out[0] = k.KeyTag().Byte()
	k.k.D.FillBytes(out[1:])
	return out
}

// Equals 比较网络和私钥标量（常量时间）
func (k *EccCompactKeypair) Equals(other Key) bool {
	ek, ok := other.(*EccCompactKeypair)
	if !ok || ek == nil {
		return false
	}
	if k.network != ek.network {
		return false
	}
	a := k.Bytes()
	b := ek.Bytes()
	defer SecureZero(a)
	defer SecureZero(b)
	return subtle.ConstantTimeCompare(a, b) == 1
}

// GetPublic 返回对应的公钥
func (k *EccCompactKeypair) GetPublic() PublicKey {
	return k.pub
}

// PublicKey 返回具体类型的公钥
func (k *EccCompactKeypair) PublicKey() *EccCompactPublicKey {
	return k.pub
}

// Sign 对消息的 SHA-256 摘要做 ECDSA 签名，返回 DER 编码
//
// 任意长度的消息（包括空消息）都可以签名。
func (k *EccCompactKeypair) Sign(data []byte) ([]byte, error) {
	digest := sha256.Sum256(data)
	r, s, err := ecdsa.Sign(rand.Reader, k.k, digest[:])
	if err != nil {
		return nil, fmt.Errorf("ecdsa sign: %w", err)
	}
	return encodeDERSignature(r, s)
}

// ============================================================================
//                              辅助函数
// ============================================================================

// parseEccCompactTag 校验长度并解析标签，只接受 EccCompact 密钥类型
func parseEccCompactTag(data []byte, size int) (types.KeyTag, error) {
	if len(data) != size {
		return types.KeyTag{}, fmt.Errorf("%w: expected %d bytes, got %d",
			ErrInvalidKeySize, size, len(data))
	}
	tag, err := types.ParseKeyTag(data[0])
	if err != nil {
		return types.KeyTag{}, err
	}
	if tag.KeyType != types.KeyTypeEccCompact {
		return types.KeyTag{}, fmt.Errorf("%w: %s", ErrBadKeyType, tag.KeyType)
	}
	return tag, nil
}

// privateKeyFromScalar 由 32 字节大端序标量构造私钥
//
// 标量范围由 crypto/ecdh 校验，不在 [1, n-1] 内返回 ErrInvalidScalar。
func privateKeyFromScalar(scalar []byte) (*ecdsa.PrivateKey, error) {
	sk, err := ecdh.P256().NewPrivateKey(scalar)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScalar, err)
	}

	// 非压缩格式：0x04 || X(32) || Y(32)
	point := sk.PublicKey().Bytes()
	return &ecdsa.PrivateKey{
		PublicKey: ecdsa.PublicKey{
			Curve: p256,
			X:     new(big.Int).SetBytes(point[1 : 1+CompactPointSize]),
			Y:     new(big.Int).SetBytes(point[1+CompactPointSize:]),
		},
		D: new(big.Int).SetBytes(scalar),
	}, nil
}

// randomPrivateKey 拒绝采样：读取 32 字节，直到标量落在 [1, n-1] 内
func randomPrivateKey(src io.Reader, buf []byte) (*ecdsa.PrivateKey, error) {
	for {
		if _, err := io.ReadFull(src, buf); err != nil {
			return nil, fmt.Errorf("read entropy: %w", err)
		}
		if priv, err := privateKeyFromScalar(buf); err == nil {
			return priv, nil
		}
	}
}
