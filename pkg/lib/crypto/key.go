package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"io"

	"github.com/dep2p/go-ecckey/pkg/types"
)

// ============================================================================
//                              密钥接口定义
// ============================================================================

// Key 基础密钥接口
type Key interface {
	// Bytes 返回带标签的序列化字节：[tag(1)] [data]
	Bytes() []byte

	// KeyTag 返回密钥标签
	KeyTag() types.KeyTag

	// Equals 比较两个密钥是否相等
	Equals(Key) bool
}

// PublicKey 公钥接口
type PublicKey interface {
	Key

	// Verify 使用此公钥验证签名
	//
	// 签名无法解析时返回 ErrSignatureDecode，
	// 验证不通过时返回 ErrInvalidSignature。
	Verify(data, sig []byte) error
}

// PrivateKey 私钥接口
//
// 实现持有私钥及其派生的公钥。
type PrivateKey interface {
	Key

	// Sign 使用此私钥签名数据
	Sign(data []byte) ([]byte, error)

	// GetPublic 返回对应的公钥
	GetPublic() PublicKey
}

// ============================================================================
//                              密钥工厂函数
// ============================================================================

// Generator 按网络生成私钥的函数类型
type Generator func(network types.Network, reader io.Reader) (PrivateKey, error)

// Generators 密钥生成函数映射
var Generators = map[types.KeyType]Generator{
	types.KeyTypeEccCompact: func(network types.Network, reader io.Reader) (PrivateKey, error) {
		return GenerateEccCompact(network, reader)
	},
}

// GenerateKeyPair 按标签生成密钥对，使用系统随机源
func GenerateKeyPair(tag types.KeyTag) (PrivateKey, PublicKey, error) {
	return GenerateKeyPairWithReader(tag, rand.Reader)
}

// GenerateKeyPairWithReader 使用指定的随机源生成密钥对
//
// 参数：
//   - tag: 网络和密钥类型
//   - reader: 随机源（测试时可传入确定性数据）
func GenerateKeyPairWithReader(tag types.KeyTag, reader io.Reader) (PrivateKey, PublicKey, error) {
	gen, ok := Generators[tag.KeyType]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrBadKeyType, tag.KeyType)
	}
	priv, err := gen(tag.Network, reader)
	if err != nil {
		return nil, nil, err
	}
	return priv, priv.GetPublic(), nil
}

// ============================================================================
//                              反序列化函数
// ============================================================================

// PubKeyUnmarshaller 公钥反序列化函数类型，输入为完整的带标签字节
type PubKeyUnmarshaller func(data []byte) (PublicKey, error)

// PrivKeyUnmarshaller 私钥反序列化函数类型，输入为完整的带标签字节
type PrivKeyUnmarshaller func(data []byte) (PrivateKey, error)

// PubKeyUnmarshallers 公钥反序列化函数映射
var PubKeyUnmarshallers = map[types.KeyType]PubKeyUnmarshaller{
	types.KeyTypeEccCompact: func(data []byte) (PublicKey, error) {
		return UnmarshalEccCompactPublicKey(data)
	},
}

// PrivKeyUnmarshallers 私钥反序列化函数映射
var PrivKeyUnmarshallers = map[types.KeyType]PrivKeyUnmarshaller{
	types.KeyTypeEccCompact: func(data []byte) (PrivateKey, error) {
		return UnmarshalEccCompactKeypair(data)
	},
}

// UnmarshalPublicKey 根据标签字节反序列化公钥
func UnmarshalPublicKey(data []byte) (PublicKey, error) {
	tag, err := parseTag(data)
	if err != nil {
		return nil, err
	}
	um, ok := PubKeyUnmarshallers[tag.KeyType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBadKeyType, tag.KeyType)
	}
	return um(data)
}

// UnmarshalPrivateKey 根据标签字节反序列化私钥
func UnmarshalPrivateKey(data []byte) (PrivateKey, error) {
	tag, err := parseTag(data)
	if err != nil {
		return nil, err
	}
	um, ok := PrivKeyUnmarshallers[tag.KeyType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBadKeyType, tag.KeyType)
	}
	return um(data)
}

// parseTag 读取第一个字节作为标签
func parseTag(data []byte) (types.KeyTag, error) {
	if len(data) == 0 {
		return types.KeyTag{}, fmt.Errorf("%w: empty input", ErrInvalidKeySize)
	}
	return types.ParseKeyTag(data[0])
}

// ============================================================================
//                              辅助函数
// ============================================================================

// KeyEqual 使用常量时间比较两个密钥的序列化字节
func KeyEqual(k1, k2 Key) bool {
	if k1 == nil || k2 == nil {
		return k1 == k2
	}
	return subtle.ConstantTimeCompare(k1.Bytes(), k2.Bytes()) == 1
}

// SecureZero 清零字节切片，用于擦除内存中的私钥标量
func SecureZero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
