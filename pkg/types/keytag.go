package types

import (
	"errors"
	"fmt"
	"strings"
)

// ============================================================================
//                              标签字节格式
// ============================================================================

// 标签字节：
//
//   ┌───────────────────────────────────────┐
//   │  bit 7..4: Network                    │
//   │  bit 3..0: KeyType                    │
//   └───────────────────────────────────────┘
//
// 序列化密钥的第一个字节始终是标签字节。

const (
	networkMask = 0xF0
	keyTypeMask = 0x0F
)

var (
	// ErrUnknownNetwork 无法识别的网络标识
	ErrUnknownNetwork = errors.New("unknown network")

	// ErrUnknownKeyType 无法识别的密钥类型标识
	ErrUnknownKeyType = errors.New("unknown key type")
)

// ============================================================================
//                              Network - 网络
// ============================================================================

// Network 密钥所属网络，占标签字节高 4 位
type Network uint8

const (
	// NetworkMainNet 主网
	NetworkMainNet Network = 0x00
	// NetworkTestNet 测试网
	NetworkTestNet Network = 0x10
)

// Networks 支持的网络列表
var Networks = []Network{
	NetworkMainNet,
	NetworkTestNet,
}

// String 返回网络名称
func (n Network) String() string {
	switch n {
	case NetworkMainNet:
		return "mainnet"
	case NetworkTestNet:
		return "testnet"
	default:
		return "unknown"
	}
}

// Valid 判断是否为已知网络
func (n Network) Valid() bool {
	return n == NetworkMainNet || n == NetworkTestNet
}

// ParseNetwork 从名称解析网络
func ParseNetwork(s string) (Network, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mainnet", "main":
		return NetworkMainNet, nil
	case "testnet", "test":
		return NetworkTestNet, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownNetwork, s)
	}
}

// networkFromByte 从标签字节的高 4 位解析网络
func networkFromByte(b byte) (Network, error) {
	switch n := Network(b & networkMask); n {
	case NetworkMainNet, NetworkTestNet:
		return n, nil
	default:
		return 0, fmt.Errorf("%w: 0x%02x", ErrUnknownNetwork, b&networkMask)
	}
}

// ============================================================================
//                              KeyType - 密钥类型
// ============================================================================

// KeyType 密钥类型，占标签字节低 4 位
type KeyType uint8

const (
	// KeyTypeEccCompact 紧凑编码的 P-256 密钥
	KeyTypeEccCompact KeyType = 0x00
	// KeyTypeEd25519 Ed25519 密钥
	KeyTypeEd25519 KeyType = 0x01
	// KeyTypeMultiSig 多签密钥
	KeyTypeMultiSig KeyType = 0x02
	// KeyTypeSecp256k1 Secp256k1 密钥
	KeyTypeSecp256k1 KeyType = 0x03
	// KeyTypeRSA RSA 密钥
	KeyTypeRSA KeyType = 0x04
)

// String 返回密钥类型名称
func (kt KeyType) String() string {
	switch kt {
	case KeyTypeEccCompact:
		return "ecc_compact"
	case KeyTypeEd25519:
		return "ed25519"
	case KeyTypeMultiSig:
		return "multisig"
	case KeyTypeSecp256k1:
		return "secp256k1"
	case KeyTypeRSA:
		return "rsa"
	default:
		return "unknown"
	}
}

// keyTypeFromByte 从标签字节的低 4 位解析密钥类型
func keyTypeFromByte(b byte) (KeyType, error) {
	switch kt := KeyType(b & keyTypeMask); kt {
	case KeyTypeEccCompact, KeyTypeEd25519, KeyTypeMultiSig, KeyTypeSecp256k1, KeyTypeRSA:
		return kt, nil
	default:
		return 0, fmt.Errorf("%w: 0x%02x", ErrUnknownKeyType, b&keyTypeMask)
	}
}

// ============================================================================
//                              KeyTag - 密钥标签
// ============================================================================

// KeyTag 序列化密钥的单字节标签
type KeyTag struct {
	Network Network
	KeyType KeyType
}

// Byte 返回标签字节
func (t KeyTag) Byte() byte {
	return byte(t.Network) | byte(t.KeyType)
}

// String 返回 "network/key_type" 形式
func (t KeyTag) String() string {
	return t.Network.String() + "/" + t.KeyType.String()
}

// ParseKeyTag 解析标签字节
//
// 网络先于密钥类型校验，未知网络返回 ErrUnknownNetwork。
func ParseKeyTag(b byte) (KeyTag, error) {
	network, err := networkFromByte(b)
	if err != nil {
		return KeyTag{}, err
	}
	keyType, err := keyTypeFromByte(b)
	if err != nil {
		return KeyTag{}, err
	}
	return KeyTag{Network: network, KeyType: keyType}, nil
}
