package crypto

import (
	"bytes"
	"fmt"

	"github.com/mr-tron/base58"
	sha256 "github.com/minio/sha256-simd"
)

// ============================================================================
//                              Base58Check 显示编码
// ============================================================================

// 编码格式：
//
//   Base58( Version(1) || Payload || Checksum(4) )
//
//   Checksum = SHA256(SHA256(Version || Payload))[:4]
//
// 公钥的 Payload 是 33 字节的带标签公钥，因此主网紧凑密钥的
// 字符串总是以 "11" 开头（版本字节和标签字节都为 0）。

const (
	b58Version      = 0x00
	b58ChecksumSize = 4
)

// EncodeB58 对 payload 做 Base58Check 编码
func EncodeB58(payload []byte) string {
	buf := make([]byte, 0, 1+len(payload)+b58ChecksumSize)
	buf = append(buf, b58Version)
	buf = append(buf, payload...)
	sum := b58Checksum(buf)
	buf = append(buf, sum[:]...)
	return base58.Encode(buf)
}

// DecodeB58 解码 Base58Check 字符串，返回 payload
func DecodeB58(s string) ([]byte, error) {
	decoded, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidB58, err)
	}
	if len(decoded) < 1+b58ChecksumSize {
		return nil, fmt.Errorf("%w: too short", ErrInvalidB58)
	}

	body := decoded[:len(decoded)-b58ChecksumSize]
	sum := b58Checksum(body)
	if !bytes.Equal(sum[:], decoded[len(decoded)-b58ChecksumSize:]) {
		return nil, ErrB58Checksum
	}
	if body[0] != b58Version {
		return nil, fmt.Errorf("%w: unsupported version 0x%02x", ErrInvalidB58, body[0])
	}
	return body[1:], nil
}

// PublicKeyFromString 解析 Base58Check 编码的公钥
//
// 公钥类型由标签字节决定。
func PublicKeyFromString(s string) (PublicKey, error) {
	payload, err := DecodeB58(s)
	if err != nil {
		return nil, err
	}
	return UnmarshalPublicKey(payload)
}

// b58Checksum 双重 SHA256 的前 4 字节
func b58Checksum(data []byte) [b58ChecksumSize]byte {
	h := sha256.Sum256(data)
	h2 := sha256.Sum256(h[:])
	var sum [b58ChecksumSize]byte
	copy(sum[:], h2[:b58ChecksumSize])
	return sum
}
