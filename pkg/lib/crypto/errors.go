package crypto

import (
	"errors"

	"github.com/dep2p/go-ecckey/pkg/types"
)

// ============================================================================
//                              错误定义
// ============================================================================

// 标签相关错误（由 pkg/types 定义，此处重新导出）
var (
	// ErrUnknownNetwork 标签字节中的网络无法识别
	ErrUnknownNetwork = types.ErrUnknownNetwork

	// ErrUnknownKeyType 标签字节中的密钥类型无法识别
	ErrUnknownKeyType = types.ErrUnknownKeyType
)

// 密钥相关错误
var (
	// ErrBadKeyType 不支持的密钥类型
	ErrBadKeyType = errors.New("invalid or unsupported key type")

	// ErrNilPrivateKey 私钥为空
	ErrNilPrivateKey = errors.New("nil private key")

	// ErrNilPublicKey 公钥为空
	ErrNilPublicKey = errors.New("nil public key")

	// ErrInvalidKeySize 密钥大小无效
	ErrInvalidKeySize = errors.New("invalid key size")

	// ErrInvalidScalar 私钥标量不在 [1, n-1] 范围内
	ErrInvalidScalar = errors.New("invalid private scalar")

	// ErrNotCompact 字节无法解码为紧凑点，或派生出的公钥不可紧凑编码
	ErrNotCompact = errors.New("not a compact point")
)

// 签名相关错误
var (
	// ErrNilSignature 签名为空
	ErrNilSignature = errors.New("nil signature")

	// ErrSignatureDecode 签名不是合法的 DER 编码
	ErrSignatureDecode = errors.New("malformed DER signature")

	// ErrInvalidSignature 签名格式正确但验证失败
	ErrInvalidSignature = errors.New("invalid signature")
)

// 显示编码相关错误
var (
	// ErrInvalidB58 Base58Check 字符串格式无效
	ErrInvalidB58 = errors.New("invalid base58check string")

	// ErrB58Checksum Base58Check 校验和不匹配
	ErrB58Checksum = errors.New("base58check checksum mismatch")
)

// 密钥存储相关错误
var (
	// ErrKeyNotFound 密钥未找到
	ErrKeyNotFound = errors.New("key not found")

	// ErrKeyExists 密钥已存在
	ErrKeyExists = errors.New("key already exists")

	// ErrInvalidPassword 密码无效
	ErrInvalidPassword = errors.New("invalid password")

	// ErrDecryptionFailed 解密失败
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrInvalidKeyFile 密钥文件格式无效
	ErrInvalidKeyFile = errors.New("invalid key file format")
)
