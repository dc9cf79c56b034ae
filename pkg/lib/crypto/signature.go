package crypto

import (
	"errors"
	"fmt"
	"math/big"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

// ============================================================================
//                              DER 签名编码
// ============================================================================

// 签名格式（DER）：
//
//   ECDSA-Sig-Value ::= SEQUENCE {
//       r  INTEGER,
//       s  INTEGER
//   }

// encodeDERSignature 将 (r, s) 编码为 DER
func encodeDERSignature(r, s *big.Int) ([]byte, error) {
	var b cryptobyte.Builder
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1BigInt(r)
		b.AddASN1BigInt(s)
	})
	sig, err := b.Bytes()
	if err != nil {
		return nil, fmt.Errorf("encode DER signature: %w", err)
	}
	return sig, nil
}

// parseDERSignature 严格解析 DER 签名
//
// 要求恰好一个 SEQUENCE，内含两个 INTEGER，无多余字节，且 r、s 都在 [1, n-1] 内。
func parseDERSignature(sig []byte) (*big.Int, *big.Int, error) {
	if len(sig) == 0 {
		return nil, nil, fmt.Errorf("%w: empty input", ErrSignatureDecode)
	}

	var (
		inner cryptobyte.String
		r     = new(big.Int)
		s     = new(big.Int)
	)
	input := cryptobyte.String(sig)
	if !input.ReadASN1(&inner, asn1.SEQUENCE) ||
		!input.Empty() ||
		!inner.ReadASN1Integer(r) ||
		!inner.ReadASN1Integer(s) ||
		!inner.Empty() {
		return nil, nil, ErrSignatureDecode
	}

	n := p256Params.N
	if r.Sign() <= 0 || s.Sign() <= 0 || r.Cmp(n) >= 0 || s.Cmp(n) >= 0 {
		return nil, nil, fmt.Errorf("%w: scalar out of range", ErrSignatureDecode)
	}
	return r, s, nil
}

// ============================================================================
//                              签名辅助函数
// ============================================================================

// Sign 使用私钥签名数据
func Sign(key PrivateKey, data []byte) ([]byte, error) {
	if key == nil {
		return nil, ErrNilPrivateKey
	}
	return key.Sign(data)
}

// Verify 使用公钥验证签名
func Verify(key PublicKey, data, sig []byte) error {
	if key == nil {
		return ErrNilPublicKey
	}
	if sig == nil {
		return ErrNilSignature
	}
	return key.Verify(data, sig)
}

// ============================================================================
//                              签名信封
// ============================================================================

// SignedEnvelope 签名信封
//
// 签名覆盖 TypeHint || Contents，接收方只需信封本身即可验证。
type SignedEnvelope struct {
	// PublicKey 签名者公钥
	PublicKey PublicKey

	// TypeHint 内容类型提示
	TypeHint []byte

	// Contents 信封内容
	Contents []byte

	// Signature DER 编码的签名
	Signature []byte
}

// Seal 创建签名信封
func Seal(key PrivateKey, typeHint, contents []byte) (*SignedEnvelope, error) {
	if key == nil {
		return nil, ErrNilPrivateKey
	}
	sig, err := key.Sign(envelopePayload(typeHint, contents))
	if err != nil {
		return nil, err
	}

	return &SignedEnvelope{
		PublicKey: key.GetPublic(),
		TypeHint:  typeHint,
		Contents:  contents,
		Signature: sig,
	}, nil
}

// Open 验证签名信封并返回内容
func (e *SignedEnvelope) Open() ([]byte, error) {
	if e == nil {
		return nil, errors.New("nil envelope")
	}
	if err := Verify(e.PublicKey, envelopePayload(e.TypeHint, e.Contents), e.Signature); err != nil {
		return nil, err
	}
	return e.Contents, nil
}

// envelopePayload 拼接待签名数据，不修改调用方的切片
func envelopePayload(typeHint, contents []byte) []byte {
	payload := make([]byte, 0, len(typeHint)+len(contents))
	payload = append(payload, typeHint...)
	return append(payload, contents...)
}
