package crypto

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"fmt"
	"math/big"
)

// ============================================================================
//                              紧凑点编码
// ============================================================================

// 紧凑编码只保存 x 坐标（32 字节），不保存符号字节。
//
// 给定 x，曲线方程 y² = x³ - 3x + b (mod p) 有两个根 y 和 p - y。
// 约定取较小的根，因此只有 y <= p - y 的点可以紧凑编码，
// 大约占所有点的一半。

// CompactPointSize 紧凑编码点的大小（字节）
const CompactPointSize = 32

var (
	p256       = elliptic.P256()
	p256Params = p256.Params()

	bigThree = big.NewInt(3)
)

// IsCompactable 判断公钥点是否可以紧凑编码
//
// 等价于：对 x 解压得到的 y 与原 y 相同。
func IsCompactable(pub *ecdsa.PublicKey) bool {
	negY := new(big.Int).Sub(p256Params.P, pub.Y)
	return pub.Y.Cmp(negY) <= 0
}

// EncodeCompactPoint 返回公钥点的紧凑编码（大端序 x 坐标）
//
// 调用方只应持有可紧凑编码的点，传入其他点会 panic。
func EncodeCompactPoint(pub *ecdsa.PublicKey) []byte {
	if !IsCompactable(pub) {
		panic("crypto: EncodeCompactPoint called with a non-compactable point")
	}
	out := make([]byte, CompactPointSize)
	pub.X.FillBytes(out)
	return out
}

// DecodeCompactPoint 从紧凑编码恢复公钥点
//
// x 必须是合法域元素，且 x³ - 3x + b 在模 p 下有平方根，否则返回 ErrNotCompact。
func DecodeCompactPoint(data []byte) (*ecdsa.PublicKey, error) {
	if len(data) != CompactPointSize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d",
			ErrInvalidKeySize, CompactPointSize, len(data))
	}

	p := p256Params.P
	x := new(big.Int).SetBytes(data)
	if x.Cmp(p) >= 0 {
		return nil, fmt.Errorf("%w: x is not a field element", ErrNotCompact)
	}

	// y² = x³ - 3x + b
	y2 := new(big.Int).Mul(x, x)
	y2.Mul(y2, x)
	threeX := new(big.Int).Mul(x, bigThree)
	y2.Sub(y2, threeX)
	y2.Add(y2, p256Params.B)
	y2.Mod(y2, p)

	y := new(big.Int).ModSqrt(y2, p)
	if y == nil {
		return nil, fmt.Errorf("%w: x is not on the curve", ErrNotCompact)
	}

	// 取较小的根
	if negY := new(big.Int).Sub(p, y); negY.Cmp(y) < 0 {
		y = negY
	}

	if !p256.IsOnCurve(x, y) {
		return nil, fmt.Errorf("%w: recovered point is not on the curve", ErrNotCompact)
	}

	return &ecdsa.PublicKey{Curve: p256, X: x, Y: y}, nil
}
