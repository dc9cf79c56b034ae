// Package crypto 提供带网络标签的紧凑 P-256 密钥
//
// 本包实现节点身份使用的密钥格式：生成密钥、序列化为定长字节、
// 以及 ECDSA 签名和验证。
//
// # 紧凑编码
//
// 公钥只保存 x 坐标（32 字节），y 取两个根中较小的一个。
// 只有约一半的 P-256 点满足该条件，因此随机生成会重试，
// 直到得到可紧凑编码的公钥。
//
// # 序列化格式
//
//	密钥对: [tag(1)] [scalar(32)]   共 33 字节
//	公钥:   [tag(1)] [x(32)]        共 33 字节
//	签名:   DER 编码的 ECDSA (r, s)
//
// 标签字节的高 4 位是网络，低 4 位是密钥类型（见 pkg/types.KeyTag）。
//
// # 快速开始
//
// 生成密钥对：
//
//	kp, err := crypto.GenerateEccCompact(types.NetworkMainNet, rand.Reader)
//
// 签名和验证：
//
//	sig, err := kp.Sign(msg)
//	err = kp.PublicKey().Verify(msg, sig)
//
// 序列化：
//
//	data := kp.Bytes()
//	kp2, err := crypto.UnmarshalEccCompactKeypair(data)
//
// 显示编码：
//
//	s := kp.PublicKey().String()
//	pub, err := crypto.PublicKeyFromString(s)
//
// 密钥存储：
//
//	ks, err := crypto.NewFSKeystore("/path/to/keys", password)
//	err = ks.Put("node-key", kp)
//
// # 并发
//
// 密钥创建后不可变，可以被任意多个 goroutine 同时用于签名和验证。
// 传给生成函数的随机源由调用方负责并发安全。
package crypto
