// Package types 定义密钥标签相关的基础类型
//
// 这是最底层的包，不依赖任何其他内部包。
//
// # 文件组织
//
//   - keytag.go - Network, KeyType, KeyTag 以及标签字节解析
//
// # 标签字节
//
// 每个序列化密钥的第一个字节是标签，高 4 位为网络，低 4 位为密钥类型：
//
//	tag := types.KeyTag{Network: types.NetworkTestNet, KeyType: types.KeyTypeEccCompact}
//	b := tag.Byte() // 0x10
//
//	tag, err := types.ParseKeyTag(b)
package types
