// Package lib 包含基础设施工具库
//
//   - crypto: 带网络标签的紧凑 P-256 密钥、签名、显示编码和密钥存储
//   - log: 日志封装
//
// # 使用示例
//
//	import (
//	    "github.com/dep2p/go-ecckey/pkg/lib/crypto"
//	    "github.com/dep2p/go-ecckey/pkg/lib/log"
//	)
package lib
