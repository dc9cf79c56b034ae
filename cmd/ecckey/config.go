package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dep2p/go-ecckey/pkg/lib/log"
	"github.com/dep2p/go-ecckey/pkg/types"
)

// ============================================================================
//                              配置定义
// ============================================================================

// 环境变量（均使用 ECCKEY_ 前缀）
const (
	EnvPrefix   = "ECCKEY_"
	EnvNetwork  = "NETWORK"
	EnvKeystore = "KEYSTORE"
	EnvLogLevel = "LOG_LEVEL"
	EnvLogFile  = "LOG_FILE"
	EnvPassword = "PASSWORD"
)

// Config CLI 配置
type Config struct {
	// Network 新生成密钥所属网络（mainnet/testnet）
	Network string `json:"network" yaml:"network"`

	// Keystore 密钥存储目录
	Keystore string `json:"keystore" yaml:"keystore"`

	// LogLevel 日志级别（debug/info/warn/error）
	LogLevel string `json:"log_level" yaml:"log_level"`

	// LogFile 日志文件路径，为空时输出到 stderr
	LogFile string `json:"log_file,omitempty" yaml:"log_file,omitempty"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Network:  types.NetworkMainNet.String(),
		Keystore: "keys",
		LogLevel: "warn",
	}
}

// Validate 检查配置是否有效
func (c *Config) Validate() error {
	if _, err := types.ParseNetwork(c.Network); err != nil {
		return err
	}
	if c.Keystore == "" {
		return fmt.Errorf("keystore 目录不能为空")
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ============================================================================
//                              配置加载
// ============================================================================

// loadConfigFile 从文件加载配置
//
// .yaml/.yml 按 YAML 解析，其余按 JSON 解析。文件中未出现的字段保留默认值。
func loadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: 用户指定的配置文件路径是预期行为
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
	}
	return cfg, nil
}

// applyEnvOverrides 应用环境变量覆盖配置
//
// 环境变量优先级高于配置文件，但低于命令行参数。
// 支持的环境变量：
//   - ECCKEY_NETWORK: 网络
//   - ECCKEY_KEYSTORE: 密钥存储目录
//   - ECCKEY_LOG_LEVEL: 日志级别
//   - ECCKEY_LOG_FILE: 日志文件路径
func applyEnvOverrides(cfg *Config, getenv func(string) string) {
	if v := getenv(EnvPrefix + EnvNetwork); v != "" {
		cfg.Network = v
	}
	if v := getenv(EnvPrefix + EnvKeystore); v != "" {
		cfg.Keystore = v
	}
	if v := getenv(EnvPrefix + EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := getenv(EnvPrefix + EnvLogFile); v != "" {
		cfg.LogFile = v
	}
}
