// Package main 提供 ecckey 命令行入口
//
// ecckey 管理带网络标签的紧凑 P-256 密钥：生成、列出、导出公钥、签名和验证。
package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dep2p/go-ecckey/pkg/lib/crypto"
	"github.com/dep2p/go-ecckey/pkg/lib/log"
	"github.com/dep2p/go-ecckey/pkg/types"
)

var logger = log.Logger("ecckey/cmd")

const usageText = `用法: ecckey [选项] <命令> [参数]

命令:
  generate [-seed <hex>] <id>        生成密钥并保存到 keystore，输出公钥
  list                               列出 keystore 中的密钥
  pubkey <id>                        输出密钥的 Base58 公钥
  sign <id> <message>                签名消息，输出十六进制 DER 签名
  verify <pubkey> <message> <sig>    验证签名

选项:
  -config <path>      配置文件（.json / .yaml）
  -network <name>     网络（mainnet/testnet）
  -keystore <dir>     密钥存储目录
  -log-level <level>  日志级别（debug/info/warn/error）

环境变量:
  ECCKEY_NETWORK, ECCKEY_KEYSTORE, ECCKEY_LOG_LEVEL, ECCKEY_LOG_FILE
  ECCKEY_PASSWORD     keystore 加密密码（为空则不加密）
`

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Getenv); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

// cli 一次命令执行的上下文
type cli struct {
	cfg      *Config
	network  types.Network
	password []byte
	out      io.Writer
}

func run(args []string, stdout io.Writer, getenv func(string) string) error {
	fs := flag.NewFlagSet("ecckey", flag.ContinueOnError)
	var (
		configFile  = fs.String("config", "", "配置文件路径")
		network     = fs.String("network", "", "网络 (mainnet/testnet)")
		keystoreDir = fs.String("keystore", "", "密钥存储目录")
		logLevel    = fs.String("log-level", "", "日志级别 (debug/info/warn/error)")
	)
	fs.Usage = func() { fmt.Fprint(fs.Output(), usageText) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	// 配置优先级（从高到低）：命令行参数 > 环境变量 > 配置文件 > 默认值
	cfg := DefaultConfig()
	if *configFile != "" {
		var err error
		cfg, err = loadConfigFile(*configFile)
		if err != nil {
			return fmt.Errorf("加载配置文件失败: %w", err)
		}
	}
	applyEnvOverrides(cfg, getenv)
	if isFlagSet(fs, "network") {
		cfg.Network = *network
	}
	if isFlagSet(fs, "keystore") {
		cfg.Keystore = *keystoreDir
	}
	if isFlagSet(fs, "log-level") {
		cfg.LogLevel = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}

	logFile, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	if logFile != nil {
		defer func() { _ = logFile.Close() }()
	}

	nw, _ := types.ParseNetwork(cfg.Network)
	c := &cli{
		cfg:      cfg,
		network:  nw,
		password: []byte(getenv(EnvPrefix + EnvPassword)),
		out:      stdout,
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return errors.New("缺少命令")
	}

	cmd, cmdArgs := rest[0], rest[1:]
	logger.Debug("执行命令", "cmd", cmd, "network", cfg.Network, "keystore", cfg.Keystore)

	switch cmd {
	case "generate":
		return c.generate(cmdArgs)
	case "list":
		return c.list(cmdArgs)
	case "pubkey":
		return c.pubkey(cmdArgs)
	case "sign":
		return c.sign(cmdArgs)
	case "verify":
		return c.verify(cmdArgs)
	default:
		return fmt.Errorf("未知命令: %s", cmd)
	}
}

// ============================================================================
//                              命令实现
// ============================================================================

// generate 生成密钥并保存
//
// 指定 -seed 时直接使用 32 字节标量，派生的公钥不可紧凑编码时返回错误。
func (c *cli) generate(args []string) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	seed := fs.String("seed", "", "32 字节十六进制私钥标量")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("用法: generate [-seed <hex>] <id>")
	}
	id := fs.Arg(0)

	var (
		kp  *crypto.EccCompactKeypair
		err error
	)
	if *seed != "" {
		entropy, decErr := hex.DecodeString(*seed)
		if decErr != nil {
			return fmt.Errorf("解析 seed 失败: %w", decErr)
		}
		kp, err = crypto.GenerateEccCompactFromEntropy(c.network, entropy)
		crypto.SecureZero(entropy)
	} else {
		kp, err = crypto.GenerateEccCompact(c.network, rand.Reader)
	}
	if err != nil {
		return fmt.Errorf("生成密钥失败: %w", err)
	}

	ks, err := c.keystore()
	if err != nil {
		return err
	}
	if err := ks.Put(id, kp); err != nil {
		return fmt.Errorf("保存密钥 %s 失败: %w", id, err)
	}

	logger.Info("密钥已生成", "id", id, "tag", kp.KeyTag())
	fmt.Fprintln(c.out, kp.PublicKey().String())
	return nil
}

// list 列出密钥：id、标签、公钥
func (c *cli) list(args []string) error {
	if len(args) != 0 {
		return errors.New("用法: list")
	}
	ks, err := c.keystore()
	if err != nil {
		return err
	}
	ids, err := ks.List()
	if err != nil {
		return err
	}
	for _, id := range ids {
		priv, err := ks.Get(id)
		if err != nil {
			return fmt.Errorf("读取密钥 %s 失败: %w", id, err)
		}
		fmt.Fprintf(c.out, "%s\t%s\t%s\n", id, priv.KeyTag(), crypto.EncodeB58(priv.GetPublic().Bytes()))
	}
	return nil
}

// pubkey 输出 Base58 公钥
func (c *cli) pubkey(args []string) error {
	if len(args) != 1 {
		return errors.New("用法: pubkey <id>")
	}
	priv, err := c.loadKey(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, crypto.EncodeB58(priv.GetPublic().Bytes()))
	return nil
}

// sign 签名消息
func (c *cli) sign(args []string) error {
	if len(args) != 2 {
		return errors.New("用法: sign <id> <message>")
	}
	priv, err := c.loadKey(args[0])
	if err != nil {
		return err
	}
	sig, err := crypto.Sign(priv, []byte(args[1]))
	if err != nil {
		return fmt.Errorf("签名失败: %w", err)
	}
	fmt.Fprintln(c.out, hex.EncodeToString(sig))
	return nil
}

// verify 验证签名，不需要访问 keystore
func (c *cli) verify(args []string) error {
	if len(args) != 3 {
		return errors.New("用法: verify <pubkey> <message> <sig>")
	}
	pub, err := crypto.PublicKeyFromString(args[0])
	if err != nil {
		return fmt.Errorf("解析公钥失败: %w", err)
	}
	sig, err := hex.DecodeString(args[2])
	if err != nil {
		return fmt.Errorf("%w: %v", crypto.ErrSignatureDecode, err)
	}
	if err := crypto.Verify(pub, []byte(args[1]), sig); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "OK")
	return nil
}

// ============================================================================
//                              辅助函数
// ============================================================================

func (c *cli) keystore() (*crypto.FSKeystore, error) {
	ks, err := crypto.NewFSKeystore(c.cfg.Keystore, c.password)
	if err != nil {
		return nil, fmt.Errorf("打开 keystore 失败: %w", err)
	}
	return ks, nil
}

func (c *cli) loadKey(id string) (crypto.PrivateKey, error) {
	ks, err := c.keystore()
	if err != nil {
		return nil, err
	}
	priv, err := ks.Get(id)
	if err != nil {
		return nil, fmt.Errorf("读取密钥 %s 失败: %w", id, err)
	}
	return priv, nil
}

// setupLogging 设置日志级别和输出
//
// 指定日志文件时返回打开的文件，由调用方关闭。
func setupLogging(cfg *Config) (*os.File, error) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if cfg.LogFile == "" {
		log.SetOutputWithLevel(os.Stderr, level)
		return nil, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0750); err != nil {
		return nil, fmt.Errorf("创建日志目录失败: %w", err)
	}
	file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("打开日志文件失败: %w", err)
	}
	log.SetOutputWithLevel(file, level)
	return file, nil
}

// isFlagSet 检查命令行参数是否被显式设置
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}
