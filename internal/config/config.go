package config

import (
	"github.com/polyphene/recs-monorepo/internal/logger"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Filecoin  FilecoinConfig  `mapstructure:"filecoin"`
	EnergyWeb EnergyWebConfig `mapstructure:"energyweb"`
	Bridge    BridgeConfig    `mapstructure:"bridge"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// FilecoinConfig 主链配置
type FilecoinConfig struct {
	RpcUrl             string `mapstructure:"rpc_url"`             // RPC节点URL
	ChainId            int64  `mapstructure:"chain_id"`            // 链ID
	MarketplaceAddress string `mapstructure:"marketplace_address"` // REC市场合约地址
	BridgePrivateKey   string `mapstructure:"bridge_private_key"`  // 桥接签名私钥
	StartBlock         uint64 `mapstructure:"start_block"`         // 合约部署区块号
	BackoffSeconds     int    `mapstructure:"backoff_seconds"`     // 区块未产出时的退避秒数
}

// EnergyWebConfig 副链配置
type EnergyWebConfig struct {
	HttpUrl                 string `mapstructure:"http_url"`                  // HTTP RPC URL
	WssUrl                  string `mapstructure:"wss_url"`                   // WebSocket URL, 订阅事件用
	RegistryAddress         string `mapstructure:"registry_address"`          // 证书登记合约地址
	BatchFactoryAddress     string `mapstructure:"batch_factory_address"`     // 批次工厂合约地址
	AgreementFactoryAddress string `mapstructure:"agreement_factory_address"` // 协议工厂合约地址
	StartBlock              uint64 `mapstructure:"start_block"`               // 相关合约部署区块号
}

// BridgeConfig 桥接重放配置
type BridgeConfig struct {
	Interval int `mapstructure:"interval"` // 秒, 无待处理交易时的轮询间隔
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // 输出目标: stdout, stderr, file
	File   string `mapstructure:"file"`   // 日志文件路径（当output为file时使用）
}

func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/recs")

	// 设置默认值
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.dbname", "recs")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("filecoin.start_block", 0)
	viper.SetDefault("filecoin.backoff_seconds", 3)
	viper.SetDefault("energyweb.start_block", 0)
	viper.SetDefault("bridge.interval", 10)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.file", "logs/app.log")

	// 自动读取环境变量
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logger.Warn("Warning: Could not read config file: %v", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		logger.Fatal("Unable to decode config into struct: %v", err)
	}

	// 缺失必要的链配置无法降级, 启动即失败
	validate(&config)

	return &config
}

// validate 校验必填项
func validate(cfg *Config) {
	required := map[string]string{
		"filecoin.rpc_url":                 cfg.Filecoin.RpcUrl,
		"filecoin.marketplace_address":     cfg.Filecoin.MarketplaceAddress,
		"filecoin.bridge_private_key":      cfg.Filecoin.BridgePrivateKey,
		"energyweb.http_url":               cfg.EnergyWeb.HttpUrl,
		"energyweb.registry_address":       cfg.EnergyWeb.RegistryAddress,
		"energyweb.batch_factory_address":  cfg.EnergyWeb.BatchFactoryAddress,
		"energyweb.agreement_factory_address": cfg.EnergyWeb.AgreementFactoryAddress,
	}

	for key, value := range required {
		if value == "" {
			logger.Fatal("Missing required config: %s", key)
		}
	}
}
