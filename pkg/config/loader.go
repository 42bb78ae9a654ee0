package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrNoBaseConfig 表示配置目录中缺少 base.yaml
var ErrNoBaseConfig = errors.New("base.yaml not found")

// Load 加载配置并解码为 Config；缺少 base.yaml 时返回 ErrNoBaseConfig
// env: local, test, 或其他环境名称
// configDir: 配置文件目录，默认为 "config"
func Load(env string, configDir string) (*Config, error) {
	merged, err := LoadConfig(env, configDir)
	if err != nil {
		return nil, err
	}

	raw, err := yaml.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	OverrideDBFromEnv(&cfg.DB)
	OverrideLogFromEnv(&cfg.Log)
	OverrideMetricsFromEnv(&cfg.Metrics)

	return cfg, nil
}

// LoadConfig 加载配置，支持多环境
func LoadConfig(env string, configDir string) (map[string]interface{}, error) {
	if configDir == "" {
		configDir = "config"
	}

	// 1. 加载 base.yaml
	basePath := filepath.Join(configDir, "base.yaml")
	if _, err := os.Stat(basePath); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w in %s", ErrNoBaseConfig, configDir)
	}
	baseConfig, err := loadYAMLFile(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load base.yaml: %w", err)
	}

	// 2. 加载环境特定配置（如果存在）
	envConfig := make(map[string]interface{})
	if env != "" && env != "base" {
		envFile := filepath.Join(configDir, fmt.Sprintf("%s.yaml", env))
		if _, err := os.Stat(envFile); err == nil {
			envConfig, err = loadYAMLFile(envFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load %s.yaml: %w", env, err)
			}
		}
	}

	// 3. 环境配置覆盖基础配置
	merged := mergeInto(baseConfig, envConfig)

	// 4. 加载 secrets.env（如果存在），替换 ${VAR} 占位符
	secretsFile := filepath.Join(configDir, "secrets.env")
	if _, err := os.Stat(secretsFile); err == nil {
		secrets, err := godotenv.Read(secretsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load secrets.env: %w", err)
		}
		merged = expandPlaceholders(merged, placeholderReplacer(secrets)).(map[string]interface{})
	}

	return merged, nil
}

// loadYAMLFile 加载 YAML 文件
func loadYAMLFile(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := make(map[string]interface{})
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	return config, nil
}

// mergeInto 将 src 深度合并进 dst（src 优先），嵌套 map 递归合并
func mergeInto(dst, src map[string]interface{}) map[string]interface{} {
	if dst == nil {
		dst = make(map[string]interface{}, len(src))
	}
	for k, sv := range src {
		srcMap, srcIsMap := sv.(map[string]interface{})
		dstMap, dstIsMap := dst[k].(map[string]interface{})
		if srcIsMap && dstIsMap {
			dst[k] = mergeInto(dstMap, srcMap)
			continue
		}
		dst[k] = sv
	}
	return dst
}

// expandPlaceholders 将 secrets 中的值代入所有字符串叶子节点的 ${VAR} 占位符
// 未在 secrets 中定义的占位符保持原样
func expandPlaceholders(node interface{}, r *strings.Replacer) interface{} {
	switch v := node.(type) {
	case string:
		return r.Replace(v)
	case map[string]interface{}:
		for k, child := range v {
			v[k] = expandPlaceholders(child, r)
		}
		return v
	case []interface{}:
		for i, child := range v {
			v[i] = expandPlaceholders(child, r)
		}
		return v
	default:
		return node
	}
}

func placeholderReplacer(secrets map[string]string) *strings.Replacer {
	pairs := make([]string, 0, len(secrets)*2)
	for key, value := range secrets {
		pairs = append(pairs, "${"+key+"}", value)
	}
	return strings.NewReplacer(pairs...)
}

// GetEnv 获取环境变量，如果未设置则返回默认值
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetConfigEnv 获取配置环境（从环境变量 CONFIG_ENV，默认为 local）
func GetConfigEnv() string {
	return GetEnv("CONFIG_ENV", "local")
}
