package configfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"
)

// Format 配置集文件格式
type Format string

// 支持的格式
const (
	FORMAT_JSON Format = "json"
	FORMAT_YAML Format = "yaml"
	FORMAT_TOML Format = "toml"
)

// ParseFormat 解析格式名，空串时根据文件扩展名推断
func ParseFormat(name, path string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return FormatFromPath(path), nil
	case "json":
		return FORMAT_JSON, nil
	case "yaml", "yml":
		return FORMAT_YAML, nil
	case "toml":
		return FORMAT_TOML, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", name)
	}
}

// FormatFromPath 根据扩展名推断格式，未知扩展名使用 JSON
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FORMAT_YAML
	case ".toml":
		return FORMAT_TOML
	default:
		return FORMAT_JSON
	}
}

// marshal 按格式编码
func marshal(format Format, v interface{}) ([]byte, error) {
	switch format {
	case FORMAT_JSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case FORMAT_YAML:
		return yaml.Marshal(v)
	case FORMAT_TOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(v); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// containsNull 递归查找 nil 值
func containsNull(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case map[string]interface{}:
		for _, item := range t {
			if containsNull(item) {
				return true
			}
		}
	case []interface{}:
		for _, item := range t {
			if containsNull(item) {
				return true
			}
		}
	}
	return false
}

// unmarshal 按格式解码为通用 map
func unmarshal(format Format, data []byte) (map[string]interface{}, error) {
	var raw map[string]interface{}

	var err error
	switch format {
	case FORMAT_JSON:
		err = json.Unmarshal(data, &raw)
	case FORMAT_YAML:
		err = yaml.Unmarshal(data, &raw)
	case FORMAT_TOML:
		err = toml.Unmarshal(data, &raw)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", format, err)
	}

	return normalize(raw)
}

// normalize 经 JSON 转一次，统一数值和嵌套 map 的类型
func normalize(raw map[string]interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}

	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]interface{}{}
	}
	return out, nil
}
