package configfile

import (
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotObject 配置集中的值不是对象
type ErrNotObject struct {
	Key string
}

func (e *ErrNotObject) Error() string {
	return fmt.Sprintf("value of %q is not an object", e.Key)
}

// ErrNullValue 值中含有 null，目标格式无法表示
type ErrNullValue struct {
	Key    string
	Format Format
}

func (e *ErrNullValue) Error() string {
	return fmt.Sprintf("value of %q contains null; %s cannot represent it", e.Key, e.Format)
}

// WriteTarget 把单个配置以两空格缩进的 JSON 写入目标文件，返回写入字节数
func WriteTarget(path string, value map[string]interface{}) (int, error) {
	if value == nil {
		value = map[string]interface{}{}
	}

	data, err := marshal(FORMAT_JSON, value)
	if err != nil {
		return 0, fmt.Errorf("failed to encode config: %w", err)
	}

	if err := writeAtomic(path, data); err != nil {
		return 0, err
	}
	return len(data), nil
}

// WriteSet 导出配置集 {key: value}
func WriteSet(path string, format Format, set map[string]map[string]interface{}) error {
	if format == FORMAT_TOML {
		for key, value := range set {
			if containsNull(value) {
				return &ErrNullValue{Key: key, Format: format}
			}
		}
	}

	data, err := marshal(format, set)
	if err != nil {
		return fmt.Errorf("failed to encode config set: %w", err)
	}
	return writeAtomic(path, data)
}

// ReadSet 导入配置集，每个值都必须是对象
func ReadSet(path string, format Format) (map[string]map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config set: %w", err)
	}

	raw, err := unmarshal(format, data)
	if err != nil {
		return nil, err
	}

	set := make(map[string]map[string]interface{}, len(raw))
	for key, v := range raw {
		obj, ok := v.(map[string]interface{})
		if !ok {
			return nil, &ErrNotObject{Key: key}
		}
		set[key] = obj
	}
	return set, nil
}

// writeAtomic 先写临时文件再 rename，避免目标文件写到一半
// 目标已存在时沿用其权限，否则为 0644
func writeAtomic(path string, data []byte) error {
	perm := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Chmod(tmpName, perm); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
