package command

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/lucheng0127/cmdhost/internal/configfile"
	"github.com/lucheng0127/cmdhost/internal/db"
	"github.com/lucheng0127/cmdhost/internal/model"
)

// ErrNoTargetFile 未选择目标配置文件
var ErrNoTargetFile = errors.New("no config file selected")

// ConfigStore 配置类命令共享的存储
type ConfigStore struct {
	repo     db.ConfigRepository
	settings db.SettingRepository
	logger   *zap.Logger
}

// NewConfigStore 创建配置存储
func NewConfigStore(repo db.ConfigRepository, settings db.SettingRepository, logger *zap.Logger) *ConfigStore {
	return &ConfigStore{
		repo:     repo,
		settings: settings,
		logger:   logger,
	}
}

// Handlers 返回所有配置类命令
func (s *ConfigStore) Handlers() []Handler {
	return []Handler{
		&ListConfigsCommand{store: s},
		&GetConfigCommand{store: s},
		&AddConfigCommand{store: s},
		&SetConfigCommand{store: s},
		&DeleteConfigCommand{store: s},
		&SelectFileCommand{store: s},
		&ApplyConfigCommand{store: s},
		&ExportConfigsCommand{store: s},
		&ImportConfigsCommand{store: s},
	}
}

var (
	keyParam  = Param{Name: "key", Kind: KIND_STRING, Description: "config key"}
	pathParam = Param{Name: "path", Kind: KIND_STRING, Description: "file path"}
	fmtParam  = Param{Name: "format", Kind: KIND_STRING, Optional: true, Description: "json, yaml or toml; inferred from the extension when omitted"}
)

// keyArg 读取并校验 key 参数
func keyArg(args Args) (string, error) {
	key := model.NormalizeKey(args.String("key"))
	if err := model.ValidateKey(key); err != nil {
		return "", InvalidArguments("%v", err)
	}
	return key, nil
}

// pathArg 读取 path 参数并转换为绝对路径
func pathArg(args Args) (string, error) {
	path := strings.TrimSpace(args.String("path"))
	if path == "" {
		return "", InvalidArguments("path is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", InvalidArguments("invalid path %q: %v", path, err)
	}
	return abs, nil
}

// ListConfigsCommand 列出所有配置键
type ListConfigsCommand struct{ store *ConfigStore }

func (c *ListConfigsCommand) Name() string        { return "list_configs" }
func (c *ListConfigsCommand) Description() string { return "List the keys of all stored configs" }
func (c *ListConfigsCommand) Params() []Param     { return nil }

func (c *ListConfigsCommand) Execute(ctx context.Context, args Args) (interface{}, error) {
	entries, err := c.store.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list configs: %w", err)
	}

	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		keys = append(keys, e.Key)
	}
	sort.Strings(keys)
	return keys, nil
}

// GetConfigCommand 读取单个配置
type GetConfigCommand struct{ store *ConfigStore }

func (c *GetConfigCommand) Name() string        { return "get_config" }
func (c *GetConfigCommand) Description() string { return "Return the JSON value stored under a key" }
func (c *GetConfigCommand) Params() []Param     { return []Param{keyParam} }

func (c *GetConfigCommand) Execute(ctx context.Context, args Args) (interface{}, error) {
	key, err := keyArg(args)
	if err != nil {
		return nil, err
	}

	entry, err := c.store.repo.FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	return entry.Value, nil
}

// AddConfigCommand 新建空配置
type AddConfigCommand struct{ store *ConfigStore }

func (c *AddConfigCommand) Name() string        { return "add_config" }
func (c *AddConfigCommand) Description() string { return "Create a new empty config under a key" }
func (c *AddConfigCommand) Params() []Param     { return []Param{keyParam} }

func (c *AddConfigCommand) Execute(ctx context.Context, args Args) (interface{}, error) {
	key, err := keyArg(args)
	if err != nil {
		return nil, err
	}

	entry, err := model.NewConfigEntry(key, nil)
	if err != nil {
		return nil, InvalidArguments("%v", err)
	}

	if err := c.store.repo.Create(ctx, entry); err != nil {
		return nil, err
	}

	c.store.logger.Info("config added", zap.String("key", key))
	return entry, nil
}

// SetConfigCommand 保存配置
type SetConfigCommand struct{ store *ConfigStore }

func (c *SetConfigCommand) Name() string        { return "set_config" }
func (c *SetConfigCommand) Description() string { return "Store a JSON object under a key, replacing any previous value" }

func (c *SetConfigCommand) Params() []Param {
	return []Param{
		keyParam,
		{Name: "value", Kind: KIND_OBJECT, Description: "config value"},
	}
}

func (c *SetConfigCommand) Execute(ctx context.Context, args Args) (interface{}, error) {
	key, err := keyArg(args)
	if err != nil {
		return nil, err
	}

	entry, err := model.NewConfigEntry(key, args.Object("value"))
	if err != nil {
		return nil, InvalidArguments("%v", err)
	}

	if err := c.store.repo.Save(ctx, entry); err != nil {
		return nil, err
	}

	c.store.logger.Info("config saved", zap.String("key", key))
	return entry, nil
}

// DeleteConfigCommand 删除配置
type DeleteConfigCommand struct{ store *ConfigStore }

func (c *DeleteConfigCommand) Name() string        { return "delete_config" }
func (c *DeleteConfigCommand) Description() string { return "Delete the config stored under a key" }
func (c *DeleteConfigCommand) Params() []Param     { return []Param{keyParam} }

func (c *DeleteConfigCommand) Execute(ctx context.Context, args Args) (interface{}, error) {
	key, err := keyArg(args)
	if err != nil {
		return nil, err
	}

	if err := c.store.repo.Delete(ctx, key); err != nil {
		return nil, err
	}

	c.store.logger.Info("config deleted", zap.String("key", key))
	return map[string]string{"deleted": key}, nil
}

// SelectFileCommand 选择目标配置文件
type SelectFileCommand struct{ store *ConfigStore }

func (c *SelectFileCommand) Name() string        { return "select_file" }
func (c *SelectFileCommand) Description() string { return "Select the config file that apply_config writes to" }
func (c *SelectFileCommand) Params() []Param     { return []Param{pathParam} }

func (c *SelectFileCommand) Execute(ctx context.Context, args Args) (interface{}, error) {
	path, err := pathArg(args)
	if err != nil {
		return nil, err
	}

	if err := c.store.settings.PutSetting(ctx, model.SETTING_TARGET_FILE, path); err != nil {
		return nil, fmt.Errorf("failed to save target file: %w", err)
	}

	c.store.logger.Info("target file selected", zap.String("path", path))
	return map[string]string{model.SETTING_TARGET_FILE: path}, nil
}

// ApplyConfigCommand 把配置写入目标文件
type ApplyConfigCommand struct{ store *ConfigStore }

// ApplyResult apply_config 命令结果
type ApplyResult struct {
	Key        string `json:"key"`
	TargetFile string `json:"target_file"`
	Bytes      int    `json:"bytes"`
}

func (c *ApplyConfigCommand) Name() string        { return "apply_config" }
func (c *ApplyConfigCommand) Description() string { return "Write the config stored under a key to the selected config file" }
func (c *ApplyConfigCommand) Params() []Param     { return []Param{keyParam} }

func (c *ApplyConfigCommand) Execute(ctx context.Context, args Args) (interface{}, error) {
	key, err := keyArg(args)
	if err != nil {
		return nil, err
	}

	target, err := c.store.settings.GetSetting(ctx, model.SETTING_TARGET_FILE)
	if err != nil {
		return nil, fmt.Errorf("failed to read target file: %w", err)
	}
	if target == "" {
		return nil, ErrNoTargetFile
	}

	entry, err := c.store.repo.FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}

	n, err := configfile.WriteTarget(target, entry.Value)
	if err != nil {
		return nil, err
	}

	c.store.logger.Info("config applied",
		zap.String("key", key),
		zap.String("target", target),
		zap.Int("bytes", n),
	)
	return ApplyResult{Key: key, TargetFile: target, Bytes: n}, nil
}

// ExportConfigsCommand 导出配置集
type ExportConfigsCommand struct{ store *ConfigStore }

// ExportResult export_configs 命令结果
type ExportResult struct {
	Path   string            `json:"path"`
	Format configfile.Format `json:"format"`
	Count  int               `json:"count"`
}

func (c *ExportConfigsCommand) Name() string        { return "export_configs" }
func (c *ExportConfigsCommand) Description() string { return "Export all configs as one {key: value} file" }
func (c *ExportConfigsCommand) Params() []Param     { return []Param{pathParam, fmtParam} }

func (c *ExportConfigsCommand) Execute(ctx context.Context, args Args) (interface{}, error) {
	path, err := pathArg(args)
	if err != nil {
		return nil, err
	}

	format, err := configfile.ParseFormat(args.String("format"), path)
	if err != nil {
		return nil, InvalidArguments("%v", err)
	}

	entries, err := c.store.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list configs: %w", err)
	}

	set := make(map[string]map[string]interface{}, len(entries))
	for _, e := range entries {
		set[e.Key] = e.Value
	}

	if err := configfile.WriteSet(path, format, set); err != nil {
		var null *configfile.ErrNullValue
		if errors.As(err, &null) {
			return nil, InvalidArguments("%v", err)
		}
		return nil, err
	}

	c.store.logger.Info("config set exported",
		zap.String("path", path),
		zap.String("format", string(format)),
		zap.Int("count", len(set)),
	)
	return ExportResult{Path: path, Format: format, Count: len(set)}, nil
}

// ImportConfigsCommand 导入配置集
type ImportConfigsCommand struct{ store *ConfigStore }

func (c *ImportConfigsCommand) Name() string        { return "import_configs" }
func (c *ImportConfigsCommand) Description() string { return "Import a {key: value} file, overwriting existing keys" }
func (c *ImportConfigsCommand) Params() []Param     { return []Param{pathParam, fmtParam} }

func (c *ImportConfigsCommand) Execute(ctx context.Context, args Args) (interface{}, error) {
	path, err := pathArg(args)
	if err != nil {
		return nil, err
	}

	format, err := configfile.ParseFormat(args.String("format"), path)
	if err != nil {
		return nil, InvalidArguments("%v", err)
	}

	set, err := configfile.ReadSet(path, format)
	if err != nil {
		return nil, err
	}

	// 先全部校验再写入，避免导入一半
	entries := make([]*model.ConfigEntry, 0, len(set))
	seen := make(map[string]string, len(set))
	for key, value := range set {
		entry, err := model.NewConfigEntry(key, value)
		if err != nil {
			return nil, fmt.Errorf("invalid key %q in %s: %w", key, path, err)
		}
		if prev, dup := seen[entry.Key]; dup {
			return nil, InvalidArguments("keys %q and %q in %s both normalize to %q", prev, key, path, entry.Key)
		}
		seen[entry.Key] = key
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })

	imported := make([]string, 0, len(entries))
	for _, entry := range entries {
		if err := c.store.repo.Save(ctx, entry); err != nil {
			return nil, fmt.Errorf("failed to save %q: %w", entry.Key, err)
		}
		imported = append(imported, entry.Key)
	}

	c.store.logger.Info("config set imported",
		zap.String("path", path),
		zap.Int("count", len(imported)),
	)
	return map[string][]string{"imported": imported}, nil
}
