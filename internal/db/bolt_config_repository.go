package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/lucheng0127/cmdhost/internal/model"
)

// Bucket 名称
const (
	BUCKET_CONFIGS  = "configs"
	BUCKET_SETTINGS = "settings"
)

// BoltConfigRepository bbolt 实现的 ConfigRepository 和 SettingRepository
type BoltConfigRepository struct {
	db     *bbolt.DB
	logger *zap.Logger
}

// NewBoltConfigRepository 创建 BoltConfigRepository
func NewBoltConfigRepository(db *bbolt.DB, logger *zap.Logger) *BoltConfigRepository {
	return &BoltConfigRepository{
		db:     db,
		logger: logger,
	}
}

// Save 保存或更新配置
func (r *BoltConfigRepository) Save(ctx context.Context, entry *model.ConfigEntry) error {
	return r.put(entry, true)
}

// Create 创建配置
func (r *BoltConfigRepository) Create(ctx context.Context, entry *model.ConfigEntry) error {
	return r.put(entry, false)
}

// put 写入配置，overwrite 为 false 时拒绝覆盖
func (r *BoltConfigRepository) put(entry *model.ConfigEntry, overwrite bool) error {
	entry.Key = model.NormalizeKey(entry.Key)
	if err := entry.Validate(); err != nil {
		return err
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(BUCKET_CONFIGS))
		if b == nil {
			return fmt.Errorf("bucket not found")
		}

		existing := b.Get([]byte(entry.Key))
		now := time.Now()

		if existing != nil {
			if !overwrite {
				return &ErrConfigAlreadyExists{Key: entry.Key}
			}
			// 更新现有配置，保持 CreatedAt 不变
			var old model.ConfigEntry
			if err := json.Unmarshal(existing, &old); err != nil {
				return err
			}
			entry.CreatedAt = old.CreatedAt
		} else {
			entry.CreatedAt = now
		}

		entry.UpdatedAt = now

		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}

		return b.Put([]byte(entry.Key), data)
	})
}

// FindByKey 根据键查找配置
func (r *BoltConfigRepository) FindByKey(ctx context.Context, key string) (*model.ConfigEntry, error) {
	key = model.NormalizeKey(key)

	var entry *model.ConfigEntry
	err := r.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(BUCKET_CONFIGS))
		if b == nil {
			return fmt.Errorf("bucket not found")
		}

		data := b.Get([]byte(key))
		if data == nil {
			return &ErrConfigNotFound{Key: key}
		}

		var e model.ConfigEntry
		if err := json.Unmarshal(data, &e); err != nil {
			return err
		}

		entry = &e
		return nil
	})

	if err != nil {
		return nil, err
	}

	return entry, nil
}

// List 列出所有配置（bbolt 按键的字节序遍历）
func (r *BoltConfigRepository) List(ctx context.Context) ([]*model.ConfigEntry, error) {
	entries := []*model.ConfigEntry{}

	err := r.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(BUCKET_CONFIGS))
		if b == nil {
			return fmt.Errorf("bucket not found")
		}

		return b.ForEach(func(k, v []byte) error {
			var entry model.ConfigEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				return err
			}
			entries = append(entries, &entry)
			return nil
		})
	})

	if err != nil {
		return nil, err
	}

	return entries, nil
}

// Delete 删除配置
func (r *BoltConfigRepository) Delete(ctx context.Context, key string) error {
	key = model.NormalizeKey(key)

	return r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(BUCKET_CONFIGS))
		if b == nil {
			return fmt.Errorf("bucket not found")
		}

		if b.Get([]byte(key)) == nil {
			return &ErrConfigNotFound{Key: key}
		}

		return b.Delete([]byte(key))
	})
}

// GetSetting 读取设置项
func (r *BoltConfigRepository) GetSetting(ctx context.Context, name string) (string, error) {
	var value string
	err := r.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(BUCKET_SETTINGS))
		if b == nil {
			return fmt.Errorf("bucket not found")
		}

		value = string(b.Get([]byte(name)))
		return nil
	})

	return value, err
}

// PutSetting 写入设置项
func (r *BoltConfigRepository) PutSetting(ctx context.Context, name, value string) error {
	err := r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(BUCKET_SETTINGS))
		if b == nil {
			return fmt.Errorf("bucket not found")
		}

		return b.Put([]byte(name), []byte(value))
	})
	if err != nil {
		return err
	}

	r.logger.Debug("setting updated", zap.String("name", name), zap.String("value", value))
	return nil
}

// InitializeDB 初始化数据库
func InitializeDB(dbPath string, logger *zap.Logger) (*bbolt.DB, error) {
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// 创建 bucket
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{BUCKET_CONFIGS, BUCKET_SETTINGS} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	logger.Info("database initialized", zap.String("path", dbPath))
	return db, nil
}
