package db

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	vmctx "github.com/govm-net/counter/context"
	"github.com/govm-net/counter/core"
	"github.com/govm-net/counter/types"
)

const (
	defaultDBPath = "./sqlite.db"
)

// DBStateEntry is one committed key-value pair
type DBStateEntry struct {
	Key   string `gorm:"column:state_key;primaryKey;size:130"`
	Value []byte `gorm:"column:state_value;type:blob;not null"`
}

// TableName specifies the table name for DBStateEntry
func (DBStateEntry) TableName() string {
	return "state_entries"
}

// DBReceipt represents the receipt of one invocation
type DBReceipt struct {
	gorm.Model
	TxHash      string `gorm:"column:tx_hash;not null;index;size:66"`
	Sender      string `gorm:"column:sender_address;not null;index;size:42"`
	Contract    string `gorm:"column:contract_address;not null;index;size:42"`
	Function    string `gorm:"column:function_name;not null;size:64"`
	Value       string `gorm:"column:value;not null;size:80"`
	Status      string `gorm:"column:status;not null;size:16"`
	Error       string `gorm:"column:error_message"`
	Result      string `gorm:"column:result"`
	BlockHeight uint64 `gorm:"column:block_height;not null;index"`
}

// TableName specifies the table name for DBReceipt
func (DBReceipt) TableName() string {
	return "receipts"
}

// Context implements types.StateStore using SQLite with GORM
type Context struct {
	db *gorm.DB
}

func init() {
	vmctx.Register(vmctx.DBContextType, NewContext)
}

// NewContext creates a new SQLite-backed store. Recognized params: db_path.
func NewContext(params map[string]any) (types.StateStore, error) {
	if params == nil {
		params = make(map[string]any)
	}
	dbPath := defaultDBPath
	if path, ok := params["db_path"].(string); ok && path != "" {
		dbPath = path
	}
	c, err := Open(dbPath)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Open opens or creates the database at dbPath
func Open(dbPath string) (*Context, error) {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.New(log.New(os.Stderr, "\r\n", log.LstdFlags), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	c := &Context{db: db}
	if err := c.initDB(); err != nil {
		return nil, err
	}
	slog.Debug("state store opened", "path", dbPath)
	return c, nil
}

func (c *Context) initDB() error {
	if err := c.db.AutoMigrate(&DBStateEntry{}, &DBReceipt{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Update implements types.StateStore. fn runs inside a database transaction
// that is rolled back when fn returns an error.
func (c *Context) Update(ctx context.Context, fn func(tx types.StateTx) error) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&stateTx{db: tx})
	})
}

// View implements types.StateStore
func (c *Context) View(ctx context.Context, fn func(r types.StateReader) error) error {
	return fn(&stateTx{db: c.db.WithContext(ctx)})
}

// SaveReceipt implements types.StateStore
func (c *Context) SaveReceipt(ctx context.Context, r types.Receipt) error {
	rec := &DBReceipt{
		TxHash:      r.TxHash.String(),
		Sender:      r.Sender.String(),
		Contract:    r.Contract.String(),
		Function:    r.Function,
		Value:       r.Value,
		Status:      string(r.Status),
		Error:       r.Error,
		Result:      r.Result,
		BlockHeight: r.BlockHeight,
	}
	if err := c.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("failed to save receipt: %w", err)
	}
	return nil
}

// Receipts implements types.StateStore
func (c *Context) Receipts(ctx context.Context, contract core.Address, limit int) ([]types.Receipt, error) {
	q := c.db.WithContext(ctx).Where("contract_address = ?", contract.String()).Order("id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []DBReceipt
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query receipts: %w", err)
	}

	out := make([]types.Receipt, 0, len(rows))
	for _, row := range rows {
		out = append(out, types.Receipt{
			TxHash:      core.HashFromString(row.TxHash),
			Sender:      core.AddressFromString(row.Sender),
			Contract:    core.AddressFromString(row.Contract),
			Function:    row.Function,
			Value:       row.Value,
			Status:      types.ReceiptStatus(row.Status),
			Error:       row.Error,
			Result:      row.Result,
			BlockHeight: row.BlockHeight,
		})
	}
	return out, nil
}

// Close releases the underlying connection pool
func (c *Context) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.Close()
}

// stateTx reads and writes state entries through a gorm handle, which is a
// transaction inside Update.
type stateTx struct {
	db *gorm.DB
}

func (t *stateTx) Get(key []byte) ([]byte, error) {
	var entries []DBStateEntry
	result := t.db.Where("state_key = ?", hex.EncodeToString(key)).Limit(1).Find(&entries)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get state: %w", result.Error)
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return entries[0].Value, nil
}

func (t *stateTx) Set(key, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	entry := &DBStateEntry{Key: hex.EncodeToString(key), Value: value}
	result := t.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "state_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"state_value"}),
	}).Create(entry)
	if result.Error != nil {
		return fmt.Errorf("failed to set state: %w", result.Error)
	}
	return nil
}

func (t *stateTx) Delete(key []byte) error {
	result := t.db.Where("state_key = ?", hex.EncodeToString(key)).Delete(&DBStateEntry{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete state: %w", result.Error)
	}
	return nil
}
