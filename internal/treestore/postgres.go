package treestore

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// treeNode is one top-level document of the tree: rooms/<code>, users/<id>,
// library/<gameID>. Deeper paths descend into the JSON body.
type treeNode struct {
	Key       string         `gorm:"primaryKey;size:512"`
	Doc       datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

func (treeNode) TableName() string { return "tree_nodes" }

// PostgresStore persists the tree in postgres, one row per top-level
// document. Transactions take a FOR UPDATE row lock, so per-path
// transactions are serialized by the database.
type PostgresStore struct {
	db        *gorm.DB
	listeners *listenerRegistry
}

// NewPostgresStore connects to the database and runs migrations.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&treeNode{}); err != nil {
		return nil, err
	}

	return &PostgresStore{db: db, listeners: newListenerRegistry()}, nil
}

func (s *PostgresStore) Read(ctx context.Context, path string) (any, error) {
	parts := splitPath(path)
	switch len(parts) {
	case 0:
		return nil, ErrBadPath
	case 1:
		return s.readCollection(ctx, parts[0])
	default:
		var node treeNode
		err := s.db.WithContext(ctx).First(&node, "key = ?", docKey(parts)).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		var doc any
		if err := json.Unmarshal(node.Doc, &doc); err != nil {
			return nil, err
		}
		return getIn(doc, parts[2:]), nil
	}
}

func (s *PostgresStore) Write(ctx context.Context, path string, value any) error {
	parts := splitPath(path)
	if len(parts) == 0 {
		return ErrBadPath
	}
	clean, err := roundTrip(value)
	if err != nil {
		return err
	}

	if len(parts) == 1 {
		if err := s.writeCollection(ctx, parts[0], clean); err != nil {
			return err
		}
	} else {
		err := s.mutateDoc(ctx, docKey(parts), func(doc any) (any, error) {
			return setIn(doc, parts[2:], clean), nil
		})
		if err != nil {
			return err
		}
	}
	s.listeners.notify(s, path)
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, path string, fields map[string]any) error {
	parts := splitPath(path)
	if len(parts) < 2 {
		return ErrBadPath
	}
	clean, err := roundTrip(fields)
	if err != nil {
		return err
	}

	err = s.mutateDoc(ctx, docKey(parts), func(doc any) (any, error) {
		target, _ := getIn(doc, parts[2:]).(map[string]any)
		if target == nil {
			target = make(map[string]any)
		}
		for k, v := range clean.(map[string]any) {
			if v == nil {
				delete(target, k)
				continue
			}
			target[k] = v
		}
		return setIn(doc, parts[2:], target), nil
	})
	if err != nil {
		return err
	}
	s.listeners.notify(s, path)
	return nil
}

func (s *PostgresStore) Transact(ctx context.Context, path string, fn TxnFunc) (any, error) {
	parts := splitPath(path)
	if len(parts) < 2 {
		return nil, ErrBadPath
	}

	var committed any
	err := s.mutateDoc(ctx, docKey(parts), func(doc any) (any, error) {
		next, err := fn(getIn(doc, parts[2:]))
		if err != nil {
			return nil, err
		}
		clean, err := roundTrip(next)
		if err != nil {
			return nil, err
		}
		committed = clean
		return setIn(doc, parts[2:], clean), nil
	})
	if err != nil {
		return nil, err
	}
	s.listeners.notify(s, path)
	return committed, nil
}

func (s *PostgresStore) Subscribe(path string, fn func(value any)) (func(), error) {
	unsubscribe := s.listeners.add(path, fn)
	current, err := s.Read(context.Background(), path)
	if err != nil {
		unsubscribe()
		return nil, err
	}
	fn(current)
	return unsubscribe, nil
}

func (s *PostgresStore) Remove(ctx context.Context, path string) error {
	parts := splitPath(path)
	switch len(parts) {
	case 0:
		return ErrBadPath
	case 1:
		if err := s.db.WithContext(ctx).Delete(&treeNode{}, "key LIKE ?", parts[0]+"/%").Error; err != nil {
			return err
		}
	default:
		err := s.mutateDoc(ctx, docKey(parts), func(doc any) (any, error) {
			return setIn(doc, parts[2:], nil), nil
		})
		if err != nil {
			return err
		}
	}
	s.listeners.notify(s, path)
	return nil
}

func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// mutateDoc applies fn to a whole top-level document under a FOR UPDATE
// row lock. A nil result deletes the row.
func (s *PostgresStore) mutateDoc(ctx context.Context, key string, fn func(doc any) (any, error)) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var node treeNode
		var doc any
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&node, "key = ?", key).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			// new document
		case err != nil:
			return err
		default:
			if err := json.Unmarshal(node.Doc, &doc); err != nil {
				return err
			}
		}

		next, err := fn(doc)
		if err != nil {
			return err
		}
		if next == nil {
			return tx.Delete(&treeNode{}, "key = ?", key).Error
		}

		body, err := json.Marshal(next)
		if err != nil {
			return err
		}
		node = treeNode{Key: key, Doc: body, UpdatedAt: time.Now()}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"doc", "updated_at"}),
		}).Create(&node).Error
	})
}

func (s *PostgresStore) readCollection(ctx context.Context, root string) (any, error) {
	var nodes []treeNode
	if err := s.db.WithContext(ctx).Where("key LIKE ?", root+"/%").Find(&nodes).Error; err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(nodes))
	for _, n := range nodes {
		var doc any
		if err := json.Unmarshal(n.Doc, &doc); err != nil {
			return nil, err
		}
		out[strings.TrimPrefix(n.Key, root+"/")] = doc
	}
	return out, nil
}

func (s *PostgresStore) writeCollection(ctx context.Context, root string, value any) error {
	children, ok := value.(map[string]any)
	if value != nil && !ok {
		return ErrBadPath
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&treeNode{}, "key LIKE ?", root+"/%").Error; err != nil {
			return err
		}
		for k, v := range children {
			body, err := json.Marshal(v)
			if err != nil {
				return err
			}
			node := treeNode{Key: root + "/" + k, Doc: body, UpdatedAt: time.Now()}
			if err := tx.Create(&node).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func docKey(parts []string) string {
	return parts[0] + "/" + parts[1]
}
