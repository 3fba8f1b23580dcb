// Package sqlstore is a registry.Backend persisted in a SQLite database.
//
// Each store node is a row in nodes; values hang off their node in vals.
// Names are matched through an upper-cased fold column, and enumeration
// follows insertion order.
package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ncruces/go-sqlite3"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/joshuapare/pkgdep/pkg/registry"
	"github.com/joshuapare/pkgdep/pkg/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS nodes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	parent INTEGER REFERENCES nodes(id),
	name TEXT NOT NULL,
	name_fold TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS nodes_parent_name ON nodes(parent, name_fold);

CREATE TABLE IF NOT EXISTS vals (
	node INTEGER NOT NULL REFERENCES nodes(id),
	name TEXT NOT NULL,
	name_fold TEXT NOT NULL,
	type INTEGER NOT NULL,
	data BLOB NOT NULL,
	UNIQUE(node, name_fold)
);

INSERT OR IGNORE INTO nodes(id, parent, name, name_fold) VALUES
	(1, NULL, 'HKEY_LOCAL_MACHINE', 'HKEY_LOCAL_MACHINE'),
	(2, NULL, 'HKEY_CURRENT_USER', 'HKEY_CURRENT_USER');
`

const (
	machineRoot = 1
	userRoot    = 2

	codeAccessDenied = 5
	codeKeyDeleted   = 1018
)

// Store is an open database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path. ":memory:" gives
// a private in-memory database.
func Open(path string) (*Store, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)"
	if path == ":memory:" {
		dsn = ":memory:"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, storeErr("open database", err)
	}
	// A single connection keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, storeErr("open database", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, storeErr("create schema", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Root returns a read-write handle on the scope's root.
func (s *Store) Root(scope types.Scope) (registry.Node, error) {
	switch scope {
	case types.ScopeMachine:
		return &handle{db: s.db, id: machineRoot, access: registry.AccessReadWrite}, nil
	case types.ScopeUser:
		return &handle{db: s.db, id: userRoot, access: registry.AccessReadWrite}, nil
	default:
		return nil, &types.Error{Kind: types.ErrKindNotSupported, Msg: "scope " + scope.String()}
	}
}

// storeErr wraps a database error, keeping SQLite's result code.
func storeErr(op string, err error) error {
	var code uint32
	var se *sqlite3.Error
	if errors.As(err, &se) {
		code = uint32(se.Code())
	}
	return types.StoreError(op, code, err)
}

func fold(name string) string { return strings.ToUpper(name) }

type handle struct {
	db     *sql.DB
	id     int64
	access registry.Access
	closed bool
}

var _ registry.Node = (*handle)(nil)

func (h *handle) check(write bool) error {
	if h.closed {
		return types.ErrClosed
	}
	var one int
	err := h.db.QueryRow(`SELECT 1 FROM nodes WHERE id = ?`, h.id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return types.StoreError("key marked for deletion", codeKeyDeleted, nil)
	}
	if err != nil {
		return storeErr("query key", err)
	}
	if write && h.access != registry.AccessReadWrite {
		return types.StoreError("access denied", codeAccessDenied, nil)
	}
	return nil
}

type querier interface {
	QueryRow(query string, args ...any) *sql.Row
}

func lookup(q querier, parent int64, name string) (int64, error) {
	var id int64
	err := q.QueryRow(`SELECT id FROM nodes WHERE parent = ? AND name_fold = ?`, parent, fold(name)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, types.NotFound("key " + name)
	}
	if err != nil {
		return 0, storeErr("query key", err)
	}
	return id, nil
}

func (h *handle) OpenChild(path string, access registry.Access) (registry.Node, error) {
	if err := h.check(false); err != nil {
		return nil, err
	}
	id := h.id
	for _, seg := range registry.SplitPath(path) {
		next, err := lookup(h.db, id, seg)
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				return nil, types.NotFound("key " + path)
			}
			return nil, err
		}
		id = next
	}
	return &handle{db: h.db, id: id, access: access}, nil
}

func (h *handle) CreateChild(path string, access registry.Access) (registry.Node, error) {
	if err := h.check(true); err != nil {
		return nil, err
	}
	tx, err := h.db.Begin()
	if err != nil {
		return nil, storeErr("begin", err)
	}
	defer tx.Rollback()

	id := h.id
	for _, seg := range registry.SplitPath(path) {
		next, err := lookup(tx, id, seg)
		if errors.Is(err, types.ErrNotFound) {
			res, ierr := tx.Exec(`INSERT INTO nodes(parent, name, name_fold) VALUES (?, ?, ?)`, id, seg, fold(seg))
			if ierr != nil {
				return nil, storeErr("create key", ierr)
			}
			if next, err = res.LastInsertId(); err != nil {
				return nil, storeErr("create key", err)
			}
		} else if err != nil {
			return nil, err
		}
		id = next
	}
	if err := tx.Commit(); err != nil {
		return nil, storeErr("commit", err)
	}
	return &handle{db: h.db, id: id, access: access}, nil
}

func (h *handle) Stat() (registry.NodeInfo, error) {
	if err := h.check(false); err != nil {
		return registry.NodeInfo{}, err
	}
	var info registry.NodeInfo
	err := h.db.QueryRow(`SELECT
		(SELECT COUNT(*) FROM nodes WHERE parent = ?),
		(SELECT COUNT(*) FROM vals WHERE node = ?)`, h.id, h.id).Scan(&info.SubkeyCount, &info.ValueCount)
	if err != nil {
		return registry.NodeInfo{}, storeErr("stat key", err)
	}
	return info, nil
}

func (h *handle) nameAt(query string, index int) (string, error) {
	if err := h.check(false); err != nil {
		return "", err
	}
	if index < 0 {
		return "", registry.ErrNoMoreItems
	}
	var name string
	err := h.db.QueryRow(query, h.id, index).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", registry.ErrNoMoreItems
	}
	if err != nil {
		return "", storeErr("enumerate", err)
	}
	return name, nil
}

func (h *handle) SubkeyName(index int) (string, error) {
	return h.nameAt(`SELECT name FROM nodes WHERE parent = ? ORDER BY id LIMIT 1 OFFSET ?`, index)
}

func (h *handle) ValueName(index int) (string, error) {
	return h.nameAt(`SELECT name FROM vals WHERE node = ? ORDER BY rowid LIMIT 1 OFFSET ?`, index)
}

func (h *handle) GetValue(name string, buf []byte) (int, types.RegType, error) {
	if err := h.check(false); err != nil {
		return 0, 0, err
	}
	var (
		typ  int64
		data []byte
	)
	err := h.db.QueryRow(`SELECT type, data FROM vals WHERE node = ? AND name_fold = ?`, h.id, fold(name)).Scan(&typ, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, types.NotFound("value " + name)
	}
	if err != nil {
		return 0, 0, storeErr("query value", err)
	}
	if len(buf) < len(data) {
		return len(data), types.RegType(typ), registry.ErrMoreData
	}
	return copy(buf, data), types.RegType(typ), nil
}

func (h *handle) SetValue(name string, typ types.RegType, data []byte) error {
	if err := h.check(true); err != nil {
		return err
	}
	if data == nil {
		data = []byte{}
	}
	_, err := h.db.Exec(`INSERT INTO vals(node, name, name_fold, type, data) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(node, name_fold) DO UPDATE SET name = excluded.name, type = excluded.type, data = excluded.data`,
		h.id, name, fold(name), int64(typ), data)
	if err != nil {
		return storeErr("set value", err)
	}
	return nil
}

func (h *handle) DeleteSubkey(name string) error {
	if err := h.check(true); err != nil {
		return err
	}
	tx, err := h.db.Begin()
	if err != nil {
		return storeErr("begin", err)
	}
	defer tx.Rollback()

	id, err := lookup(tx, h.id, name)
	if err != nil {
		return err
	}
	var children int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM nodes WHERE parent = ?`, id).Scan(&children); err != nil {
		return storeErr("delete key", err)
	}
	if children > 0 {
		return types.StoreError(fmt.Sprintf("key %q has subkeys", name), codeAccessDenied, nil)
	}
	if _, err := tx.Exec(`DELETE FROM vals WHERE node = ?`, id); err != nil {
		return storeErr("delete key", err)
	}
	if _, err := tx.Exec(`DELETE FROM nodes WHERE id = ?`, id); err != nil {
		return storeErr("delete key", err)
	}
	if err := tx.Commit(); err != nil {
		return storeErr("commit", err)
	}
	return nil
}

func (h *handle) DeleteValue(name string) error {
	if err := h.check(true); err != nil {
		return err
	}
	res, err := h.db.Exec(`DELETE FROM vals WHERE node = ? AND name_fold = ?`, h.id, fold(name))
	if err != nil {
		return storeErr("delete value", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.NotFound("value " + name)
	}
	return nil
}

func (h *handle) Close() error {
	if h.closed {
		return types.ErrClosed
	}
	h.closed = true
	return nil
}
