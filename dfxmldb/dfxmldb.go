/*
 * Copyright (c) 2020 Siemens AG
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy of
 * this software and associated documentation files (the "Software"), to deal in
 * the Software without restriction, including without limitation the rights to
 * use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
 * the Software, and to permit persons to whom the Software is furnished to do so,
 * subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
 * FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
 * COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
 * IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
 * CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 *
 * Author(s): Jonas Plum
 */

// Package dfxmldb exports manifests into sqlite databases with one table
// for volumes and one for files.
package dfxmldb

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"sort"
	"strings"

	"crawshaw.io/sqlite"
	"github.com/fatih/structs"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/forensicanalysis/dfxml"
)

const dbVersion = 1
const applicationID = 1684437101

// ErrDBExists is returned by Create for existing files.
var ErrDBExists = fmt.Errorf("database already exists")

// ErrDBNotExists is returned by Open for missing files.
var ErrDBNotExists = fmt.Errorf("database does not exist")

// DB is a sqlite database of manifest objects.
type DB struct {
	conn          *sqlite.Conn
	fileColumns   []string
	volumeColumns []string
}

// Create creates a new database.
func Create(url string) (*DB, error) {
	return open(url, true)
}

// Open opens an existing database.
func Open(url string) (*DB, error) {
	return open(url, false)
}

func open(url string, create bool) (*DB, error) { // nolint:gocyclo
	if url != ":memory:" {
		exists := true
		_, err := os.Stat(url)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
			exists = false
		}
		if create && exists {
			return nil, ErrDBExists
		}
		if !create && !exists {
			return nil, ErrDBNotExists
		}
		if create {
			if err := os.MkdirAll(path.Dir(url), 0750); err != nil {
				return nil, err
			}
			log.Printf("Creating database %s", url)
		}
	}

	conn, err := sqlite.OpenConn(url, 0)
	if err != nil {
		return nil, err
	}
	db := &DB{
		conn:          conn,
		fileColumns:   columns(dfxml.NewFileObject()),
		volumeColumns: columns(dfxml.NewVolumeObject()),
	}

	if create {
		if err := db.setup(); err != nil {
			conn.Close()
			return nil, err
		}
		return db, nil
	}

	for name, want := range map[string]int64{"application_id": applicationID, "user_version": dbVersion} {
		got, err := pragma(conn, name)
		if err != nil {
			conn.Close()
			return nil, err
		}
		if got != want {
			conn.Close()
			return nil, fmt.Errorf("wrong file format (%s is %d, requires %d)", name, got, want)
		}
	}
	return db, nil
}

func (db *DB) setup() error {
	if err := setPragma(db.conn, "application_id", applicationID); err != nil {
		return err
	}
	if err := setPragma(db.conn, "user_version", dbVersion); err != nil {
		return err
	}
	err := db.exec(fmt.Sprintf(
		"CREATE TABLE `volumes` (id TEXT PRIMARY KEY, annos TEXT, diffs TEXT, %s)",
		strings.Join(quote(db.volumeColumns), ", "),
	))
	if err != nil {
		return err
	}
	return db.exec(fmt.Sprintf(
		"CREATE TABLE `fileobjects` (id TEXT PRIMARY KEY, volume_id TEXT REFERENCES volumes(id), annos TEXT, diffs TEXT, %s)",
		strings.Join(quote(db.fileColumns), ", "),
	))
}

// columns returns the property columns of an object type.
func columns(o interface{}) []string {
	var names []string
	for name := range structs.Map(o) {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func quote(names []string) []string {
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = "`" + name + "`"
	}
	return quoted
}

func params(names []string) []string {
	p := make([]string, len(names))
	for i, name := range names {
		p[i] = "$" + name
	}
	return p
}

// Import reads a manifest as a stream and inserts all volumes and files.
// It returns the number of inserted files.
func (db *DB) Import(r io.Reader, diag *dfxml.Diagnostics) (count int, err error) {
	if err := db.exec("BEGIN"); err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = db.exec("ROLLBACK")
			return
		}
		err = db.exec("COMMIT")
	}()

	var volumeIDs []string
	reader := dfxml.NewReader(r, diag)
	for {
		ev, err := reader.Next()
		if err == io.EOF {
			return count, nil
		}
		if err != nil {
			return count, err
		}

		switch o := ev.Object.(type) {
		case *dfxml.VolumeObject:
			if ev.Phase == dfxml.Start {
				volumeIDs = append(volumeIDs, "volume--"+uuid.New().String())
				continue
			}
			id := volumeIDs[len(volumeIDs)-1]
			volumeIDs = volumeIDs[:len(volumeIDs)-1]
			if err := db.insert("volumes", id, o, db.volumeColumns, nil); err != nil {
				return count, err
			}
		case *dfxml.FileObject:
			var volumeID *string
			if len(volumeIDs) > 0 {
				volumeID = &volumeIDs[len(volumeIDs)-1]
			}
			id := "fileobject--" + uuid.New().String()
			if err := db.insert("fileobjects", id, o, db.fileColumns, volumeID); err != nil {
				return count, err
			}
			count++
		}
	}
}

type annotated interface {
	Annos() []string
	Diffs() []string
}

func (db *DB) insert(table, id string, o annotated, columns []string, volumeID *string) error {
	names := append([]string{"id", "annos", "diffs"}, columns...)
	if table == "fileobjects" {
		names = append(names, "volume_id")
	}
	query := fmt.Sprintf("INSERT INTO `%s` (%s) VALUES (%s)", table, strings.Join(quote(names), ", "), strings.Join(params(names), ", ")) // #nosec
	stmt, err := db.conn.Prepare(query)
	if err != nil {
		return errors.Wrapf(err, "could not prepare statement %s", query)
	}

	stmt.SetText("$id", id)
	stmt.SetText("$annos", strings.Join(o.Annos(), ","))
	stmt.SetText("$diffs", strings.Join(o.Diffs(), ","))
	if table == "fileobjects" {
		_ = bind(stmt, "$volume_id", volumeID)
	}
	for name, value := range structs.Map(o) {
		if err := bind(stmt, "$"+name, value); err != nil {
			return errors.Wrapf(err, "could not bind %s", name)
		}
	}

	if _, err := stmt.Step(); err != nil {
		return errors.Wrapf(err, "could not exec statement %s", query)
	}
	return stmt.Reset()
}

func bind(stmt *sqlite.Stmt, param string, value interface{}) error {
	switch v := value.(type) {
	case *string:
		if v == nil {
			stmt.SetNull(param)
			return nil
		}
		stmt.SetText(param, *v)
	case *int64:
		if v == nil {
			stmt.SetNull(param)
			return nil
		}
		stmt.SetInt64(param, *v)
	case *bool:
		if v == nil {
			stmt.SetNull(param)
			return nil
		}
		var i int64
		if *v {
			i = 1
		}
		stmt.SetInt64(param, i)
	case *dfxml.TimestampObject:
		if v == nil || v.Time == nil {
			stmt.SetNull(param)
			return nil
		}
		stmt.SetText(param, v.String())
	case *dfxml.ByteRuns:
		if v == nil {
			stmt.SetNull(param)
			return nil
		}
		b, err := json.Marshal(v.Runs)
		if err != nil {
			return err
		}
		stmt.SetText(param, string(b))
	default:
		return errors.Errorf("unsupported column type %T", value)
	}
	return nil
}

// Files returns all file rows. Columns of NULL values are left out.
func (db *DB) Files() ([]map[string]interface{}, error) {
	return db.rows("SELECT * FROM `fileobjects` ORDER BY rowid")
}

// Volumes returns all volume rows.
func (db *DB) Volumes() ([]map[string]interface{}, error) {
	return db.rows("SELECT * FROM `volumes` ORDER BY rowid")
}

func (db *DB) rows(query string) ([]map[string]interface{}, error) {
	stmt, err := db.conn.Prepare(query)
	if err != nil {
		return nil, err
	}
	var rows []map[string]interface{}
	for {
		if hasRow, err := stmt.Step(); err != nil {
			return nil, err
		} else if !hasRow {
			break
		}
		row := map[string]interface{}{}
		for i := 0; i < stmt.ColumnCount(); i++ {
			switch stmt.ColumnType(i) {
			case sqlite.SQLITE_INTEGER:
				row[stmt.ColumnName(i)] = stmt.ColumnInt64(i)
			case sqlite.SQLITE_TEXT:
				row[stmt.ColumnName(i)] = stmt.ColumnText(i)
			}
		}
		rows = append(rows, row)
	}
	return rows, stmt.Reset()
}

// Close closes the database.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) exec(query string) error {
	stmt, err := db.conn.Prepare(query)
	if err != nil {
		return err
	}
	if _, err = stmt.Step(); err != nil {
		return err
	}
	return stmt.Reset()
}

func pragma(conn *sqlite.Conn, name string) (int64, error) {
	stmt, err := conn.Prepare("PRAGMA " + name)
	if err != nil {
		return 0, err
	}
	if _, err = stmt.Step(); err != nil {
		return 0, err
	}
	i := stmt.GetInt64(name)
	return i, stmt.Reset()
}

func setPragma(conn *sqlite.Conn, name string, i int64) error {
	stmt, err := conn.Prepare("PRAGMA " + name + " = " + fmt.Sprint(i))
	if err != nil {
		return err
	}
	if _, err = stmt.Step(); err != nil {
		return err
	}
	return stmt.Reset()
}
