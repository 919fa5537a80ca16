//go:build integration

// Package mock provides in-process stand-ins for the services the API talks to.
package mock

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

var once sync.Once
var db *Db

// Db is a shared in-memory SQLite database holding the store's tables.
type Db struct {
	DbConn *gorm.DB
	models map[string]any
}

// NewDb opens the database once and migrates models, keyed by table name.
func NewDb(models map[string]any) *Db {
	once.Do(func() {
		db = open(models)
	})
	return db
}

// TablesOf keys models by their table name.
func TablesOf(models ...any) map[string]any {
	tables := make(map[string]any, len(models))
	for _, m := range models {
		if tabler, ok := m.(schema.Tabler); ok {
			tables[tabler.TableName()] = m
			continue
		}
		tables[fmt.Sprintf("%T", m)] = m
	}
	return tables
}

func open(models map[string]any) *Db {
	dbSQL, err := sql.Open("sqlite", "file::memory:?cache=shared")
	if err != nil {
		panic(err)
	}

	// One connection keeps every query on the same in-memory database.
	dbSQL.SetMaxOpenConns(1)

	dbConn, err := gorm.Open(sqlite.Dialector{Conn: dbSQL}, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic("failed to connect to database. err: " + err.Error())
	}

	newDbMock := &Db{
		DbConn: dbConn,
		models: models,
	}

	if err := newDbMock.migrate(); err != nil {
		panic(fmt.Sprintf("failed to migrate database. err: %s", err.Error()))
	}

	return newDbMock
}

func (d *Db) modelList() []any {
	list := make([]any, 0, len(d.models))
	for _, model := range d.models {
		list = append(list, model)
	}
	return list
}

func (d *Db) migrate() error {
	modelList := d.modelList()
	if err := d.DbConn.AutoMigrate(modelList...); err != nil {
		return err
	}

	for _, model := range modelList {
		if !d.DbConn.Migrator().HasTable(model) {
			return fmt.Errorf("table for model %T was not created", model)
		}
	}
	return nil
}

// ClearDB deletes every row of every table.
func (d *Db) ClearDB() error {
	for _, model := range d.modelList() {
		err := d.DbConn.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(model).Error
		if err != nil {
			return err
		}

		stmt := &gorm.Statement{DB: d.DbConn}
		if err := stmt.Parse(model); err != nil {
			return err
		}

		err = d.DbConn.Exec("DELETE FROM sqlite_sequence WHERE name = ?", stmt.Schema.Table).Error
		if err != nil && !strings.Contains(err.Error(), "no such table: sqlite_sequence") {
			return err
		}
	}
	return nil
}

// GetModel returns the model registered for table.
func (d *Db) GetModel(table string) (any, bool) {
	model, ok := d.models[table]
	return model, ok
}
