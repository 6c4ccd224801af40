package database

import (
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"auditku_backend/internals/configs"
	fmodel "auditku_backend/internals/features/audits/forms/model"
	rmodel "auditku_backend/internals/features/audits/responses/model"
	fieldModel "auditku_backend/internals/features/records/fields/model"
	tmodel "auditku_backend/internals/features/tasks/model"
)

var DB *gorm.DB

// ConnectDB: DB_DRIVER=postgres (default) atau sqlite (dev lokal, DB_SQLITE_PATH).
func ConnectDB() {
	driver := strings.ToLower(configs.GetEnv("DB_DRIVER", "postgres"))
	log.Printf("🔌 Koneksi database driver=%s ...", driver)

	var (
		db  *gorm.DB
		err error
	)
	switch driver {
	case "sqlite":
		db, err = OpenSQLite(configs.GetEnv("DB_SQLITE_PATH", "auditku.db"))
	default:
		// PreferSimpleProtocol: aman untuk PgBouncer (transaction pooling)
		dsn := configs.PostgresDSN() + "&application_name=auditku&options=-c statement_timeout=5000"
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{Logger: configs.NewGormLogger()})
	}
	if err != nil {
		log.Fatalf("❌ Gagal konek DB: %v", err)
	}
	DB = db
	log.Println("✅ DB connected.")
}

// OpenSQLite dipakai dev lokal & test (":memory:"). Satu koneksi saja
// supaya database in-memory tidak hilang antar koneksi pool.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: configs.NewGormLogger()})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// Models = semua tabel yang dikelola service ini.
func Models() []any {
	return []any{
		&fmodel.FormModel{},
		&rmodel.ResponseModel{},
		&fieldModel.RecordFieldModel{},
		&tmodel.TaskModel{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func TunePool() {
	sqlDB, err := DB.DB()
	if err != nil {
		log.Printf("pool tune err: %v", err)
		return
	}
	if DB.Dialector.Name() == "sqlite" {
		return
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

func WarmUpQueries() {
	go func() {
		time.Sleep(500 * time.Millisecond)
		if err := Ping(); err != nil {
			log.Printf("warm-up ping err: %v", err)
		}
	}()
}

func Ping() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
