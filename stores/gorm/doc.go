// Package gorm provides GORM-backed store implementations for the auth
// package. This is the production backend: the unique indexes on the users
// table are the authoritative enforcement of email and username
// uniqueness, and the stores translate duplicated-key errors into the auth
// package's conflict sentinels.
//
// Open the database with error translation enabled so duplicated-key
// detection works:
//
//	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
//	if err != nil { ... }
//	if err := gormstores.AutoMigrate(db); err != nil { ... }
//	users := gormstores.NewUserStore(db)
package gorm
