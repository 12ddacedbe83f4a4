package model

// All lists every persisted model in dependency order. The SQL migrations
// under infra/migrations are the production schema; this list only feeds
// gorm AutoMigrate for the in-memory SQLite databases used by tests.
func All() []any {
	return []any{
		&Operator{},
		&ProductReference{},
		&ProductLocation{},
		&Order{},
		&OrderLine{},
		&PackingBox{},
		&OrderHistory{},
		&MovimientoStock{},
		&SolicitudReposicion{},
	}
}
