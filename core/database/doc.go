// Package database handles relational store connections and schema inspection.
//
// It wraps GORM and configures either a MySQL or a SQLite dialect from the
// application's configuration. The presence tables it serves (active watchers,
// user entities) are owned by the SIP server; this module only reads them.
//
// # Connect
//
// Connect opens a pool and pings it within the configured timeout. Components
// that must not hold a connection across timer ticks take an Opener and call
// Close when their query is done.
//
// # Schema Inspection
//
// TableColumns and RequireColumns let startup code verify that the configured
// tables carry the columns the discovery queries select, so a misconfigured
// table name fails at boot instead of on every pass.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer database.Close(db)
//
//	err = database.RequireColumns(db, "active_watchers", "to_user", "to_domain", "presentity_uri")
package database
