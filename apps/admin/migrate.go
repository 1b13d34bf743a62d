package main

import (
	"github.com/jmoiron/sqlx"

	"github.com/jpainam/discolaire-sub011/storage/database"
)

type migrator interface {
	RunMigrations(command string, args ...string) error
}

// dbMigrator runs the embedded migrations against a postgres database.
type dbMigrator struct {
	db *sqlx.DB
}

func (m dbMigrator) RunMigrations(command string, args ...string) error {
	return database.RunMigrations(m.db, command, args...)
}

func (cli *commandLine) migrate(args []string) error {
	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	return cli.migrator.RunMigrations(args[0], arguments...)
}
