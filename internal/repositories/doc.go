// Package repositories implements SQLite persistence for import history.
//
// [ImportRepository] implements [models.Repository] for [models.ImportJob] with atomic
// sequence generation and soft deletes via deleted_at timestamps. Deleted records are
// excluded from every query.
//
// [ImportRecorderAdapter] plugs the repository into the import workflow as its
// history recorder.
package repositories
