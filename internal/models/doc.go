// Package models defines the persisted entities of scanarr and the repository interface used to store them.
//
// [ImportJob] is the history record of one barcode import: the barcode, the release identity
// resolved from MusicBrainz, the Lidarr artist and album ids it touched, whether each was
// created or already present, the final progress and an error message for failed runs.
//
// Models keep their fields private behind getters and setters and implement [Model]
// (identity, timestamps, validation). [Repository] defines the CRUD operations a store
// provides; soft-deleted records are excluded from reads.
package models
