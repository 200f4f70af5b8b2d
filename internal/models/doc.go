// Package models defines domain entities and persistence interfaces for tqlx.
//
// The package contains two categories of types:
//
// 1. Wire records: plain structs mirroring the playbook service's JSON payloads
//   - [Playbook] : a scheduled SQL prompt bound to a connector, cron trigger and recipients
//   - [Connector] : a registered data source, read-only from this client
//   - [UpdatePlaybookRequest] : the full-replace payload sent on every update
//   - [CompletePlaybookParams] : inputs of the create-then-update workflow
//
// 2. Persistent entities: locally stored records with lifecycle metadata
//   - [HistoryEntry] : outcome of a create/update command recorded in the local history store
//
// Persistent entities implement the [Model] interface and are stored through a [Repository].
package models
