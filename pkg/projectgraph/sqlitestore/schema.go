// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package sqlitestore

const schemaVersion = 1

const schema = `
	CREATE TABLE IF NOT EXISTS modules (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		build_root TEXT NOT NULL,
		project_path TEXT NOT NULL,
		source_set TEXT NOT NULL,
		UNIQUE (build_root, project_path, source_set)
	);

	CREATE TABLE IF NOT EXISTS libraries (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		coord_group TEXT NOT NULL DEFAULT '',
		coord_artifact TEXT NOT NULL DEFAULT '',
		coord_version TEXT NOT NULL DEFAULT '',
		kind TEXT NOT NULL,
		level TEXT NOT NULL,
		owner_module INTEGER NOT NULL DEFAULT 0,
		doc TEXT NOT NULL DEFAULT '',
		UNIQUE (name, level, owner_module)
	);

	CREATE TABLE IF NOT EXISTS library_paths (
		library_id TEXT NOT NULL REFERENCES libraries(id),
		role TEXT NOT NULL,
		position INTEGER NOT NULL,
		path TEXT NOT NULL,
		PRIMARY KEY (library_id, role, position)
	);

	CREATE TABLE IF NOT EXISTS edges (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		edge_key TEXT NOT NULL UNIQUE,
		from_module INTEGER NOT NULL REFERENCES modules(id),
		target_module INTEGER REFERENCES modules(id),
		target_library TEXT REFERENCES libraries(id),
		scope TEXT NOT NULL,
		exported INTEGER NOT NULL DEFAULT 0,
		production_on_test INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_edges_from ON edges(from_module);

	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY
	);
	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
`
