// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package sqlitestore keeps a project graph in a SQLite database. Every changeset is applied in
// a single transaction.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"daml.com/x/depgraph/pkg/identity"
	"daml.com/x/depgraph/pkg/library"
	"daml.com/x/depgraph/pkg/projectgraph"
	"daml.com/x/depgraph/pkg/utils"
	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

const (
	roleBinary     = "binary"
	roleSource     = "source"
	roleAnnotation = "annotation"
)

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	conn   *sql.DB
	dbPath string
}

// Open opens or creates the graph database at dbPath
func Open(ctx context.Context, dbPath string) (*Store, error) {
	if err := utils.EnsureDirs(filepath.Dir(dbPath)); err != nil {
		return nil, fmt.Errorf("failed to create graph directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open graph database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.ExecContext(ctx, pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := conn.ExecContext(ctx, schema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize graph schema: %w", err)
	}

	var version int
	if err := conn.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_version").Scan(&version); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to read graph schema version: %w", err)
	}
	if version != schemaVersion {
		_ = conn.Close()
		return nil, fmt.Errorf("unsupported graph schema version %d in %s, expected %d", version, dbPath, schemaVersion)
	}

	slog.DebugContext(ctx, "opened project graph database", "path", dbPath)
	return &Store{conn: conn, dbPath: dbPath}, nil
}

func (s *Store) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

func (s *Store) Path() string {
	return s.dbPath
}

func (s *Store) LookupModule(ctx context.Context, target identity.ModuleTarget) (bool, error) {
	id, err := moduleID(ctx, s.conn, target)
	return id != 0, err
}

func (s *Store) LookupProjectLibrary(ctx context.Context, id identity.LibraryIdentity) (*library.ResolvedLibrary, error) {
	return findLibrary(ctx, s.conn, id, library.ProjectLevel, identity.ModuleTarget{})
}

func (s *Store) LookupModuleLibrary(ctx context.Context, owner identity.ModuleTarget, id identity.LibraryIdentity) (*library.ResolvedLibrary, error) {
	return findLibrary(ctx, s.conn, id, library.ModuleLevel, owner)
}

func (s *Store) ModuleEdges(ctx context.Context, target identity.ModuleTarget) ([]projectgraph.Edge, error) {
	from, err := moduleID(ctx, s.conn, target)
	if err != nil || from == 0 {
		return nil, err
	}

	rows, err := s.conn.QueryContext(ctx, `
		SELECT m.build_root, m.project_path, m.source_set, e.target_library, e.scope, e.exported, e.production_on_test
		FROM edges e LEFT JOIN modules m ON m.id = e.target_module
		WHERE e.from_module = ?
		ORDER BY e.id`, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type row struct {
		edge      projectgraph.Edge
		libraryID sql.NullString
	}
	var scanned []row
	for rows.Next() {
		var (
			buildRoot, projectPath, sourceSet sql.NullString
			r                                 row
		)
		if err := rows.Scan(&buildRoot, &projectPath, &sourceSet, &r.libraryID, &r.edge.Scope, &r.edge.Exported, &r.edge.ProductionOnTest); err != nil {
			return nil, err
		}
		r.edge.From = target
		if buildRoot.Valid {
			t := identity.ModuleTarget{BuildRoot: buildRoot.String, ProjectPath: projectPath.String, SourceSet: identity.SourceSetName(sourceSet.String)}
			r.edge.Module = &t
		}
		scanned = append(scanned, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	edges := make([]projectgraph.Edge, 0, len(scanned))
	for _, r := range scanned {
		if r.libraryID.Valid {
			lib, err := libraryByID(ctx, s.conn, r.libraryID.String)
			if err != nil {
				return nil, err
			}
			r.edge.Library = lib
		}
		edges = append(edges, r.edge)
	}
	return edges, nil
}

func (s *Store) Modules(ctx context.Context) ([]identity.ModuleTarget, error) {
	rows, err := s.conn.QueryContext(ctx, "SELECT build_root, project_path, source_set FROM modules ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []identity.ModuleTarget
	for rows.Next() {
		var t identity.ModuleTarget
		if err := rows.Scan(&t.BuildRoot, &t.ProjectPath, &t.SourceSet); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) Libraries(ctx context.Context) ([]*library.ResolvedLibrary, error) {
	rows, err := s.conn.QueryContext(ctx, "SELECT id FROM libraries ORDER BY seq")
	if err != nil {
		return nil, err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := errors.Join(rows.Err(), rows.Close()); err != nil {
		return nil, err
	}

	out := make([]*library.ResolvedLibrary, 0, len(ids))
	for _, id := range ids {
		lib, err := libraryByID(ctx, s.conn, id)
		if err != nil {
			return nil, err
		}
		out = append(out, lib)
	}
	return out, nil
}

// AddEdges applies changes in one transaction. Validation failures roll everything back.
func (s *Store) AddEdges(ctx context.Context, changes *projectgraph.Changeset) (err error) {
	if changes == nil || changes.IsEmpty() {
		return nil
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				slog.WarnContext(ctx, "failed to roll back project graph transaction", "err", rbErr.Error())
			}
		}
	}()

	if err = apply(ctx, tx, changes); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit project graph changes: %w", err)
	}
	return nil
}

func apply(ctx context.Context, tx *sql.Tx, changes *projectgraph.Changeset) error {
	for _, t := range changes.Modules {
		if t.IsZero() {
			return fmt.Errorf("cannot add a module without coordinates")
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO modules (build_root, project_path, source_set) VALUES (?, ?, ?)",
			t.BuildRoot, t.ProjectPath, string(t.SourceSet)); err != nil {
			return err
		}
	}

	for _, l := range changes.Libraries {
		if err := l.Validate(); err != nil {
			return err
		}
		existing, err := findLibrary(ctx, tx, l.Identity, l.Level, l.Owner)
		if err != nil {
			return err
		}
		if existing != nil {
			if !existing.SameContent(l) {
				return fmt.Errorf("%w: %s", projectgraph.ErrConflictingLibrary, l)
			}
			continue
		}
		if err := insertLibrary(ctx, tx, l); err != nil {
			return err
		}
	}

	for _, e := range changes.Edges {
		if err := insertEdge(ctx, tx, e); err != nil {
			return err
		}
	}
	return nil
}

func insertLibrary(ctx context.Context, tx *sql.Tx, l *library.ResolvedLibrary) error {
	var owner int64
	if l.Level == library.ModuleLevel {
		id, err := moduleID(ctx, tx, l.Owner)
		if err != nil {
			return err
		}
		if id == 0 {
			return fmt.Errorf("library %s is owned by unknown module %s", l, l.Owner)
		}
		owner = id
	}

	id := uuid.New().String()
	c := l.Identity.Coordinates
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO libraries (id, name, coord_group, coord_artifact, coord_version, kind, level, owner_module, doc)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, l.Identity.Name, c.Group, c.Artifact, c.Version, string(l.Kind), string(l.Level), owner, l.DocPath); err != nil {
		return err
	}

	for role, paths := range map[string][]string{
		roleBinary:     l.BinaryPaths,
		roleSource:     l.SourcePaths,
		roleAnnotation: l.AnnotationPaths,
	} {
		for i, p := range paths {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO library_paths (library_id, role, position, path) VALUES (?, ?, ?, ?)",
				id, role, i, p); err != nil {
				return err
			}
		}
	}
	return nil
}

func insertEdge(ctx context.Context, tx *sql.Tx, e projectgraph.Edge) error {
	if err := e.Validate(); err != nil {
		return err
	}

	from, err := moduleID(ctx, tx, e.From)
	if err != nil {
		return err
	}
	if from == 0 {
		return fmt.Errorf("edge %s starts at unknown module", e)
	}

	var targetModule sql.NullInt64
	var targetLibrary sql.NullString
	if e.Module != nil {
		id, err := moduleID(ctx, tx, *e.Module)
		if err != nil {
			return err
		}
		if id == 0 {
			return fmt.Errorf("edge %s points at unknown module", e)
		}
		targetModule = sql.NullInt64{Int64: id, Valid: true}
	} else {
		id, err := libraryID(ctx, tx, e.Library.Identity, e.Library.Level, e.Library.Owner)
		if err != nil {
			return err
		}
		if id == "" {
			return fmt.Errorf("edge %s points at unknown library", e)
		}
		targetLibrary = sql.NullString{String: id, Valid: true}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO edges (edge_key, from_module, target_module, target_library, scope, exported, production_on_test)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		edgeKey(e), from, targetModule, targetLibrary, string(e.Scope), e.Exported, e.ProductionOnTest)
	return err
}

func edgeKey(e projectgraph.Edge) string {
	return fmt.Sprintf("%s|%s|%s|%t|%t", e.From, e.TargetKey(), e.Scope, e.Exported, e.ProductionOnTest)
}

// moduleID returns 0 when the module is not in the graph
func moduleID(ctx context.Context, q querier, t identity.ModuleTarget) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx,
		"SELECT id FROM modules WHERE build_root = ? AND project_path = ? AND source_set = ?",
		t.BuildRoot, t.ProjectPath, string(t.SourceSet)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return id, err
}

// libraryID returns "" when the library is not in the graph
func libraryID(ctx context.Context, q querier, id identity.LibraryIdentity, level library.Level, owner identity.ModuleTarget) (string, error) {
	var ownerID int64
	if level == library.ModuleLevel {
		var err error
		if ownerID, err = moduleID(ctx, q, owner); err != nil || ownerID == 0 {
			return "", err
		}
	}

	var libID string
	err := q.QueryRowContext(ctx,
		"SELECT id FROM libraries WHERE name = ? AND level = ? AND owner_module = ?",
		id.Name, string(level), ownerID).Scan(&libID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return libID, err
}

func findLibrary(ctx context.Context, q querier, id identity.LibraryIdentity, level library.Level, owner identity.ModuleTarget) (*library.ResolvedLibrary, error) {
	libID, err := libraryID(ctx, q, id, level, owner)
	if err != nil || libID == "" {
		return nil, err
	}
	return libraryByID(ctx, q, libID)
}

func libraryByID(ctx context.Context, q querier, libID string) (*library.ResolvedLibrary, error) {
	var (
		lib                               library.ResolvedLibrary
		c                                 identity.Coordinates
		buildRoot, projectPath, sourceSet sql.NullString
	)
	err := q.QueryRowContext(ctx, `
		SELECT l.name, l.coord_group, l.coord_artifact, l.coord_version, l.kind, l.level, l.doc,
			m.build_root, m.project_path, m.source_set
		FROM libraries l LEFT JOIN modules m ON m.id = l.owner_module
		WHERE l.id = ?`, libID).Scan(
		&lib.Identity.Name, &c.Group, &c.Artifact, &c.Version, &lib.Kind, &lib.Level, &lib.DocPath,
		&buildRoot, &projectPath, &sourceSet)
	if err != nil {
		return nil, fmt.Errorf("failed to load library %s: %w", libID, err)
	}
	lib.Identity.Coordinates = c
	if buildRoot.Valid {
		lib.Owner = identity.ModuleTarget{BuildRoot: buildRoot.String, ProjectPath: projectPath.String, SourceSet: identity.SourceSetName(sourceSet.String)}
	}

	rows, err := q.QueryContext(ctx,
		"SELECT role, path FROM library_paths WHERE library_id = ? ORDER BY role, position", libID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var role, p string
		if err := rows.Scan(&role, &p); err != nil {
			return nil, err
		}
		switch role {
		case roleBinary:
			lib.BinaryPaths = append(lib.BinaryPaths, p)
		case roleSource:
			lib.SourcePaths = append(lib.SourcePaths, p)
		case roleAnnotation:
			lib.AnnotationPaths = append(lib.AnnotationPaths, p)
		}
	}
	return &lib, rows.Err()
}

var _ projectgraph.Repository = (*Store)(nil)
var _ projectgraph.Lister = (*Store)(nil)
