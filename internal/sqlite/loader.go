// This file implements JSONL import into an attached store.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/Masterminds/squirrel"

	"github.com/mesh-intelligence/clusters/pkg/types"
)

// ImportStats counts the rows each table gained from an import.
type ImportStats map[string]int

// importer loads one export directory inside a single transaction.
type importer struct {
	tx     *sql.Tx
	dir    string
	stats  ImportStats
	logger *slog.Logger
	// touched holds clusters that gained field definitions.
	touched map[string]bool
}

// Import reads the JSONL files Export writes from dir and inserts their
// records in one transaction. Missing files count as empty. Records are
// skipped when they are malformed, when they break the rules the table
// writers enforce (blank names, unparseable timestamps, negative orders),
// when their ID already exists, or when they point at an unknown cluster.
// Field orders of every cluster that gained fields are renumbered to
// 0..n-1 before the transaction commits.
func (b *Backend) Import(dir string) (ImportStats, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	stats := ImportStats{}
	err := b.inTx(func(tx *sql.Tx) error {
		im := &importer{tx: tx, dir: dir, stats: stats, logger: b.logger, touched: map[string]bool{}}
		if err := im.loadClusters(); err != nil {
			return err
		}
		if err := im.loadFieldDefinitions(); err != nil {
			return err
		}
		if err := im.loadItems(); err != nil {
			return err
		}
		return im.renumberFields()
	})
	if err != nil {
		return nil, err
	}

	b.logger.Debug("imported", "dir", dir, "stats", map[string]int(stats))
	return stats, nil
}

// readImportFile decodes one export file. ok is false when the file does not exist.
func readImportFile[T any](im *importer, file string) (recs []T, ok bool, err error) {
	recs, err = readRecords[T](filepath.Join(im.dir, file))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading %s: %w", file, err)
	}
	return recs, true, nil
}

func (im *importer) loadClusters() error {
	recs, ok, err := readImportFile[clusterJSON](im, clustersJSONL)
	if !ok || err != nil {
		return err
	}
	n := 0
	for _, rec := range recs {
		c, err := rec.cluster()
		if err != nil {
			im.skip(types.ClustersTable, rec.ClusterID, err)
			continue
		}
		added, err := im.insert(sqlb.Insert("clusters").Columns(clusterColumns...).
			Values(c.ClusterID, c.Name, formatTime(c.CreatedAt)))
		if err != nil {
			return err
		}
		if added {
			n++
		}
	}
	im.stats[types.ClustersTable] = n
	return nil
}

func (im *importer) loadFieldDefinitions() error {
	recs, ok, err := readImportFile[fieldDefinitionJSON](im, fieldDefinitionsJSONL)
	if !ok || err != nil {
		return err
	}
	n := 0
	for _, rec := range recs {
		fd, err := rec.fieldDefinition()
		if err == nil {
			err = im.requireCluster(fd.ClusterID)
		}
		if err != nil {
			im.skip(types.FieldDefinitionsTable, rec.FieldID, err)
			continue
		}
		added, err := im.insert(sqlb.Insert("field_definitions").Columns(fieldDefinitionColumns...).
			Values(fd.FieldID, fd.ClusterID, fd.FieldName, fd.Order))
		if err != nil {
			return err
		}
		if added {
			n++
			im.touched[fd.ClusterID] = true
		}
	}
	im.stats[types.FieldDefinitionsTable] = n
	return nil
}

func (im *importer) loadItems() error {
	recs, ok, err := readImportFile[itemJSON](im, itemsJSONL)
	if !ok || err != nil {
		return err
	}
	n := 0
	for _, rec := range recs {
		it, err := rec.item()
		if err == nil {
			err = im.requireCluster(it.ClusterID)
		}
		if err != nil {
			im.skip(types.ItemsTable, rec.ItemID, err)
			continue
		}
		added, err := im.insert(sqlb.Insert("items").Columns(itemColumns...).
			Values(it.ItemID, it.ClusterID, formatTime(it.CreatedAt), it.FieldValuesData))
		if err != nil {
			return err
		}
		if added {
			n++
		}
	}
	im.stats[types.ItemsTable] = n
	return nil
}

// insert runs ins, leaving existing rows alone. It reports whether a row
// was added.
func (im *importer) insert(ins squirrel.InsertBuilder) (bool, error) {
	query, args, err := ins.Suffix("ON CONFLICT DO NOTHING").ToSql()
	if err != nil {
		return false, err
	}
	res, err := im.tx.Exec(query, args...)
	if err != nil {
		return false, fmt.Errorf("importing row: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (im *importer) requireCluster(id string) error {
	found, err := exists(im.tx, "clusters", squirrel.Eq{"cluster_id": id})
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("cluster %s: %w", id, types.ErrNotFound)
	}
	return nil
}

func (im *importer) skip(table, id string, err error) {
	im.logger.Debug("skipping import record", "table", table, "id", id, "err", err)
}

// renumberFields rewrites the orders of every touched cluster so they run
// 0..n-1, keeping the relative order of the stored values.
func (im *importer) renumberFields() error {
	ids := make([]string, 0, len(im.touched))
	for id := range im.touched {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		defs, err := fetchFieldDefinitions(im.tx, types.Filter{types.FilterClusterID: id})
		if err != nil {
			return err
		}
		for i, fd := range defs {
			if fd.Order == i {
				continue
			}
			query, args, err := sqlb.Update("field_definitions").Set("ord", i).
				Where(squirrel.Eq{"field_id": fd.FieldID}).ToSql()
			if err != nil {
				return err
			}
			if _, err := im.tx.Exec(query, args...); err != nil {
				return fmt.Errorf("renumbering fields of %s: %w", id, err)
			}
		}
	}
	return nil
}
