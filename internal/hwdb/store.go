package hwdb

import (
	"context"
	"fmt"
	"strings"

	"github.com/nerrad567/inputid/internal/device"
	"github.com/nerrad567/inputid/internal/infrastructure/database"
)

// Compile replaces the hwdb_entries table with the given entries.
//
// The write is transactional: readers of an existing store never see a
// half-compiled table. Entries are validated before any row is written.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Open database (migrations must have been applied)
//   - entries: Merged entry list, as produced by Merge
//
// Returns:
//   - error: If validation or any statement fails (transaction rolled back)
func Compile(ctx context.Context, db *database.DB, entries []Entry) error {
	for i := range entries {
		if _, _, err := entries[i].resolveKey(); err != nil {
			return fmt.Errorf("hwdb: entry %d: %w", i, err)
		}
		if err := entries[i].validate(); err != nil {
			return fmt.Errorf("hwdb: entry %d: %w", i, err)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("hwdb: compile: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM hwdb_entries`); err != nil {
		return fmt.Errorf("hwdb: clearing entries: %w", err)
	}

	const insert = `
		INSERT INTO hwdb_entries (bus, vendor, product, name, type, capabilities, grouping)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	for i := range entries {
		e := entries[i]
		caps := make([]string, 0, len(e.Capabilities))
		for _, c := range e.Capabilities {
			caps = append(caps, string(c))
		}
		_, err := tx.ExecContext(ctx, insert,
			e.Match.Bus, int64(e.Match.Vendor), int64(e.Match.Product),
			e.Name, string(e.Type), strings.Join(caps, " "), string(e.Grouping),
		)
		if err != nil {
			return fmt.Errorf("hwdb: inserting entry %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("hwdb: compile commit: %w", err)
	}
	return nil
}

// LoadStore reads all entries from a compiled store, in insertion order.
// Rows that fail validation abort the load rather than being skipped: a
// corrupt store should be recompiled, not silently truncated.
func LoadStore(ctx context.Context, db *database.DB) ([]Entry, error) {
	rows, err := db.DB.QueryContext(ctx, `
		SELECT bus, vendor, product, name, type, capabilities, grouping
		FROM hwdb_entries
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("hwdb: querying entries: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only cursor

	var out []Entry
	for rows.Next() {
		var (
			e               Entry
			vendor, product int64
			typ, caps, grp  string
		)
		if err := rows.Scan(&e.Match.Bus, &vendor, &product, &e.Name, &typ, &caps, &grp); err != nil {
			return nil, fmt.Errorf("hwdb: scanning entry: %w", err)
		}
		e.Match.Vendor = uint16(vendor)
		e.Match.Product = uint16(product)
		e.Type = device.PhysicalType(typ)
		e.Grouping = device.GroupingRule(grp)
		for _, c := range strings.Fields(caps) {
			e.Capabilities = append(e.Capabilities, device.Capability(c))
		}

		if _, _, err := e.resolveKey(); err != nil {
			return nil, fmt.Errorf("hwdb: stored entry %04x:%04x: %w", e.Match.Vendor, e.Match.Product, err)
		}
		if err := e.validate(); err != nil {
			return nil, fmt.Errorf("hwdb: stored entry %04x:%04x: %w", e.Match.Vendor, e.Match.Product, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("hwdb: reading entries: %w", err)
	}
	return out, nil
}
