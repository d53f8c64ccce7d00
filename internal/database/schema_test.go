package database

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

const migrationsDir = "../../migrations"

var (
	migrationName = regexp.MustCompile(`^(\d{5})_[a-z_]+\.sql$`)
	bareTimestamp = regexp.MustCompile(`\bTIMESTAMP\b`)
)

func readMigration(t *testing.T, name string) string {
	t.Helper()
	content, err := os.ReadFile(filepath.Join(migrationsDir, name))
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return string(content)
}

func TestMigrations_SequentialAndReversible(t *testing.T) {
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}

	expected := 1
	for _, entry := range entries {
		match := migrationName.FindStringSubmatch(entry.Name())
		if match == nil {
			t.Errorf("unexpected file in migrations dir: %s", entry.Name())
			continue
		}

		want := fmt.Sprintf("%05d", expected)
		if match[1] != want {
			t.Errorf("%s: expected version %s", entry.Name(), want)
		}
		expected++

		content := readMigration(t, entry.Name())
		for _, directive := range []string{"-- +goose Up", "-- +goose Down", "-- +goose StatementBegin", "-- +goose StatementEnd"} {
			if !strings.Contains(content, directive) {
				t.Errorf("%s missing %q", entry.Name(), directive)
			}
		}
		if bareTimestamp.MatchString(content) {
			t.Errorf("%s: timestamp columns must be TIMESTAMPTZ", entry.Name())
		}
		if strings.Index(content, "-- +goose Up") > strings.Index(content, "-- +goose Down") {
			t.Errorf("%s: Down section precedes Up", entry.Name())
		}
	}

	if expected == 1 {
		t.Fatal("no migrations found")
	}
}

func TestMigrations_SchemaConstraints(t *testing.T) {
	tests := []struct {
		file      string
		table     string
		fragments []string
	}{
		{
			file:  "00001_create_users_table.sql",
			table: "users",
			fragments: []string{
				"id UUID PRIMARY KEY",
				"role VARCHAR(20) NOT NULL DEFAULT 'staff'",
				"active BOOLEAN NOT NULL DEFAULT TRUE",
				"CONSTRAINT users_email_key UNIQUE (email)",
				"CHECK (role IN ('owner', 'staff'))",
			},
		},
		{
			file:  "00002_create_refresh_tokens_table.sql",
			table: "refresh_tokens",
			fragments: []string{
				"revoked BOOLEAN NOT NULL DEFAULT FALSE",
				"REFERENCES users(id) ON DELETE CASCADE",
			},
		},
		{
			file:  "00003_create_categories_table.sql",
			table: "categories",
			fragments: []string{
				"description TEXT",
				"CONSTRAINT categories_name_key UNIQUE (name)",
			},
		},
		{
			file:  "00004_create_products_table.sql",
			table: "products",
			fragments: []string{
				"minimum_stock DECIMAL(12, 3) NOT NULL DEFAULT 0 CHECK (minimum_stock >= 0)",
				"category_id UUID,",
				"CONSTRAINT products_name_key UNIQUE (name)",
				"REFERENCES categories(id) ON DELETE SET NULL",
			},
		},
		{
			file:  "00005_create_stock_logs_table.sql",
			table: "stock_logs",
			fragments: []string{
				"date DATE NOT NULL",
				"CHECK (quantity >= 0)",
				"CONSTRAINT stock_logs_product_date_key UNIQUE (product_id, date)",
				"REFERENCES products(id) ON DELETE CASCADE",
				"REFERENCES users(id)",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			content := readMigration(t, tt.file)

			if !strings.Contains(content, "CREATE TABLE IF NOT EXISTS "+tt.table+" (") {
				t.Errorf("%s does not create %s", tt.file, tt.table)
			}
			if !strings.Contains(content, "DROP TABLE IF EXISTS "+tt.table+";") {
				t.Errorf("%s does not drop %s", tt.file, tt.table)
			}
			for _, fragment := range tt.fragments {
				if !strings.Contains(content, fragment) {
					t.Errorf("%s missing %q", tt.file, fragment)
				}
			}
		})
	}
}

func TestMigrations_UpdatedAtTriggers(t *testing.T) {
	content := readMigration(t, "00006_create_updated_at_trigger.sql")

	for _, table := range []string{"users", "products", "stock_logs"} {
		create := "CREATE TRIGGER " + table + "_set_updated_at BEFORE UPDATE ON " + table
		if !strings.Contains(content, create) {
			t.Errorf("missing updated_at trigger on %s", table)
		}
		drop := "DROP TRIGGER IF EXISTS " + table + "_set_updated_at ON " + table
		if !strings.Contains(content, drop) {
			t.Errorf("missing trigger drop for %s", table)
		}
	}
}
