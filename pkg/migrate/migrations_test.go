package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketflow-backend/pkg/db/models"
	"github.com/angelmondragon/marketflow-backend/pkg/migrate"
)

func TestMigrationsDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations: %v", err)
	}
}

func TestMigrationsContainSchemas(t *testing.T) {
	cases := map[string][]string{
		"*_create_products_table.sql": {
			"CREATE TABLE IF NOT EXISTS products",
			"price NUMERIC(12,2) NOT NULL",
			"CREATE INDEX IF NOT EXISTS idx_products_category",
			"CHECK (original_price >= price)",
		},
		"*_seed_products.sql": {
			"INSERT INTO products",
			"DELETE FROM products WHERE title IN",
		},
		"*_create_cart_line_items_table.sql": {
			"CREATE TABLE IF NOT EXISTS cart_line_items",
			"saved_for_later BOOLEAN NOT NULL DEFAULT FALSE",
			"CHECK (quantity >= 1)",
		},
		"*_create_orders_tables.sql": {
			"CREATE TABLE IF NOT EXISTS orders",
			"CREATE TABLE IF NOT EXISTS order_lines",
			"tracking_number TEXT,",
			"CREATE UNIQUE INDEX IF NOT EXISTS idx_order_lines_order_position",
		},
		"*_create_gift_cards_table.sql": {
			"CREATE UNIQUE INDEX IF NOT EXISTS idx_gift_cards_code",
		},
		"*_create_registries_table.sql": {
			"CREATE TABLE IF NOT EXISTS registries",
			"event_date DATE NOT NULL",
			"CREATE INDEX IF NOT EXISTS idx_registries_session_id",
		},
		"*_create_listings_table.sql": {
			"CREATE TABLE IF NOT EXISTS listings",
			"CREATE INDEX IF NOT EXISTS idx_listings_session_id",
		},
		"*_create_support_tickets_table.sql": {
			"CREATE TABLE IF NOT EXISTS support_tickets",
			"CREATE INDEX IF NOT EXISTS idx_support_tickets_session_id",
		},
		"*_create_outbox_events_table.sql": {
			"CREATE TABLE IF NOT EXISTS outbox_events",
			"WHERE published_at IS NULL",
		},
	}

	for pattern, checks := range cases {
		matches, err := filepath.Glob(filepath.Join("migrations", pattern))
		if err != nil {
			t.Fatalf("glob migrations: %v", err)
		}
		if len(matches) == 0 {
			t.Fatalf("no migration file found for %s", pattern)
		}
		data, err := os.ReadFile(matches[0])
		if err != nil {
			t.Fatalf("read migration file: %v", err)
		}
		content := string(data)
		for _, sub := range checks {
			if !strings.Contains(content, sub) {
				t.Errorf("%s: missing expected statement %q", matches[0], sub)
			}
		}
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()

	path, err := migrate.CreateSQLMigration(dir, "Add Order Notes!")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_order_notes.sql") {
		t.Fatalf("unexpected filename %s", path)
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("created migration should validate: %v", err)
	}

	if _, err := migrate.CreateSQLMigration(dir, "!!!"); err == nil {
		t.Fatal("expected sanitized-empty name to fail")
	}
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "add_things.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatal("expected invalid filename error")
	}
}

// upStatement returns the first StatementBegin/StatementEnd block of the Up section.
func upStatement(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)

	up, _, found := strings.Cut(string(data), "-- +goose Down")
	require.True(t, found)
	_, body, found := strings.Cut(up, "-- +goose StatementBegin")
	require.True(t, found)
	body, _, found = strings.Cut(body, "-- +goose StatementEnd")
	require.True(t, found)
	return body
}

func TestSeedProductsLoadsCatalog(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.Product{}))

	require.NoError(t, db.Exec(upStatement(t, "*_seed_products.sql")).Error)

	var products []models.Product
	require.NoError(t, db.Order("id ASC").Find(&products).Error)
	require.Len(t, products, 18)

	perCategory := map[string]int{}
	titles := map[string]bool{}
	featured, deals := 0, 0
	for _, p := range products {
		assert.Falsef(t, p.OriginalPrice.LessThan(p.Price), "%s priced above its original price", p.Title)
		assert.Truef(t, p.Price.IsPositive(), "%s has no price", p.Title)
		assert.NotEmptyf(t, p.Images, "%s has no images", p.Title)
		assert.Falsef(t, titles[p.Title], "duplicate title %s", p.Title)
		titles[p.Title] = true
		perCategory[p.Category]++
		if p.Rating >= 4.5 {
			featured++
		}
		if p.OnSale() {
			deals++
		}
	}

	for _, category := range []string{"Electronics", "Home & Kitchen", "Fashion", "Books", "Sports & Outdoors", "Video Games"} {
		assert.GreaterOrEqualf(t, perCategory[category], 2, "category %s needs recommendations", category)
	}
	assert.GreaterOrEqual(t, featured, 6)
	assert.GreaterOrEqual(t, deals, 8)
}
