package catalog

import (
	"testing"

	cerrors "corvusdb/internal/errors"
	"corvusdb/internal/types"
)

func usersSchema() TableSchema {
	return TableSchema{
		Name: "users",
		Columns: []ColumnDefinition{
			{Name: "id", Type: types.T(types.INTEGER), NotNull: true},
			{Name: "name", Type: types.T(types.VARCHAR)},
		},
	}
}

func TestCreateAndLookupTable(t *testing.T) {
	c := New(nil)
	if err := c.CreateTable(usersSchema()); err != nil {
		t.Fatal(err)
	}
	got, err := c.Lookup("main", "USERS")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "users" || len(got.Columns) != 2 {
		t.Errorf("unexpected schema: %+v", got)
	}
}

func TestCreateTableDuplicateName(t *testing.T) {
	c := New(nil)
	_ = c.CreateTable(usersSchema())
	err := c.CreateTable(usersSchema())
	if !cerrors.Is(err, cerrors.KindCatalog) {
		t.Fatalf("expected CatalogError, got %v", err)
	}
}

func TestLookupMissingTable(t *testing.T) {
	c := New(nil)
	_, err := c.Lookup("main", "ghost")
	if !cerrors.Is(err, cerrors.KindCatalog) {
		t.Fatalf("expected CatalogError, got %v", err)
	}
}

func TestDropTableWithoutDependents(t *testing.T) {
	c := New(nil)
	_ = c.CreateTable(usersSchema())
	if err := c.DropTable("users", false); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Lookup("main", "users"); err == nil {
		t.Fatalf("table should be gone")
	}
}

func TestDropTableRefusedWithDependents(t *testing.T) {
	c := New(nil)
	_ = c.CreateTable(usersSchema())
	c.AddDependency("orders", "users")

	err := c.DropTable("users", false)
	if err == nil {
		t.Fatal("expected DependencyExists error")
	}
	ce, ok := err.(*cerrors.Error)
	if !ok || ce.Code != cerrors.CodeDependencyExists {
		t.Fatalf("expected DependencyExists, got %v", err)
	}
}

func TestDropTableCascadeRemovesPreparedStatement(t *testing.T) {
	c := New(nil)
	_ = c.CreateTable(usersSchema())
	if err := c.RegisterPrepared(PreparedStatementEntry{Name: "get_user", SQL: "SELECT * FROM users"}, []string{"users"}); err != nil {
		t.Fatal(err)
	}

	if err := c.DropTable("users", true); err != nil {
		t.Fatalf("cascade drop should succeed: %v", err)
	}
	if _, err := c.GetPrepared("get_user"); err == nil {
		t.Fatalf("prepared statement should have been cascaded away")
	}
}

func TestRenameColumn(t *testing.T) {
	c := New(nil)
	_ = c.CreateTable(usersSchema())
	if err := c.RenameColumn("users", "name", "full_name"); err != nil {
		t.Fatal(err)
	}
	schema, _ := c.Lookup("main", "users")
	if schema.ColumnIndex("full_name") != 1 {
		t.Errorf("column was not renamed")
	}
	if schema.ColumnIndex("name") != -1 {
		t.Errorf("old column name should no longer resolve")
	}
}

func TestRenameColumnCollision(t *testing.T) {
	c := New(nil)
	_ = c.CreateTable(usersSchema())
	if err := c.RenameColumn("users", "name", "id"); err == nil {
		t.Fatal("expected DuplicateName error")
	}
}

type fakeJournal struct {
	records []string
}

func (f *fakeJournal) AppendDDL(kind string, payload []byte) error {
	f.records = append(f.records, kind+":"+string(payload))
	return nil
}

func TestDDLIsJournalled(t *testing.T) {
	j := &fakeJournal{}
	c := New(j)
	_ = c.CreateTable(usersSchema())
	_ = c.RenameColumn("users", "name", "full_name")
	_ = c.DropTable("users", false)

	if len(j.records) != 3 {
		t.Fatalf("expected 3 journalled records, got %d: %v", len(j.records), j.records)
	}
	if j.records[0] != "CREATE_TABLE:users" {
		t.Errorf("unexpected first record: %s", j.records[0])
	}
}
