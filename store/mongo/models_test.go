package mongo

import (
	"testing"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/xraph/accessmatrix/directory"
)

func TestDirectoryModelsStoreLowerCaseKeys(t *testing.T) {
	rm := roleToModel(&directory.Role{ID: 1, Name: "Manager"})
	if rm.NameLower != "manager" {
		t.Fatalf("name_lower = %q", rm.NameLower)
	}
	if got := roleFromModel(rm); got.Name != "Manager" {
		t.Fatalf("round trip name = %q", got.Name)
	}

	um := userToModel(&directory.User{ID: 2, Email: "Bob@Example.com", RoleID: 1})
	if um.EmailLower != "bob@example.com" {
		t.Fatalf("email_lower = %q", um.EmailLower)
	}
	if got := userFromModel(um); got.Email != "Bob@Example.com" || got.RoleID != 1 {
		t.Fatalf("round trip user = %+v", got)
	}
}

func TestMigrationIndexesCoverRuleTuple(t *testing.T) {
	idx := migrationIndexes()[colRules]
	if len(idx) == 0 {
		t.Fatal("expected rule indexes")
	}
	keys, ok := idx[0].Keys.(bson.D)
	if !ok || len(keys) != 4 {
		t.Fatalf("expected four tuple keys, got %v", idx[0].Keys)
	}
	if idx[0].Options == nil {
		t.Fatal("expected unique options on tuple index")
	}
}
