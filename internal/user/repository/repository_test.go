package repository

import (
	"reflect"
	"testing"

	"github.com/AlibekovAA/blog-backend/internal/user/domain"
)

func TestUniqueIDs(t *testing.T) {
	got := uniqueIDs([]domain.ID{"b", "a", "b", "", "c", "a"})
	want := []string{"b", "a", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("uniqueIDs = %v, want %v", got, want)
	}
}
