package services_test

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/localnerve/agrilearn/internal/logger"
	"github.com/localnerve/agrilearn/internal/models"
	"github.com/localnerve/agrilearn/internal/services"
	"github.com/localnerve/agrilearn/internal/testutil"
)

var (
	plainName    = regexp.MustCompile(`^[A-Z][a-z]+[A-Z][a-z]+$`)
	suffixedName = regexp.MustCompile(`^[A-Z][a-z]+[A-Z][a-z]+[0-9]{1,3}$`)
	avatarTag    = regexp.MustCompile(`^[a-z]+_[a-z]+_([1-9]|10)$`)
)

func newGenerator(maxAttempts int, taken services.NameTaken) *services.IdentityGenerator {
	g := services.NewIdentityGenerator(nil, maxAttempts, logger.Nop()).WithSeed(42)
	g.Taken = taken
	g.Now = func() time.Time { return time.UnixMilli(1_700_000_012_345) }
	return g
}

func TestGenerateFreshName(t *testing.T) {
	g := newGenerator(100, func(context.Context, string) (bool, error) { return false, nil })

	id := g.Generate(context.Background())
	if !plainName.MatchString(id.Name) {
		t.Errorf("expected adjective+noun, got %q", id.Name)
	}
	if !avatarTag.MatchString(id.Avatar) {
		t.Errorf("unexpected avatar %q", id.Avatar)
	}
}

func TestGenerateSwitchesToSuffixAfterHalfTheAttempts(t *testing.T) {
	var checked []string
	g := newGenerator(10, func(_ context.Context, name string) (bool, error) {
		checked = append(checked, name)
		return !suffixedName.MatchString(name), nil
	})

	id := g.Generate(context.Background())
	if !suffixedName.MatchString(id.Name) {
		t.Fatalf("expected a numbered name, got %q", id.Name)
	}
	if len(checked) != 6 {
		t.Errorf("expected 5 plain attempts then a numbered one, checked %v", checked)
	}
	for _, name := range checked[:5] {
		if !plainName.MatchString(name) {
			t.Errorf("early attempt %q should not carry a number", name)
		}
	}
}

func TestGenerateFallsBack(t *testing.T) {
	tests := []struct {
		name  string
		taken services.NameTaken
	}{
		{"exhausted", func(context.Context, string) (bool, error) { return true, nil }},
		{"lookup failure", func(context.Context, string) (bool, error) { return false, errors.New("db down") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := newGenerator(4, tt.taken).Generate(context.Background())
			if id.Name != "Anonymous2345" {
				t.Errorf("fallback name = %q", id.Name)
			}
			if !avatarTag.MatchString(id.Avatar) {
				t.Errorf("fallback still needs an avatar, got %q", id.Avatar)
			}
		})
	}
}

func TestGenerateAgainstDatabase(t *testing.T) {
	db := testutil.NewDB(t)
	existing := testutil.SeedUser(t, db, "Eric Farmer", models.UserTypeFarmer)

	taken, err := services.AnonymousNameTaken(db)(context.Background(), existing.AnonymousName)
	if err != nil {
		t.Fatal(err)
	}
	if !taken {
		t.Errorf("%s should be taken", existing.AnonymousName)
	}

	g := services.NewIdentityGenerator(db, 100, logger.Nop())
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		names = map[string]bool{}
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := g.Generate(context.Background())
			mu.Lock()
			names[id.Name] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	if names[existing.AnonymousName] {
		t.Errorf("generated a name already assigned: %s", existing.AnonymousName)
	}
}
