package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/localnerve/agrilearn/internal/logger"
	"github.com/localnerve/agrilearn/internal/metrics"
	"github.com/localnerve/agrilearn/internal/models"
	"gorm.io/gorm"
)

// DefaultAvatar is used when no avatar can be picked
const DefaultAvatar = "minimal_gray_1"

type namePool struct {
	adjectives []string
	nouns      []string
}

var namePools = []namePool{
	{
		adjectives: []string{"Silent", "Brave", "Swift", "Calm", "Bold", "Wise", "Kind", "Sharp", "Quick", "Bright"},
		nouns:      []string{"Eagle", "Lion", "Wolf", "Fox", "Owl", "Bear", "Tiger", "Hawk", "Raven", "Phoenix"},
	},
	{
		adjectives: []string{"Golden", "Silver", "Crystal", "Ruby", "Jade", "Diamond", "Amber", "Pearl", "Coral", "Opal"},
		nouns:      []string{"Star", "Moon", "Sun", "Wave", "Stone", "Flame", "Gem", "Ray", "Glow", "Beam"},
	},
	{
		adjectives: []string{"Ocean", "Mountain", "Forest", "River", "Thunder", "Lightning", "Storm", "Wind", "Fire", "Earth"},
		nouns:      []string{"Walker", "Rider", "Guardian", "Keeper", "Seeker", "Wanderer", "Hunter", "Warrior", "Spirit", "Soul"},
	},
}

var (
	avatarStyles = []string{"geometric", "abstract", "minimal", "colorful", "monochrome", "pattern", "gradient", "simple", "modern", "classic"}
	avatarColors = []string{"red", "blue", "green", "purple", "orange", "pink", "yellow", "teal", "indigo", "gray"}
)

const (
	avatarVariants = 10
	maxNameSuffix  = 999
)

var errNamesExhausted = errors.New("anonymous name attempts exhausted")

// AnonymousIdentity is the pseudonymous display identity assigned at registration
type AnonymousIdentity struct {
	Name   string `json:"anonymousName"`
	Avatar string `json:"anonymousAvatar"`
}

// NameTaken reports whether an anonymous name is already assigned
type NameTaken func(ctx context.Context, name string) (bool, error)

// AnonymousNameTaken checks the users table for an assigned anonymous name
func AnonymousNameTaken(db *gorm.DB) NameTaken {
	return func(ctx context.Context, name string) (bool, error) {
		var ids []uuid.UUID
		err := db.WithContext(ctx).Model(&models.User{}).
			Where("anonymous_name = ?", name).
			Limit(1).
			Pluck("id", &ids).Error
		return len(ids) > 0, err
	}
}

// IdentityGenerator produces anonymous names and avatar tags. It is safe for
// concurrent use.
type IdentityGenerator struct {
	MaxAttempts int
	Taken       NameTaken
	Now         func() time.Time
	Log         *logger.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewIdentityGenerator returns a generator checking uniqueness against db
func NewIdentityGenerator(db *gorm.DB, maxAttempts int, log *logger.Logger) *IdentityGenerator {
	return &IdentityGenerator{
		MaxAttempts: maxAttempts,
		Taken:       AnonymousNameTaken(db),
		Now:         time.Now,
		Log:         log,
		rng:         rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// WithSeed makes the generator deterministic
func (g *IdentityGenerator) WithSeed(seed uint64) *IdentityGenerator {
	g.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return g
}

// Generate never fails. A failed or exhausted uniqueness search yields
// "Anonymous" plus the last four digits of the current millisecond time.
func (g *IdentityGenerator) Generate(ctx context.Context) AnonymousIdentity {
	name, err := g.uniqueName(ctx)
	if err != nil {
		reason := "lookup"
		if errors.Is(err, errNamesExhausted) {
			reason = "exhausted"
		}
		metrics.IdentityFallbacks.WithLabelValues(reason).Inc()
		if g.Log != nil {
			g.Log.Warn("Anonymous name fell back to timestamp", "reason", reason, "error", err)
		}
		name = g.fallbackName()
	}

	return AnonymousIdentity{Name: name, Avatar: g.avatar()}
}

func (g *IdentityGenerator) uniqueName(ctx context.Context) (string, error) {
	attempts := g.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	suffixFrom := attempts / 2

	for i := 0; i < attempts; i++ {
		candidate := g.candidate(i >= suffixFrom)
		taken, err := g.Taken(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("checking anonymous name: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}

	return "", errNamesExhausted
}

func (g *IdentityGenerator) candidate(withSuffix bool) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	pool := namePools[g.rng.IntN(len(namePools))]
	name := pool.adjectives[g.rng.IntN(len(pool.adjectives))] + pool.nouns[g.rng.IntN(len(pool.nouns))]
	if withSuffix {
		name = fmt.Sprintf("%s%d", name, g.rng.IntN(maxNameSuffix)+1)
	}
	return name
}

func (g *IdentityGenerator) avatar() string {
	if len(avatarStyles) == 0 || len(avatarColors) == 0 {
		return DefaultAvatar
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	return fmt.Sprintf("%s_%s_%d",
		avatarStyles[g.rng.IntN(len(avatarStyles))],
		avatarColors[g.rng.IntN(len(avatarColors))],
		g.rng.IntN(avatarVariants)+1,
	)
}

func (g *IdentityGenerator) fallbackName() string {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	return fmt.Sprintf("Anonymous%04d", now().UnixMilli()%10000)
}
