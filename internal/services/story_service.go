package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/repositories"
	"github.com/anonto42/instaclone/backend/pkg/clock"
	"gorm.io/gorm"
)

// StoryService owns stories and their views. A story is active while
// expires_at is after the clock's now; the sweeper deletes it later.
type StoryService struct {
	db      *gorm.DB
	stories repositories.StoryRepository
	users   repositories.UserRepository
	clock   clock.Clock
}

func NewStoryService(db *gorm.DB, stories repositories.StoryRepository, users repositories.UserRepository, clk clock.Clock) *StoryService {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &StoryService{db: db, stories: stories, users: users, clock: clk}
}

// ViewResult reports a story view and whether it was the viewer's first.
type ViewResult struct {
	Story     models.Story `json:"story"`
	FirstView bool         `json:"first_view"`
}

func (s *StoryService) CreateStory(ctx context.Context, userID, mediaURL, mediaType string) (*models.Story, error) {
	mediaURL = strings.TrimSpace(mediaURL)
	if mediaURL == "" {
		return nil, models.NewValidationError("media_url is required")
	}
	if mediaType != models.MediaTypeImage && mediaType != models.MediaTypeVideo {
		return nil, models.NewValidationError("media_type must be image or video")
	}

	now := s.clock.Now()
	story := &models.Story{
		UserID:    userID,
		MediaURL:  mediaURL,
		MediaType: mediaType,
		CreatedAt: now,
		ExpiresAt: now.Add(models.StoryTTL),
	}
	if err := s.stories.Create(ctx, story); err != nil {
		return nil, storageErr(err)
	}
	return story, nil
}

// GetActiveStories groups every active story by author. The viewer's own
// group comes first, then groups with unseen stories, then the most recent.
func (s *StoryService) GetActiveStories(ctx context.Context, viewerID string) ([]models.StoryGroup, error) {
	stories, err := s.stories.ListActive(ctx, s.clock.Now())
	if err != nil {
		return nil, storageErr(err)
	}
	if len(stories) == 0 {
		return []models.StoryGroup{}, nil
	}

	storyIDs := make([]uint, len(stories))
	authorIDs := make([]string, 0)
	byAuthor := make(map[string][]models.Story)
	for i, st := range stories {
		storyIDs[i] = st.ID
		if _, ok := byAuthor[st.UserID]; !ok {
			authorIDs = append(authorIDs, st.UserID)
		}
		byAuthor[st.UserID] = append(byAuthor[st.UserID], st)
	}

	seen, err := s.stories.SeenStoryIDs(ctx, viewerID, storyIDs)
	if err != nil {
		return nil, storageErr(err)
	}
	authors, err := s.users.GetByIDs(ctx, authorIDs)
	if err != nil {
		return nil, storageErr(err)
	}

	groups := make([]models.StoryGroup, 0, len(authorIDs))
	for _, id := range authorIDs {
		group := models.StoryGroup{Stories: byAuthor[id]}
		author := authors[id]
		group.User = author.ToCompact()
		for _, st := range group.Stories {
			if !seen[st.ID] && id != viewerID {
				group.HasUnseen = true
				break
			}
		}
		groups = append(groups, group)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if (a.User.ID == viewerID) != (b.User.ID == viewerID) {
			return a.User.ID == viewerID
		}
		if a.HasUnseen != b.HasUnseen {
			return a.HasUnseen
		}
		return latest(a).After(latest(b))
	})
	return groups, nil
}

func latest(g models.StoryGroup) time.Time {
	var t time.Time
	for _, st := range g.Stories {
		if st.CreatedAt.After(t) {
			t = st.CreatedAt
		}
	}
	return t
}

func (s *StoryService) GetUserStories(ctx context.Context, userID string) ([]models.Story, error) {
	stories, err := s.stories.ListActiveByUser(ctx, userID, s.clock.Now())
	if err != nil {
		return nil, storageErr(err)
	}
	return stories, nil
}

// ViewStory records viewerID's first view of an active story. Repeat views and
// the owner's own views leave views_count unchanged.
func (s *StoryService) ViewStory(ctx context.Context, storyID uint, viewerID string) (*ViewResult, error) {
	now := s.clock.Now()
	var result ViewResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stories := s.stories.WithTx(tx)
		story, err := stories.GetActive(ctx, storyID, now)
		if err != nil {
			return classify(err, "story", storyID)
		}
		result.Story = *story
		if story.UserID == viewerID {
			return nil
		}

		viewed, err := stories.HasViewed(ctx, storyID, viewerID)
		if err != nil || viewed {
			return err
		}
		if err := stories.CreateView(ctx, &models.StoryView{StoryID: storyID, ViewerID: viewerID, CreatedAt: now}); err != nil {
			return err
		}
		if err := stories.IncrementViews(ctx, storyID); err != nil {
			return err
		}
		result.Story.ViewsCount++
		result.FirstView = true
		return nil
	})
	if lostRace(err) {
		story, err := s.stories.GetActive(ctx, storyID, now)
		if err != nil {
			return nil, classify(err, "story", storyID)
		}
		return &ViewResult{Story: *story}, nil
	}
	if err != nil {
		return nil, classify(err, "story", storyID)
	}
	return &result, nil
}

// ListStoryViewers returns who viewed a story. Only its owner may ask.
func (s *StoryService) ListStoryViewers(ctx context.Context, storyID uint, requesterID string) ([]models.UserCompact, error) {
	story, err := s.stories.GetActive(ctx, storyID, s.clock.Now())
	if err != nil {
		return nil, classify(err, "story", storyID)
	}
	if story.UserID != requesterID {
		return nil, models.NewForbiddenError("only the owner can see story viewers")
	}
	viewers, err := s.stories.ListViewers(ctx, storyID)
	if err != nil {
		return nil, storageErr(err)
	}
	return compactUsers(viewers), nil
}

// DeleteStory removes a story before it expires. Only its owner may delete it.
func (s *StoryService) DeleteStory(ctx context.Context, storyID uint, requesterID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stories := s.stories.WithTx(tx)
		story, err := stories.GetActive(ctx, storyID, s.clock.Now())
		if err != nil {
			return classify(err, "story", storyID)
		}
		if story.UserID != requesterID {
			return models.NewForbiddenError("only the owner can delete this story")
		}
		return classify(stories.Delete(ctx, storyID), "story", storyID)
	})
}

// SweepExpired hard-deletes every story whose expiry has passed.
func (s *StoryService) SweepExpired(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		n, err = s.stories.WithTx(tx).DeleteExpired(ctx, s.clock.Now())
		return err
	})
	return n, storageErr(err)
}
