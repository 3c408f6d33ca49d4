// Package seed fills a development database with fake users and activity.
// Everything goes through the services so counters and notifications stay
// consistent with what the API would have produced.
package seed

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/services"
	"github.com/anonto42/instaclone/backend/pkg/logger"
	"github.com/brianvoe/gofakeit/v6"
)

// DefaultPassword is the password of every seeded account.
const DefaultPassword = "password123"

// Options controls how much data Run creates.
type Options struct {
	Users           int
	PostsPerUser    int
	FollowsPerUser  int
	CommentsPerPost int
	LikesPerPost    int
	Seed            int64
}

func (o Options) withDefaults() Options {
	if o.Users <= 0 {
		o.Users = 10
	}
	if o.PostsPerUser < 0 {
		o.PostsPerUser = 0
	}
	if o.FollowsPerUser >= o.Users {
		o.FollowsPerUser = o.Users - 1
	}
	if o.LikesPerPost >= o.Users {
		o.LikesPerPost = o.Users - 1
	}
	return o
}

// Result counts what Run created.
type Result struct {
	Users    int
	Posts    int
	Follows  int
	Comments int
	Likes    int
}

// Seeder creates fake data through the service layer.
type Seeder struct {
	auth     *services.AuthService
	social   *services.SocialService
	posts    *services.PostService
	comments *services.CommentService
}

func NewSeeder(auth *services.AuthService, social *services.SocialService, posts *services.PostService, comments *services.CommentService) *Seeder {
	return &Seeder{auth: auth, social: social, posts: posts, comments: comments}
}

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// Run creates opts.Users accounts, then posts, follows, comments and likes
// between them. The same Seed produces the same data.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	faker := gofakeit.New(opts.Seed)
	l := logger.Ctx(ctx)
	res := &Result{}

	users := make([]models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		first, last := faker.FirstName(), faker.LastName()
		username := strings.ToLower(nonAlnum.ReplaceAllString(first+last, "")) + fmt.Sprint(faker.Number(100, 999))
		session, err := s.auth.Signup(ctx, models.SignupRequest{
			Username:  username,
			Email:     fmt.Sprintf("%s@%s", username, faker.DomainName()),
			Password:  DefaultPassword,
			FirstName: first,
			LastName:  last,
		})
		if models.HasCode(err, models.CodeDuplicate) {
			continue
		}
		if err != nil {
			return res, fmt.Errorf("seed user: %w", err)
		}
		bio := faker.Sentence(8)
		avatar := fmt.Sprintf("https://i.pravatar.cc/150?u=%s", session.User.ID)
		if _, err := s.social.UpdateProfile(ctx, session.User.ID, models.UpdateProfileRequest{Bio: &bio, AvatarURL: &avatar}); err != nil {
			return res, fmt.Errorf("seed profile: %w", err)
		}
		users = append(users, session.User)
	}
	res.Users = len(users)

	for i, u := range users {
		for j := 1; j <= opts.FollowsPerUser && j < len(users); j++ {
			target := users[(i+j)%len(users)]
			err := s.social.FollowUser(ctx, u.ID, target.ID)
			switch {
			case err == nil:
				res.Follows++
			case !models.HasCode(err, models.CodeDuplicate):
				return res, fmt.Errorf("seed follow: %w", err)
			}
		}
	}

	for i, u := range users {
		for p := 0; p < opts.PostsPerUser; p++ {
			post, err := s.posts.CreatePost(ctx, u.ID, fakePost(faker))
			if err != nil {
				return res, fmt.Errorf("seed post: %w", err)
			}
			res.Posts++

			for c := 0; c < opts.CommentsPerPost; c++ {
				author := users[faker.Number(0, len(users)-1)]
				if _, err := s.comments.CreateComment(ctx, post.ID, author.ID, faker.Sentence(6), nil); err != nil {
					return res, fmt.Errorf("seed comment: %w", err)
				}
				res.Comments++
			}
			for k := 1; k <= opts.LikesPerPost; k++ {
				liker := users[(i+k)%len(users)]
				if _, err := s.posts.LikePost(ctx, liker.ID, post.ID); err != nil {
					return res, fmt.Errorf("seed like: %w", err)
				}
				res.Likes++
			}
		}
	}

	l.Info().
		Int("users", res.Users).
		Int("posts", res.Posts).
		Int("follows", res.Follows).
		Int("comments", res.Comments).
		Int("likes", res.Likes).
		Msg("seed complete")
	return res, nil
}

func fakePost(faker *gofakeit.Faker) models.CreatePostRequest {
	req := models.CreatePostRequest{
		Caption:  faker.Sentence(10),
		Location: faker.City(),
	}
	switch faker.Number(0, 4) {
	case 0:
		req.MediaType = models.MediaTypeCarousel
		for n := faker.Number(2, 4); n > 0; n-- {
			req.Media = append(req.Media, fmt.Sprintf("https://picsum.photos/seed/%s/1080/1080", faker.UUID()))
		}
	case 1:
		req.MediaType = models.MediaTypeVideo
		req.Media = []string{fmt.Sprintf("https://cdn.example.com/videos/%s.mp4", faker.UUID())}
	default:
		req.MediaType = models.MediaTypeImage
		req.Media = []string{fmt.Sprintf("https://picsum.photos/seed/%s/1080/1080", faker.UUID())}
	}
	return req
}
