package main

import (
	"fmt"

	"github.com/anonto42/instaclone/backend/internal/jobs"
	"github.com/anonto42/instaclone/backend/internal/middleware"
	"github.com/anonto42/instaclone/backend/internal/repositories"
	"github.com/anonto42/instaclone/backend/internal/seed"
	"github.com/anonto42/instaclone/backend/internal/services"
	"github.com/anonto42/instaclone/backend/pkg/clock"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := bootstrap(true)
		if err != nil {
			return err
		}
		db.CloseDB()
		return nil
	},
}

var sweepStoriesCmd = &cobra.Command{
	Use:   "sweep-stories",
	Short: "Delete expired stories once",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := bootstrap(false)
		if err != nil {
			return err
		}
		defer db.CloseDB()

		stories := services.NewStoryService(db.Postgres,
			repositories.NewPostgresStoryRepository(db.Postgres),
			repositories.NewPostgresUserRepository(db.Postgres),
			clock.RealClock{})
		return jobs.RunOnce(cmd.Context(), jobs.NewStorySweeper(stories))
	},
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Recompute denormalized counters once",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := bootstrap(false)
		if err != nil {
			return err
		}
		defer db.CloseDB()

		return jobs.RunOnce(cmd.Context(), jobs.NewCounterReconciler(repositories.NewPostgresCounterRepository(db.Postgres)))
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the database with fake users and activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := bootstrap(true)
		if err != nil {
			return err
		}
		defer db.CloseDB()

		flags := cmd.Flags()
		opts := seed.Options{}
		opts.Users, _ = flags.GetInt("users")
		opts.PostsPerUser, _ = flags.GetInt("posts")
		opts.FollowsPerUser, _ = flags.GetInt("follows")
		opts.CommentsPerPost, _ = flags.GetInt("comments")
		opts.LikesPerPost, _ = flags.GetInt("likes")
		opts.Seed, _ = flags.GetInt64("seed")

		pg := db.Postgres
		users := repositories.NewPostgresUserRepository(pg)
		posts := repositories.NewPostgresPostRepository(pg)
		comments := repositories.NewPostgresCommentRepository(pg)
		likes := repositories.NewPostgresLikeRepository(pg)
		notifications := repositories.NewPostgresNotificationRepository(pg)
		notifier := services.NewNotificationService(notifications, users, nil)

		seeder := seed.NewSeeder(
			services.NewAuthService(users, middleware.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)),
			services.NewSocialService(pg, users, repositories.NewPostgresFollowRepository(pg), notifications, notifier),
			services.NewPostService(pg, posts, users, comments, likes, repositories.NewPostgresSavedPostRepository(pg), notifications, notifier),
			services.NewCommentService(pg, comments, posts, users, likes, notifications, notifier),
		)
		res, err := seeder.Run(cmd.Context(), opts)
		if err != nil {
			return err
		}
		fmt.Printf("Seeded %d users, %d posts, %d follows, %d comments, %d likes\n",
			res.Users, res.Posts, res.Follows, res.Comments, res.Likes)
		return nil
	},
}
