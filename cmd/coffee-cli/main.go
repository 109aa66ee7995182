package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"CoffeeStore-App/internal/client"
	"CoffeeStore-App/internal/detail"
	"CoffeeStore-App/internal/domain/model"
	"CoffeeStore-App/internal/infrastructure/httpc"
	"CoffeeStore-App/internal/logger"
	"CoffeeStore-App/internal/session"
)

func main() {
	var (
		apiURL   = flag.String("api", "http://localhost:8080", "coffee store API base URL")
		latLong  = flag.String("latlong", "", "location as \"lat,lng\" (server default when empty)")
		limit    = flag.Int("limit", 0, "number of stores to list (server default when 0)")
		id       = flag.String("id", "", "coffee store id to open")
		upvotes  = flag.Int("upvote", 0, "number of upvotes to send for -id")
		static   = flag.Bool("static", false, "use pre-generated props for -id")
		logLevel = flag.String("log-level", "warn", "log level")
		timeout  = flag.Duration("timeout", 15*time.Second, "overall timeout")
	)
	flag.Parse()

	slog.SetDefault(logger.New(logger.Options{Level: *logLevel, Output: os.Stderr}))

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	api := client.NewAPIClient(*apiURL, httpc.New(10*time.Second))
	sess := session.New()
	defer sess.End()

	if err := run(ctx, api, sess, *latLong, *limit, *id, *upvotes, *static); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, api *client.APIClient, sess *session.Session, latLong string, limit int, id string, upvotes int, static bool) error {
	if err := sess.Stores.Populate(ctx, api, latLong, limit); err != nil {
		return err
	}

	if id == "" {
		for _, s := range sess.Stores.Stores() {
			fmt.Printf("%-28s %s\n", s.ID, s.Name)
		}
		return nil
	}

	props := &model.CoffeeStore{}
	if static {
		p, err := detail.StaticProps(ctx, api, id)
		if err != nil {
			return err
		}
		props = p
	}

	page := detail.NewController(api, sess.Stores)
	page.Mount(id, props)
	defer page.Unmount()

	if err := page.Resolve(ctx); err != nil {
		slog.Debug("resolve failed", "id", id, "error", err)
	}

	for i := 0; i < upvotes; i++ {
		if err := page.Upvote(ctx); err != nil {
			break
		}
	}

	return detail.Render(os.Stdout, page.View())
}
