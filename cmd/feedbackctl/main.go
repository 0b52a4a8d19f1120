package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"

	"guest-feedback-server/client"
)

const usage = `feedbackctl - moderation dashboard for the guest feedback service

Usage: feedbackctl <command> [flags]

Commands:
  login      -u <email> -p <password>
  logout
  list       [-search <q>] [-type all|review|suggestion] [-status all|approved|pending]
  approve    <id>
  delete     <id>
  submit     -type review|suggestion -rating <1-10> -name <n> -contact <c> -text <t>
  stats      [-search <q>] [-type ...] [-status ...]
  analytics  [-days 7|30|90]
  export     [-o <file.csv>]
  settings   [-auto-approve=true|false -threshold <1-10>]
  watch

Environment:
  API_BASE_URL  API origin (default same-origin relative, usually wrong for a CLI)
  TOKEN_FILE    token path (default ~/.feedbackctl/token)
`

func main() {
	// .env is optional for the CLI
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	baseURL := os.Getenv("API_BASE_URL")
	tokenFile := os.Getenv("TOKEN_FILE")
	if tokenFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "cannot determine home directory; set TOKEN_FILE")
			os.Exit(1)
		}
		tokenFile = filepath.Join(home, ".feedbackctl", "token")
	}

	session := client.NewSession(baseURL, &client.FileTokenStore{Path: tokenFile}, nil)
	api := client.New(baseURL, session, nil)
	ctx := context.Background()

	var err error
	switch os.Args[1] {
	case "login":
		err = runLogin(ctx, session, os.Args[2:])
	case "logout":
		session.Logout()
		fmt.Println("logged out")
	case "list":
		err = runList(ctx, api, os.Args[2:])
	case "approve":
		err = runAction(ctx, api, os.Args[2:], "approve")
	case "delete":
		err = runAction(ctx, api, os.Args[2:], "delete")
	case "submit":
		err = runSubmit(ctx, api, os.Args[2:])
	case "stats":
		err = runStats(ctx, api, os.Args[2:])
	case "analytics":
		err = runAnalytics(ctx, api, os.Args[2:])
	case "export":
		err = runExport(ctx, api, os.Args[2:])
	case "settings":
		err = runSettings(ctx, api, os.Args[2:])
	case "watch":
		err = runWatch(api)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		if errors.Is(err, client.ErrAuthRequired) || errors.Is(err, client.ErrAuthFailed) {
			fmt.Fprintln(os.Stderr, "error:", err, "(run `feedbackctl login`)")
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func runLogin(ctx context.Context, session *client.Session, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	user := fs.String("u", "", "admin email")
	pass := fs.String("p", "", "admin password")
	fs.Parse(args)

	if *user == "" || *pass == "" {
		return errors.New("login requires -u and -p")
	}
	if err := session.Login(ctx, *user, *pass); err != nil {
		return err
	}
	fmt.Println("logged in")
	return nil
}

func parseFilters(fs *flag.FlagSet) (*string, *string, *string) {
	search := fs.String("search", "", "substring match against name, text and contact")
	typ := fs.String("type", "all", "all, review or suggestion")
	status := fs.String("status", "all", "all, approved or pending")
	return search, typ, status
}

func typeFilterFromString(s string) (client.TypeFilter, error) {
	switch s {
	case "all":
		return client.TypeAll, nil
	case "review":
		return client.TypeReview, nil
	case "suggestion":
		return client.TypeSuggestion, nil
	}
	return client.TypeAll, fmt.Errorf("unknown type filter %q", s)
}

func statusFilterFromString(s string) (client.StatusFilter, error) {
	switch s {
	case "all":
		return client.StatusAny, nil
	case "approved":
		return client.StatusApproved, nil
	case "pending":
		return client.StatusPending, nil
	}
	return client.StatusAny, fmt.Errorf("unknown status filter %q", s)
}

func fetchFiltered(ctx context.Context, api *client.Client, search, typ, status string) ([]client.Feedback, []client.Feedback, error) {
	tf, err := typeFilterFromString(typ)
	if err != nil {
		return nil, nil, err
	}
	sf, err := statusFilterFromString(status)
	if err != nil {
		return nil, nil, err
	}

	all, err := api.AdminFeedback(ctx)
	if err != nil {
		return nil, nil, err
	}
	return client.FilterItems(all, search, tf, sf), all, nil
}

func runList(ctx context.Context, api *client.Client, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	search, typ, status := parseFilters(fs)
	fs.Parse(args)

	filtered, _, err := fetchFiltered(ctx, api, *search, *typ, *status)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tRATING\tDATE\tSTATUS")
	for _, item := range filtered {
		date := item.CreatedAt
		if t, ok := client.ParseCreatedAt(item.CreatedAt); ok {
			date = t.Local().Format("2006-01-02")
		}
		state := "pending"
		if item.IsApproved {
			state = "approved"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\n", item.ID, item.Name, item.Type, item.Rating, date, state)
	}
	return w.Flush()
}

func runAction(ctx context.Context, api *client.Client, args []string, action string) error {
	if len(args) != 1 {
		return fmt.Errorf("%s requires exactly one feedback id", action)
	}
	id, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid feedback id %q", args[0])
	}

	store := client.NewStore(api)
	if err := store.Refresh(ctx); err != nil {
		return err
	}

	switch action {
	case "approve":
		err = store.Approve(ctx, uint(id))
	case "delete":
		err = store.Remove(ctx, uint(id))
	}
	if err != nil {
		return err
	}
	fmt.Printf("%sd feedback %d\n", action, id)
	return nil
}

func runSubmit(ctx context.Context, api *client.Client, args []string) error {
	fs := flag.NewFlagSet("submit", flag.ExitOnError)
	typ := fs.String("type", "review", "review or suggestion")
	rating := fs.Int("rating", 0, "rating from 1 to 10")
	name := fs.String("name", "", "guest name")
	contact := fs.String("contact", "", "guest contact")
	text := fs.String("text", "", "feedback text")
	fs.Parse(args)

	// Same validation the submission page applies before enabling the button
	if strings.TrimSpace(*name) == "" || strings.TrimSpace(*contact) == "" || strings.TrimSpace(*text) == "" {
		return errors.New("name, contact and text must all be non-empty")
	}

	created, err := api.Submit(ctx, client.Submission{
		Type:    *typ,
		Rating:  *rating,
		Name:    strings.TrimSpace(*name),
		Contact: strings.TrimSpace(*contact),
		Text:    strings.TrimSpace(*text),
	})
	if err != nil {
		return err
	}

	fmt.Printf("created feedback %d (approved: %v)\n", created.ID, created.IsApproved)

	// The widget refetches the public list after a successful submission
	public, err := api.PublicFeedback(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("public list now shows %d approved item(s)\n", len(public))
	return nil
}

func runStats(ctx context.Context, api *client.Client, args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	search, typ, status := parseFilters(fs)
	fs.Parse(args)

	filtered, all, err := fetchFiltered(ctx, api, *search, *typ, *status)
	if err != nil {
		return err
	}

	stats := client.ComputeStats(filtered, all, time.Now())
	fmt.Printf("total:          %d\n", stats.Total)
	if stats.AvgRating == nil {
		fmt.Println("avg rating:     -")
	} else {
		fmt.Printf("avg rating:     %.1f\n", *stats.AvgRating)
	}
	fmt.Printf("approval rate:  %d%%\n", stats.ApprovalRate)
	fmt.Printf("new this week:  %d\n", stats.NewThisWeek)
	return nil
}

func runAnalytics(ctx context.Context, api *client.Client, args []string) error {
	fs := flag.NewFlagSet("analytics", flag.ExitOnError)
	days := fs.Int("days", 30, "window length: 7, 30 or 90 days")
	fs.Parse(args)

	if *days != 7 && *days != 30 && *days != 90 {
		return fmt.Errorf("unsupported window %d, use 7, 30 or 90", *days)
	}

	all, err := api.AdminFeedback(ctx)
	if err != nil {
		return err
	}

	buckets := client.DailyBuckets(all, *days, time.Now())
	max := 1
	for _, b := range buckets {
		if b.Count > max {
			max = b.Count
		}
	}
	for _, b := range buckets {
		bar := strings.Repeat("#", b.Count*40/max)
		fmt.Printf("%s %3d %s\n", b.Day.Format("01-02"), b.Count, bar)
	}

	low := client.LowRatingItems(all)
	if len(low) > 0 {
		fmt.Println("\nneeds attention (rating 6 and below):")
		for _, item := range low {
			fmt.Printf("  #%d %s rated %d: %s\n", item.ID, item.Name, item.Rating, item.Text)
		}
	}
	return nil
}

func runExport(ctx context.Context, api *client.Client, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("o", "", "output file (default feedback-<date>.csv)")
	fs.Parse(args)

	all, err := api.AdminFeedback(ctx)
	if err != nil {
		return err
	}

	path := *out
	if path == "" {
		path = client.CSVFilename(time.Now())
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := client.ExportCSV(f, all); err != nil {
		return err
	}
	fmt.Printf("wrote %d item(s) to %s\n", len(all), path)
	return nil
}

func runSettings(ctx context.Context, api *client.Client, args []string) error {
	fs := flag.NewFlagSet("settings", flag.ExitOnError)
	autoApprove := fs.String("auto-approve", "", "true or false")
	threshold := fs.Int("threshold", 0, "manual review rating threshold, 1 to 10")
	fs.Parse(args)

	if *autoApprove == "" && *threshold == 0 {
		settings, err := api.FetchModerationSettings(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("auto-approve: %v\nthreshold:    %d\n", settings.AutoApproveEnabled, settings.ManualReviewRatingThreshold)
		return nil
	}

	settings, err := api.FetchModerationSettings(ctx)
	if err != nil {
		return err
	}
	if *autoApprove != "" {
		enabled, err := strconv.ParseBool(*autoApprove)
		if err != nil {
			return fmt.Errorf("invalid -auto-approve value %q", *autoApprove)
		}
		settings.AutoApproveEnabled = enabled
	}
	if *threshold != 0 {
		settings.ManualReviewRatingThreshold = *threshold
	}

	updated, err := api.UpdateModerationSettings(ctx, settings)
	if err != nil {
		return err
	}
	fmt.Printf("auto-approve: %v\nthreshold:    %d\n", updated.AutoApproveEnabled, updated.ManualReviewRatingThreshold)
	return nil
}

func runWatch(api *client.Client) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := client.NewStore(api)
	if err := store.Refresh(ctx); err != nil {
		return err
	}
	store.StartPolling(client.DefaultPollInterval)
	defer store.Stop()

	fmt.Println("watching (ctrl-c to stop)")
	ticker := time.NewTicker(client.DefaultPollInterval)
	defer ticker.Stop()

	for {
		items := store.Items()
		stats := client.ComputeStats(items, items, time.Now())
		avg := "-"
		if stats.AvgRating != nil {
			avg = fmt.Sprintf("%.1f", *stats.AvgRating)
		}
		fmt.Printf("[%s] total=%d avg=%s approval=%d%% new-this-week=%d\n",
			time.Now().Format("15:04:05"), stats.Total, avg, stats.ApprovalRate, stats.NewThisWeek)

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
