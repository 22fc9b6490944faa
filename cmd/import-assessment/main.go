package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"syscall"

	"github.com/edusync/edusync-portal/internal/config"
	"github.com/edusync/edusync-portal/internal/edusync"
	"github.com/edusync/edusync-portal/internal/logger"
	"github.com/edusync/edusync-portal/internal/session"
	"golang.org/x/term"
)

func main() {
	var (
		file     = flag.String("file", "", "Question file: a JSON array of questions, or {\"title\": ..., \"questions\": [...]}")
		courseID = flag.String("course", "", "Course the assessment belongs to")
		title    = flag.String("title", "", "Assessment title (overrides the title in the file)")
		email    = flag.String("email", "", "Instructor email used when no saved login exists")
		dryRun   = flag.Bool("dry-run", false, "Validate the file and print a summary without calling the API")
		logout   = flag.Bool("logout", false, "Forget the saved login and exit")
	)
	flag.Parse()

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx := context.Background()

	sc := session.NewContext(session.NewFileStore(cfg.SessionDir), session.DefaultKey, log)
	if err := sc.Init(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to read saved login")
	}

	if *logout {
		if err := sc.Logout(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to clear saved login")
		}
		fmt.Println("Logged out.")
		return
	}

	if *file == "" || (*courseID == "" && !*dryRun) {
		flag.Usage()
		os.Exit(2)
	}

	// ─── Build & Validate ──────────────────────────────────────────────
	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("Failed to read question file")
	}
	payload, err := prepare(data, *title)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	fmt.Printf("%q: %d question(s), max score %d\n", payload.Title, payload.Count, payload.MaxScore)
	if *dryRun {
		return
	}

	// ─── Log In ────────────────────────────────────────────────────────
	client := edusync.NewClient(cfg.EduSyncBaseURL, cfg.EduSyncTimeout, log)
	user, ok := sc.Current()
	if !ok || (*email != "" && !strings.EqualFold(user.Email, *email)) {
		user, err = login(ctx, client, sc, *email)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
	}
	if !sc.IsInstructor() {
		fmt.Fprintf(os.Stderr, "Error: %s is not an instructor\n", user.Email)
		os.Exit(1)
	}

	// ─── Create Assessment ─────────────────────────────────────────────
	api := client.WithToken(user.Token)
	course, err := api.GetCourse(ctx, *courseID)
	if err != nil {
		exitAPI(ctx, sc, err)
	}
	if !sc.Owns(course.InstructorID) {
		fmt.Fprintf(os.Stderr, "Error: course %q belongs to another instructor\n", course.Title)
		os.Exit(1)
	}

	created, err := api.CreateAssessment(ctx, edusync.CreateAssessmentRequest{
		CourseID:  course.CourseID,
		Title:     payload.Title,
		Questions: payload.Questions,
		MaxScore:  payload.MaxScore,
	})
	if err != nil {
		exitAPI(ctx, sc, err)
	}

	fmt.Printf("Created assessment %s in %q\n", created.AssessmentID, course.Title)
}

// login prompts for the missing credentials and saves the resulting session.
func login(ctx context.Context, client *edusync.Client, sc *session.Context, email string) (session.User, error) {
	if email == "" {
		fmt.Print("Email: ")
		line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		email = strings.TrimSpace(line)
	}
	if email == "" {
		return session.User{}, errors.New("email is required")
	}

	fmt.Print("Password: ")
	pw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return session.User{}, fmt.Errorf("read password: %w", err)
	}

	u, err := client.Login(ctx, edusync.LoginRequest{Email: email, Password: string(pw)})
	if err != nil {
		return session.User{}, err
	}
	user := session.FromAPI(u)
	if err := sc.Login(ctx, user); err != nil {
		return session.User{}, fmt.Errorf("save login: %w", err)
	}
	return user, nil
}

// exitAPI reports an API failure. A rejected token also drops the saved login.
func exitAPI(ctx context.Context, sc *session.Context, err error) {
	if edusync.IsStatus(err, http.StatusUnauthorized) {
		_ = sc.Logout(ctx)
		fmt.Fprintln(os.Stderr, "Error: your login has expired, run the command again to sign in")
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}
