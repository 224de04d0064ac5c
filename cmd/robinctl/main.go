package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/docopt/docopt-go"

	"robinhoodarmy/internal/config"
	"robinhoodarmy/internal/feed"
	"robinhoodarmy/internal/gateway"
	"robinhoodarmy/internal/models"
	"robinhoodarmy/internal/service"
	"robinhoodarmy/internal/session"
	"robinhoodarmy/internal/store"
	"robinhoodarmy/internal/views"
)

const RobinCtlVersion = "0.1.0"

var Out *log.Logger
var Err *log.Logger

func init() {
	Out = log.New(os.Stdout, "", 0)
	Err = log.New(os.Stderr, "", log.Ldate|log.Ltime|log.Lshortfile)
}

func main() {
	usage := `Robinhood Army control.

The backend url and access token default to ROBINHOOD_URL and ROBINHOOD_TOKEN.

Usage:
    robinctl token <user_id> [--email=<email>] [--admin]
    robinctl children [--url=<url>] [--token=<token>] [--search=<term>] [--locality=<locality>]
    robinctl add-child [--url=<url>] [--token=<token>] <name>
        --mother=<name> --father=<name> --age=<age> [--locality=<locality>] [--photo=<file>]
    robinctl attend [--url=<url>] [--token=<token>] <child_id> --locality=<locality> [--drive=<drive_id>]
    robinctl robins [--url=<url>] [--token=<token>] [--search=<term>] [--locality=<locality>]
    robinctl add-robin [--url=<url>] [--token=<token>] <name> --locality=<locality> --date=<date>
    robinctl record-drive [--url=<url>] [--token=<token>] <robin_id> --locality=<locality> [--drive=<drive_id>]
    robinctl initial-drives [--url=<url>] [--token=<token>] <robin_id> <count>
    robinctl drives [--url=<url>] [--token=<token>]
    robinctl add-drive [--url=<url>] [--token=<token>] <name> --date=<date> --locality=<locality>
    robinctl participants [--url=<url>] [--token=<token>] <drive_id>
    robinctl leaderboard [--url=<url>] [--token=<token>] (children | robins)
    robinctl today [--url=<url>] [--token=<token>]
    robinctl generate [--url=<url>] [--token=<token>] --age=<age> --subject=<subject> --type=<type>
        [--tone=<tone>] [--language=<language>] [--quiz]
    robinctl watch [--url=<url>] [--token=<token>]

Options:
    -h --help                 Show this screen.
    --version                 Show version.
    --url=<url>               Backend url.
    --token=<token>           Access token.
    --email=<email>           Email claim for a minted token.
    --admin                   Mint a token with the admin role, needed for today.
    --search=<term>           Name or tag to search for.
    --locality=<locality>     One of the drive localities.
    --mother=<name>
    --father=<name>
    --age=<age>
    --photo=<file>            Photo to upload for the child.
    --drive=<drive_id>        Drive the record belongs to.
    --date=<date>             Date as YYYY-MM-DD.
    --subject=<subject>
    --type=<type>             Content type, e.g. Story.
    --tone=<tone>
    --language=<language>
    --quiz                    End the content with a quiz.`

	opts, err := docopt.ParseArgs(usage, os.Args[1:], RobinCtlVersion)
	if err != nil {
		panic(err)
	}

	cfg := config.Load()

	if flag(opts, "token") {
		mintToken(cfg, opts)
		return
	}

	ctx := context.Background()
	s, gw := connect(cfg, opts)
	st := store.New(gw, s)

	if flag(opts, "watch") {
		watch(ctx, gw, st)
		return
	}

	if err := st.LoadAll(ctx); err != nil {
		Err.Fatalf("Failed to load data: %v", err)
	}

	switch {
	case flag(opts, "leaderboard"):
		if flag(opts, "children") {
			printJSON(views.ChildLeaderboard(st.Children.Items()))
		} else {
			printJSON(views.RobinLeaderboard(st.Robins.Items()))
		}
	case flag(opts, "children"):
		term, _ := opts.String("--search")
		locality, _ := opts.String("--locality")
		printJSON(views.SearchChildren(st.Children.Items(), term, locality))
	case flag(opts, "add-child"):
		addChild(ctx, st, opts)
	case flag(opts, "attend"):
		childID, _ := opts.String("<child_id>")
		record, err := st.MarkAttendance(ctx, models.AttendanceInput{
			ChildID:  childID,
			Location: stringOpt(opts, "--locality"),
			DriveID:  optionalOpt(opts, "--drive"),
		})
		check("mark attendance", err)
		printJSON(record)
	case flag(opts, "robins"):
		term, _ := opts.String("--search")
		locality, _ := opts.String("--locality")
		printJSON(views.SearchRobins(st.Robins.Items(), term, locality))
	case flag(opts, "add-robin"):
		robin, err := st.RegisterRobin(ctx, models.RobinInput{
			Name:             stringOpt(opts, "<name>"),
			AssignedLocation: stringOpt(opts, "--locality"),
			AssignedDate:     stringOpt(opts, "--date"),
		})
		check("register robin", err)
		printJSON(robin)
	case flag(opts, "record-drive"):
		record, err := st.RecordDrive(ctx, stringOpt(opts, "<robin_id>"), models.DriveParticipationInput{
			Location: stringOpt(opts, "--locality"),
			DriveID:  optionalOpt(opts, "--drive"),
		})
		check("record drive", err)
		printJSON(record)
	case flag(opts, "initial-drives"):
		count, err := strconv.Atoi(stringOpt(opts, "<count>"))
		check("parse count", err)
		robin, err := st.SetInitialDriveCount(ctx, stringOpt(opts, "<robin_id>"), count)
		check("set initial drive count", err)
		printJSON(robin)
	case flag(opts, "drives"):
		today := models.Today()
		drives := st.Drives.Items()
		printJSON(map[string][]models.Drive{
			"today":    views.DrivesOn(drives, today),
			"upcoming": views.UpcomingDrives(drives, today),
			"past":     views.PastDrives(drives, today),
		})
	case flag(opts, "add-drive"):
		drive, err := st.CreateDrive(ctx, models.DriveInput{
			Name:     stringOpt(opts, "<name>"),
			Date:     stringOpt(opts, "--date"),
			Location: stringOpt(opts, "--locality"),
		})
		check("create drive", err)
		printJSON(drive)
	case flag(opts, "participants"):
		printJSON(views.Participants(stringOpt(opts, "<drive_id>"),
			st.Participation.Items(), st.Robins.Items(), st.Attendance.Items(), st.Children.Items()))
	case flag(opts, "today"):
		assignments, err := st.TodayAssignments(ctx)
		check("list today's assignments", err)
		printJSON(map[string]interface{}{
			"assignments":  assignments,
			"availability": views.AvailabilitySummary(assignments),
		})
	case flag(opts, "generate"):
		generate(ctx, st, opts)
	}
}

func mintToken(cfg *config.Config, opts docopt.Opts) {
	userID, _ := opts.String("<user_id>")
	email, _ := opts.String("--email")

	role := ""
	if flag(opts, "--admin") {
		role = models.RoleAdmin
	}

	token, err := service.NewAuthService(cfg.JWTSecret, cfg.TokenDuration).IssueTokenWithRole(userID, email, role)
	check("issue token", err)
	Out.Println(token)
}

func connect(cfg *config.Config, opts docopt.Opts) (*session.Session, *gateway.Client) {
	url := cfg.BackendURL
	if v, err := opts.String("--url"); err == nil && v != "" {
		url = v
	}
	token := cfg.AccessToken
	if v, err := opts.String("--token"); err == nil && v != "" {
		token = v
	}

	s, err := session.FromToken(token)
	check("read access token", err)

	gw, err := gateway.NewClient(url, s, cfg.RequestTimeout)
	check("connect", err)
	return s, gw
}

func addChild(ctx context.Context, st *store.Store, opts docopt.Opts) {
	age, err := strconv.Atoi(stringOpt(opts, "--age"))
	check("parse age", err)

	in := models.ChildInput{
		Name:       stringOpt(opts, "<name>"),
		MotherName: stringOpt(opts, "--mother"),
		FatherName: stringOpt(opts, "--father"),
		AgeGroup:   age,
		Location:   optionalOpt(opts, "--locality"),
	}

	if photo := stringOpt(opts, "--photo"); photo != "" {
		data, err := os.ReadFile(photo)
		check("read photo", err)
		url, err := st.UploadPhoto(ctx, "children", filepath.Base(photo), data)
		check("upload photo", err)
		in.PhotoURL = &url
	}

	child, err := st.RegisterChild(ctx, in)
	check("register child", err)
	printJSON(child)
}

func generate(ctx context.Context, st *store.Store, opts docopt.Opts) {
	age, err := strconv.Atoi(stringOpt(opts, "--age"))
	check("parse age", err)
	quiz, _ := opts.Bool("--quiz")

	content, err := st.GenerateContent(ctx, models.GenerateRequest{
		AgeGroup:    models.FlexInt(age),
		Subject:     stringOpt(opts, "--subject"),
		ContentType: stringOpt(opts, "--type"),
		Tone:        stringOpt(opts, "--tone"),
		Language:    stringOpt(opts, "--language"),
		IncludeQuiz: quiz,
	})
	check("generate content", err)
	Out.Println(content)
}

// reporter prints the collection size after every refetch
type reporter struct {
	feed.Target
	count func() int
}

func (r reporter) FetchAll(ctx context.Context) error {
	if err := r.Target.FetchAll(ctx); err != nil {
		return err
	}
	Out.Printf("%s changed: %d records", r.Table(), r.count())
	return nil
}

func watch(ctx context.Context, gw *gateway.Client, st *store.Store) {
	manager := session.NewManager(func(ctx context.Context, s *session.Session) (io.Closer, error) {
		if err := st.LoadAll(ctx); err != nil {
			return nil, err
		}
		listener, err := feed.Start(ctx, gw, s,
			reporter{Target: st.Children, count: st.Children.Len},
			reporter{Target: st.Robins, count: st.Robins.Len},
			reporter{Target: st.Content, count: st.Content.Len},
		)
		if err != nil {
			return nil, err
		}
		return listener, nil
	})

	_, err := manager.Login(ctx, st.Session().AccessToken)
	check("start watching", err)
	Out.Printf("Watching children, robins and content for %s. Press Ctrl+C to stop.", st.Session().UserID)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	manager.Logout()
}

func flag(opts docopt.Opts, name string) bool {
	v, _ := opts.Bool(name)
	return v
}

func stringOpt(opts docopt.Opts, name string) string {
	v, _ := opts.String(name)
	return v
}

func optionalOpt(opts docopt.Opts, name string) *string {
	if v := stringOpt(opts, name); v != "" {
		return &v
	}
	return nil
}

func check(action string, err error) {
	if err != nil {
		Err.Fatalf("Failed to %s: %v", action, err)
	}
}

func printJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	check("encode output", err)
	Out.Println(string(data))
}
